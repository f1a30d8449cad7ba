package resource

import "slices"

// Schema describes one entity type to the generic hook.
//
// Name is the logical entity name; it doubles as the cache key and the URL
// segment. Mutable lists the columns a partial update may touch. Statuses
// lists the allowed workflow states, the first being the default for new
// records; an empty list accepts any non-empty status.
type Schema struct {
	Name     string
	Table    string
	Label    string
	Mutable  []string
	Statuses []string

	ReadPermission   string
	WritePermission  string
	DeletePermission string
}

// DefaultStatus returns the state assigned to records created without one.
func (s Schema) DefaultStatus() string {
	if len(s.Statuses) == 0 {
		return ""
	}
	return s.Statuses[0]
}

// AllowsStatus reports whether st is a valid workflow state for the entity.
func (s Schema) AllowsStatus(st string) bool {
	if st == "" {
		return false
	}
	if len(s.Statuses) == 0 {
		return true
	}
	return slices.Contains(s.Statuses, st)
}

// IsMutable reports whether column may be changed by an update.
func (s Schema) IsMutable(column string) bool {
	return slices.Contains(s.Mutable, column)
}
