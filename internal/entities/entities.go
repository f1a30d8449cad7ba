// Package entities registers the court's business entities with the generic
// resource layer: their schemas, permission names, and default role grants.
package entities

import (
	"github.com/tbourn/courtdesk-backend/internal/cache"
	"github.com/tbourn/courtdesk-backend/internal/datastore"
	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/resource"
)

// Permission actions appended to an entity name, e.g. "fines:write".
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// PermAnalyticsRead gates the access analytics endpoints.
const PermAnalyticsRead = "analytics:read"

func schema(name, table, label string, statuses []string, mutable ...string) resource.Schema {
	return resource.Schema{
		Name:             name,
		Table:            table,
		Label:            label,
		Statuses:         statuses,
		Mutable:          append([]string{"status"}, mutable...),
		ReadPermission:   name + ":" + ActionRead,
		WritePermission:  name + ":" + ActionWrite,
		DeletePermission: name + ":" + ActionDelete,
	}
}

var (
	workflow = []string{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled}
	simple   = []string{domain.StatusPending, domain.StatusCompleted}
	decision = []string{domain.StatusPending, domain.StatusApproved, domain.StatusRejected}
)

// Entity schemas.
var (
	Cases = schema("cases", "cases", "Case", workflow,
		"process_number", "subject", "plaintiff", "defendant", "court", "filed_on", "notes")
	Filings = schema("filings", "filings", "Filing", simple,
		"case_id", "filing_type", "filed_on", "protocol", "description")
	Dispatches = schema("dispatches", "dispatches", "Dispatch", workflow,
		"case_id", "dispatch_type", "content", "issued_on", "deadline", "responsible")
	DispatchCompliances = schema("dispatch-compliances", "dispatch_compliances", "Dispatch compliance", simple,
		"case_id", "dispatch_id", "compliance_date", "action", "notes")
	Fines = schema("fines", "fines", "Fine", []string{domain.StatusPending, domain.StatusCompleted, domain.StatusCancelled},
		"case_id", "debtor", "amount_cents", "due_date", "reason")
	FineReductions = schema("fine-reductions", "fine_reductions", "Fine reduction", decision,
		"case_id", "fine_id", "original_amount_cents", "requested_cents", "granted_cents", "requested_on", "justification")
	CaseRoutings = schema("case-routings", "case_routings", "Case routing", simple,
		"case_id", "from_unit", "to_unit", "routed_on", "reason")
	Hearings = schema("hearings", "hearings", "Hearing", []string{domain.StatusPending, domain.StatusCompleted, domain.StatusCancelled},
		"case_id", "scheduled_for", "room", "presiding", "notes")
)

// Schemas lists every registered entity in a stable order.
func Schemas() []resource.Schema {
	return []resource.Schema{
		Cases, Filings, Dispatches, DispatchCompliances,
		Fines, FineReductions, CaseRoutings, Hearings,
	}
}

// Hooks holds one access hook per entity.
type Hooks struct {
	Cases               *resource.Hook[domain.Case, *domain.Case]
	Filings             *resource.Hook[domain.Filing, *domain.Filing]
	Dispatches          *resource.Hook[domain.Dispatch, *domain.Dispatch]
	DispatchCompliances *resource.Hook[domain.DispatchCompliance, *domain.DispatchCompliance]
	Fines               *resource.Hook[domain.Fine, *domain.Fine]
	FineReductions      *resource.Hook[domain.FineReduction, *domain.FineReduction]
	CaseRoutings        *resource.Hook[domain.CaseRouting, *domain.CaseRouting]
	Hearings            *resource.Hook[domain.Hearing, *domain.Hearing]
}

// NewHooks builds every hook over one store, session source, and cache.
func NewHooks(store datastore.Store, sessions resource.SessionSource, c *cache.Cache, opts ...resource.Option) *Hooks {
	return &Hooks{
		Cases:               resource.New[domain.Case](Cases, store, sessions, c, opts...),
		Filings:             resource.New[domain.Filing](Filings, store, sessions, c, opts...),
		Dispatches:          resource.New[domain.Dispatch](Dispatches, store, sessions, c, opts...),
		DispatchCompliances: resource.New[domain.DispatchCompliance](DispatchCompliances, store, sessions, c, opts...),
		Fines:               resource.New[domain.Fine](Fines, store, sessions, c, opts...),
		FineReductions:      resource.New[domain.FineReduction](FineReductions, store, sessions, c, opts...),
		CaseRoutings:        resource.New[domain.CaseRouting](CaseRoutings, store, sessions, c, opts...),
		Hearings:            resource.New[domain.Hearing](Hearings, store, sessions, c, opts...),
	}
}

// AllPermissions returns every permission name the application checks.
func AllPermissions() []string {
	var out []string
	for _, s := range Schemas() {
		out = append(out, s.ReadPermission, s.WritePermission, s.DeletePermission)
	}
	return append(out, PermAnalyticsRead)
}

// DefaultGrants returns the role → permissions table seeded on migrate.
// Admin holds everything; judges may also delete; clerks read and write;
// analysts read and see analytics; viewers only read.
func DefaultGrants() map[string][]string {
	var read, write, del []string
	for _, s := range Schemas() {
		read = append(read, s.ReadPermission)
		write = append(write, s.WritePermission)
		del = append(del, s.DeletePermission)
	}
	concat := func(parts ...[]string) []string {
		var out []string
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	return map[string][]string{
		domain.RoleAdmin:   AllPermissions(),
		domain.RoleJudge:   concat(read, write, del, []string{PermAnalyticsRead}),
		domain.RoleClerk:   concat(read, write),
		domain.RoleAnalyst: concat(read, []string{PermAnalyticsRead}),
		domain.RoleViewer:  read,
	}
}
