package permission

// Tooltips shown on disabled affordances.
const (
	LoadingMessage       = "Checking permissions"
	DefaultDeniedMessage = "You do not have permission to perform this action"
)

// GuardOptions configure how a denied action is presented.
type GuardOptions struct {
	HideWhenDenied bool
	DeniedMessage  string
}

// Affordance describes how a protected action should be rendered.
type Affordance struct {
	Decision Decision `json:"decision"`
	Visible  bool     `json:"visible"`
	Enabled  bool     `json:"enabled"`
	Tooltip  string   `json:"tooltip,omitempty"`
}

// Guard maps a decision to an affordance. While loading the action shows
// disabled, never optimistically enabled or hidden.
func Guard(d Decision, opts GuardOptions) Affordance {
	switch d {
	case Granted:
		return Affordance{Decision: d, Visible: true, Enabled: true}
	case Denied:
		if opts.HideWhenDenied {
			return Affordance{Decision: d}
		}
		msg := opts.DeniedMessage
		if msg == "" {
			msg = DefaultDeniedMessage
		}
		return Affordance{Decision: d, Visible: true, Tooltip: msg}
	default:
		return Affordance{Decision: Indeterminate, Visible: true, Tooltip: LoadingMessage}
	}
}
