package entity

// Action is the gate's verdict for one event.
type Action string

const (
	// ActionApply means the event is a new transition.
	ActionApply Action = "apply"
	// ActionNoop means the event is a replay or stale.
	ActionNoop Action = "noop"
	// ActionSkip means there is no mirror record to transition yet.
	ActionSkip Action = "skip"
	// ActionIgnore means the event type is not handled.
	ActionIgnore Action = "ignore"
)

// Decision is the gate's verdict plus a short reason for the log and response.
type Decision struct {
	Action Action
	Reason string
}

// Outcome summarises one processed webhook for the HTTP response.
type Outcome struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
