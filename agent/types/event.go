package types

type EventKind string

const (
	EventInfo   EventKind = "info"
	EventPlan   EventKind = "plan"
	EventAction EventKind = "action"
	EventResult EventKind = "result"
	EventError  EventKind = "error"
	EventUsage  EventKind = "usage"
)

type Phase string

const (
	PhasePlan     Phase = "plan"
	PhaseFollowup Phase = "followup"
	PhaseRun      Phase = "run"
)

// Event is the only channel through which a run reports progress.
//
// Index is the 1-based action position for action-scoped events and 0
// otherwise. Entry is set on the event that closes an action.
type Event struct {
	Kind    EventKind
	Message string
	Index   int
	Total   int
	Plan    *Plan
	Action  Action
	Entry   *LogEntry
	Usage   *UsageSummary
	Phase   Phase
}

type EventSink func(Event)

// Discard drops every event.
func Discard(Event) {}
