package attendance

// SessionState classifies the existing record for (employee, date) before a
// clock event is applied.
type SessionState int

const (
	StateNoRecord SessionState = iota
	StateOpenSession
	StateClosedSession
	StateAbsentRecord
	StateUnrecognized
)

func (s SessionState) String() string {
	switch s {
	case StateNoRecord:
		return "no_record"
	case StateOpenSession:
		return "open_session"
	case StateClosedSession:
		return "closed_session"
	case StateAbsentRecord:
		return "absent_record"
	default:
		return "unrecognized"
	}
}

// ClockEvent is an incoming request that does not carry a clock-out.
type ClockEvent int

const (
	EventClockIn ClockEvent = iota
	EventMarkAbsent
)

func (e ClockEvent) String() string {
	if e == EventMarkAbsent {
		return "mark_absent"
	}
	return "clock_in"
}

// Action is the side effect chosen for a (state, event) pair.
type Action int

const (
	ActionRejectAmbiguous Action = iota
	ActionCreate
	ActionConvertAbsent
	ActionNoop
	ActionCreateNextSession
	ActionRejectOpenSession
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionConvertAbsent:
		return "convert_absent"
	case ActionNoop:
		return "noop"
	case ActionCreateNextSession:
		return "create_next_session"
	case ActionRejectOpenSession:
		return "reject_open_session"
	default:
		return "reject_ambiguous"
	}
}

var transitions = map[SessionState]map[ClockEvent]Action{
	StateNoRecord: {
		EventClockIn:    ActionCreate,
		EventMarkAbsent: ActionCreate,
	},
	StateAbsentRecord: {
		EventClockIn:    ActionConvertAbsent,
		EventMarkAbsent: ActionNoop,
	},
	StateOpenSession: {
		EventClockIn: ActionRejectOpenSession,
	},
	StateClosedSession: {
		EventClockIn: ActionCreateNextSession,
	},
}

// Transition looks up the action for a state and event. Pairs missing from
// the table resolve to ActionRejectAmbiguous.
func Transition(state SessionState, event ClockEvent) Action {
	if byEvent, ok := transitions[state]; ok {
		if action, ok := byEvent[event]; ok {
			return action
		}
	}
	return ActionRejectAmbiguous
}

// ClassifyRecord maps an existing record (nil when none) to its state.
// A Missed Clock-out record counts as closed: its session ended without a
// clock-out and a later clock-in starts a new session.
func ClassifyRecord(rec *Attendance) SessionState {
	if rec == nil {
		return StateNoRecord
	}
	switch {
	case rec.Status == StatusAbsent && rec.ClockIn == nil && rec.ClockOut == nil:
		return StateAbsentRecord
	case rec.Status == StatusAbsent:
		return StateUnrecognized
	case rec.IsOpen():
		return StateOpenSession
	case rec.IsClosed():
		return StateClosedSession
	case rec.Status == StatusMissedClockOut && rec.ClockIn != nil:
		return StateClosedSession
	default:
		return StateUnrecognized
	}
}
