package device

// State is the device lifecycle state.
type State uint8

const (
	Stopped State = iota
	Idle
	Advertising
	Connected
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Idle:
		return "idle"
	case Advertising:
		return "advertising"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Event drives a transition.
type Event uint8

const (
	EventStart Event = iota
	EventStop
	EventStartAdvertising
	EventStopAdvertising
	EventPeerConnected
	EventPeerDisconnected
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventStartAdvertising:
		return "start-advertising"
	case EventStopAdvertising:
		return "stop-advertising"
	case EventPeerConnected:
		return "peer-connected"
	case EventPeerDisconnected:
		return "peer-disconnected"
	default:
		return "unknown"
	}
}

// Transition describes one state change delivered to subscribers.
type Transition struct {
	From  State
	To    State
	Event Event
}

var allStates = []State{Stopped, Idle, Advertising, Connected}

// transitions is the state × event table. A missing entry rejects the event.
// Stop, PeerConnected and PeerDisconnected are accepted from every state; a target
// equal to the current state is a no-op.
var transitions = func() map[State]map[Event]State {
	t := map[State]map[Event]State{
		Stopped:     {EventStart: Idle},
		Idle:        {EventStartAdvertising: Advertising},
		Advertising: {EventStopAdvertising: Idle},
		Connected:   {},
	}
	for _, s := range allStates {
		t[s][EventStop] = Stopped
		t[s][EventPeerConnected] = Connected
		t[s][EventPeerDisconnected] = Idle
	}
	return t
}()

// Next looks up the target of event from state. ok is false when the table rejects it.
func Next(from State, event Event) (to State, ok bool) {
	to, ok = transitions[from][event]
	return to, ok
}
