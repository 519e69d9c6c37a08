package comments

import (
	"fmt"
	"strings"
)

// Event is the review verdict sent with a submission.
type Event string

const (
	EventComment        Event = "COMMENT"
	EventApprove        Event = "APPROVE"
	EventRequestChanges Event = "REQUEST_CHANGES"
)

var eventCycle = []Event{EventComment, EventApprove, EventRequestChanges}

// ParseEvent accepts the GitHub event names, case-insensitively.
func ParseEvent(s string) (Event, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	for _, e := range eventCycle {
		if string(e) == norm {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown review event %q", s)
}

func (e Event) Next() Event {
	return eventCycle[(e.index()+1)%len(eventCycle)]
}

func (e Event) Prev() Event {
	return eventCycle[(e.index()+len(eventCycle)-1)%len(eventCycle)]
}

func (e Event) index() int {
	for i, c := range eventCycle {
		if c == e {
			return i
		}
	}
	return 0
}

// Label is the human-readable name shown in the review popup.
func (e Event) Label() string {
	switch e {
	case EventApprove:
		return "Approve"
	case EventRequestChanges:
		return "Request changes"
	default:
		return "Comment"
	}
}

// Events lists the cycle order.
func Events() []Event {
	return append([]Event(nil), eventCycle...)
}
