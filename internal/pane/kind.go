package pane

import "fmt"

// Slot identifies a pane position. Slots are stable for the session.
type Slot int

const (
	SlotFirst Slot = iota
	SlotSecond
)

func (s Slot) String() string {
	switch s {
	case SlotFirst:
		return "first"
	case SlotSecond:
		return "second"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == SlotFirst {
		return SlotSecond
	}
	return SlotFirst
}

// Kind describes how a pane's command is run.
type Kind int

const (
	// KindRefreshing reruns a one-shot command on an interval.
	KindRefreshing Kind = iota
	// KindInteractive runs a long-lived program that receives keyboard input.
	KindInteractive
)

func (k Kind) String() string {
	switch k {
	case KindRefreshing:
		return "refreshing"
	case KindInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
