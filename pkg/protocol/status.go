package protocol

import "fmt"

// Status is the delivery state of a single message. It only moves forward:
// sent -> delivered -> seen.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusSeen      Status = "seen"
)

// Rank orders statuses; unknown values rank below sent.
func Rank(s Status) int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusSeen:
		return 3
	default:
		return 0
	}
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusSent, StatusDelivered, StatusSeen:
		return st, nil
	default:
		return "", fmt.Errorf("unknown message status %q", s)
	}
}

// Advance returns the more advanced of current and next and reports whether
// it differs from current. A seen acknowledgement arriving before the
// delivered one lands on seen, a late delivered never pulls seen back.
func Advance(current, next Status) (Status, bool) {
	if Rank(next) > Rank(current) {
		return next, true
	}
	if Rank(current) == 0 {
		return StatusSent, current != StatusSent
	}
	return current, false
}

// StatusText is the label shown next to the sender's own messages.
func StatusText(s Status) string {
	switch s {
	case StatusSeen:
		return "Seen"
	case StatusDelivered:
		return "Delivered"
	default:
		return "Sent"
	}
}
