package model

// Appointment status lifecycle. An appointment is created in pending and
// only ever changes status through the transition table below; canceled,
// done and no_show are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDone      = "done"
	StatusNoShow    = "no_show"
	StatusCanceled  = "canceled"
)

// ActiveStatuses are the statuses that occupy a staff member's time.
// Only these participate in conflict detection and reminder sweeps.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// legalTransitions is the single authority on status changes. The
// pending->done edge is the walk-in fast path.
var legalTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusDone, StatusCanceled},
	StatusConfirmed: {StatusDone, StatusNoShow, StatusCanceled},
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusDone, StatusNoShow, StatusCanceled:
		return true
	}
	return false
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusDone, StatusNoShow, StatusCanceled:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
