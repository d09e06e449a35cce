package leave

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"

	HalfDayMorning   = "morning"
	HalfDayAfternoon = "afternoon"
)

// CanTransition reports whether a request in status from may move to to.
// Only pending requests move, and only to a final status.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
