package events

import "time"

const LeaveRequestLifecycleTopic = "hr.leave.request.lifecycle.v1"

// Leave request lifecycle event types. Each one moves days between the
// pending and used counters of one balance row.
const (
	LeaveRequestCreated   = "leave_request_created"
	LeaveRequestApproved  = "leave_request_approved"
	LeaveRequestRejected  = "leave_request_rejected"
	LeaveRequestCancelled = "leave_request_cancelled"
	LeaveRequestDeleted   = "leave_request_deleted"
)

type LeaveRequestLifecycleEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	LeaveTypeID    string    `json:"leave_type_id"`
	Year           int       `json:"year"`
	TotalDays      float64   `json:"total_days"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BalanceDelta returns how an event changes the pending and used counters.
// ok is false for unknown event types.
func (e LeaveRequestLifecycleEvent) BalanceDelta() (pending, used float64, ok bool) {
	switch e.EventType {
	case LeaveRequestCreated:
		return e.TotalDays, 0, true
	case LeaveRequestApproved:
		return -e.TotalDays, e.TotalDays, true
	case LeaveRequestRejected, LeaveRequestCancelled, LeaveRequestDeleted:
		return -e.TotalDays, 0, true
	}
	return 0, 0, false
}
