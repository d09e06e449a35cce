package leavebalance

import (
	"time"

	"github.com/google/uuid"
)

type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance"`
	Year        int       `gorm:"not null;uniqueIndex:uq_leave_balance"`
	TotalDays   float64   `gorm:"type:numeric(5,1);not null;default:0"`
	UsedDays    float64   `gorm:"type:numeric(5,1);not null;default:0"`
	PendingDays float64   `gorm:"type:numeric(5,1);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LeaveBalance) TableName() string { return "leave_balances" }

// Entitlement is an active leave type that grants a yearly allowance.
type Entitlement struct {
	LeaveTypeID string
	DefaultDays float64
}
