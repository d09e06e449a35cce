package leave

import (
	"time"

	"github.com/google/uuid"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`
	Reference   string    `gorm:"type:varchar(30);not null"`

	StartDate     time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate       time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	TotalDays     float64   `gorm:"type:numeric(5,1);not null"`
	IsHalfDay     bool      `gorm:"not null;default:false"`
	HalfDayPeriod *string   `gorm:"type:varchar(10)"`
	Reason        string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_company_status"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	EmployeeName  string `gorm:"->;-:migration"`
	LeaveTypeName string `gorm:"->;-:migration"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }
