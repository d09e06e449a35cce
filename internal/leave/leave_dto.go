package leave

type CreateLeaveRequest struct {
	EmployeeID    string `json:"employee_id" binding:"omitempty,uuid"`
	LeaveTypeID   string `json:"leave_type_id" binding:"required,uuid"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	IsHalfDay     bool   `json:"is_half_day"`
	HalfDayPeriod string `json:"half_day_period" binding:"omitempty,oneof=morning afternoon"`
	Reason        string `json:"reason" binding:"max=1000"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type ListLeavesQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Year       int    `form:"year" binding:"omitempty,gte=1900,lte=9999"`
}

type PreviewResponse struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	BusinessDays int      `json:"business_days"`
	TotalDays    float64  `json:"total_days"`
	Available    *float64 `json:"available"`
	Sufficient   bool     `json:"sufficient"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	Reference       string  `json:"reference"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	LeaveTypeID     string  `json:"leave_type_id"`
	LeaveTypeName   string  `json:"leave_type_name,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       float64 `json:"total_days"`
	IsHalfDay       bool    `json:"is_half_day"`
	HalfDayPeriod   *string `json:"half_day_period,omitempty"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
