package leavetype

type CreateLeaveTypeRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Color       string  `json:"color" binding:"omitempty,hexcolor"`
	DefaultDays float64 `json:"default_days" binding:"gte=0,lte=366"`
}

type UpdateLeaveTypeRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Color       string  `json:"color" binding:"omitempty,hexcolor"`
	DefaultDays float64 `json:"default_days" binding:"gte=0,lte=366"`
	IsActive    *bool   `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	DefaultDays float64 `json:"default_days"`
	IsActive    bool    `json:"is_active"`
}
