package leavebalance

import "go-hrdesk/internal/leave/balance"

type InitializeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"omitempty,gte=1900,lte=9999"`
}

type InitializeResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Created    int    `json:"created"`
}

type SummaryResponse struct {
	EmployeeID string          `json:"employee_id"`
	Year       int             `json:"year"`
	Entries    []balance.Entry `json:"entries"`
	Totals     balance.Totals  `json:"totals"`

	// UnlimitedTypes counts entries without a balance row.
	UnlimitedTypes int `json:"unlimited_types"`
}
