package employee

type CreateEmployeeRequest struct {
	EmployeeNumber string `json:"employee_number" binding:"omitempty,max=50"`
	FullName       string `json:"full_name" binding:"required,max=200"`
	Email          string `json:"email" binding:"required,email"`
	Role           string `json:"role" binding:"omitempty,max=50"`
	Department     string `json:"department" binding:"omitempty,max=100"`
	HireDate       string `json:"hire_date" binding:"required,datetime=2006-01-02"`
}

type UpdateEmployeeRequest struct {
	FullName   string `json:"full_name" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"omitempty,max=50"`
	Department string `json:"department" binding:"omitempty,max=100"`
	HireDate   string `json:"hire_date" binding:"required,datetime=2006-01-02"`
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	CompanyID      string `json:"company_id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Department     string `json:"department,omitempty"`
	HireDate       string `json:"hire_date"`
}

// EmployeeOption feeds employee pickers, e.g. the approver's leave filter.
type EmployeeOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
