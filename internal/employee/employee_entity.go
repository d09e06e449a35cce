package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_employee_number,priority:1"`
	EmployeeNumber string    `gorm:"uniqueIndex:uq_employee_number,priority:2"`
	FullName       string
	Email          string `gorm:"uniqueIndex:uq_employee_email"`
	Role           string
	Department     string
	HireDate       time.Time `gorm:"type:date"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}
