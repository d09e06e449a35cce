package employee

import (
	employeeerrors "go-hrdesk/internal/employee/errors"
	"go-hrdesk/internal/shared/dberr"
)

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsNotFound(err):
		return employeeerrors.ErrEmployeeNotFound
	case dberr.IsUniqueViolation(err, "uq_employee_number"):
		return employeeerrors.ErrEmployeeNumberAlreadyExists
	case dberr.IsUniqueViolation(err, "uq_employee_email"):
		return employeeerrors.ErrEmployeeAlreadyExists
	}
	return err
}
