package leavebalanceerrors

import (
	"net/http"

	"go-hrdesk/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID  = apperror.New(apperror.CodeInvalidInput, "invalid company id", http.StatusBadRequest)
	ErrInvalidEmployeeID = apperror.New(apperror.CodeInvalidInput, "invalid employee id", http.StatusBadRequest)
	ErrInvalidYear       = apperror.New(apperror.CodeInvalidInput, "year is invalid", http.StatusBadRequest)
	ErrInvalidEvent      = apperror.New(apperror.CodeInvalidInput, "lifecycle event is malformed", http.StatusBadRequest)
)
