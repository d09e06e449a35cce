package holidayerrors

import (
	"net/http"

	"go-hrdesk/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(apperror.CodeInvalidInput, "invalid company id", http.StatusBadRequest)
	ErrInvalidDate      = apperror.New(apperror.CodeInvalidInput, "date must use the YYYY-MM-DD format", http.StatusBadRequest)
	ErrInvalidYear      = apperror.New(apperror.CodeInvalidInput, "year is invalid", http.StatusBadRequest)
	ErrHolidayNotFound  = apperror.New(apperror.CodeNotFound, "holiday not found", http.StatusNotFound)
	ErrHolidayExists    = apperror.New(apperror.CodeConflict, "a holiday already exists on this date", http.StatusConflict)
)
