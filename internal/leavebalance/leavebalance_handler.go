package leavebalance

import (
	"net/http"
	"strconv"
	"time"

	leavebalanceerrors "go-hrdesk/internal/leavebalance/errors"
	"go-hrdesk/internal/shared/apperror"
	"go-hrdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavebalance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("leave balance request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func yearParam(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	y, err := strconv.Atoi(raw)
	return y, err == nil
}

func (h *Handler) Me(c *gin.Context) {
	h.summary(c, c.GetString("employee_id"))
}

func (h *Handler) ByEmployee(c *gin.Context) {
	h.summary(c, c.Param("employee_id"))
}

func (h *Handler) summary(c *gin.Context, employeeID string) {
	year, ok := yearParam(c)
	if !ok {
		h.writeServiceError(c, leavebalanceerrors.ErrInvalidYear)
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), c.GetString("company_id"), employeeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Initialize(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	resp, err := h.service.Initialize(c.Request.Context(), c.GetString("company_id"), req.EmployeeID, req.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
