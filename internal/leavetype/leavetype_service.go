package leavetype

import (
	"context"

	leavetypeerrors "go-hrdesk/internal/leavetype/errors"
	"go-hrdesk/internal/shared/cache"
	"go-hrdesk/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "leave_types:"

func CacheKey(companyID string) string {
	return cacheKeyPrefix + companyID
}

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
}

type service struct {
	repo   Repository
	cache  *cache.ReadThrough
	logger *zap.Logger
}

func NewService(repo Repository, c *cache.ReadThrough, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	if c == nil {
		c = cache.NewReadThrough(nil, 0, l)
	}
	return &service{repo: repo, cache: c, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCompanyID
	}

	lt := &LeaveType{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		Name:        req.Name,
		Color:       defaultColor(req.Color),
		DefaultDays: req.DefaultDays,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, lt); err != nil {
		if dberr.IsUniqueViolation(err, "uq_leave_type_name") {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameExists
		}
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.cache.Invalidate(ctx, CacheKey(companyID))
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("company_id", companyID),
	)
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error) {
	return cache.Get(ctx, s.cache, CacheKey(companyID), func(ctx context.Context) ([]LeaveTypeResponse, error) {
		types, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(types), nil
	})
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = req.Name
	lt.Color = defaultColor(req.Color)
	lt.DefaultDays = req.DefaultDays
	if req.IsActive != nil {
		lt.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, lt); err != nil {
		if dberr.IsUniqueViolation(err, "uq_leave_type_name") {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameExists
		}
		s.logger.Error("update leave type persist failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.cache.Invalidate(ctx, CacheKey(companyID))
	return mapToResponse(*lt), nil
}

func defaultColor(c string) string {
	if c == "" {
		return "#3b82f6"
	}
	return c
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          lt.ID.String(),
		Name:        lt.Name,
		Color:       lt.Color,
		DefaultDays: lt.DefaultDays,
		IsActive:    lt.IsActive,
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
