package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	employeeerrors "go-hrdesk/internal/employee/errors"
	"go-hrdesk/internal/events"
	"go-hrdesk/internal/messaging/kafka"
	"go-hrdesk/internal/role"
	"go-hrdesk/internal/shared/cache"
	"go-hrdesk/internal/shared/contextutil"
	"go-hrdesk/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EmployeeOptionsKeyPrefix = "employees:options:"
	dateLayout               = "2006-01-02"
)

func GetEmployeeOptionsKey(companyID string) string {
	return EmployeeOptionsKeyPrefix + companyID
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context, companyID string) ([]EmployeeOption, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	cache   *cache.ReadThrough
	logger  *zap.Logger
}

// NewService wires the employee directory. outbox may be nil, in which case
// no employee_created event is queued and balances must be initialized by hand.
func NewService(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outbox kafka.OutboxRepository,
	c *cache.ReadThrough,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if c == nil {
		c = cache.NewReadThrough(nil, 0, l)
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outbox,
		cache:   c,
		logger:  l,
	}
}

func normalizeRole(raw string) (string, error) {
	if raw == "" {
		return role.Employee, nil
	}
	r := role.NormalizeRole(raw)
	if !role.IsAllowedRole(r, role.Known) {
		return "", employeeerrors.ErrInvalidRole
	}
	return r, nil
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("create employee requested",
		zap.String("company_id", companyID),
		zap.String("email", req.Email),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}
	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		logger.Warn("create employee invalid hire_date", zap.String("hire_date", req.HireDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}
	empRole, err := normalizeRole(req.Role)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if req.EmployeeNumber == "" {
		nextVal, err := s.counter.GetNextValue(ctx, companyID, "employee_number")
		if err != nil {
			logger.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		req.EmployeeNumber = fmt.Sprintf("EMP-%06d", nextVal)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("create employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	empl := &Employee{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		EmployeeNumber: req.EmployeeNumber,
		FullName:       req.FullName,
		Email:          req.Email,
		Role:           empRole,
		Department:     req.Department,
		HireDate:       hireDate,
	}

	if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
		logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		eventID := uuid.NewString()
		payload, err := json.Marshal(events.EmployeeCreatedEvent{
			EventID:    eventID,
			EventType:  events.EmployeeCreatedType,
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			CompanyID:  companyID,
			HireDate:   req.HireDate,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			logger.Error("marshal event failed", zap.Error(err))
			return EmployeeResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            eventID,
			RequestID:     rid,
			AggregateType: "employee",
			AggregateID:   empl.ID.String(),
			EventType:     events.EmployeeCreatedType,
			Topic:         events.EmployeeLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("create employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.cache.Invalidate(ctx, GetEmployeeOptionsKey(companyID))
	logger.Info("create employee success",
		zap.String("employee_id", empl.ID.String()),
		zap.Bool("event_queued", s.outbox != nil),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context, companyID string) ([]EmployeeOption, error) {
	return cache.Get(ctx, s.cache, GetEmployeeOptionsKey(companyID), func(ctx context.Context) ([]EmployeeOption, error) {
		empls, err := s.repo.FindOptionsByCompany(ctx, companyID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		opts := make([]EmployeeOption, len(empls))
		for i, e := range empls {
			opts[i] = EmployeeOption{ID: e.ID.String(), FullName: e.FullName}
		}
		return opts, nil
	})
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateEmployeeRequest,
) (EmployeeResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}
	empRole, err := normalizeRole(req.Role)
	if err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl.FullName = req.FullName
	empl.Email = req.Email
	empl.Role = empRole
	empl.Department = req.Department
	empl.HireDate = hireDate

	if err := qtx.Update(ctx, empl); err != nil {
		logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.cache.Invalidate(ctx, GetEmployeeOptionsKey(companyID))
	logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	logger := contextutil.GetLogger(ctx, s.logger)

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return mapped
		}
		logger.Error("delete employee failed", zap.Error(err))
		return err
	}

	s.cache.Invalidate(ctx, GetEmployeeOptionsKey(companyID))
	logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             empl.ID.String(),
		CompanyID:      empl.CompanyID.String(),
		EmployeeNumber: empl.EmployeeNumber,
		FullName:       empl.FullName,
		Email:          empl.Email,
		Role:           empl.Role,
		Department:     empl.Department,
		HireDate:       empl.HireDate.Format(dateLayout),
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
