package leavebalance

import (
	"context"
	"database/sql"

	"go-hrdesk/internal/events"
	"go-hrdesk/internal/leave/balance"
	leavebalanceerrors "go-hrdesk/internal/leavebalance/errors"
	"go-hrdesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConsumerName identifies this ledger in processed_events.
const ConsumerName = "leavebalance"

//go:generate mockgen -source=leavebalance_service.go -destination=mock/leavebalance_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, companyID, employeeID string, year int) (SummaryResponse, error)
	Row(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error)
	Initialize(ctx context.Context, companyID, employeeID string, year int) (InitializeResponse, error)
	ApplyLifecycle(ctx context.Context, event events.LeaveRequestLifecycleEvent) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func validYear(year int) bool {
	return year >= 1900 && year <= 9999
}

func (s *service) Summary(ctx context.Context, companyID, employeeID string, year int) (SummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return SummaryResponse{}, leavebalanceerrors.ErrInvalidEmployeeID
	}
	if !validYear(year) {
		return SummaryResponse{}, leavebalanceerrors.ErrInvalidYear
	}

	rows, err := s.repo.ListForEmployeeYear(ctx, companyID, employeeID, year)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list leave balances failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return SummaryResponse{}, err
	}

	return Aggregated(employeeID, year, rows), nil
}

func Aggregated(employeeID string, year int, rows []balance.Row) SummaryResponse {
	agg := balance.Aggregate(rows)
	resp := SummaryResponse{
		EmployeeID: employeeID,
		Year:       year,
		Entries:    agg.Entries,
		Totals:     agg.Totals,
	}
	for _, e := range agg.Entries {
		if e.Unlimited() {
			resp.UnlimitedTypes++
		}
	}
	return resp
}

func (s *service) Row(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error) {
	return s.repo.FindRow(ctx, companyID, employeeID, leaveTypeID, year)
}

// Initialize creates one balance row per active leave type that grants
// days. Rows that already exist are left untouched, so it is safe to call
// again.
func (s *service) Initialize(ctx context.Context, companyID, employeeID string, year int) (InitializeResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return InitializeResponse{}, leavebalanceerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return InitializeResponse{}, leavebalanceerrors.ErrInvalidEmployeeID
	}
	if !validYear(year) {
		return InitializeResponse{}, leavebalanceerrors.ErrInvalidYear
	}

	logger := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("initialize balances begin tx failed", zap.Error(err))
		return InitializeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	entitlements, err := qtx.ListEntitlements(ctx, companyID)
	if err != nil {
		logger.Error("initialize balances list entitlements failed", zap.Error(err))
		return InitializeResponse{}, err
	}

	created := 0
	for _, e := range entitlements {
		leaveTypeUUID, err := uuid.Parse(e.LeaveTypeID)
		if err != nil {
			return InitializeResponse{}, err
		}
		inserted, err := qtx.InsertIfAbsent(ctx, LeaveBalance{
			ID:          uuid.New(),
			CompanyID:   companyUUID,
			EmployeeID:  employeeUUID,
			LeaveTypeID: leaveTypeUUID,
			Year:        year,
			TotalDays:   e.DefaultDays,
		})
		if err != nil {
			logger.Error("initialize balances insert failed",
				zap.String("leave_type_id", e.LeaveTypeID),
				zap.Error(err),
			)
			return InitializeResponse{}, err
		}
		if inserted {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("initialize balances commit failed", zap.Error(err))
		return InitializeResponse{}, err
	}

	logger.Info("initialize balances success",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", created),
	)
	return InitializeResponse{EmployeeID: employeeID, Year: year, Created: created}, nil
}

// validEvent rejects payloads the ledger can never apply, so the consumer
// commits them instead of retrying a uuid cast error forever.
func validEvent(event events.LeaveRequestLifecycleEvent) bool {
	if event.EventID == "" || !validYear(event.Year) {
		return false
	}
	for _, id := range []string{event.CompanyID, event.EmployeeID, event.LeaveTypeID} {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// ApplyLifecycle moves days between the pending and used counters. The event
// id is recorded in the same transaction, so a redelivered event is a no-op.
// Requests on leave types without a balance row have no limit and leave no
// trace on the ledger.
func (s *service) ApplyLifecycle(ctx context.Context, event events.LeaveRequestLifecycleEvent) error {
	if !validEvent(event) {
		return leavebalanceerrors.ErrInvalidEvent
	}

	logger := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("leave_request_id", event.LeaveRequestID),
	)

	pendingDelta, usedDelta, ok := event.BalanceDelta()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("apply lifecycle begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	first, err := qtx.MarkProcessed(ctx, event.EventID, ConsumerName)
	if err != nil {
		logger.Error("apply lifecycle mark processed failed", zap.Error(err))
		return err
	}
	if !first {
		logger.Info("apply lifecycle skipped duplicate event")
		return tx.Commit()
	}

	if !ok {
		logger.Warn("apply lifecycle ignored unknown event type")
		return tx.Commit()
	}

	affected, err := qtx.AdjustCounters(ctx,
		event.CompanyID, event.EmployeeID, event.LeaveTypeID, event.Year,
		pendingDelta, usedDelta,
	)
	if err != nil {
		logger.Error("apply lifecycle adjust counters failed", zap.Error(err))
		return err
	}
	if affected == 0 {
		logger.Debug("apply lifecycle no balance row, leave type has no limit")
	}

	if err := tx.Commit(); err != nil {
		logger.Error("apply lifecycle commit failed", zap.Error(err))
		return err
	}

	logger.Info("apply lifecycle success",
		zap.Float64("pending_delta", pendingDelta),
		zap.Float64("used_delta", usedDelta),
	)
	return nil
}
