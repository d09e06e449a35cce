package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-hrdesk/internal/events"
	"go-hrdesk/internal/leave/balance"
	leaveerrors "go-hrdesk/internal/leave/errors"
	"go-hrdesk/internal/leave/workday"
	"go-hrdesk/internal/leavetype"
	"go-hrdesk/internal/messaging/kafka"
	"go-hrdesk/internal/shared/contextutil"
	"go-hrdesk/internal/shared/counter"
	"go-hrdesk/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	referencePrefix = "LV"
)

// HolidayProvider is satisfied by holiday.Service.
type HolidayProvider interface {
	Holidays(ctx context.Context, companyID string, from, to time.Time) (workday.Holidays, error)
}

// BalanceReader is satisfied by leavebalance.Service.
type BalanceReader interface {
	Row(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error)
}

// Authorizer is satisfied by rbac.Service. The same enforcer guards the
// routes, so the service and the router agree on who approves.
type Authorizer interface {
	Authorize(role, resource, action string) (bool, error)
}

// LeaveTypeReader is satisfied by leavetype.Service.
type LeaveTypeReader interface {
	GetByID(ctx context.Context, companyID, id string) (leavetype.LeaveTypeResponse, error)
}

type Dependencies struct {
	Outbox     kafka.OutboxRepository
	Counter    counter.Repository
	Holidays   HolidayProvider
	Balances   BalanceReader
	LeaveTypes LeaveTypeReader
	Authorizer Authorizer
}

const (
	actionApprove = "approve"
	actionReadAll = "read_all"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Preview(ctx context.Context, actor contextutil.Actor, req CreateLeaveRequest) (PreviewResponse, error)
	Create(ctx context.Context, actor contextutil.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor contextutil.Actor, q ListLeavesQuery) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor contextutil.Actor, id, reason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error)
	Delete(ctx context.Context, actor contextutil.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	deps   Dependencies
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		deps:   deps,
		logger: l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// can asks the role enforcer; an enforcer failure denies.
func (s *service) can(ctx context.Context, actor contextutil.Actor, action string) bool {
	allowed, err := s.deps.Authorizer.Authorize(actor.Role, "leave", action)
	if err != nil {
		s.log(ctx).Error("leave authorize failed", zap.String("action", action), zap.Error(err))
		return false
	}
	return allowed
}

// checkIDs rejects malformed identifiers before they reach a uuid column.
func checkIDs(actor contextutil.Actor, id string) (uuid.UUID, error) {
	if _, err := uuid.Parse(actor.CompanyID); err != nil {
		return uuid.Nil, leaveerrors.ErrInvalidCompanyID
	}
	actorID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return uuid.Nil, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return uuid.Nil, leaveerrors.ErrLeaveNotFound
	}
	return actorID, nil
}

// quote is a validated and priced leave request.
type quote struct {
	companyID    uuid.UUID
	employeeID   uuid.UUID
	leaveTypeID  uuid.UUID
	start, end   time.Time
	businessDays int
	totalDays    float64
	balance      balance.Row
}

func (q quote) available() *float64 {
	if !q.balance.HasBalance {
		return nil
	}
	v := balance.Available(q.balance.TotalDays, q.balance.UsedDays, q.balance.PendingDays)
	return &v
}

// price runs every local check that needs no write: identifiers, dates,
// half-day rules, leave type, working days and the balance lookup.
func (s *service) price(ctx context.Context, actor contextutil.Actor, req CreateLeaveRequest) (quote, error) {
	var q quote
	var err error

	if q.companyID, err = uuid.Parse(actor.CompanyID); err != nil {
		return q, leaveerrors.ErrInvalidCompanyID
	}
	if _, err = uuid.Parse(actor.EmployeeID); err != nil {
		return q, leaveerrors.ErrInvalidActorID
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if q.employeeID, err = uuid.Parse(employeeID); err != nil {
		return q, leaveerrors.ErrInvalidEmployeeID
	}
	if employeeID != actor.EmployeeID && !s.can(ctx, actor, actionReadAll) {
		return q, leaveerrors.ErrNotOwner
	}

	if q.leaveTypeID, err = uuid.Parse(req.LeaveTypeID); err != nil {
		return q, leaveerrors.ErrInvalidLeaveTypeID
	}
	if q.start, err = parseDate(req.StartDate); err != nil {
		return q, err
	}
	if q.end, err = parseDate(req.EndDate); err != nil {
		return q, err
	}
	if q.start.After(q.end) {
		return q, leaveerrors.ErrInvalidDateRange
	}
	if q.start.Year() != q.end.Year() {
		return q, leaveerrors.ErrCrossYearRange
	}
	if req.IsHalfDay {
		if !q.start.Equal(q.end) {
			return q, leaveerrors.ErrHalfDayRange
		}
		if req.HalfDayPeriod == "" {
			return q, leaveerrors.ErrHalfDayPeriodRequired
		}
	}

	lt, err := s.deps.LeaveTypes.GetByID(ctx, actor.CompanyID, req.LeaveTypeID)
	if err != nil {
		return q, err
	}
	if !lt.IsActive {
		return q, leaveerrors.ErrLeaveTypeInactive
	}

	holidays, err := s.deps.Holidays.Holidays(ctx, actor.CompanyID, q.start, q.end)
	if err != nil {
		return q, err
	}
	q.businessDays = workday.CountBusinessDays(q.start, q.end, holidays)
	// A half day is priced at 0.5 whatever the calendar says.
	if q.businessDays == 0 && !req.IsHalfDay {
		return q, leaveerrors.ErrNoWorkingDays
	}
	q.totalDays = workday.RequestDays(q.start, q.end, req.IsHalfDay, holidays)

	q.balance, err = s.deps.Balances.Row(ctx, actor.CompanyID, employeeID, req.LeaveTypeID, q.start.Year())
	if err != nil {
		return q, err
	}
	return q, nil
}

func (s *service) Preview(ctx context.Context, actor contextutil.Actor, req CreateLeaveRequest) (PreviewResponse, error) {
	q, err := s.price(ctx, actor, req)
	if err != nil {
		return PreviewResponse{}, err
	}
	return PreviewResponse{
		StartDate:    q.start.Format(dateLayout),
		EndDate:      q.end.Format(dateLayout),
		BusinessDays: q.businessDays,
		TotalDays:    q.totalDays,
		Available:    q.available(),
		Sufficient:   balance.CanTake(q.balance, q.totalDays),
	}, nil
}

func (s *service) Create(ctx context.Context, actor contextutil.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	logger := s.log(ctx)
	logger.Debug("create leave requested",
		zap.String("company_id", actor.CompanyID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	q, err := s.price(ctx, actor, req)
	if err != nil {
		logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !balance.CanTake(q.balance, q.totalDays) {
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance.WithDetails(map[string]any{
			"requested": q.totalDays,
			"available": q.available(),
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	employeeID := q.employeeID.String()
	belongs, err := qtx.EmployeeBelongsToCompany(ctx, actor.CompanyID, employeeID)
	if err != nil {
		logger.Error("create leave employee company check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !belongs {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, actor.CompanyID, employeeID, q.start, q.end)
	if err != nil {
		logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		logger.Warn("create leave overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	reference, err := counter.NextReference(ctx, s.deps.Counter, actor.CompanyID, referencePrefix, q.start.Year())
	if err != nil {
		logger.Error("create leave generate reference failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		CompanyID:   q.companyID,
		EmployeeID:  q.employeeID,
		LeaveTypeID: q.leaveTypeID,
		Reference:   reference,
		StartDate:   q.start,
		EndDate:     q.end,
		TotalDays:   q.totalDays,
		IsHalfDay:   req.IsHalfDay,
		Reason:      req.Reason,
		Status:      StatusPending,
		CreatedBy:   uuid.MustParse(actor.EmployeeID),
	}
	if req.IsHalfDay {
		period := req.HalfDayPeriod
		l.HalfDayPeriod = &period
	}

	if err := qtx.Create(ctx, l); err != nil {
		logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.enqueue(ctx, tx, l, events.LeaveRequestCreated, actor.EmployeeID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("reference", l.Reference),
		zap.Float64("total_days", l.TotalDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actor contextutil.Actor, q ListLeavesQuery) ([]LeaveResponse, error) {
	filter := ListFilter{
		CompanyID:  actor.CompanyID,
		EmployeeID: q.EmployeeID,
		Status:     q.Status,
		Year:       q.Year,
	}
	if !s.can(ctx, actor, actionReadAll) {
		filter.EmployeeID = actor.EmployeeID
	}

	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.log(ctx).Error("get all leaves failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error) {
	if _, err := checkIDs(actor, id); err != nil {
		return LeaveResponse{}, err
	}
	l, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.EmployeeID.String() != actor.EmployeeID && !s.can(ctx, actor, actionReadAll) {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error) {
	if !s.can(ctx, actor, actionApprove) {
		return LeaveResponse{}, leaveerrors.ErrNotApprover
	}
	return s.transition(ctx, actor, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, actor contextutil.Actor, id, reason string) (LeaveResponse, error) {
	if !s.can(ctx, actor, actionApprove) {
		return LeaveResponse{}, leaveerrors.ErrNotApprover
	}
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, actor, id, StatusRejected, reason)
}

func (s *service) Cancel(ctx context.Context, actor contextutil.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, StatusCancelled, "")
}

var transitionEvents = map[string]string{
	StatusApproved:  events.LeaveRequestApproved,
	StatusRejected:  events.LeaveRequestRejected,
	StatusCancelled: events.LeaveRequestCancelled,
}

func (s *service) transition(ctx context.Context, actor contextutil.Actor, id, target, reason string) (LeaveResponse, error) {
	logger := s.log(ctx).With(
		zap.String("leave_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("target_status", target),
	)
	logger.Debug("transition leave status requested")

	actorUUID, err := checkIDs(actor, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("transition leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if target == StatusCancelled && l.EmployeeID != actorUUID {
		return LeaveResponse{}, leaveerrors.ErrNotOwner
	}
	if !CanTransition(l.Status, target) {
		logger.Warn("transition leave status invalid", zap.String("from_status", l.Status))
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	l.Status = target
	switch target {
	case StatusApproved:
		l.ApprovedBy = &actorUUID
		l.ApprovedAt = &now
	case StatusRejected:
		l.ApprovedBy = &actorUUID
		l.ApprovedAt = &now
		l.RejectionReason = &reason
	case StatusCancelled:
		l.CancelledAt = &now
	}

	affected, err := qtx.UpdateStatusIfPending(ctx, l)
	if err != nil {
		logger.Error("transition leave status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if affected == 0 {
		logger.Warn("transition leave status lost race")
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if err := s.enqueue(ctx, tx, l, transitionEvents[target], actor.EmployeeID); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("transition leave status commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	logger.Info("transition leave status success")

	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, actor contextutil.Actor, id string) error {
	logger := s.log(ctx).With(zap.String("leave_id", id))

	if _, err := checkIDs(actor, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("delete leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if l.EmployeeID.String() != actor.EmployeeID && !s.can(ctx, actor, actionApprove) {
		return leaveerrors.ErrNotOwner
	}
	if l.Status != StatusPending {
		return leaveerrors.ErrOnlyPendingDeletable
	}

	affected, err := qtx.DeleteIfPending(ctx, actor.CompanyID, id)
	if err != nil {
		logger.Error("delete leave failed", zap.Error(err))
		return err
	}
	if affected == 0 {
		return leaveerrors.ErrOnlyPendingDeletable
	}

	if err := s.enqueue(ctx, tx, l, events.LeaveRequestDeleted, actor.EmployeeID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("delete leave commit failed", zap.Error(err))
		return err
	}
	logger.Info("delete leave success")
	return nil
}

// enqueue writes a lifecycle event to the outbox inside tx.
func (s *service) enqueue(ctx context.Context, tx *sql.Tx, l *LeaveRequest, eventType, actorID string) error {
	if s.deps.Outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	eventID := uuid.NewString()
	payload, err := json.Marshal(events.LeaveRequestLifecycleEvent{
		EventID:        eventID,
		EventType:      eventType,
		RequestID:      rid,
		LeaveRequestID: l.ID.String(),
		CompanyID:      l.CompanyID.String(),
		EmployeeID:     l.EmployeeID.String(),
		LeaveTypeID:    l.LeaveTypeID.String(),
		Year:           l.StartDate.Year(),
		TotalDays:      l.TotalDays,
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.log(ctx).Error("marshal leave event failed", zap.Error(err))
		return err
	}

	if err := s.deps.Outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            eventID,
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveRequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.log(ctx).Error("leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		Reference:       l.Reference,
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		EmployeeName:    l.EmployeeName,
		LeaveTypeID:     l.LeaveTypeID.String(),
		LeaveTypeName:   l.LeaveTypeName,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		TotalDays:       l.TotalDays,
		IsHalfDay:       l.IsHalfDay,
		HalfDayPeriod:   l.HalfDayPeriod,
		Reason:          l.Reason,
		Status:          l.Status,
		CreatedBy:       l.CreatedBy.String(),
		ApprovedAt:      formatTime(l.ApprovedAt),
		RejectionReason: l.RejectionReason,
		CancelledAt:     formatTime(l.CancelledAt),
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
