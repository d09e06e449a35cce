package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-hrdesk/internal/events"
	"go-hrdesk/internal/leave"
	"go-hrdesk/internal/leave/balance"
	leaveerrors "go-hrdesk/internal/leave/errors"
	"go-hrdesk/internal/leave/workday"
	"go-hrdesk/internal/leavetype"
	"go-hrdesk/internal/messaging/kafka"
	"go-hrdesk/internal/messaging/kafka/mock"
	"go-hrdesk/internal/rbac"
	"go-hrdesk/internal/rbac/infra"
	"go-hrdesk/internal/shared/apperror"
	"go-hrdesk/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	createFn                func(ctx context.Context, l *leave.LeaveRequest) error
	findAllFn               func(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error)
	findByIDAndCompanyFn    func(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error)
	updateStatusIfPendingFn func(ctx context.Context, l *leave.LeaveRequest) (int64, error)
	deleteIfPendingFn       func(ctx context.Context, companyID, id string) (int64, error)
	employeeBelongsFn       func(ctx context.Context, companyID, employeeID string) (bool, error)
	hasOverlappingPeriodFn  func(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) UpdateStatusIfPending(ctx context.Context, l *leave.LeaveRequest) (int64, error) {
	if f.updateStatusIfPendingFn != nil {
		return f.updateStatusIfPendingFn(ctx, l)
	}
	return 1, nil
}

func (f *fakeLeaveRepository) DeleteIfPending(ctx context.Context, companyID, id string) (int64, error) {
	if f.deleteIfPendingFn != nil {
		return f.deleteIfPendingFn(ctx, companyID, id)
	}
	return 1, nil
}

func (f *fakeLeaveRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsFn != nil {
		return f.employeeBelongsFn(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeLeaveRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, employeeID, startDate, endDate)
	}
	return false, nil
}

type fakeHolidays struct {
	dates []time.Time
}

func (f *fakeHolidays) Holidays(ctx context.Context, companyID string, from, to time.Time) (workday.Holidays, error) {
	return workday.NewHolidays(f.dates...), nil
}

type fakeBalances struct {
	row balance.Row
	err error
}

func (f *fakeBalances) Row(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error) {
	return f.row, f.err
}

type fakeLeaveTypes struct {
	inactive bool
	err      error
}

func (f *fakeLeaveTypes) GetByID(ctx context.Context, companyID, id string) (leavetype.LeaveTypeResponse, error) {
	if f.err != nil {
		return leavetype.LeaveTypeResponse{}, f.err
	}
	return leavetype.LeaveTypeResponse{ID: id, Name: "Annual", IsActive: !f.inactive}, nil
}

type fakeCounter struct{}

func (fakeCounter) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	return 42, nil
}

type leaveServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	repo     *fakeLeaveRepository
	outbox   *mock.MockOutboxRepository
	holidays *fakeHolidays
	balances *fakeBalances
	types    *fakeLeaveTypes
	service  leave.Service
}

func setupLeaveServiceTest(t *testing.T, approverRoles ...string) *leaveServiceDeps {
	t.Helper()

	enforcer, err := infra.NewEnforcer(approverRoles...)
	assert.NoError(t, err)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	d := &leaveServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     &fakeLeaveRepository{},
		outbox:   mock.NewMockOutboxRepository(ctrl),
		holidays: &fakeHolidays{},
		balances: &fakeBalances{row: balance.Row{HasBalance: true, TotalDays: 12, UsedDays: 2, PendingDays: 1}},
		types:    &fakeLeaveTypes{},
	}
	d.service = leave.NewService(db, d.repo, leave.Dependencies{
		Outbox:     d.outbox,
		Counter:    fakeCounter{},
		Holidays:   d.holidays,
		Balances:   d.balances,
		LeaveTypes: d.types,
		Authorizer: rbac.NewService(enforcer),
	})
	return d
}

// expectOutbox asserts one lifecycle event of eventType is written and
// returns a pointer filled with its decoded payload.
func (d *leaveServiceDeps) expectOutbox(t *testing.T, eventType string) *events.LeaveRequestLifecycleEvent {
	t.Helper()
	got := &events.LeaveRequestLifecycleEvent{}
	d.outbox.EXPECT().WithTx(gomock.Any()).Return(d.outbox)
	d.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
		assert.Equal(t, events.LeaveRequestLifecycleTopic, e.Topic)
		assert.Equal(t, eventType, e.EventType)
		assert.Equal(t, "leave_request", e.AggregateType)
		assert.NoError(t, json.Unmarshal(e.Payload, got))
		assert.Equal(t, e.ID, got.EventID)
		return nil
	})
	return got
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func newActor(roleName string) contextutil.Actor {
	return contextutil.Actor{
		UserID:     uuid.NewString(),
		EmployeeID: uuid.NewString(),
		CompanyID:  uuid.NewString(),
		Role:       roleName,
	}
}

func newRequest(startDate, endDate string) leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		LeaveTypeID: uuid.NewString(),
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      "Family event",
	}
}

func pendingLeave(actor contextutil.Actor, employeeID string) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(actor.CompanyID),
		EmployeeID:  uuid.MustParse(employeeID),
		LeaveTypeID: uuid.New(),
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		TotalDays:   3,
		Status:      leave.StatusPending,
		CreatedBy:   uuid.MustParse(employeeID),
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success counts business days and writes outbox event", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		req := newRequest("2026-03-02", "2026-03-04")

		expectTx(d.sqlMock, true)
		d.repo.hasOverlappingPeriodFn = func(ctx context.Context, cid, eid string, start, end time.Time) (bool, error) {
			assert.Equal(t, actor.CompanyID, cid)
			assert.Equal(t, actor.EmployeeID, eid)
			assert.Equal(t, "2026-03-02", start.Format("2006-01-02"))
			assert.Equal(t, "2026-03-04", end.Format("2006-01-02"))
			return false, nil
		}
		var created *leave.LeaveRequest
		d.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			created = l
			return nil
		}
		evt := d.expectOutbox(t, events.LeaveRequestCreated)

		resp, err := d.service.Create(ctx, actor, req)

		assert.NoError(t, err)
		assert.Equal(t, 3.0, resp.TotalDays)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, "LV-2026-000042", resp.Reference)
		assert.Equal(t, actor.EmployeeID, resp.EmployeeID)
		assert.Equal(t, actor.EmployeeID, resp.CreatedBy)
		assert.NotNil(t, created)
		assert.Nil(t, created.HalfDayPeriod)
		assert.Equal(t, 3.0, evt.TotalDays)
		assert.Equal(t, 2026, evt.Year)
		assert.Equal(t, req.LeaveTypeID, evt.LeaveTypeID)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("holidays are not counted", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.holidays.dates = []time.Time{time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}

		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestCreated)

		resp, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.NoError(t, err)
		assert.Equal(t, 2.0, resp.TotalDays)
	})

	t.Run("half day counts as half", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		req := newRequest("2026-03-02", "2026-03-02")
		req.IsHalfDay = true
		req.HalfDayPeriod = leave.HalfDayMorning

		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestCreated)

		resp, err := d.service.Create(ctx, newActor("Employee"), req)

		assert.NoError(t, err)
		assert.Equal(t, 0.5, resp.TotalDays)
		assert.True(t, resp.IsHalfDay)
		if assert.NotNil(t, resp.HalfDayPeriod) {
			assert.Equal(t, leave.HalfDayMorning, *resp.HalfDayPeriod)
		}
	})

	t.Run("no balance row means no limit", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.balances.row = balance.Row{HasBalance: false}

		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestCreated)

		_, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-13"))

		assert.NoError(t, err)
	})

	t.Run("hr may file for another employee", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		req := newRequest("2026-03-02", "2026-03-02")
		req.EmployeeID = uuid.NewString()

		expectTx(d.sqlMock, true)
		evt := d.expectOutbox(t, events.LeaveRequestCreated)

		resp, err := d.service.Create(ctx, newActor("hr"), req)

		assert.NoError(t, err)
		assert.Equal(t, req.EmployeeID, resp.EmployeeID)
		assert.Equal(t, req.EmployeeID, evt.EmployeeID)
	})

	validation := []struct {
		name    string
		role    string
		mutate  func(d *leaveServiceDeps, req *leave.CreateLeaveRequest)
		wantErr error
	}{
		{
			name: "bad date format",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.StartDate = "02/03/2026"
			},
			wantErr: leaveerrors.ErrInvalidDateFormat,
		},
		{
			name: "start after end",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.StartDate, req.EndDate = "2026-03-05", "2026-03-02"
			},
			wantErr: leaveerrors.ErrInvalidDateRange,
		},
		{
			name: "spans two years",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.StartDate, req.EndDate = "2026-12-30", "2027-01-02"
			},
			wantErr: leaveerrors.ErrCrossYearRange,
		},
		{
			name: "half day over several dates",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.IsHalfDay = true
				req.HalfDayPeriod = leave.HalfDayAfternoon
			},
			wantErr: leaveerrors.ErrHalfDayRange,
		},
		{
			name: "half day without period",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.EndDate = req.StartDate
				req.IsHalfDay = true
			},
			wantErr: leaveerrors.ErrHalfDayPeriodRequired,
		},
		{
			name: "weekend only",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.StartDate, req.EndDate = "2026-03-07", "2026-03-08"
			},
			wantErr: leaveerrors.ErrNoWorkingDays,
		},
		{
			name: "inactive leave type",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				d.types.inactive = true
			},
			wantErr: leaveerrors.ErrLeaveTypeInactive,
		},
		{
			name: "insufficient balance",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				d.balances.row = balance.Row{HasBalance: true, TotalDays: 4, UsedDays: 1, PendingDays: 1}
			},
			wantErr: leaveerrors.ErrInsufficientBalance,
		},
		{
			name: "employee filing for someone else",
			mutate: func(d *leaveServiceDeps, req *leave.CreateLeaveRequest) {
				req.EmployeeID = uuid.NewString()
			},
			wantErr: leaveerrors.ErrNotOwner,
		},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLeaveServiceTest(t)
			req := newRequest("2026-03-02", "2026-03-04")
			tt.mutate(d, &req)

			_, err := d.service.Create(ctx, newActor("Employee"), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, d.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("insufficient balance carries details", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.balances.row = balance.Row{HasBalance: true, TotalDays: 2}

		_, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeInsufficientBalance, appErr.Code)
		assert.NotNil(t, appErr.Details)
	})

	t.Run("overlap rolls back", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		expectTx(d.sqlMock, false)
		d.repo.hasOverlappingPeriodFn = func(ctx context.Context, cid, eid string, start, end time.Time) (bool, error) {
			return true, nil
		}

		_, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee outside company rolls back", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		expectTx(d.sqlMock, false)
		d.repo.employeeBelongsFn = func(ctx context.Context, cid, eid string) (bool, error) {
			return false, nil
		}

		_, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotInCompany)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		expectTx(d.sqlMock, false)
		d.outbox.EXPECT().WithTx(gomock.Any()).Return(d.outbox)
		d.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		_, err := d.service.Create(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.EqualError(t, err, "insert failed")
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("reports availability without writing", func(t *testing.T) {
		d := setupLeaveServiceTest(t)

		resp, err := d.service.Preview(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-08"))

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.BusinessDays)
		assert.Equal(t, 5.0, resp.TotalDays)
		if assert.NotNil(t, resp.Available) {
			assert.Equal(t, 9.0, *resp.Available)
		}
		assert.True(t, resp.Sufficient)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient is not an error", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.balances.row = balance.Row{HasBalance: true, TotalDays: 1}

		resp, err := d.service.Preview(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.NoError(t, err)
		assert.False(t, resp.Sufficient)
	})

	t.Run("unlimited leave type has nil available", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.balances.row = balance.Row{}

		resp, err := d.service.Preview(ctx, newActor("Employee"), newRequest("2026-03-02", "2026-03-04"))

		assert.NoError(t, err)
		assert.Nil(t, resp.Available)
		assert.True(t, resp.Sufficient)
	})

	t.Run("half day on a weekend still costs half a day", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		req := newRequest("2026-03-07", "2026-03-07")
		req.IsHalfDay = true
		req.HalfDayPeriod = leave.HalfDayMorning

		resp, err := d.service.Preview(ctx, newActor("Employee"), req)

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.BusinessDays)
		assert.Equal(t, 0.5, resp.TotalDays)
		assert.True(t, resp.Sufficient)
	})

	t.Run("half day on a holiday still costs half a day", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.holidays.dates = []time.Time{time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}
		req := newRequest("2026-03-03", "2026-03-03")
		req.IsHalfDay = true
		req.HalfDayPeriod = leave.HalfDayAfternoon

		resp, err := d.service.Preview(ctx, newActor("Employee"), req)

		assert.NoError(t, err)
		assert.Equal(t, 0.5, resp.TotalDays)
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("employee only sees own requests", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		d.repo.findAllFn = func(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
			assert.Equal(t, actor.CompanyID, filter.CompanyID)
			assert.Equal(t, actor.EmployeeID, filter.EmployeeID)
			assert.Equal(t, leave.StatusPending, filter.Status)
			return []leave.LeaveRequest{*pendingLeave(actor, actor.EmployeeID)}, nil
		}

		got, err := d.service.GetAll(ctx, actor, leave.ListLeavesQuery{EmployeeID: uuid.NewString(), Status: leave.StatusPending})

		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("manager may filter by employee", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		target := uuid.NewString()
		d.repo.findAllFn = func(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
			assert.Equal(t, target, filter.EmployeeID)
			assert.Equal(t, 2026, filter.Year)
			return nil, nil
		}

		got, err := d.service.GetAll(ctx, newActor("manager"), leave.ListLeavesQuery{EmployeeID: target, Year: 2026})

		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("repository error", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		d.repo.findAllFn = func(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
			return nil, errors.New("db down")
		}

		_, err := d.service.GetAll(ctx, newActor("Admin"), leave.ListLeavesQuery{})

		assert.Error(t, err)
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can read", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		l := pendingLeave(actor, actor.EmployeeID)
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}

		got, err := d.service.GetByID(ctx, actor, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, l.ID.String(), got.ID)
		assert.Equal(t, "2026-03-02", got.StartDate)
	})

	t.Run("someone else's request is hidden", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return pendingLeave(actor, uuid.NewString()), nil
		}

		_, err := d.service.GetByID(ctx, actor, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		d := setupLeaveServiceTest(t)

		_, err := d.service.GetByID(ctx, newActor("Admin"), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Manager")
		l := pendingLeave(actor, uuid.NewString())
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		d.repo.updateStatusIfPendingFn = func(ctx context.Context, got *leave.LeaveRequest) (int64, error) {
			assert.Equal(t, leave.StatusApproved, got.Status)
			assert.NotNil(t, got.ApprovedAt)
			return 1, nil
		}
		expectTx(d.sqlMock, true)
		evt := d.expectOutbox(t, events.LeaveRequestApproved)

		resp, err := d.service.Approve(ctx, actor, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		if assert.NotNil(t, resp.ApprovedBy) {
			assert.Equal(t, actor.EmployeeID, *resp.ApprovedBy)
		}
		assert.Equal(t, 3.0, evt.TotalDays)
		assert.Equal(t, actor.EmployeeID, evt.ActorID)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee is not an approver", func(t *testing.T) {
		d := setupLeaveServiceTest(t)

		_, err := d.service.Approve(ctx, newActor("Employee"), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrNotApprover)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("approver roles follow the enforcer configuration", func(t *testing.T) {
		d := setupLeaveServiceTest(t, "Hr")
		actor := newActor("hr")
		l := pendingLeave(actor, uuid.NewString())
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestApproved)

		resp, err := d.service.Approve(ctx, actor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)

		_, err = d.service.Approve(ctx, newActor("Manager"), uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrNotApprover)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed id is rejected before the database", func(t *testing.T) {
		d := setupLeaveServiceTest(t)

		_, err := d.service.Approve(ctx, newActor("Manager"), "not-a-uuid")

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("already approved", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Admin")
		l := pendingLeave(actor, uuid.NewString())
		l.Status = leave.StatusApproved
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, false)

		_, err := d.service.Approve(ctx, actor, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent decision wins", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Admin")
		l := pendingLeave(actor, uuid.NewString())
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		d.repo.updateStatusIfPendingFn = func(ctx context.Context, got *leave.LeaveRequest) (int64, error) {
			return 0, nil
		}
		expectTx(d.sqlMock, false)

		_, err := d.service.Approve(ctx, actor, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		expectTx(d.sqlMock, false)

		_, err := d.service.Approve(ctx, newActor("Admin"), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores reason", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Manager")
		l := pendingLeave(actor, uuid.NewString())
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestRejected)

		resp, err := d.service.Reject(ctx, actor, l.ID.String(), "Peak season")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		if assert.NotNil(t, resp.RejectionReason) {
			assert.Equal(t, "Peak season", *resp.RejectionReason)
		}
	})

	t.Run("reason required", func(t *testing.T) {
		d := setupLeaveServiceTest(t)

		_, err := d.service.Reject(ctx, newActor("Manager"), uuid.NewString(), "")

		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels pending request", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		l := pendingLeave(actor, actor.EmployeeID)
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, true)
		d.expectOutbox(t, events.LeaveRequestCancelled)

		resp, err := d.service.Cancel(ctx, actor, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("manager cannot cancel someone else's request", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Manager")
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return pendingLeave(actor, uuid.NewString()), nil
		}
		expectTx(d.sqlMock, false)

		_, err := d.service.Cancel(ctx, actor, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})

	t.Run("rejected request cannot be cancelled", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		l := pendingLeave(actor, actor.EmployeeID)
		l.Status = leave.StatusRejected
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, false)

		_, err := d.service.Cancel(ctx, actor, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	})
}

func TestLeaveService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes pending request", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		l := pendingLeave(actor, actor.EmployeeID)
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, true)
		evt := d.expectOutbox(t, events.LeaveRequestDeleted)

		err := d.service.Delete(ctx, actor, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, l.ID.String(), evt.LeaveRequestID)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("approved request cannot be deleted", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Admin")
		l := pendingLeave(actor, uuid.NewString())
		l.Status = leave.StatusApproved
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return l, nil
		}
		expectTx(d.sqlMock, false)

		err := d.service.Delete(ctx, actor, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrOnlyPendingDeletable)
	})

	t.Run("other employee cannot delete", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return pendingLeave(actor, uuid.NewString()), nil
		}
		expectTx(d.sqlMock, false)

		err := d.service.Delete(ctx, actor, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})

	t.Run("malformed ids are rejected before the database", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")

		err := d.service.Delete(ctx, actor, "42")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

		actor.CompanyID = "acme"
		err = d.service.Delete(ctx, actor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidCompanyID)

		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("lost race to a decision", func(t *testing.T) {
		d := setupLeaveServiceTest(t)
		actor := newActor("Employee")
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.LeaveRequest, error) {
			return pendingLeave(actor, actor.EmployeeID), nil
		}
		d.repo.deleteIfPendingFn = func(ctx context.Context, cid, id string) (int64, error) {
			return 0, nil
		}
		expectTx(d.sqlMock, false)

		err := d.service.Delete(ctx, actor, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrOnlyPendingDeletable)
	})
}
