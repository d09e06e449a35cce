package leavebalance

import (
	"context"
	"database/sql"
	"errors"

	"go-hrdesk/internal/leave/balance"
)

//go:generate mockgen -source=leavebalance_repo.go -destination=mock/leavebalance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	ListForEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]balance.Row, error)
	FindRow(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error)
	ListEntitlements(ctx context.Context, companyID string) ([]Entitlement, error)
	InsertIfAbsent(ctx context.Context, b LeaveBalance) (bool, error)
	AdjustCounters(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, pendingDelta, usedDelta float64) (int64, error)
	MarkProcessed(ctx context.Context, eventID, consumer string) (bool, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type dbtx interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *repository) conn() dbtx {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const listForEmployeeYearQuery = `
SELECT
	lt.id::text,
	lt.name,
	lt.color,
	lb.id IS NOT NULL,
	COALESCE(lb.total_days, 0),
	COALESCE(lb.used_days, 0),
	COALESCE(lb.pending_days, 0)
FROM leave_types lt
LEFT JOIN leave_balances lb
	ON lb.leave_type_id = lt.id
	AND lb.company_id = lt.company_id
	AND lb.employee_id = $2
	AND lb.year = $3
WHERE lt.company_id = $1
	AND lt.is_active = TRUE
ORDER BY lt.name ASC
`

func (r *repository) ListForEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]balance.Row, error) {
	rows, err := r.conn().QueryContext(ctx, listForEmployeeYearQuery, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]balance.Row, 0)
	for rows.Next() {
		var b balance.Row
		if err := rows.Scan(
			&b.LeaveTypeID,
			&b.LeaveTypeName,
			&b.Color,
			&b.HasBalance,
			&b.TotalDays,
			&b.UsedDays,
			&b.PendingDays,
		); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const findRowQuery = `
SELECT total_days, used_days, pending_days
FROM leave_balances
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type_id = $3
	AND year = $4
`

// FindRow returns a Row with HasBalance false when no balance exists.
func (r *repository) FindRow(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (balance.Row, error) {
	b := balance.Row{LeaveTypeID: leaveTypeID}
	err := r.conn().QueryRowContext(ctx, findRowQuery, companyID, employeeID, leaveTypeID, year).
		Scan(&b.TotalDays, &b.UsedDays, &b.PendingDays)
	if errors.Is(err, sql.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return balance.Row{}, err
	}
	b.HasBalance = true
	return b, nil
}

const listEntitlementsQuery = `
SELECT id::text, default_days
FROM leave_types
WHERE company_id = $1
	AND is_active = TRUE
	AND default_days > 0
ORDER BY name ASC
`

func (r *repository) ListEntitlements(ctx context.Context, companyID string) ([]Entitlement, error) {
	rows, err := r.conn().QueryContext(ctx, listEntitlementsQuery, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entitlement
	for rows.Next() {
		var e Entitlement
		if err := rows.Scan(&e.LeaveTypeID, &e.DefaultDays); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

const insertIfAbsentQuery = `
INSERT INTO leave_balances (
	id, company_id, employee_id, leave_type_id, year, total_days, used_days, pending_days
) VALUES ($1, $2, $3, $4, $5, $6, 0, 0)
ON CONFLICT ON CONSTRAINT uq_leave_balance DO NOTHING
`

// InsertIfAbsent reports whether a new row was written.
func (r *repository) InsertIfAbsent(ctx context.Context, b LeaveBalance) (bool, error) {
	res, err := r.conn().ExecContext(ctx, insertIfAbsentQuery,
		b.ID, b.CompanyID, b.EmployeeID, b.LeaveTypeID, b.Year, b.TotalDays,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

const adjustCountersQuery = `
UPDATE leave_balances
SET
	pending_days = pending_days + $5,
	used_days = used_days + $6,
	updated_at = NOW()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type_id = $3
	AND year = $4
`

func (r *repository) AdjustCounters(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, pendingDelta, usedDelta float64) (int64, error) {
	res, err := r.conn().ExecContext(ctx, adjustCountersQuery,
		companyID, employeeID, leaveTypeID, year, pendingDelta, usedDelta,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markProcessedQuery = `
INSERT INTO processed_events (event_id, consumer, processed_at)
VALUES ($1, $2, NOW())
ON CONFLICT (event_id, consumer) DO NOTHING
`

// MarkProcessed returns false when the event was already recorded.
func (r *repository) MarkProcessed(ctx context.Context, eventID, consumer string) (bool, error) {
	res, err := r.conn().ExecContext(ctx, markProcessedQuery, eventID, consumer)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
