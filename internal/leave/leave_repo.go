package leave

import (
	"context"
	"database/sql"
	"time"

	"go-hrdesk/internal/tenant"

	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID  string
	EmployeeID string
	Status     string
	Year       int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	// UpdateStatusIfPending persists a status change only while the stored
	// row is still pending. Zero rows affected means another writer won.
	UpdateStatusIfPending(ctx context.Context, l *LeaveRequest) (int64, error)
	DeleteIfPending(ctx context.Context, companyID, id string) (int64, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound *sql.Tx when there is one, so gorm
// writes commit or roll back together with the outbox insert.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) withNames(db *gorm.DB) *gorm.DB {
	return db.
		Select("leave_requests.*, employees.full_name AS employee_name, leave_types.name AS leave_type_name").
		Joins("LEFT JOIN employees ON employees.id = leave_requests.employee_id").
		Joins("LEFT JOIN leave_types ON leave_types.id = leave_requests.leave_type_id")
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	db := r.withNames(r.conn(ctx).Model(&LeaveRequest{})).
		Scopes(tenant.TableScope("leave_requests", filter.CompanyID))

	if filter.EmployeeID != "" {
		db = db.Where("leave_requests.employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("leave_requests.status = ?", filter.Status)
	}
	if filter.Year != 0 {
		db = db.Where("EXTRACT(YEAR FROM leave_requests.start_date) = ?", filter.Year)
	}

	var leaves []LeaveRequest
	err := db.Order("leave_requests.start_date DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.withNames(r.conn(ctx).Model(&LeaveRequest{})).
		Scopes(tenant.TableScope("leave_requests", companyID)).
		Where("leave_requests.id = ?", id).
		First(&l).Error
	return &l, err
}

func (r *repository) UpdateStatusIfPending(ctx context.Context, l *LeaveRequest) (int64, error) {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND company_id = ? AND status = ?", l.ID, l.CompanyID, StatusPending).
		Updates(map[string]any{
			"status":           l.Status,
			"approved_by":      l.ApprovedBy,
			"approved_at":      l.ApprovedAt,
			"rejection_reason": l.RejectionReason,
			"cancelled_at":     l.CancelledAt,
			"updated_at":       time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteIfPending(ctx context.Context, companyID, id string) (int64, error) {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusPending).
		Delete(&LeaveRequest{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

// HasOverlappingPeriod only considers requests that still hold days.
func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}
