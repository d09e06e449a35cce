package holiday

import (
	"context"
	"fmt"
	"time"

	holidayerrors "go-hrdesk/internal/holiday/errors"
	"go-hrdesk/internal/leave/workday"
	"go-hrdesk/internal/shared/cache"
	"go-hrdesk/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func CacheKey(companyID string, year int) string {
	return fmt.Sprintf("holidays:%s:%d", companyID, year)
}

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateHolidayRequest) (HolidayResponse, error)
	ListYear(ctx context.Context, companyID string, year int) ([]HolidayResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	// Holidays returns the company holidays falling in [from, to] as a
	// lookup set for business-day counting.
	Holidays(ctx context.Context, companyID string, from, to time.Time) (workday.Holidays, error)
}

type service struct {
	repo   Repository
	cache  *cache.ReadThrough
	logger *zap.Logger
}

func NewService(repo Repository, c *cache.ReadThrough, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	if c == nil {
		c = cache.NewReadThrough(nil, 0, l)
	}
	return &service{repo: repo, cache: c, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateHolidayRequest) (HolidayResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidCompanyID
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDate
	}

	h := &Holiday{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Date:      date,
		Name:      req.Name,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		if dberr.IsUniqueViolation(err, "uq_holiday_date") {
			return HolidayResponse{}, holidayerrors.ErrHolidayExists
		}
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.cache.Invalidate(ctx, CacheKey(companyID, date.Year()))
	return mapToResponse(*h), nil
}

func (s *service) ListYear(ctx context.Context, companyID string, year int) ([]HolidayResponse, error) {
	if year < 1900 || year > 9999 {
		return nil, holidayerrors.ErrInvalidYear
	}
	return cache.Get(ctx, s.cache, CacheKey(companyID, year), func(ctx context.Context) ([]HolidayResponse, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		rows, err := s.repo.FindBetween(ctx, companyID, from, to)
		if err != nil {
			return nil, err
		}
		resp := make([]HolidayResponse, len(rows))
		for i, h := range rows {
			resp[i] = mapToResponse(h)
		}
		return resp, nil
	})
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	h, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete holiday failed", zap.String("holiday_id", id), zap.Error(err))
		return err
	}

	s.cache.Invalidate(ctx, CacheKey(companyID, h.Date.Year()))
	return nil
}

func (s *service) Holidays(ctx context.Context, companyID string, from, to time.Time) (workday.Holidays, error) {
	set := workday.Holidays{}
	if from.After(to) {
		return set, nil
	}

	lo, hi := from.Format(dateLayout), to.Format(dateLayout)
	for year := from.Year(); year <= to.Year(); year++ {
		list, err := s.ListYear(ctx, companyID, year)
		if err != nil {
			return nil, err
		}
		for _, h := range list {
			if h.Date >= lo && h.Date <= hi {
				set[h.Date] = struct{}{}
			}
		}
	}
	return set, nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID.String(),
		Date: h.Date.Format(dateLayout),
		Name: h.Name,
	}
}
