// Package balance derives available, used and pending day counts from
// leave balance rows.
package balance

import "math"

// Row is one leave type as seen by an employee for a year. HasBalance is
// false when no balance row exists, which means the type has no limit.
type Row struct {
	LeaveTypeID   string
	LeaveTypeName string
	Color         string
	HasBalance    bool
	TotalDays     float64
	UsedDays      float64
	PendingDays   float64
}

type Entry struct {
	LeaveTypeID   string   `json:"leave_type_id"`
	LeaveTypeName string   `json:"leave_type_name"`
	Color         string   `json:"color"`
	TotalDays     float64  `json:"total_days"`
	UsedDays      float64  `json:"used_days"`
	PendingDays   float64  `json:"pending_days"`
	Available     *float64 `json:"available"`
	UsagePercent  float64  `json:"usage_percent"`
}

func (e Entry) Unlimited() bool {
	return e.Available == nil
}

type Totals struct {
	Entitled  float64 `json:"entitled"`
	Used      float64 `json:"used"`
	Pending   float64 `json:"pending"`
	Available float64 `json:"available"`
}

type Summary struct {
	Entries []Entry `json:"entries"`
	Totals  Totals  `json:"totals"`
}

// Available is total - used - pending. It is not clamped: a negative value
// exposes an inconsistent write instead of hiding it.
func Available(total, used, pending float64) float64 {
	return total - used - pending
}

// UsagePercent is used/total in percent, rounded to one decimal. A zero
// entitlement reports 0.
func UsagePercent(total, used float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(used/total*1000) / 10
}

// Aggregate builds per-type entries and totals. Unlimited types contribute
// their used and pending days to the totals but nothing to entitled or
// available.
func Aggregate(rows []Row) Summary {
	s := Summary{Entries: make([]Entry, 0, len(rows))}
	for _, r := range rows {
		e := Entry{
			LeaveTypeID:   r.LeaveTypeID,
			LeaveTypeName: r.LeaveTypeName,
			Color:         r.Color,
			UsedDays:      r.UsedDays,
			PendingDays:   r.PendingDays,
		}
		if r.HasBalance {
			avail := Available(r.TotalDays, r.UsedDays, r.PendingDays)
			e.TotalDays = r.TotalDays
			e.Available = &avail
			e.UsagePercent = UsagePercent(r.TotalDays, r.UsedDays)

			s.Totals.Entitled += r.TotalDays
			s.Totals.Available += avail
		}
		s.Totals.Used += r.UsedDays
		s.Totals.Pending += r.PendingDays
		s.Entries = append(s.Entries, e)
	}
	return s
}

// CanTake reports whether days fit in the row. A row without a balance
// accepts anything.
func CanTake(r Row, days float64) bool {
	if !r.HasBalance {
		return true
	}
	return days <= Available(r.TotalDays, r.UsedDays, r.PendingDays)
}
