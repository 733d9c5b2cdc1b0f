// Package usage describes embedding token consumption against the configured budget.
package usage

import "time"

// Period is the aggregation granularity.
type Period string

// Aggregation periods. Budgets reset at UTC midnight and on the first of the month.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool { return p == PeriodDay || p == PeriodMonth }

// Report is the token usage of one provider for one period.
type Report struct {
	period    Period
	provider  string
	start     time.Time
	end       time.Time
	used      int64
	limit     int64
	exhausted bool
}

// NewReport creates a usage report. limit 0 means unlimited.
func NewReport(period Period, provider string, start, end time.Time, used, limit int64) Report {
	return Report{
		period:    period,
		provider:  provider,
		start:     start,
		end:       end,
		used:      used,
		limit:     limit,
		exhausted: limit > 0 && used >= limit,
	}
}

// Period returns the aggregation granularity.
func (r Report) Period() Period { return r.period }

// Provider returns the embedding provider name.
func (r Report) Provider() string { return r.provider }

// Start returns the period start.
func (r Report) Start() time.Time { return r.start }

// End returns the period end, which is also when the budget resets.
func (r Report) End() time.Time { return r.end }

// Used returns the tokens consumed in the period.
func (r Report) Used() int64 { return r.used }

// Limit returns the token limit, 0 when unlimited.
func (r Report) Limit() int64 { return r.limit }

// Remaining returns the tokens left, or -1 when unlimited.
func (r Report) Remaining() int64 {
	switch {
	case r.limit == 0:
		return -1
	case r.used >= r.limit:
		return 0
	default:
		return r.limit - r.used
	}
}

// Exhausted reports whether the limit has been reached.
func (r Report) Exhausted() bool { return r.exhausted }
