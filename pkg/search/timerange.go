package search

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

const (
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour
)

// ParseTimeRange maps user input to a TimeRange; unknown or empty input means RangeAll.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(strings.ToLower(strings.TrimSpace(s))) {
	case RangeToday:
		return RangeToday
	case RangeYesterday:
		return RangeYesterday
	case RangeWeek:
		return RangeWeek
	case RangeMonth:
		return RangeMonth
	case RangeCustom:
		return RangeCustom
	}
	return RangeAll
}

// ParseTimeBound parses a custom range bound in any layout dateparse knows
// ("2024-03-01", "03/01/2024 10:00", RFC 3339, unix seconds ...).
// Empty input returns nil.
// ParseTimeBound 解析自定义时间范围的边界
func ParseTimeBound(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse time bound %q", s)
	}
	return &t, nil
}

// ParseTimeEnd parses the upper bound of a custom range. A date without a
// clock time ("2024-03-01") covers the whole day, so it resolves to the last
// nanosecond of that day.
// ParseTimeEnd 解析结束边界，仅含日期时取当天最后一刻
func ParseTimeEnd(s string, loc *time.Location) (*time.Time, error) {
	t, err := ParseTimeBound(s, loc)
	if err != nil || t == nil {
		return t, err
	}
	if dateOnly(s, *t) {
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &end, nil
	}
	return t, nil
}

// dateOnly reports whether s named a calendar day without a time of day.
// Unix timestamps are all digits and always exact.
func dateOnly(s string, t time.Time) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") || strings.Trim(s, "0123456789") == "" {
		return false
	}
	h, m, sec := t.Clock()
	return h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// timeWindow builds the updatedAt predicate of q. Calendar ranges use the
// evaluator's location; week and month are rolling windows ending now.
func timeWindow(q Query) func(time.Time) bool {
	loc := q.Location
	if loc == nil {
		loc = time.Local
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	switch q.TimeRange {
	case RangeToday:
		return func(t time.Time) bool { return sameDay(t.In(loc), now) }
	case RangeYesterday:
		y := now.AddDate(0, 0, -1)
		return func(t time.Time) bool { return sameDay(t.In(loc), y) }
	case RangeWeek:
		from := now.Add(-weekWindow)
		return func(t time.Time) bool { return !t.Before(from) }
	case RangeMonth:
		from := now.Add(-monthWindow)
		return func(t time.Time) bool { return !t.Before(from) }
	case RangeCustom:
		start, end := q.Start, q.End
		return func(t time.Time) bool {
			if start != nil && t.Before(*start) {
				return false
			}
			if end != nil && t.After(*end) {
				return false
			}
			return true
		}
	default:
		return func(time.Time) bool { return true }
	}
}
