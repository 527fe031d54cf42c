package glowmarkt

import (
	"fmt"
	"time"
)

// ReadingPeriod is the time window covered by a single meter reading.
type ReadingPeriod int

const (
	// PeriodHalfHour is a 30 minute reading window.
	PeriodHalfHour ReadingPeriod = iota
	// PeriodHour is a 1 hour reading window.
	PeriodHour
	// PeriodDay is a 1 day reading window.
	PeriodDay
	// PeriodWeek is a 7 day reading window.
	PeriodWeek
	// PeriodMonth is a calendar month reading window.
	PeriodMonth
	// PeriodYear is a calendar year reading window.
	PeriodYear
)

func (p ReadingPeriod) String() string {
	switch p {
	case PeriodHalfHour:
		return "halfhour"
	case PeriodHour:
		return "hour"
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	}
	return fmt.Sprintf("ReadingPeriod(%d)", int(p))
}

// ParsePeriod converts a period name as used in configuration and on
// the command line.
func ParsePeriod(s string) (ReadingPeriod, error) {
	switch s {
	case "halfhour", "30m":
		return PeriodHalfHour, nil
	case "hour", "1h":
		return PeriodHour, nil
	case "day", "1d":
		return PeriodDay, nil
	case "week", "1w":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	}
	return 0, fmt.Errorf("unknown reading period: %s", s)
}

// queryValue returns the ISO-8601 duration the readings endpoint expects.
func (p ReadingPeriod) queryValue() (string, error) {
	switch p {
	case PeriodHalfHour:
		return "PT30M", nil
	case PeriodHour:
		return "PT1H", nil
	case PeriodDay:
		return "P1D", nil
	case PeriodWeek:
		return "P1W", nil
	case PeriodMonth:
		return "P1M", nil
	case PeriodYear:
		return "P1Y", nil
	}
	return "", fmt.Errorf("unsupported reading period: %s", p)
}

// maxSpanDays is the widest range the API accepts in a single readings
// request for this period.
func (p ReadingPeriod) maxSpanDays() (int, error) {
	switch p {
	case PeriodHalfHour:
		return 10, nil
	case PeriodHour:
		return 31, nil
	case PeriodDay:
		return 31, nil
	case PeriodWeek:
		return 6 * 7, nil
	case PeriodMonth:
		return 366, nil
	case PeriodYear:
		return 366, nil
	}
	return 0, fmt.Errorf("unsupported reading period: %s", p)
}

// Duration returns the fixed wall-clock length of the period. Month and
// year windows have no fixed length and report false.
func (p ReadingPeriod) Duration() (time.Duration, bool) {
	switch p {
	case PeriodHalfHour:
		return 30 * time.Minute, true
	case PeriodHour:
		return time.Hour, true
	case PeriodDay:
		return 24 * time.Hour, true
	case PeriodWeek:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

// next advances an instant by one period unit. Month and year advance
// by calendar arithmetic rather than a fixed duration.
func (p ReadingPeriod) next(t time.Time) time.Time {
	switch p {
	case PeriodHalfHour:
		return t.Add(30 * time.Minute)
	case PeriodHour:
		return t.Add(time.Hour)
	case PeriodDay:
		return t.Add(24 * time.Hour)
	case PeriodWeek:
		return t.Add(7 * 24 * time.Hour)
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	case PeriodYear:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// AlignToPeriod snaps an instant to the start of the reading window
// containing it. Only half-hour and hour alignment is supported; the
// reading boundaries of longer periods depend on API behaviour that is
// not documented, so asking for them is an error rather than a guess.
func AlignToPeriod(t time.Time, period ReadingPeriod) (time.Time, error) {
	switch period {
	case PeriodHalfHour:
		minute := 0
		if t.Minute() >= 30 {
			minute = 30
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location()), nil
	case PeriodHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unsupported alignment period: %s", period)
}

// TimeRange is a pair of instants bounding a readings request.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SplitPeriods breaks the range [start, end] into chunks that each fit
// within the API's maximum span for the period. Both bounds are
// normalized to UTC first.
//
// After emitting a full-width chunk the cursor advances one extra
// period unit past the chunk's end so that the boundary reading is not
// requested twice. The reading covering that seam is skipped; callers
// relying on exact coverage should request wide enough ranges that the
// API never needs splitting.
func SplitPeriods(start, end time.Time, period ReadingPeriod) ([]TimeRange, error) {
	maxDays, err := period.maxSpanDays()
	if err != nil {
		return nil, err
	}

	current := start.UTC()
	finalEnd := end.UTC()
	if finalEnd.Before(current) {
		return nil, fmt.Errorf("range end %s is before start %s", finalEnd.Format(time.RFC3339), current.Format(time.RFC3339))
	}

	span := time.Duration(maxDays) * 24 * time.Hour

	var ranges []TimeRange
	for {
		nextEnd := current.Add(span)
		if !nextEnd.Before(finalEnd) {
			ranges = append(ranges, TimeRange{Start: current, End: finalEnd})
			return ranges, nil
		}

		ranges = append(ranges, TimeRange{Start: current, End: nextEnd})
		current = period.next(nextEnd)
	}
}
