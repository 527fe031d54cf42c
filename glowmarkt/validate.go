package glowmarkt

import (
	"fmt"
	"time"
)

// requestValidator checks readings request parameters before a request
// is dispatched, so that obviously broken requests never hit the API.
type requestValidator struct{}

// validateReadings checks the time bounds of a readings request against
// the period's maximum span.
func (v requestValidator) validateReadings(start, end time.Time, period ReadingPeriod) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("missing timestamp")
	}

	if start.After(end) {
		return fmt.Errorf("start time must not be after end time")
	}

	maxDays, err := period.maxSpanDays()
	if err != nil {
		return err
	}

	if end.Sub(start) > time.Duration(maxDays)*24*time.Hour {
		return fmt.Errorf("time range exceeds %d days for period %s", maxDays, period)
	}

	return nil
}
