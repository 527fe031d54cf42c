package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/whitcombe/glowmarkt/glowmarkt"
)

// parseDate converts a date argument into an instant aligned to the
// reading period. The argument is either RFC 3339 or a negative offset
// from now in minutes ("-1440" is 24 hours ago). Future dates are
// rejected since the API has no readings for them.
func parseDate(arg string, period glowmarkt.ReadingPeriod, now time.Time) (time.Time, error) {
	if rest, ok := strings.CutPrefix(arg, "-"); ok {
		minutes, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse relative time %q: %w", arg, err)
		}
		return glowmarkt.AlignToPeriod(now.Add(-time.Duration(minutes)*time.Minute), period)
	}

	date, err := time.Parse(time.RFC3339, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("couldn't parse the date %q, try '2023-01-01T00:00:00Z'", arg)
	}

	if date.After(now) {
		return time.Time{}, errors.New("cannot use a date that is in the future")
	}

	return glowmarkt.AlignToPeriod(date, period)
}

// parseEndDate handles the optional end argument, defaulting to now.
func parseEndDate(arg string, period glowmarkt.ReadingPeriod, now time.Time) (time.Time, error) {
	if arg == "" {
		return glowmarkt.AlignToPeriod(now, period)
	}
	return parseDate(arg, period, now)
}
