package glowmarkt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAlignToPeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		period  ReadingPeriod
		want    string
		wantErr bool
	}{
		{
			name:   "half hour rounds down below 30",
			input:  "2023-06-10T14:29:59Z",
			period: PeriodHalfHour,
			want:   "2023-06-10T14:00:00Z",
		},
		{
			name:   "half hour rounds to 30 at and above 30",
			input:  "2023-06-10T14:30:00Z",
			period: PeriodHalfHour,
			want:   "2023-06-10T14:30:00Z",
		},
		{
			name:   "half hour clears seconds",
			input:  "2023-06-10T14:45:12Z",
			period: PeriodHalfHour,
			want:   "2023-06-10T14:30:00Z",
		},
		{
			name:   "hour clears minutes and seconds",
			input:  "2023-06-10T14:59:59Z",
			period: PeriodHour,
			want:   "2023-06-10T14:00:00Z",
		},
		{
			name:    "day is unsupported",
			input:   "2023-06-10T14:00:00Z",
			period:  PeriodDay,
			wantErr: true,
		},
		{
			name:    "month is unsupported",
			input:   "2023-06-10T14:00:00Z",
			period:  PeriodMonth,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AlignToPeriod(date(tt.input), tt.period)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported alignment period")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, date(tt.want), got)
		})
	}
}

func TestAlignToPeriodIdempotent(t *testing.T) {
	instants := []string{
		"2023-06-10T14:29:59Z",
		"2023-06-10T14:30:00Z",
		"2023-12-31T23:59:59Z",
	}

	for _, period := range []ReadingPeriod{PeriodHalfHour, PeriodHour} {
		for _, s := range instants {
			once, err := AlignToPeriod(date(s), period)
			require.NoError(t, err)

			twice, err := AlignToPeriod(once, period)
			require.NoError(t, err)

			assert.Equal(t, once, twice, "aligning %s twice to %s", s, period)
		}
	}
}

func TestSplitPeriodsSingleRange(t *testing.T) {
	start := date("2023-01-01T00:00:00Z")
	end := date("2023-01-05T00:00:00Z")

	ranges, err := SplitPeriods(start, end, PeriodHalfHour)
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, start, ranges[0].Start)
	assert.Equal(t, end, ranges[0].End)
}

func TestSplitPeriodsHalfHour(t *testing.T) {
	// A 19 day range at half-hour readings splits against the 10 day
	// cap: the second chunk starts one reading after the first ends.
	start := date("2023-01-01T00:00:00Z")
	end := date("2023-01-20T00:00:00Z")

	ranges, err := SplitPeriods(start, end, PeriodHalfHour)
	require.NoError(t, err)

	require.Len(t, ranges, 2)
	assert.Equal(t, date("2023-01-01T00:00:00Z"), ranges[0].Start)
	assert.Equal(t, date("2023-01-11T00:00:00Z"), ranges[0].End)
	assert.Equal(t, date("2023-01-11T00:30:00Z"), ranges[1].Start)
	assert.Equal(t, date("2023-01-20T00:00:00Z"), ranges[1].End)
}

func TestSplitPeriodsZeroLength(t *testing.T) {
	start := date("2023-01-01T00:00:00Z")

	ranges, err := SplitPeriods(start, start, PeriodHour)
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, start, ranges[0].Start)
	assert.Equal(t, start, ranges[0].End)
}

func TestSplitPeriodsEndBeforeStart(t *testing.T) {
	_, err := SplitPeriods(date("2023-02-01T00:00:00Z"), date("2023-01-01T00:00:00Z"), PeriodHour)
	assert.Error(t, err)
}

func TestSplitPeriodsNormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2023, time.January, 1, 2, 0, 0, 0, zone)
	end := time.Date(2023, time.January, 5, 2, 0, 0, 0, zone)

	ranges, err := SplitPeriods(start, end, PeriodHour)
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, time.UTC, ranges[0].Start.Location())
	assert.Equal(t, date("2023-01-01T00:00:00Z"), ranges[0].Start)
}

func TestSplitPeriodsProperties(t *testing.T) {
	periods := []ReadingPeriod{PeriodHalfHour, PeriodHour, PeriodDay, PeriodWeek}

	start := date("2020-03-07T11:42:13Z")
	end := date("2023-11-19T08:15:00Z")

	for _, period := range periods {
		t.Run(period.String(), func(t *testing.T) {
			ranges, err := SplitPeriods(start, end, period)
			require.NoError(t, err)
			require.NotEmpty(t, ranges)

			maxDays, err := period.maxSpanDays()
			require.NoError(t, err)
			maxSpan := time.Duration(maxDays) * 24 * time.Hour

			// The combined ranges span the original bounds exactly.
			assert.Equal(t, start.UTC(), ranges[0].Start)
			assert.Equal(t, end.UTC(), ranges[len(ranges)-1].End)

			prevEnd := time.Time{}
			for i, r := range ranges {
				assert.False(t, r.End.Before(r.Start), "range %d ends before it starts", i)
				assert.LessOrEqual(t, r.End.Sub(r.Start), maxSpan, "range %d exceeds the period cap", i)
				if i > 0 {
					assert.True(t, r.Start.After(prevEnd), "range %d does not start after the previous end", i)
				}
				prevEnd = r.End
			}
		})
	}
}

func TestSplitPeriodsMonth(t *testing.T) {
	// 2020 is a leap year so the first 366 day chunk lands exactly on
	// the following new year; the next chunk starts a calendar month
	// later.
	ranges, err := SplitPeriods(date("2020-01-01T00:00:00Z"), date("2021-03-15T00:00:00Z"), PeriodMonth)
	require.NoError(t, err)

	require.Len(t, ranges, 2)
	assert.Equal(t, date("2020-01-01T00:00:00Z"), ranges[0].Start)
	assert.Equal(t, date("2021-01-01T00:00:00Z"), ranges[0].End)
	assert.Equal(t, date("2021-02-01T00:00:00Z"), ranges[1].Start)
	assert.Equal(t, date("2021-03-15T00:00:00Z"), ranges[1].End)
}

func TestSplitPeriodsYear(t *testing.T) {
	// The seam between chunks skips a whole calendar year of coverage.
	ranges, err := SplitPeriods(date("2020-01-01T00:00:00Z"), date("2022-06-01T00:00:00Z"), PeriodYear)
	require.NoError(t, err)

	require.Len(t, ranges, 2)
	assert.Equal(t, date("2020-01-01T00:00:00Z"), ranges[0].Start)
	assert.Equal(t, date("2021-01-01T00:00:00Z"), ranges[0].End)
	assert.Equal(t, date("2022-01-01T00:00:00Z"), ranges[1].Start)
	assert.Equal(t, date("2022-06-01T00:00:00Z"), ranges[1].End)
}

func TestPeriodNextCalendarIncrements(t *testing.T) {
	// Month and year advance by calendar arithmetic, not fixed spans.
	assert.Equal(t, date("2023-02-15T00:00:00Z"), PeriodMonth.next(date("2023-01-15T00:00:00Z")))
	assert.Equal(t, date("2024-01-15T00:00:00Z"), PeriodMonth.next(date("2023-12-15T00:00:00Z")))
	assert.Equal(t, date("2024-12-15T00:00:00Z"), PeriodYear.next(date("2023-12-15T00:00:00Z")))
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("halfhour")
	require.NoError(t, err)
	assert.Equal(t, PeriodHalfHour, period)

	period, err = ParsePeriod("1h")
	require.NoError(t, err)
	assert.Equal(t, PeriodHour, period)

	_, err = ParsePeriod("fortnight")
	assert.Error(t, err)
}
