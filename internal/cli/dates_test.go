package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitcombe/glowmarkt/glowmarkt"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 44, 30, 0, time.UTC)

	tests := []struct {
		name    string
		arg     string
		period  glowmarkt.ReadingPeriod
		want    time.Time
		wantErr string
	}{
		{
			name:   "rfc3339 aligned to half hour",
			arg:    "2023-01-01T00:42:10Z",
			period: glowmarkt.PeriodHalfHour,
			want:   time.Date(2023, 1, 1, 0, 30, 0, 0, time.UTC),
		},
		{
			name:   "rfc3339 aligned to hour",
			arg:    "2023-01-01T00:42:10Z",
			period: glowmarkt.PeriodHour,
			want:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "relative minutes",
			arg:    "-60",
			period: glowmarkt.PeriodHalfHour,
			want:   time.Date(2023, 6, 15, 11, 30, 0, 0, time.UTC),
		},
		{
			name:   "relative full day",
			arg:    "-1440",
			period: glowmarkt.PeriodHour,
			want:   time.Date(2023, 6, 14, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "future date rejected",
			arg:     "2030-01-01T00:00:00Z",
			period:  glowmarkt.PeriodHalfHour,
			wantErr: "future",
		},
		{
			name:    "garbage",
			arg:     "yesterday",
			period:  glowmarkt.PeriodHalfHour,
			wantErr: "couldn't parse the date",
		},
		{
			name:    "relative with trailing junk",
			arg:     "-60m",
			period:  glowmarkt.PeriodHalfHour,
			wantErr: "unable to parse relative time",
		},
		{
			name:    "unalignable period",
			arg:     "2023-01-01T00:00:00Z",
			period:  glowmarkt.PeriodDay,
			wantErr: "unsupported alignment period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.arg, tt.period, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseEndDateDefaultsToNow(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 44, 30, 0, time.UTC)

	got, err := parseEndDate("", glowmarkt.PeriodHalfHour, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)))

	got, err = parseEndDate("2023-01-02T03:04:05Z", glowmarkt.PeriodHour, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 1, 2, 3, 0, 0, 0, time.UTC)))
}
