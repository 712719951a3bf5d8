package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestResolve_LastHourScenario(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	window, err := Resolve(LastHour, nil, nil, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, now, window.Finish)
}

func TestResolve_NonCustomTags(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)

	for _, tag := range Tags() {
		if tag == Custom {
			continue
		}

		t.Run(string(tag), func(t *testing.T) {
			expected, ok := tag.Duration()
			require.True(t, ok)

			first, err := Resolve(tag, nil, nil, now)
			require.NoError(t, err)

			second, err := Resolve(tag, nil, nil, now)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, expected, first.Duration())
			assert.Equal(t, now, first.Finish)
		})
	}
}

func TestResolve_IgnoresDatesForNonCustomTags(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	window, err := Resolve(LastDay, date(2020, 1, 2), date(2020, 1, 1), now)
	require.NoError(t, err)

	assert.Equal(t, now.Add(-24*time.Hour), window.Start)
}

func TestResolve_Custom(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end *time.Time
		wantStart  time.Time
		wantFinish time.Time
	}{
		{
			name:       "single day",
			start:      date(2023, 6, 1),
			end:        date(2023, 6, 1),
			wantStart:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			wantFinish: time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "several days inclusive",
			start:      date(2023, 6, 1),
			end:        date(2023, 6, 3),
			wantStart:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			wantFinish: time.Date(2023, 6, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "end of month rolls over",
			start:      date(2024, 2, 28),
			end:        date(2024, 2, 29),
			wantStart:  time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			wantFinish: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "time of day is dropped",
			start: func() *time.Time {
				t := time.Date(2023, 6, 1, 17, 45, 0, 0, time.UTC)
				return &t
			}(),
			end: func() *time.Time {
				t := time.Date(2023, 6, 1, 3, 0, 0, 0, time.UTC)
				return &t
			}(),
			wantStart:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			wantFinish: time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := Resolve(Custom, tt.start, tt.end, now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStart, window.Start)
			assert.Equal(t, tt.wantFinish, window.Finish)
			assert.True(t, window.Contains(tt.wantFinish.Add(-time.Nanosecond)))
			assert.False(t, window.Contains(tt.wantFinish))
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		tag        Tag
		start, end *time.Time
	}{
		{name: "custom without dates", tag: Custom},
		{name: "custom without end", tag: Custom, start: date(2023, 1, 1)},
		{name: "custom without start", tag: Custom, end: date(2023, 1, 1)},
		{name: "custom start after end", tag: Custom, start: date(2023, 1, 2), end: date(2023, 1, 1)},
		{name: "unknown tag", tag: Tag("Last decade")},
		{name: "empty tag", tag: Tag("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.tag, tt.start, tt.end, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTimeRange)
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *parsed)

	parsed, err = ParseDate("2024-01-05T13:14:15Z")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *parsed)

	parsed, err = ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = ParseDate("05/01/2024")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
