package queries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestFrame_Between(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	frame := &Frame{Columns: []string{"sensor_0"}}
	for i := 0; i < 8; i++ {
		frame.Rows = append(frame.Rows, Row{
			Datetime: base.Add(time.Duration(i) * 250 * time.Millisecond),
			Values:   []*float64{ptr(float64(i))},
		})
	}

	got := frame.Between(base.Add(500*time.Millisecond), base.Add(1500*time.Millisecond))
	require.Equal(t, 4, got.Len())
	assert.Equal(t, base.Add(500*time.Millisecond), got.Rows[0].Datetime)
	assert.Equal(t, base.Add(1250*time.Millisecond), got.Rows[3].Datetime)

	assert.Equal(t, 0, frame.Between(base.Add(time.Hour), base.Add(2*time.Hour)).Len())
}

func TestFrame_MinMax(t *testing.T) {
	frame := &Frame{
		Columns: []string{"sensor_0", "sensor_1"},
		Rows: []Row{
			{Values: []*float64{ptr(101325), nil}},
			{Values: []*float64{ptr(99000), ptr(102000.5)}},
		},
	}

	minimum, maximum, ok := frame.MinMax()
	require.True(t, ok)
	assert.InDelta(t, 99000, minimum, 1e-9)
	assert.InDelta(t, 102000.5, maximum, 1e-9)

	_, _, ok = (&Frame{Rows: []Row{{Values: []*float64{nil}}}}).MinMax()
	assert.False(t, ok)
}

func TestFrame_Column(t *testing.T) {
	frame := &Frame{
		Columns: []string{"a", "b"},
		Rows:    []Row{{Values: []*float64{ptr(1)}}},
	}

	values, ok := frame.Column("b")
	require.True(t, ok)
	assert.Equal(t, []*float64{nil}, values)

	_, ok = frame.Column("c")
	assert.False(t, ok)
}
