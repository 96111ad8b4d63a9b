package timeslot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "09:00", want: 9 * 3600},
		{in: "09:30:15", want: 9*3600 + 30*60 + 15},
		{in: "00:00:00", want: 0},
		{in: "24:00", want: EndOfDay},
		{in: "24:00:01", wantErr: true},
		{in: "23:60", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockFormatting(t *testing.T) {
	c := MustParseClock("07:05")
	assert.Equal(t, "07:05:00", c.String())
	assert.Equal(t, "07:05", c.HHMM())
	assert.Equal(t, "24:00:00", EndOfDay.String())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `"07:05:00"`, string(data))

	var decoded Clock
	require.NoError(t, json.Unmarshal([]byte(`"18:45"`), &decoded))
	assert.Equal(t, MustParseClock("18:45:00"), decoded)
	assert.Error(t, json.Unmarshal([]byte(`1845`), &decoded))
}

func TestOverlaps(t *testing.T) {
	nine, ten, tenThirty, eleven := MustParseClock("09:00"), MustParseClock("10:00"), MustParseClock("10:30"), MustParseClock("11:00")

	assert.False(t, Overlaps(nine, ten, ten, eleven), "touching endpoints are compatible")
	assert.True(t, Overlaps(nine, tenThirty, ten, eleven))
	assert.True(t, Overlaps(ten, eleven, nine, tenThirty))
	assert.True(t, Overlaps(nine, eleven, ten, tenThirty), "containment overlaps")
	assert.False(t, Overlaps(ten, eleven, nine, ten))
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, 90, Minutes(MustParseClock("09:00"), MustParseClock("10:30")))
	assert.Equal(t, 0, Minutes(MustParseClock("10:00"), MustParseClock("10:00")))
	assert.Equal(t, -60, Minutes(MustParseClock("11:00"), MustParseClock("10:00")))
	assert.Equal(t, MinutesPerDay, Minutes(0, EndOfDay))
}

func TestMerge(t *testing.T) {
	got := Merge([]Interval{{Start: 50, End: 60}, {Start: 10, End: 20}, {Start: 15, End: 30}, {Start: 30, End: 40}, {Start: 70, End: 70}})
	assert.Equal(t, []Interval{{Start: 10, End: 40}, {Start: 50, End: 60}}, got)
	assert.Nil(t, Merge(nil))
}

func TestSubtract(t *testing.T) {
	free := Interval{Start: 0, End: 100}

	tests := []struct {
		name string
		busy []Interval
		want []Interval
	}{
		{name: "no busy", want: []Interval{{Start: 0, End: 100}}},
		{name: "middle", busy: []Interval{{Start: 40, End: 60}}, want: []Interval{{Start: 0, End: 40}, {Start: 60, End: 100}}},
		{name: "covers all", busy: []Interval{{Start: -10, End: 200}}, want: nil},
		{name: "head and tail", busy: []Interval{{Start: -5, End: 10}, {Start: 90, End: 120}}, want: []Interval{{Start: 10, End: 90}}},
		{name: "unsorted overlapping", busy: []Interval{{Start: 50, End: 70}, {Start: 20, End: 30}, {Start: 25, End: 55}}, want: []Interval{{Start: 0, End: 20}, {Start: 70, End: 100}}},
		{name: "outside", busy: []Interval{{Start: 100, End: 150}, {Start: -50, End: 0}}, want: []Interval{{Start: 0, End: 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtract(free, tt.busy))
		})
	}
}

func TestSplit(t *testing.T) {
	got := Split(Interval{Start: 0, End: 250}, 100)
	assert.Equal(t, []Interval{{Start: 0, End: 100}, {Start: 100, End: 200}}, got)
	assert.Nil(t, Split(Interval{Start: 0, End: 50}, 100))
	assert.Nil(t, Split(Interval{Start: 0, End: 50}, 0))
}

func TestDates(t *testing.T) {
	start, err := ParseDate("2024-02-27")
	require.NoError(t, err)
	end, err := ParseDate("2024-03-01")
	require.NoError(t, err)

	dates := Dates(start, end)
	require.Len(t, dates, 4)
	assert.Equal(t, "2024-02-29", FormatDate(dates[2]))
	assert.Nil(t, Dates(end, start))

	assert.True(t, WithinDates(end, start, end))
	assert.False(t, WithinDates(end.AddDate(0, 0, 1), start, end))
	assert.Equal(t, 3, DaysBetween(start, end))

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)
}

func TestClockOn(t *testing.T) {
	day := time.Date(2024, 5, 6, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC), MustParseClock("09:30").On(day))
}
