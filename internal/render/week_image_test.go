package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week(start time.Time) model.AvailabilityReport {
	report := model.AvailabilityReport{
		TeacherID:           7,
		TeacherName:         "Anna",
		SlotDurationMinutes: 60,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 6),
	}
	for _, d := range timeslot.Dates(start, report.EndDate) {
		report.Availability = append(report.Availability, model.DayAvailability{
			Day:       model.WeekdayOf(d),
			Date:      d,
			TimeSlots: []model.AvailabilitySlot{},
		})
	}
	report.Availability[0].TimeSlots = []model.AvailabilitySlot{
		{StartTime: timeslot.MustParseClock("09:00"), EndTime: timeslot.MustParseClock("10:00"), IsActive: true},
		{StartTime: timeslot.MustParseClock("11:00"), EndTime: timeslot.MustParseClock("12:00"), IsActive: true},
	}
	return report
}

func TestWeekImageIsPNG(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	data, err := WeekImage(week(monday), monday.Add(9*time.Hour+30*time.Minute))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestWeekImageRejectsEmptyReport(t *testing.T) {
	_, err := WeekImage(model.AvailabilityReport{}, time.Now())
	assert.Error(t, err)
}

func TestCalculateHourRange(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	hours := calculateHourRange(week(monday).Availability)
	assert.Equal(t, hourRange{start: 8, end: 13, total: 5}, hours)

	hours = calculateHourRange(nil)
	assert.Equal(t, defaultMinHour-hourPadding, hours.start)
	assert.Equal(t, defaultMaxHour+hourPadding, hours.end)

	late := []model.DayAvailability{{TimeSlots: []model.AvailabilitySlot{
		{StartTime: timeslot.MustParseClock("00:00"), EndTime: timeslot.EndOfDay},
	}}}
	assert.Equal(t, hourRange{start: 0, end: 24, total: 24}, calculateHourRange(late))
}
