package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/availability"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/render"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/jinzhu/now"
)

// Рисует неделю доступности тестового преподавателя в PNG.
func main() {
	out := flag.String("out", "week.png", "output file")
	duration := flag.Int("duration", 60, "slot duration in minutes")
	flag.Parse()

	// Начинаем с понедельника текущей недели
	monday := timeslot.Day(now.With(time.Now().UTC()).Monday())
	sunday := monday.AddDate(0, 0, 6)

	clock := timeslot.MustParseClock
	schedule := model.NewWeeklySchedule(1, 1, []model.DaySchedule{
		{Day: model.Monday, Slots: []model.TimeSlot{
			{ID: 1, StartTime: clock("09:00"), EndTime: clock("12:00"), IsActive: true},
			{ID: 2, StartTime: clock("14:00"), EndTime: clock("17:00"), IsActive: true},
		}},
		{Day: model.Tuesday, Slots: []model.TimeSlot{
			{ID: 3, StartTime: clock("10:00"), EndTime: clock("13:00"), IsActive: true},
		}},
		{Day: model.Wednesday, Slots: []model.TimeSlot{
			{ID: 4, StartTime: clock("09:00"), EndTime: clock("18:00"), IsActive: true},
		}},
		{Day: model.Friday, Slots: []model.TimeSlot{
			{ID: 5, StartTime: clock("11:00"), EndTime: clock("15:00"), IsActive: true},
			{ID: 6, StartTime: clock("16:00"), EndTime: clock("18:00"), IsActive: false},
		}},
	})

	// Занятия, которые вырезают окна из рабочих часов
	bookings := []model.Booking{
		{ID: 1, InstructorID: 1, Date: monday, StartTime: clock("10:00"), EndTime: clock("11:00"), Status: model.BookingStatusScheduled},
		{ID: 2, InstructorID: 1, Date: monday.AddDate(0, 0, 2), StartTime: clock("13:00"), EndTime: clock("14:30"), Status: model.BookingStatusScheduled},
	}

	days, err := availability.Generate(availability.Input{
		Schedule:            schedule,
		Bookings:            bookings,
		StartDate:           monday,
		EndDate:             sunday,
		SlotDurationMinutes: *duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate availability: %v\n", err)
		os.Exit(1)
	}

	data, err := render.WeekImage(model.AvailabilityReport{
		TeacherID:           1,
		TeacherName:         "Test Instructor",
		SlotDurationMinutes: *duration,
		StartDate:           monday,
		EndDate:             sunday,
		Availability:        days,
	}, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "render week: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Week image saved to %s\n", *out)
}
