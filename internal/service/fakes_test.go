package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/cache"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"go.uber.org/zap"
)

// memStore in-memory состояние для фейковых репозиториев.
// Геттеры возвращают копии, как и настоящая база.
type memStore struct {
	nextID      int64
	instructors map[int64]model.Instructor
	slots       map[int64]repository.StoredSlot
	bookings    map[int64]model.Booking
	vacations   map[int64]model.Vacation
	impacted    map[int64][]int64
	reasons     map[int64]model.CancellationReason
	calls       int
	// trace порядок блокировок и записей, которые проверяют тесты
	trace []string
}

func newMemStore() *memStore {
	return &memStore{
		nextID:      100,
		instructors: map[int64]model.Instructor{},
		slots:       map[int64]repository.StoredSlot{},
		bookings:    map[int64]model.Booking{},
		vacations:   map[int64]model.Vacation{},
		impacted:    map[int64][]int64{},
		reasons: map[int64]model.CancellationReason{
			1: {ID: 1, Title: "Student request", IsActive: true},
			2: {ID: 2, Title: "Retired", IsActive: false},
		},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) touch() { m.calls++ }

func (m *memStore) addInstructor(id int64, name string) {
	m.instructors[id] = model.Instructor{ID: id, Name: name}
}

func (m *memStore) addSlot(instructorID int64, day model.Weekday, start, end string) {
	id := m.id()
	m.slots[id] = repository.StoredSlot{
		TimeSlot: model.TimeSlot{
			ID:        id,
			StartTime: timeslot.MustParseClock(start),
			EndTime:   timeslot.MustParseClock(end),
			IsActive:  true,
		},
		InstructorID: instructorID,
		Day:          day,
	}
}

func (m *memStore) addBooking(instructorID int64, date time.Time, start, end string) model.Booking {
	student := int64(1)
	b := model.Booking{
		ID:           m.id(),
		Kind:         model.BookingKindClass,
		InstructorID: instructorID,
		StudentID:    &student,
		Date:         date,
		StartTime:    timeslot.MustParseClock(start),
		EndTime:      timeslot.MustParseClock(end),
		Status:       model.BookingStatusScheduled,
	}
	m.bookings[b.ID] = b
	return b
}

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeInstructors struct{ *memStore }

func (f fakeInstructors) Create(_ context.Context, instructor *model.Instructor) error {
	f.touch()
	instructor.ID = f.id()
	f.instructors[instructor.ID] = *instructor
	return nil
}

func (f fakeInstructors) GetByID(_ context.Context, id int64) (*model.Instructor, error) {
	f.touch()
	i, ok := f.instructors[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (f fakeInstructors) GetForUpdate(ctx context.Context, id int64) (*model.Instructor, error) {
	f.trace = append(f.trace, fmt.Sprintf("lock instructor %d", id))
	return f.GetByID(ctx, id)
}

func (f fakeInstructors) BumpWorkingHoursVersion(_ context.Context, id int64) (int64, error) {
	f.touch()
	i := f.instructors[id]
	i.WorkingHoursVersion++
	f.instructors[id] = i
	return i.WorkingHoursVersion, nil
}

type fakeWorkingHours struct{ *memStore }

func (f fakeWorkingHours) GetByInstructorID(_ context.Context, instructorID int64) ([]model.DaySchedule, error) {
	f.touch()
	byDay := map[model.Weekday][]model.TimeSlot{}
	for _, s := range f.slots {
		if s.InstructorID == instructorID {
			byDay[s.Day] = append(byDay[s.Day], s.TimeSlot)
		}
	}
	var days []model.DaySchedule
	for _, wd := range model.Weekdays {
		if slots, ok := byDay[wd]; ok {
			model.SortSlots(slots)
			days = append(days, model.DaySchedule{Day: wd, Slots: slots})
		}
	}
	return days, nil
}

func (f fakeWorkingHours) GetSlotByID(_ context.Context, id int64) (*repository.StoredSlot, error) {
	f.touch()
	s, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f fakeWorkingHours) ReplaceWeek(_ context.Context, ws model.WeeklySchedule) error {
	f.touch()
	keep := map[int64]bool{}
	for _, d := range ws.Days {
		for _, s := range d.Slots {
			if s.IsDurable() {
				if stored, ok := f.slots[s.ID]; !ok || stored.InstructorID != ws.InstructorID {
					return apperror.NotFound("time slot", s.ID)
				}
			} else {
				s.ID = f.id()
			}
			s.Key = ""
			keep[s.ID] = true
			f.slots[s.ID] = repository.StoredSlot{TimeSlot: s, InstructorID: ws.InstructorID, Day: d.Day}
		}
	}
	for id, s := range f.slots {
		if s.InstructorID == ws.InstructorID && !keep[id] {
			delete(f.slots, id)
		}
	}
	return nil
}

func (f fakeWorkingHours) Delete(_ context.Context, id int64) error {
	f.touch()
	if _, ok := f.slots[id]; !ok {
		return apperror.NotFound("time slot", id)
	}
	delete(f.slots, id)
	return nil
}

type fakeBookings struct{ *memStore }

func (f fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.touch()
	b.ID = f.id()
	f.bookings[b.ID] = *b
	return nil
}

func (f fakeBookings) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	f.touch()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	b.RescheduleHistory = append([]model.RescheduleEntry(nil), b.RescheduleHistory...)
	return &b, nil
}

func (f fakeBookings) GetForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f fakeBookings) ListActiveByInstructor(_ context.Context, instructorID int64, from, to time.Time) ([]model.Booking, error) {
	f.touch()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.InstructorID == instructorID && b.IsActive() && timeslot.WithinDates(b.Date, from, to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, b *model.Booking) error {
	f.touch()
	stored := f.bookings[b.ID]
	stored.Status = b.Status
	stored.CancellationReasonID = b.CancellationReasonID
	f.bookings[b.ID] = stored
	return nil
}

func (f fakeBookings) Reschedule(_ context.Context, b *model.Booking, entry *model.RescheduleEntry) error {
	f.touch()
	entry.ID = f.id()
	entry.Timestamp = time.Now()
	b.RescheduleHistory = append(b.RescheduleHistory, *entry)
	f.bookings[b.ID] = *b
	return nil
}

type fakeVacations struct{ *memStore }

func (f fakeVacations) Create(_ context.Context, v *model.Vacation) error {
	f.touch()
	v.ID = f.id()
	f.vacations[v.ID] = *v
	return nil
}

func (f fakeVacations) GetByID(_ context.Context, id int64) (*model.Vacation, error) {
	f.touch()
	v, ok := f.vacations[id]
	if !ok {
		return nil, nil
	}
	v.ImpactedClasses = []model.Booking{}
	for _, bid := range f.impacted[id] {
		v.ImpactedClasses = append(v.ImpactedClasses, f.bookings[bid])
	}
	return &v, nil
}

func (f fakeVacations) GetForUpdate(ctx context.Context, id int64) (*model.Vacation, error) {
	return f.GetByID(ctx, id)
}

func (f fakeVacations) ListByInstructor(ctx context.Context, instructorID int64) ([]model.Vacation, error) {
	var out []model.Vacation
	for id, v := range f.vacations {
		if v.InstructorID == instructorID {
			full, _ := f.GetByID(ctx, id)
			out = append(out, *full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f fakeVacations) ListApprovedOverlapping(_ context.Context, instructorID int64, from, to time.Time) ([]model.Vacation, error) {
	f.touch()
	var out []model.Vacation
	for _, v := range f.vacations {
		if v.InstructorID == instructorID && v.IsApproved() && !v.EndDate.Before(from) && !v.StartDate.After(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f fakeVacations) Update(_ context.Context, v *model.Vacation) error {
	f.touch()
	f.trace = append(f.trace, fmt.Sprintf("update vacation %d", v.ID))
	stored := f.vacations[v.ID]
	stored.StartDate, stored.EndDate, stored.Reason = v.StartDate, v.EndDate, v.Reason
	f.vacations[v.ID] = stored
	return nil
}

func (f fakeVacations) UpdateStatus(_ context.Context, v *model.Vacation) error {
	f.touch()
	f.trace = append(f.trace, fmt.Sprintf("set vacation %d %s", v.ID, v.Status))
	stored := f.vacations[v.ID]
	stored.Status = v.Status
	f.vacations[v.ID] = stored
	return nil
}

func (f fakeVacations) Delete(_ context.Context, id int64) (bool, error) {
	f.touch()
	if _, ok := f.vacations[id]; !ok {
		return false, nil
	}
	delete(f.vacations, id)
	delete(f.impacted, id)
	return true, nil
}

func (f fakeVacations) ReplaceImpacted(_ context.Context, vacationID int64, bookingIDs []int64) error {
	f.touch()
	f.impacted[vacationID] = append([]int64(nil), bookingIDs...)
	return nil
}

type fakeReasons struct{ *memStore }

func (f fakeReasons) GetByID(_ context.Context, id int64) (*model.CancellationReason, error) {
	f.touch()
	r, ok := f.reasons[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f fakeReasons) ListActive(_ context.Context) ([]model.CancellationReason, error) {
	var out []model.CancellationReason
	for _, r := range f.reasons {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingCache struct {
	cache.Nop
	invalidated []int64
}

func (c *recordingCache) Invalidate(_ context.Context, instructorID int64) error {
	c.invalidated = append(c.invalidated, instructorID)
	return nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) error {
	p.events = append(p.events, evs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) BookingCancelled(_ context.Context, i model.Instructor, _ model.Booking, _ string) error {
	n.sent = append(n.sent, "cancelled:"+i.Name)
	return nil
}

func (n *recordingNotifier) BookingRescheduled(_ context.Context, i model.Instructor, _ model.Booking, _ model.RescheduleEntry, _ string) error {
	n.sent = append(n.sent, "rescheduled:"+i.Name)
	return nil
}

func (n *recordingNotifier) VacationImpact(_ context.Context, i model.Instructor, _ model.Vacation) error {
	n.sent = append(n.sent, "impact:"+i.Name)
	return nil
}

func (n *recordingNotifier) VacationStatusChanged(_ context.Context, i model.Instructor, _ model.Vacation) error {
	n.sent = append(n.sent, "status:"+i.Name)
	return nil
}

// harness собирает сервисы поверх одного memStore
type harness struct {
	store        *memStore
	cache        *recordingCache
	publisher    *recordingPublisher
	notifier     *recordingNotifier
	workingHours *WorkingHoursService
	availability *AvailabilityService
	bookings     *BookingService
	vacations    *VacationService
	instructors  *InstructorService
}

func newHarness() *harness {
	store := newMemStore()
	h := &harness{
		store:     store,
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}

	logger := zap.NewNop()
	tx := fakeTx{}
	instructors := fakeInstructors{store}
	workingHours := fakeWorkingHours{store}
	bookings := fakeBookings{store}
	vacations := fakeVacations{store}
	effects := NewEffects(h.cache, h.publisher, h.notifier, logger)

	h.workingHours = NewWorkingHoursService(tx, instructors, workingHours, effects, logger)
	h.availability = NewAvailabilityService(instructors, workingHours, bookings, vacations, nil, 0, logger)
	h.bookings = NewBookingService(tx, bookings, instructors, fakeReasons{store}, h.availability, effects, logger)
	h.vacations = NewVacationService(tx, vacations, bookings, instructors, effects, logger)
	h.instructors = NewInstructorService(instructors, logger)
	return h
}
