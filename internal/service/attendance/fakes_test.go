package attendance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sysconfig"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timezone"
)

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	mu        sync.Mutex
	records   []attendance.Attendance
	seq       int
	locks     []string
	names     map[string]string
	updateErr map[string]error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{names: map[string]string{}, updateErr: map[string]error{}}
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func (f *fakeAttendanceRepo) insert(rec attendance.Attendance) attendance.Attendance {
	f.seq++
	rec.ID = fmt.Sprintf("att-%d", f.seq)
	rec.CreatedAt = epoch.Add(time.Duration(f.seq) * time.Second)
	rec.UpdatedAt = rec.CreatedAt
	f.records = append(f.records, rec)
	return rec
}

// seed stores a record directly, bypassing the service.
func (f *fakeAttendanceRepo) seed(rec attendance.Attendance) attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(rec)
}

func (f *fakeAttendanceRepo) all() []attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records)
}

func (f *fakeAttendanceRepo) Create(_ context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(rec), nil
}

func (f *fakeAttendanceRepo) CreateAbsence(_ context.Context, employeeID string, date string) (attendance.Attendance, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.EmployeeID == employeeID && r.Date == date {
			return attendance.Attendance{}, false, nil
		}
	}
	return f.insert(attendance.Attendance{EmployeeID: employeeID, Date: date, Status: attendance.StatusAbsent}), true, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[rec.ID]; err != nil {
		return attendance.Attendance{}, err
	}
	for i, r := range f.records {
		if r.ID == rec.ID {
			rec.CreatedAt = r.CreatedAt
			rec.UpdatedAt = r.UpdatedAt.Add(time.Second)
			f.records[i] = rec
			return rec, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) GetLatestByEmployeeAndDate(_ context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *attendance.Attendance
	for i := range f.records {
		r := f.records[i]
		if r.EmployeeID != employeeID || r.Date != date {
			continue
		}
		if r.IsOpen() {
			return &r, nil
		}
		latest = &r
	}
	return latest, nil
}

func (f *fakeAttendanceRepo) FindOpenSession(_ context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.EmployeeID == employeeID && r.Date == date && r.IsOpen() {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) ListOpenSessions(_ context.Context, date string) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.records {
		if r.Date == date && r.IsOpen() && slices.Contains(attendance.ClockedInStatuses, r.Status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date string) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.records {
		if r.EmployeeID == employeeID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByDate(_ context.Context, date string) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.records {
		if r.Date != date {
			continue
		}
		if name, ok := f.names[r.EmployeeID]; ok {
			r.EmployeeName = &name
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) DeleteAbsentByDate(_ context.Context, date string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteWhere(func(r attendance.Attendance) bool {
		return r.Status == attendance.StatusAbsent && r.Date == date
	}), nil
}

func (f *fakeAttendanceRepo) DeleteAllAbsent(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteWhere(func(r attendance.Attendance) bool {
		return r.Status == attendance.StatusAbsent
	}), nil
}

func (f *fakeAttendanceRepo) deleteWhere(match func(attendance.Attendance) bool) int64 {
	before := len(f.records)
	f.records = slices.DeleteFunc(f.records, match)
	return int64(before - len(f.records))
}

func (f *fakeAttendanceRepo) LockEmployeeDate(_ context.Context, employeeID string, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks = append(f.locks, employeeID+":"+date)
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	err       error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if f.err != nil {
		return employee.Employee{}, f.err
	}
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeScheduleRepo struct {
	schedules []schedule.EmployeeSchedule
	err       error
}

func (f *fakeScheduleRepo) ListActiveForDate(_ context.Context, date string, weekday string) ([]schedule.EmployeeSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []schedule.EmployeeSchedule
	for _, s := range f.schedules {
		if s.Covers(date, weekday) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetActiveForEmployee(_ context.Context, employeeID string, date string, weekday string) (*schedule.EmployeeSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.schedules {
		if s.EmployeeID == employeeID && s.Covers(date, weekday) {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

type publishedEvent struct {
	key   string
	event attendance.StatusEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	ev, _ := payload.(attendance.StatusEvent)
	f.events = append(f.events, publishedEvent{key: routingKey, event: ev})
	return nil
}

func (f *fakePublisher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.key)
	}
	return out
}

type harness struct {
	svc       attendance.AttendanceService
	repo      *fakeAttendanceRepo
	employees *fakeEmployeeRepo
	schedules *fakeScheduleRepo
	publisher *fakePublisher
	tx        *fakeTxManager
	now       time.Time
}

var manila = mustLoadLocation("Asia/Manila")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// local builds an instant from Manila wall-clock values.
func local(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, manila)
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	h := &harness{
		repo: newFakeAttendanceRepo(),
		employees: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			"E1": {ID: "E1", FullName: "Ana Reyes", Status: employee.EmploymentStatusActive},
			"E2": {ID: "E2", FullName: "Ben Cruz", Status: employee.EmploymentStatusActive},
			"E3": {ID: "E3", FullName: "Carla Lim", Status: employee.EmploymentStatusActive},
			"E4": {ID: "E4", FullName: "Dan Uy", Status: employee.EmploymentStatusActive},
		}},
		schedules: &fakeScheduleRepo{},
		publisher: &fakePublisher{},
		tx:        &fakeTxManager{},
		now:       now,
	}

	h.withGrace(30)
	return h
}

// withGrace rebuilds the service with the given clock-out grace period.
func (h *harness) withGrace(minutes int) {
	settings := sysconfig.NewStaticStore(sysconfig.Settings{Timezone: "Asia/Manila", ClockOutGracePeriodMinutes: minutes})
	clock := timezone.NewResolver(settings, func() time.Time { return h.now })

	h.svc = NewAttendanceService(h.tx, h.repo, h.employees, h.schedules, clock, settings, h.publisher)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func dayShift(employeeID, start, end string) schedule.EmployeeSchedule {
	return schedule.EmployeeSchedule{
		ID:         "sch-" + employeeID,
		EmployeeID: employeeID,
		ShiftName:  "Day",
		ShiftStart: start,
		ShiftEnd:   end,
		Days:       weekdays,
		Status:     schedule.StatusActive,
	}
}

var errBoom = errors.New("boom")
