package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// ── 内存存储 ──
//
// 所有 mock repository 共享同一份 mockStore；写入时保存副本，
// 读取时返回副本并补齐关联，行为上接近 gorm 的预加载结果。

type mockStore struct {
	programs   map[string]*model.Program
	semesters  map[string]*model.Semester
	groups     map[string]*model.Group
	users      map[string]*model.User
	subjects   map[string]*model.Subject
	teaches    map[string]bool // teacherID + "|" + subjectID
	locations  map[string]*model.Location
	timetables map[string]*model.Timetable
	slots      map[string]*model.TimeSlot

	lockCalls int
	// failSlotCreate 非空时 TimeSlot.Create 直接返回该错误，模拟存储故障
	failSlotCreate error
}

func newMockStore() *mockStore {
	return &mockStore{
		programs:   make(map[string]*model.Program),
		semesters:  make(map[string]*model.Semester),
		groups:     make(map[string]*model.Group),
		users:      make(map[string]*model.User),
		subjects:   make(map[string]*model.Subject),
		teaches:    make(map[string]bool),
		locations:  make(map[string]*model.Location),
		timetables: make(map[string]*model.Timetable),
		slots:      make(map[string]*model.TimeSlot),
	}
}

func (st *mockStore) group(id string) (*model.Group, bool) {
	g, ok := st.groups[id]
	if !ok {
		return nil, false
	}
	cp := *g
	if p, ok := st.programs[g.ProgramID]; ok {
		pc := *p
		cp.Program = &pc
	}
	if s, ok := st.semesters[g.SemesterID]; ok {
		sc := *s
		cp.Semester = &sc
	}
	return &cp, true
}

func (st *mockStore) slotWithRefs(s *model.TimeSlot) model.TimeSlot {
	cp := *s
	if cp.TeacherID != nil {
		if u, ok := st.users[*cp.TeacherID]; ok {
			uc := *u
			cp.Teacher = &uc
		}
	}
	if cp.SubjectID != nil {
		if sub, ok := st.subjects[*cp.SubjectID]; ok {
			sc := *sub
			cp.Subject = &sc
		}
	}
	if cp.LocationID != nil {
		if l, ok := st.locations[*cp.LocationID]; ok {
			lc := *l
			cp.Location = &lc
		}
	}
	return cp
}

// sortedSlots 按日期、开始时间排序后的课时副本
func (st *mockStore) sortedSlots(keep func(*model.TimeSlot) bool) []model.TimeSlot {
	var result []model.TimeSlot
	for _, s := range st.slots {
		if keep(s) {
			result = append(result, st.slotWithRefs(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Interval.Start < result[j].Interval.Start
	})
	return result
}

func (st *mockStore) groupOfTimetable(timetableID string) string {
	if tt, ok := st.timetables[timetableID]; ok {
		return tt.GroupID
	}
	return ""
}

// ── Mock TxRunner ──
// 失败时恢复快照，模拟事务回滚

type mockTxRunner struct {
	st   *mockStore
	repo *repository.Repository
}

func (m *mockTxRunner) RunInTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	slots := make(map[string]*model.TimeSlot, len(m.st.slots))
	for k, v := range m.st.slots {
		slots[k] = v
	}
	timetables := make(map[string]*model.Timetable, len(m.st.timetables))
	for k, v := range m.st.timetables {
		timetables[k] = v
	}
	semesters := make(map[string]*model.Semester, len(m.st.semesters))
	for k, v := range m.st.semesters {
		semesters[k] = v
	}

	if err := fn(m.repo); err != nil {
		m.st.slots = slots
		m.st.timetables = timetables
		m.st.semesters = semesters
		return err
	}
	return nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct{ st *mockStore }

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = uuid.NewString()
	}
	if semester.Version == 0 {
		semester.Version = 1
	}
	cp := *semester
	m.st.semesters[semester.SemesterID] = &cp
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.st.semesters[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context, programID string) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.st.semesters {
		if programID != "" && (s.ProgramID == nil || *s.ProgramID != programID) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	cur, ok := m.st.semesters[semester.SemesterID]
	if !ok || cur.Version != semester.Version {
		return pkgerrors.ErrOptimisticLock
	}
	semester.Version++
	cp := *semester
	m.st.semesters[semester.SemesterID] = &cp
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.st.semesters, id)
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct{ st *mockStore }

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.st.group(id); ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) LockByID(ctx context.Context, id string) (*model.Group, error) {
	m.st.lockCalls++
	return m.GetByID(ctx, id)
}

// ── Mock LocationRepository ──

type mockLocationRepo struct{ st *mockStore }

func (m *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	if loc.LocationID == "" {
		loc.LocationID = uuid.NewString()
	}
	cp := *loc
	m.st.locations[loc.LocationID] = &cp
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.st.locations[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) List(_ context.Context, includeInactive bool) ([]model.Location, error) {
	var result []model.Location
	for _, l := range m.st.locations {
		if !includeInactive && !l.IsActive {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.Location) error {
	cp := *loc
	m.st.locations[loc.LocationID] = &cp
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.st.locations, id)
	return nil
}

// ── Mock DirectoryRepository ──

type mockDirectoryRepo struct{ st *mockStore }

func (m *mockDirectoryRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.st.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDirectoryRepo) GetSubject(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.st.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDirectoryRepo) TeacherTeachesSubject(_ context.Context, teacherID, subjectID string) (bool, error) {
	return m.st.teaches[teacherID+"|"+subjectID], nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct{ st *mockStore }

func (m *mockTimetableRepo) Create(_ context.Context, tt *model.Timetable) error {
	for _, existing := range m.st.timetables {
		if existing.GroupID == tt.GroupID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uk_timetables_group"}
		}
	}
	if tt.TimetableID == "" {
		tt.TimetableID = uuid.NewString()
	}
	tt.CreatedAt = time.Now()
	tt.UpdatedAt = tt.CreatedAt
	cp := *tt
	cp.Group = nil
	m.st.timetables[tt.TimetableID] = &cp
	return nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.Timetable, error) {
	tt, ok := m.st.timetables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tt
	if g, ok := m.st.group(tt.GroupID); ok {
		cp.Group = g
	}
	return &cp, nil
}

func (m *mockTimetableRepo) GetByGroupID(ctx context.Context, groupID string) (*model.Timetable, error) {
	for id, tt := range m.st.timetables {
		if tt.GroupID == groupID {
			return m.GetByID(ctx, id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) Delete(_ context.Context, id string) error {
	delete(m.st.timetables, id)
	for sid, s := range m.st.slots {
		if s.TimetableID == id {
			delete(m.st.slots, sid)
		}
	}
	return nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct{ st *mockStore }

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	if m.st.failSlotCreate != nil {
		return m.st.failSlotCreate
	}
	if slot.TimeSlotID == "" {
		slot.TimeSlotID = uuid.NewString()
	}
	if slot.Version == 0 {
		slot.Version = 1
	}
	slot.SyncDayOfWeek()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	cp := *slot
	cp.Teacher, cp.Subject, cp.Location = nil, nil, nil
	m.st.slots[slot.TimeSlotID] = &cp
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	s, ok := m.st.slots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.st.slotWithRefs(s)
	return &cp, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	cur, ok := m.st.slots[slot.TimeSlotID]
	if !ok || cur.Version != slot.Version {
		return pkgerrors.ErrOptimisticLock
	}
	slot.SyncDayOfWeek()
	slot.Version++
	cp := *slot
	cp.Teacher, cp.Subject, cp.Location = nil, nil, nil
	m.st.slots[slot.TimeSlotID] = &cp
	return nil
}

func (m *mockTimeSlotRepo) DeleteByIDs(_ context.Context, timetableID string, ids []string, _ string) error {
	for _, id := range ids {
		if s, ok := m.st.slots[id]; ok && s.TimetableID == timetableID {
			delete(m.st.slots, id)
		}
	}
	return nil
}

func (m *mockTimeSlotRepo) ListByIDs(_ context.Context, ids []string) ([]model.TimeSlot, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.st.sortedSlots(func(s *model.TimeSlot) bool { return want[s.TimeSlotID] }), nil
}

func (m *mockTimeSlotRepo) ListByDateRange(_ context.Context, timetableID string, from, to calendar.Date) ([]model.TimeSlot, error) {
	return m.st.sortedSlots(func(s *model.TimeSlot) bool {
		return s.TimetableID == timetableID && inRange(s.Date, from, to)
	}), nil
}

func (m *mockTimeSlotRepo) ListByTeacherRange(_ context.Context, teacherID string, from, to calendar.Date) ([]model.TimeSlot, error) {
	return m.st.sortedSlots(func(s *model.TimeSlot) bool {
		return s.TeacherID != nil && *s.TeacherID == teacherID && inRange(s.Date, from, to)
	}), nil
}

func (m *mockTimeSlotRepo) ListByTeacher(_ context.Context, teacherID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	return m.st.sortedSlots(func(s *model.TimeSlot) bool {
		return s.TeacherID != nil && *s.TeacherID == teacherID && s.Date.Equal(date) && s.TimeSlotID != excludeID
	}), nil
}

func (m *mockTimeSlotRepo) ListByGroup(_ context.Context, groupID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	return m.st.sortedSlots(func(s *model.TimeSlot) bool {
		return m.st.groupOfTimetable(s.TimetableID) == groupID && s.Date.Equal(date) && s.TimeSlotID != excludeID
	}), nil
}

func (m *mockTimeSlotRepo) ListByLocation(_ context.Context, locationID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	return m.st.sortedSlots(func(s *model.TimeSlot) bool {
		return s.LocationID != nil && *s.LocationID == locationID && s.Date.Equal(date) && s.TimeSlotID != excludeID
	}), nil
}

func (m *mockTimeSlotRepo) FindDuplicate(_ context.Context, slot *model.TimeSlot) (*model.TimeSlot, error) {
	for _, s := range m.st.slots {
		if s.TimeSlotID == slot.TimeSlotID || s.TimetableID != slot.TimetableID {
			continue
		}
		if s.Date.Equal(slot.Date) && s.Interval.Equal(slot.Interval) &&
			sameRef(s.TeacherID, slot.TeacherID) && sameRef(s.SubjectID, slot.SubjectID) && sameRef(s.LocationID, slot.LocationID) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) CountOutsideWindow(_ context.Context, semesterID string, start, end calendar.Date) (int64, error) {
	var count int64
	for _, s := range m.st.slots {
		g, ok := m.st.groups[m.st.groupOfTimetable(s.TimetableID)]
		if !ok || g.SemesterID != semesterID {
			continue
		}
		if s.Date.Before(start) || s.Date.After(end) {
			count++
		}
	}
	return count, nil
}

func (m *mockTimeSlotRepo) LockForScheduling(_ context.Context) error {
	m.st.lockCalls++
	return nil
}

func inRange(d, from, to calendar.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ── 测试环境 ──

const (
	testDept      = "dept-cs"
	testOtherDept = "dept-ee"
	testProgram   = "prog-cs"
	testSemester  = "sem-2025-fall"
	testGroupA    = "grp-a"
	testGroupB    = "grp-b"
	testTeacher1  = "11111111-1111-1111-1111-111111111111"
	testTeacher2  = "22222222-2222-2222-2222-222222222222"
	testStudent   = "33333333-3333-3333-3333-333333333333"
	testMath      = "sub-math"
	testPhysics   = "sub-phys"
	testArt       = "sub-art"
	testRoom101   = "loc-101"
	testRoom102   = "loc-102"
	testRoomOld   = "loc-old"
)

var (
	adminCaller    = Caller{UserID: "admin-001", Role: model.RoleAdmin}
	hodCaller      = Caller{UserID: "hod-001", Role: model.RoleHOD, DepartmentID: testDept}
	otherHODCaller = Caller{UserID: "hod-002", Role: model.RoleHOD, DepartmentID: testOtherDept}
	teacherCaller  = Caller{UserID: testTeacher1, Role: model.RoleTeacher, DepartmentID: testDept}
)

type testEnv struct {
	st        *mockStore
	repo      *repository.Repository
	timeSlot  TimeSlotService
	timetable *timetableService
	semester  SemesterService
	location  LocationService
	export    ExportService
}

// newTestEnv 学期 2025-09-01（周一）至 2025-12-01，两个同院系班级，两名教师
func newTestEnv() *testEnv {
	st := newMockStore()
	repo := &repository.Repository{
		Semester:  &mockSemesterRepo{st: st},
		Group:     &mockGroupRepo{st: st},
		Location:  &mockLocationRepo{st: st},
		Directory: &mockDirectoryRepo{st: st},
		Timetable: &mockTimetableRepo{st: st},
		TimeSlot:  &mockTimeSlotRepo{st: st},
	}
	repo.Tx = &mockTxRunner{st: st, repo: repo}

	st.programs[testProgram] = &model.Program{ProgramID: testProgram, Name: "计算机科学", DepartmentID: testDept}
	st.semesters[testSemester] = &model.Semester{
		SemesterID: testSemester,
		Name:       "2025 秋季学期",
		StartDate:  calendar.MustParseDate("2025-09-01"),
		EndDate:    calendar.MustParseDate("2025-12-01"),
		IsActive:   true,
	}
	st.semesters[testSemester].Version = 1
	st.groups[testGroupA] = &model.Group{GroupID: testGroupA, Name: "CS-1", ProgramID: testProgram, SemesterID: testSemester}
	st.groups[testGroupB] = &model.Group{GroupID: testGroupB, Name: "CS-2", ProgramID: testProgram, SemesterID: testSemester}

	st.users[testTeacher1] = &model.User{UserID: testTeacher1, Name: "张老师", Role: model.RoleTeacher}
	st.users[testTeacher2] = &model.User{UserID: testTeacher2, Name: "李老师", Role: model.RoleTeacher}
	st.users[testStudent] = &model.User{UserID: testStudent, Name: "王同学", Role: model.RoleStudent}

	st.subjects[testMath] = &model.Subject{SubjectID: testMath, Code: "MATH101", Name: "高等数学"}
	st.subjects[testPhysics] = &model.Subject{SubjectID: testPhysics, Code: "PHYS101", Name: "大学物理"}
	st.subjects[testArt] = &model.Subject{SubjectID: testArt, Code: "ART101", Name: "艺术鉴赏"}
	for _, t := range []string{testTeacher1, testTeacher2} {
		st.teaches[t+"|"+testMath] = true
		st.teaches[t+"|"+testPhysics] = true
	}
	st.teaches[testStudent+"|"+testMath] = true

	st.locations[testRoom101] = &model.Location{LocationID: testRoom101, Name: "教学楼101", IsActive: true}
	st.locations[testRoom102] = &model.Location{LocationID: testRoom102, Name: "教学楼102", IsActive: true}
	st.locations[testRoomOld] = &model.Location{LocationID: testRoomOld, Name: "旧实验室", IsActive: false}

	logger := zap.NewNop()
	identity := NewDirectoryIdentity(repo.Directory)
	scope := NewDepartmentScope()
	timetable := NewTimetableService(repo, identity, scope, time.UTC, logger).(*timetableService)
	// 固定"今天"，保证复制周课表的目标日期校验可重复
	timetable.now = func() time.Time { return time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC) }

	return &testEnv{
		st:        st,
		repo:      repo,
		timeSlot:  NewTimeSlotService(repo, identity, scope, 50, logger),
		timetable: timetable,
		semester:  NewSemesterService(repo, logger),
		location:  NewLocationService(repo, logger),
		export:    NewExportService(repo, timetable, time.UTC, logger),
	}
}

// seedTimetable 直接写入一张课表，返回其 ID
func (e *testEnv) seedTimetable(groupID string) string {
	id := uuid.NewString()
	e.st.timetables[id] = &model.Timetable{TimetableID: id, GroupID: groupID}
	return id
}

// seedSlot 直接写入一个课时，绕过校验
func (e *testEnv) seedSlot(timetableID, date, start, end, teacherID, subjectID, locationID string) string {
	slot := &model.TimeSlot{
		TimetableID: timetableID,
		Date:        calendar.MustParseDate(date),
		Interval: calendar.Interval{
			Start: calendar.MustParseClock(start),
			End:   calendar.MustParseClock(end),
		},
		TeacherID:  strPtr(teacherID),
		SubjectID:  strPtr(subjectID),
		LocationID: strPtr(locationID),
	}
	if err := (&mockTimeSlotRepo{st: e.st}).Create(context.Background(), slot); err != nil {
		panic(fmt.Sprintf("seed slot: %v", err))
	}
	return slot.TimeSlotID
}

func (e *testEnv) slotCount(timetableID string) int {
	n := 0
	for _, s := range e.st.slots {
		if s.TimetableID == timetableID {
			n++
		}
	}
	return n
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
