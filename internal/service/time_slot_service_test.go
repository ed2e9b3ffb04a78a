package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// ── 测试辅助 ──

func slotInput(date, start, end, teacherID, subjectID, locationID string) dto.TimeSlotInput {
	return dto.TimeSlotInput{
		TimeSlot:     dto.TimeRangeInput{StartTime: start, EndTime: end},
		TeacherID:    strPtr(teacherID),
		SubjectID:    strPtr(subjectID),
		LocationID:   strPtr(locationID),
		TimeSlotDate: date,
	}
}

func batch(slots ...dto.TimeSlotInput) *dto.CreateTimeSlotsRequest {
	return &dto.CreateTimeSlotsRequest{Slots: slots}
}

// ── Create 测试 ──

func TestTimeSlotService_CreateSlots_Success(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	resp, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
		slotInput("2025-09-02", "08:00:00", "10:00:00", testTeacher1, testPhysics, testRoom101),
	), adminCaller)
	if err != nil {
		t.Fatalf("CreateSlots 应成功: %v", err)
	}
	if resp.Created != 2 {
		t.Errorf("期望 Created=2，实际=%d", resp.Created)
	}
	first := resp.Slots[0]
	if first.DayOfWeek != "Monday" {
		t.Errorf("期望 DayOfWeek=Monday，实际=%s", first.DayOfWeek)
	}
	if first.TimeSlot.StartTime != "08:00:00" || first.TimeSlot.EndTime != "10:00:00" {
		t.Errorf("期望 08:00:00-10:00:00，实际=%s-%s", first.TimeSlot.StartTime, first.TimeSlot.EndTime)
	}
	if first.TeacherName != "张老师" || first.LocationName != "教学楼101" {
		t.Errorf("期望返回关联名称，实际 teacher=%q location=%q", first.TeacherName, first.LocationName)
	}
	if env.slotCount(ttID) != 2 {
		t.Errorf("期望持久化 2 个课时，实际=%d", env.slotCount(ttID))
	}
}

func TestTimeSlotService_CreateSlots_TimetableNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.timeSlot.CreateSlots(context.Background(), "nonexistent", batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrTimetableNotFound) {
		t.Errorf("期望 ErrTimetableNotFound，实际: %v", err)
	}
}

func TestTimeSlotService_CreateSlots_EmptyBatch(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(), adminCaller)
	if !errors.Is(err, ErrEmptySlotBatch) {
		t.Errorf("期望 ErrEmptySlotBatch，实际: %v", err)
	}
}

func TestTimeSlotService_CreateSlots_BatchTooLarge(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	slots := make([]dto.TimeSlotInput, 51)
	for i := range slots {
		slots[i] = slotInput("2025-09-01", "08:00", "09:00", testTeacher1, testMath, testRoom101)
	}
	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(slots...), adminCaller)
	if !errors.Is(err, ErrSlotBatchTooLarge) {
		t.Errorf("期望 ErrSlotBatchTooLarge，实际: %v", err)
	}
}

func TestTimeSlotService_CreateSlots_InvalidDateFormatReportsIndex(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
		slotInput("2025/09/02", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)

	var slotErr *SlotError
	if !errors.As(err, &slotErr) {
		t.Fatalf("期望 *SlotError，实际: %v", err)
	}
	if slotErr.Index != 1 {
		t.Errorf("期望 Index=1，实际=%d", slotErr.Index)
	}
	if !errors.Is(err, ErrInvalidDateFormat) {
		t.Errorf("期望 ErrInvalidDateFormat，实际: %v", err)
	}
}

// ── 结构校验 ──

func TestTimeSlotService_CreateSlots_MissingField(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, ""),
	), adminCaller)
	if !errors.Is(err, ErrSlotMissingField) {
		t.Errorf("期望 ErrSlotMissingField，实际: %v", err)
	}
}

func TestTimeSlotService_CreateSlots_LocationChecks(t *testing.T) {
	tests := []struct {
		name       string
		locationID string
		want       error
	}{
		{"教室不存在", "loc-missing", ErrLocationNotFound},
		{"教室已停用", testRoomOld, ErrLocationInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ttID := env.seedTimetable(testGroupA)

			_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
				slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, tt.locationID),
			), adminCaller)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

// 教室校验先于学期范围校验
func TestTimeSlotService_CreateSlots_LocationBeforeSemesterRange(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-12-02", "08:00", "10:00", testTeacher1, testMath, testRoomOld),
	), adminCaller)
	if !errors.Is(err, ErrLocationInactive) {
		t.Fatalf("期望 ErrLocationInactive，实际: %v", err)
	}
	if errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("不应同时报告超出学期范围: %v", err)
	}
}

// 学期 2025-09-01 至 2025-12-01，首尾两天均可排课
func TestTimeSlotService_CreateSlots_SemesterRange(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2025-08-31", true},
		{"2025-09-01", false},
		{"2025-12-01", false},
		{"2025-12-02", true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			env := newTestEnv()
			ttID := env.seedTimetable(testGroupA)

			_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
				slotInput(tt.date, "08:00", "10:00", testTeacher1, testMath, testRoom101),
			), adminCaller)
			if tt.wantErr && !errors.Is(err, ErrSlotOutOfRange) {
				t.Errorf("期望 ErrSlotOutOfRange，实际: %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("边界日期应被接受: %v", err)
			}
		})
	}
}

func TestTimeSlotService_CreateSlots_InvalidInterval(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"结束早于开始", "10:00:00", "09:00:00"},
		{"零时长", "10:00:00", "10:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ttID := env.seedTimetable(testGroupA)

			_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
				slotInput("2025-09-01", tt.start, tt.end, testTeacher1, testMath, testRoom101),
			), adminCaller)
			if !errors.Is(err, ErrSlotInvalidInterval) {
				t.Errorf("期望 ErrSlotInvalidInterval，实际: %v", err)
			}
		})
	}
}

func TestTimeSlotService_CreateSlots_TeacherRoleMissing(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-09-01", "08:00", "10:00", testStudent, testMath, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrTeacherRoleMissing) {
		t.Errorf("期望 ErrTeacherRoleMissing，实际: %v", err)
	}
}

func TestTimeSlotService_CreateSlots_TeacherSubjectMismatch(t *testing.T) {
	env := newTestEnv()
	ttID := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttID, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testArt, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrTeacherSubjectMismatch) {
		t.Errorf("期望 ErrTeacherSubjectMismatch，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 冲突检测：教师 / 班级 / 教室三个维度分别验证
// ════════════════════════════════════════════════════════════

func TestTimeSlotService_TeacherConflict(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	ctx := context.Background()

	if _, err := env.timeSlot.CreateSlots(ctx, ttA, batch(
		slotInput("2025-09-01", "08:00:00", "10:00:00", testTeacher1, testMath, testRoom101),
	), adminCaller); err != nil {
		t.Fatalf("首个课时应成功: %v", err)
	}

	// 同一教师、同一天、不同班级和教室
	_, err := env.timeSlot.CreateSlots(ctx, ttB, batch(
		slotInput("2025-09-01", "09:00:00", "11:00:00", testTeacher1, testPhysics, testRoom102),
	), adminCaller)
	if !errors.Is(err, ErrTeacherConflict) {
		t.Fatalf("期望 ErrTeacherConflict，实际: %v", err)
	}

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 *ConflictError，实际: %T", err)
	}
	if conflictErr.Dimension != DimensionTeacher {
		t.Errorf("期望维度 teacher，实际=%s", conflictErr.Dimension)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Fatalf("期望 1 个冲突课时，实际=%d", len(conflictErr.Conflicts))
	}
	c := conflictErr.Conflicts[0]
	if c.StartTime != "08:00:00" || c.EndTime != "10:00:00" {
		t.Errorf("冲突应指向 08:00:00-10:00:00，实际=%s-%s", c.StartTime, c.EndTime)
	}
	if env.slotCount(ttB) != 0 {
		t.Error("冲突课时不应写入")
	}
}

func TestTimeSlotService_TeacherConflict_NoOverlapCases(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		start, end string
	}{
		{"首尾相接", "2025-09-01", "10:00", "12:00"},
		{"结束于对方开始", "2025-09-01", "06:00", "08:00"},
		{"不同日期", "2025-09-02", "08:00", "10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ttA := env.seedTimetable(testGroupA)
			ttB := env.seedTimetable(testGroupB)
			env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

			_, err := env.timeSlot.CreateSlots(context.Background(), ttB, batch(
				slotInput(tt.date, tt.start, tt.end, testTeacher1, testMath, testRoom102),
			), adminCaller)
			if err != nil {
				t.Errorf("不重叠的区间应被接受: %v", err)
			}
		})
	}
}

func TestTimeSlotService_GroupConflict(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	existing := env.seedSlot(ttA, "2025-09-03", "13:00", "15:00", testTeacher1, testMath, testRoom101)

	// 不同教师、不同教室，同一班级
	_, err := env.timeSlot.CreateSlots(context.Background(), ttA, batch(
		slotInput("2025-09-03", "14:30", "16:00", testTeacher2, testPhysics, testRoom102),
	), adminCaller)
	if !errors.Is(err, ErrGroupConflict) {
		t.Fatalf("期望 ErrGroupConflict，实际: %v", err)
	}
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) && conflictErr.Conflicts[0].SlotID != existing {
		t.Errorf("冲突应指向已有课时 %s，实际=%s", existing, conflictErr.Conflicts[0].SlotID)
	}
}

func TestTimeSlotService_GroupConflict_OtherGroupAllowed(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	env.seedSlot(ttA, "2025-09-03", "13:00", "15:00", testTeacher1, testMath, testRoom101)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttB, batch(
		slotInput("2025-09-03", "13:00", "15:00", testTeacher2, testPhysics, testRoom102),
	), adminCaller)
	if err != nil {
		t.Errorf("不同班级同一时段应被接受: %v", err)
	}
}

func TestTimeSlotService_LocationConflict(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	env.seedSlot(ttA, "2025-09-04", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	// 不同教师、不同班级，同一教室
	_, err := env.timeSlot.CreateSlots(context.Background(), ttB, batch(
		slotInput("2025-09-04", "09:59", "11:00", testTeacher2, testPhysics, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrLocationConflict) {
		t.Fatalf("期望 ErrLocationConflict，实际: %v", err)
	}
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) && conflictErr.Conflicts[0].LocationName != "教学楼101" {
		t.Errorf("冲突应携带教室名称，实际=%q", conflictErr.Conflicts[0].LocationName)
	}
}

func TestTimeSlotService_LocationConflict_OtherRoomAllowed(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	env.seedSlot(ttA, "2025-09-04", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttB, batch(
		slotInput("2025-09-04", "08:00", "10:00", testTeacher2, testPhysics, testRoom102),
	), adminCaller)
	if err != nil {
		t.Errorf("不同教室同一时段应被接受: %v", err)
	}
}

// ── 批量原子性 ──

func TestTimeSlotService_BatchAtomicity_ThirdSlotConflicts(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)

	_, err := env.timeSlot.CreateSlots(context.Background(), ttA, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
		slotInput("2025-09-02", "08:00", "10:00", testTeacher1, testMath, testRoom101),
		slotInput("2025-09-01", "09:00", "11:00", testTeacher1, testPhysics, testRoom102), // 与第 1 个冲突
		slotInput("2025-09-03", "08:00", "10:00", testTeacher1, testMath, testRoom101),
		slotInput("2025-09-04", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)

	var slotErr *SlotError
	if !errors.As(err, &slotErr) {
		t.Fatalf("期望 *SlotError，实际: %v", err)
	}
	if slotErr.Index != 2 {
		t.Errorf("期望失败下标 2，实际=%d", slotErr.Index)
	}
	if !errors.Is(err, ErrTeacherConflict) {
		t.Errorf("期望 ErrTeacherConflict，实际: %v", err)
	}
	if n := env.slotCount(ttA); n != 0 {
		t.Errorf("批量失败后不应有任何课时写入，实际=%d", n)
	}
}

func TestTimeSlotService_BatchAtomicity_StorageFailure(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	env.st.failSlotCreate = &pgconn.PgError{Code: "40P01"}

	_, err := env.timeSlot.CreateSlots(context.Background(), ttA, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)
	if err == nil {
		t.Fatal("存储故障应返回错误")
	}
	if !pkgerrors.IsConcurrentWrite(err) {
		t.Errorf("期望可识别为并发写入错误，实际: %v", err)
	}
	if isBusinessError(err) {
		t.Error("存储故障不应被归类为业务错误")
	}
}

// ── 权限 ──

func TestTimeSlotService_CreateSlots_Scope(t *testing.T) {
	tests := []struct {
		name    string
		caller  Caller
		allowed bool
	}{
		{"管理员", adminCaller, true},
		{"本院系主任", hodCaller, true},
		{"其他院系主任", otherHODCaller, false},
		{"教师", teacherCaller, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ttA := env.seedTimetable(testGroupA)

			_, err := env.timeSlot.CreateSlots(context.Background(), ttA, batch(
				slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
			), tt.caller)
			if tt.allowed && err != nil {
				t.Errorf("应允许: %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrGroupScopeDenied) {
				t.Errorf("期望 ErrGroupScopeDenied，实际: %v", err)
			}
		})
	}
}

// ── 按班级创建（自动建课表） ──

func TestTimeSlotService_CreateSlotsForGroup_CreatesTimetableOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.timeSlot.CreateSlotsForGroup(ctx, testGroupA, batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), hodCaller)
	if err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	if first.TimetableID == "" {
		t.Fatal("应返回自动创建的课表 ID")
	}

	second, err := env.timeSlot.CreateSlotsForGroup(ctx, testGroupA, batch(
		slotInput("2025-09-02", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), hodCaller)
	if err != nil {
		t.Fatalf("再次提交应成功: %v", err)
	}
	if second.TimetableID != first.TimetableID {
		t.Errorf("应复用同一课表，实际 %s != %s", second.TimetableID, first.TimetableID)
	}
	if len(env.st.timetables) != 1 {
		t.Errorf("期望仅 1 张课表，实际=%d", len(env.st.timetables))
	}
	if env.st.lockCalls == 0 {
		t.Error("创建课表前应锁定班级行")
	}
}

func TestTimeSlotService_CreateSlotsForGroup_RollbackDropsTimetable(t *testing.T) {
	env := newTestEnv()

	_, err := env.timeSlot.CreateSlotsForGroup(context.Background(), testGroupA, batch(
		slotInput("2025-12-25", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("期望 ErrSlotOutOfRange，实际: %v", err)
	}
	if len(env.st.timetables) != 0 {
		t.Errorf("失败回滚后不应遗留课表，实际=%d", len(env.st.timetables))
	}
}

func TestTimeSlotService_CreateSlotsForGroup_GroupNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.timeSlot.CreateSlotsForGroup(context.Background(), "grp-missing", batch(
		slotInput("2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101),
	), adminCaller)
	if !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}
}

// ── 查询 ──

func TestTimeSlotService_ListByRange(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	env.seedSlot(ttA, "2025-09-08", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	env.seedSlot(ttA, "2025-09-15", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	slots, err := env.timeSlot.ListByRange(context.Background(), ttA, &dto.TimeSlotRangeQuery{From: "2025-09-02", To: "2025-09-15"})
	if err != nil {
		t.Fatalf("ListByRange 应成功: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("期望 2 个课时，实际=%d", len(slots))
	}
	if slots[0].TimeSlotDate != "2025-09-08" {
		t.Errorf("应按日期升序，首个为 2025-09-08，实际=%s", slots[0].TimeSlotDate)
	}
}

func TestTimeSlotService_ListByRange_Errors(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ctx := context.Background()

	if _, err := env.timeSlot.ListByRange(ctx, ttA, &dto.TimeSlotRangeQuery{From: "2025-09-15", To: "2025-09-01"}); !errors.Is(err, ErrSlotInvalidRange) {
		t.Errorf("期望 ErrSlotInvalidRange，实际: %v", err)
	}
	if _, err := env.timeSlot.ListByRange(ctx, "nonexistent", nil); !errors.Is(err, ErrTimetableNotFound) {
		t.Errorf("期望 ErrTimetableNotFound，实际: %v", err)
	}
}

func TestTimeSlotService_ListByTeacher_AcrossTimetables(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	env.seedSlot(ttB, "2025-09-01", "10:00", "12:00", testTeacher1, testPhysics, testRoom102)
	env.seedSlot(ttB, "2025-09-01", "13:00", "15:00", testTeacher2, testPhysics, testRoom102)

	slots, err := env.timeSlot.ListByTeacher(context.Background(), testTeacher1, nil)
	if err != nil {
		t.Fatalf("ListByTeacher 应成功: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("期望 2 个课时，实际=%d", len(slots))
	}
}

func TestTimeSlotService_GetByID_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.timeSlot.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("期望 ErrSlotNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestTimeSlotService_Update_ExcludesItself(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	id := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	tr := &dto.TimeRangeInput{StartTime: "09:00", EndTime: "11:00"}
	resp, err := env.timeSlot.Update(context.Background(), id, &dto.UpdateTimeSlotRequest{TimeSlot: tr, Version: 1}, adminCaller)
	if err != nil {
		t.Fatalf("与自身重叠不应视为冲突: %v", err)
	}
	if resp.TimeSlot.StartTime != "09:00:00" {
		t.Errorf("期望 StartTime=09:00:00，实际=%s", resp.TimeSlot.StartTime)
	}
	if resp.Version != 2 {
		t.Errorf("期望 Version=2，实际=%d", resp.Version)
	}
}

func TestTimeSlotService_Update_DateRecomputesWeekday(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	id := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	date := "2025-09-05"
	resp, err := env.timeSlot.Update(context.Background(), id, &dto.UpdateTimeSlotRequest{TimeSlotDate: &date}, adminCaller)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.DayOfWeek != "Friday" {
		t.Errorf("期望 DayOfWeek=Friday，实际=%s", resp.DayOfWeek)
	}
}

func TestTimeSlotService_Update_ConflictWithOther(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	ttB := env.seedTimetable(testGroupB)
	env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	id := env.seedSlot(ttB, "2025-09-01", "13:00", "15:00", testTeacher1, testMath, testRoom102)

	tr := &dto.TimeRangeInput{StartTime: "09:00", EndTime: "11:00"}
	_, err := env.timeSlot.Update(context.Background(), id, &dto.UpdateTimeSlotRequest{TimeSlot: tr}, adminCaller)
	if !errors.Is(err, ErrTeacherConflict) {
		t.Errorf("期望 ErrTeacherConflict，实际: %v", err)
	}
	if got := env.st.slots[id].Interval.Start.String(); got != "13:00:00" {
		t.Errorf("冲突时不应修改原课时，实际 start=%s", got)
	}
}

func TestTimeSlotService_Update_StaleVersion(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	id := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	remark := "调课"
	_, err := env.timeSlot.Update(context.Background(), id, &dto.UpdateTimeSlotRequest{Remark: &remark, Version: 5}, adminCaller)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestTimeSlotService_Update_NotFound(t *testing.T) {
	env := newTestEnv()

	remark := "调课"
	_, err := env.timeSlot.Update(context.Background(), "nonexistent", &dto.UpdateTimeSlotRequest{Remark: &remark}, adminCaller)
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("期望 ErrSlotNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestTimeSlotService_Delete(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	id := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	if err := env.timeSlot.Delete(context.Background(), id, adminCaller); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if env.slotCount(ttA) != 0 {
		t.Error("课时应已删除")
	}
	if err := env.timeSlot.Delete(context.Background(), id, adminCaller); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("重复删除期望 ErrSlotNotFound，实际: %v", err)
	}
}

func TestTimeSlotService_Delete_ScopeDenied(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	id := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	err := env.timeSlot.Delete(context.Background(), id, otherHODCaller)
	if !errors.Is(err, ErrGroupScopeDenied) {
		t.Errorf("期望 ErrGroupScopeDenied，实际: %v", err)
	}
	if env.slotCount(ttA) != 1 {
		t.Error("无权限时不应删除")
	}
}

// ── BulkDelete 测试 ──

func TestTimeSlotService_BulkDelete_ForeignSlotRejectsAll(t *testing.T) {
	env := newTestEnv()
	tt5 := env.seedTimetable(testGroupA)
	tt7 := env.seedTimetable(testGroupB)
	s1 := env.seedSlot(tt5, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	s2 := env.seedSlot(tt5, "2025-09-02", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	s99 := env.seedSlot(tt7, "2025-09-03", "08:00", "10:00", testTeacher2, testMath, testRoom102)

	_, err := env.timeSlot.BulkDelete(context.Background(), &dto.BulkDeleteTimeSlotsRequest{
		TimeTableID: tt5,
		SlotIDs:     []string{s1, s2, s99},
	}, adminCaller)

	var invalidErr *InvalidSlotIDsError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("期望 *InvalidSlotIDsError，实际: %v", err)
	}
	if len(invalidErr.SlotIDs) != 1 || invalidErr.SlotIDs[0] != s99 {
		t.Errorf("期望仅列出 %s，实际=%v", s99, invalidErr.SlotIDs)
	}
	if env.slotCount(tt5) != 2 {
		t.Errorf("整体拒绝时不应删除任何课时，剩余=%d", env.slotCount(tt5))
	}
	if env.slotCount(tt7) != 1 {
		t.Error("其他课表的课时不应受影响")
	}
}

func TestTimeSlotService_BulkDelete_Success(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	s1 := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	s2 := env.seedSlot(ttA, "2025-09-02", "08:00", "10:00", testTeacher1, testMath, testRoom101)
	env.seedSlot(ttA, "2025-09-03", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	resp, err := env.timeSlot.BulkDelete(context.Background(), &dto.BulkDeleteTimeSlotsRequest{
		TimeTableID: ttA,
		SlotIDs:     []string{s1, s2, s1},
	}, adminCaller)
	if err != nil {
		t.Fatalf("BulkDelete 应成功: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("重复 ID 应去重，期望 Deleted=2，实际=%d", resp.Deleted)
	}
	if env.slotCount(ttA) != 1 {
		t.Errorf("期望剩余 1 个课时，实际=%d", env.slotCount(ttA))
	}
}

func TestTimeSlotService_BulkDelete_MalformedID(t *testing.T) {
	env := newTestEnv()
	ttA := env.seedTimetable(testGroupA)
	s1 := env.seedSlot(ttA, "2025-09-01", "08:00", "10:00", testTeacher1, testMath, testRoom101)

	_, err := env.timeSlot.BulkDelete(context.Background(), &dto.BulkDeleteTimeSlotsRequest{
		TimeTableID: ttA,
		SlotIDs:     []string{s1, "99"},
	}, adminCaller)
	var invalidErr *InvalidSlotIDsError
	if !errors.As(err, &invalidErr) || invalidErr.SlotIDs[0] != "99" {
		t.Errorf("期望列出 99，实际: %v", err)
	}
	if env.slotCount(ttA) != 1 {
		t.Error("整体拒绝时不应删除任何课时")
	}
}
