package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// timetableScope 课表及其班级、学期窗口，供校验与周视图共用
type timetableScope struct {
	Timetable *model.Timetable
	Group     *model.Group
	Semester  *model.Semester
	Window    calendar.Window
}

// loadTimetableScope 加载课表并解析其学期窗口
func loadTimetableScope(ctx context.Context, repo *repository.Repository, timetableID string) (*timetableScope, error) {
	tt, err := repo.Timetable.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	if tt.Group == nil {
		return nil, ErrGroupNotFound
	}
	return newTimetableScope(tt, tt.Group)
}

func newTimetableScope(tt *model.Timetable, group *model.Group) (*timetableScope, error) {
	if group.Semester == nil {
		return nil, ErrSemesterNotFound
	}
	window, err := group.Semester.Window()
	if err != nil {
		return nil, fmt.Errorf("学期 %s 日期无效: %w", group.Semester.SemesterID, err)
	}
	return &timetableScope{
		Timetable: tt,
		Group:     group,
		Semester:  group.Semester,
		Window:    window,
	}, nil
}

// loadGroup 加载班级（含专业与学期）
func loadGroup(ctx context.Context, repo *repository.Repository, groupID string) (*model.Group, error) {
	group, err := repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// ensureTimetable 返回班级的课表，不存在时创建
// 必须在事务内调用：先对班级行加锁，避免并发首次提交各自建出一张课表
func ensureTimetable(ctx context.Context, tx *repository.Repository, group *model.Group, callerID string) (*model.Timetable, bool, error) {
	if _, err := tx.Group.LockByID(ctx, group.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrGroupNotFound
		}
		return nil, false, err
	}

	tt, err := tx.Timetable.GetByGroupID(ctx, group.GroupID)
	if err == nil {
		return tt, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	tt = &model.Timetable{GroupID: group.GroupID}
	tt.CreatedBy = &callerID
	tt.UpdatedBy = &callerID
	if err := tx.Timetable.Create(ctx, tt); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, false, ErrTimetableExists
		}
		return nil, false, err
	}
	tt.Group = group
	return tt, true, nil
}

// persistSlots 在同一事务内按顺序校验并写入课时
// 每个课时的冲突检测都能看到前序课时的写入；任一失败返回 *SlotError 并由事务整体回滚
func persistSlots(
	ctx context.Context,
	tx *repository.Repository,
	identity IdentityService,
	scope *timetableScope,
	slots []*model.TimeSlot,
	callerID string,
) ([]model.TimeSlot, error) {
	if err := tx.TimeSlot.LockForScheduling(ctx); err != nil {
		return nil, err
	}

	validator := newSlotValidator(tx, identity)
	created := make([]model.TimeSlot, 0, len(slots))
	for i, slot := range slots {
		slot.TimetableID = scope.Timetable.TimetableID
		slot.SyncDayOfWeek()
		slot.CreatedBy = &callerID
		slot.UpdatedBy = &callerID

		if err := validator.Validate(ctx, scope, slot); err != nil {
			return nil, &SlotError{Index: i, Err: err}
		}
		if err := tx.TimeSlot.Create(ctx, slot); err != nil {
			return nil, &SlotError{Index: i, Err: err}
		}

		saved, err := tx.TimeSlot.GetByID(ctx, slot.TimeSlotID)
		if err != nil {
			return nil, err
		}
		created = append(created, *saved)
	}
	return created, nil
}

// ── 输入解析 ──

func parseSlotInput(in *dto.TimeSlotInput) (*model.TimeSlot, error) {
	date, err := parseDate(in.TimeSlotDate)
	if err != nil {
		return nil, err
	}
	interval, err := parseInterval(in.TimeSlot.StartTime, in.TimeSlot.EndTime)
	if err != nil {
		return nil, err
	}
	return &model.TimeSlot{
		Date:       date,
		Interval:   interval,
		TeacherID:  in.TeacherID,
		SubjectID:  in.SubjectID,
		LocationID: in.LocationID,
		Remark:     in.Remark,
	}, nil
}

func parseDate(s string) (calendar.Date, error) {
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return d, nil
}

// parseOptionalDate 空串返回零值日期
func parseOptionalDate(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	return parseDate(s)
}

func parseInterval(start, end string) (calendar.Interval, error) {
	s, err := calendar.ParseClock(start)
	if err != nil {
		return calendar.Interval{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, start)
	}
	e, err := calendar.ParseClock(end)
	if err != nil {
		return calendar.Interval{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, end)
	}
	return calendar.Interval{Start: s, End: e}, nil
}

// parseRange 解析可选的日期范围，to 早于 from 时报错
func parseRange(q *dto.TimeSlotRangeQuery) (calendar.Date, calendar.Date, error) {
	if q == nil {
		return calendar.Date{}, calendar.Date{}, nil
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return calendar.Date{}, calendar.Date{}, ErrSlotInvalidRange
	}
	return from, to, nil
}

// ── 响应转换 ──

func toTimeSlotResponse(s *model.TimeSlot) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:           s.TimeSlotID,
		TimetableID:  s.TimetableID,
		TimeSlotDate: s.Date.String(),
		DayOfWeek:    calendar.WeekdayName(s.Date),
		TimeSlot: dto.TimeRangeResponse{
			StartTime: s.Interval.Start.String(),
			EndTime:   s.Interval.End.String(),
		},
		TeacherID:    s.TeacherID,
		TeacherName:  s.TeacherName(),
		SubjectID:    s.SubjectID,
		SubjectName:  s.SubjectName(),
		LocationID:   s.LocationID,
		LocationName: s.LocationName(),
		Remark:       s.Remark,
		Version:      s.Version,
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
}

func toTimeSlotResponses(slots []model.TimeSlot) []dto.TimeSlotResponse {
	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toTimeSlotResponse(&slots[i]))
	}
	return result
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ── 错误分类 ──

var businessErrors = []error{
	ErrTimetableNotFound, ErrSlotNotFound, ErrSemesterNotFound, ErrGroupNotFound,
	ErrLocationNotFound, ErrLocationInactive, ErrTimetableExists, ErrGroupScopeDenied,
	ErrEmptySlotBatch, ErrSlotBatchTooLarge, ErrInvalidDateFormat, ErrInvalidTimeFormat,
	ErrSlotNotInTimetable, ErrSlotMissingField, ErrSlotOutOfRange, ErrSlotInvalidInterval,
	ErrTeacherRoleMissing, ErrTeacherSubjectMismatch, ErrTeacherConflict, ErrGroupConflict,
	ErrDuplicateSlot, ErrLocationConflict, ErrInvalidWeekNumber, ErrCloneTargetInPast,
	ErrSlotInvalidRange, ErrInvalidSemesterDates, ErrSemesterHasSlotsOutside,
	pkgerrors.ErrOptimisticLock,
}

// isBusinessError 是否为可预期的业务拒绝（无需按故障记录）
func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
