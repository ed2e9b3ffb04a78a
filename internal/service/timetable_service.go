package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// TimetableService 课表业务接口
//
// 设计说明：
//   - 每个班级至多一张课表，可显式创建，也会在首次提交课时时自动创建
//   - 周次由学期窗口实时计算，不做缓存
//   - "今天"按学校统一时区判定
type TimetableService interface {
	Create(ctx context.Context, req *dto.CreateTimetableRequest, caller Caller) (*dto.TimetableResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimetableResponse, error)
	GetByGroup(ctx context.Context, groupID string) (*dto.TimetableResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// CloneWeek 按星期偏移复制课时，已存在的相同课时跳过
	CloneWeek(ctx context.Context, id string, req *dto.CloneWeekRequest, caller Caller) (*dto.CloneWeekResponse, error)
	// WeekView weekNumber 为 nil 时返回全部周
	WeekView(ctx context.Context, id string, weekNumber *int) (*dto.WeekViewResponse, error)
}

type timetableService struct {
	repo     *repository.Repository
	identity IdentityService
	scope    GroupScope
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(
	repo *repository.Repository,
	identity IdentityService,
	scope GroupScope,
	loc *time.Location,
	logger *zap.Logger,
) TimetableService {
	if loc == nil {
		loc = time.UTC
	}
	return &timetableService{
		repo:     repo,
		identity: identity,
		scope:    scope,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *timetableService) Create(ctx context.Context, req *dto.CreateTimetableRequest, caller Caller) (*dto.TimetableResponse, error) {
	var scope *timetableScope
	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		group, err := loadGroup(ctx, tx, req.GroupID)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, group); err != nil {
			return err
		}

		tt, isNew, err := ensureTimetable(ctx, tx, group, caller.UserID)
		if err != nil {
			return err
		}
		if !isNew {
			return ErrTimetableExists
		}

		scope, err = newTimetableScope(tt, group)
		return err
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		s.logger.Error("创建课表失败", zap.String("group_id", req.GroupID), zap.Error(err))
		return nil, err
	}

	return toTimetableResponse(scope), nil
}

// ────────────────────── Query ──────────────────────

func (s *timetableService) GetByID(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	scope, err := loadTimetableScope(ctx, s.repo, id)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("查询课表失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return toTimetableResponse(scope), nil
}

func (s *timetableService) GetByGroup(ctx context.Context, groupID string) (*dto.TimetableResponse, error) {
	tt, err := s.repo.Timetable.GetByGroupID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		s.logger.Error("按班级查询课表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	if tt.Group == nil {
		return nil, ErrGroupNotFound
	}

	scope, err := newTimetableScope(tt, tt.Group)
	if err != nil {
		return nil, err
	}
	return toTimetableResponse(scope), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timetableService) Delete(ctx context.Context, id string, caller Caller) error {
	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		scope, err := loadTimetableScope(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}
		return tx.Timetable.Delete(ctx, id)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("删除课表失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("课表已删除", zap.String("id", id), zap.String("operator", caller.UserID))
	return nil
}

// ═══════════════════════════════════════════════════════════
// CloneWeek — 复制周课表
// ═══════════════════════════════════════════════════════════
//
// 对源区间 [from_start, from_end] 内每个课时：
//   offset   = (weekday(slot) - weekday(from_start) + 7) % 7
//   new_date = to_start + offset
// 任一 new_date 超出学期窗口则整体拒绝；同教师同日同区间已存在则跳过；
// 其余课时逐个走完整校验后写入，失败时整体回滚。

func (s *timetableService) CloneWeek(ctx context.Context, id string, req *dto.CloneWeekRequest, caller Caller) (*dto.CloneWeekResponse, error) {
	fromStart, err := parseDate(req.FromStart)
	if err != nil {
		return nil, err
	}
	fromEnd, err := parseDate(req.FromEnd)
	if err != nil {
		return nil, err
	}
	toStart, err := parseDate(req.ToStart)
	if err != nil {
		return nil, err
	}

	today := calendar.DateOf(s.now(), s.loc)
	if toStart.Before(today) {
		return nil, ErrCloneTargetInPast
	}
	if fromEnd.Before(fromStart) {
		return nil, ErrSlotInvalidRange
	}

	var (
		created []model.TimeSlot
		skipped int
	)
	err = s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		scope, err := loadTimetableScope(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}
		if err := tx.TimeSlot.LockForScheduling(ctx); err != nil {
			return err
		}

		sources, err := tx.TimeSlot.ListByDateRange(ctx, id, fromStart, fromEnd)
		if err != nil {
			return err
		}

		// 先整体检查目标日期，避免部分写入
		targets := make([]*model.TimeSlot, 0, len(sources))
		for i := range sources {
			src := &sources[i]
			offset := (int(src.Date.Weekday()) - int(fromStart.Weekday()) + 7) % 7
			newDate := toStart.AddDays(offset)
			if !scope.Window.Contains(newDate) {
				return &SlotError{Index: i, Err: ErrSlotOutOfRange}
			}
			targets = append(targets, &model.TimeSlot{
				Date:       newDate,
				Interval:   src.Interval,
				TeacherID:  src.TeacherID,
				SubjectID:  src.SubjectID,
				LocationID: src.LocationID,
				Remark:     src.Remark,
			})
		}

		var (
			pending   []*model.TimeSlot
			sourceIdx []int
		)
		// 多周源区间可能映射到同一目标，本次已排队的同样视为已存在
		queued := make(map[cloneKey]struct{}, len(targets))
		for i, target := range targets {
			key, keyed := cloneKeyOf(target)
			if keyed {
				if _, dup := queued[key]; dup {
					skipped++
					continue
				}
			}
			exists, err := s.teacherSlotExists(ctx, tx, target)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}
			if keyed {
				queued[key] = struct{}{}
			}
			pending = append(pending, target)
			sourceIdx = append(sourceIdx, i)
		}

		created, err = persistSlots(ctx, tx, s.identity, scope, pending, caller.UserID)
		var slotErr *SlotError
		if errors.As(err, &slotErr) {
			// 下标回指源课时
			slotErr.Index = sourceIdx[slotErr.Index]
		}
		return err
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("复制周课表失败", zap.String("timetable_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("复制周课表完成",
		zap.String("timetable_id", id),
		zap.Int("created", len(created)),
		zap.Int("skipped", skipped),
	)
	return &dto.CloneWeekResponse{
		Created: len(created),
		Skipped: skipped,
		Slots:   toTimeSlotResponses(created),
	}, nil
}

// teacherSlotExists 同一教师在同一天已有完全相同时间区间的课时
// cloneKey 标识同一教师同一天的同一时段
type cloneKey struct {
	teacherID string
	date      string
	interval  calendar.Interval
}

func cloneKeyOf(slot *model.TimeSlot) (cloneKey, bool) {
	if isBlank(slot.TeacherID) {
		return cloneKey{}, false
	}
	return cloneKey{teacherID: *slot.TeacherID, date: slot.Date.String(), interval: slot.Interval}, true
}

func (s *timetableService) teacherSlotExists(ctx context.Context, tx *repository.Repository, target *model.TimeSlot) (bool, error) {
	if isBlank(target.TeacherID) {
		return false, nil
	}
	existing, err := tx.TimeSlot.ListByTeacher(ctx, *target.TeacherID, target.Date, "")
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Interval.Equal(target.Interval) {
			return true, nil
		}
	}
	return false, nil
}

// ═══════════════════════════════════════════════════════════
// WeekView — 周视图
// ═══════════════════════════════════════════════════════════

func (s *timetableService) WeekView(ctx context.Context, id string, weekNumber *int) (*dto.WeekViewResponse, error) {
	scope, err := loadTimetableScope(ctx, s.repo, id)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("查询课表失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	weeks := scope.Window.Weeks()
	if weekNumber != nil {
		week, ok := scope.Window.Week(*weekNumber)
		if !ok {
			return nil, &InvalidWeekNumberError{Requested: *weekNumber, Total: len(weeks)}
		}
		weeks = []calendar.WeekRange{week}
	}

	resp := &dto.WeekViewResponse{
		TimetableID: id,
		TotalWeeks:  len(scope.Window.Weeks()),
		Weeks:       make([]dto.WeekDetail, 0, len(weeks)),
	}
	if len(weeks) == 0 {
		return resp, nil
	}

	slots, err := s.repo.TimeSlot.ListByDateRange(ctx, id, weeks[0].Start, weeks[len(weeks)-1].End)
	if err != nil {
		s.logger.Error("查询课时失败", zap.String("timetable_id", id), zap.Error(err))
		return nil, err
	}

	byDate := make(map[string][]model.TimeSlot)
	for _, slot := range slots {
		key := slot.Date.String()
		byDate[key] = append(byDate[key], slot)
	}

	for _, week := range weeks {
		detail := dto.WeekDetail{
			WeekNumber: week.Number,
			WeekStart:  week.Start.String(),
			WeekEnd:    week.End.String(),
			Days:       make([]dto.DayDetail, 0, 7),
		}
		for _, day := range week.Days() {
			daySlots := byDate[day.String()]
			sort.SliceStable(daySlots, func(i, j int) bool {
				return daySlots[i].Interval.Start < daySlots[j].Interval.Start
			})
			detail.Days = append(detail.Days, dto.DayDetail{
				Date:       day.String(),
				DayOfWeek:  calendar.WeekdayName(day),
				InSemester: scope.Window.Contains(day),
				Slots:      toTimeSlotResponses(daySlots),
			})
		}
		resp.Weeks = append(resp.Weeks, detail)
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func toTimetableResponse(scope *timetableScope) *dto.TimetableResponse {
	return &dto.TimetableResponse{
		ID:           scope.Timetable.TimetableID,
		GroupID:      scope.Group.GroupID,
		GroupName:    scope.Group.Name,
		SemesterID:   scope.Semester.SemesterID,
		SemesterName: scope.Semester.Name,
		StartDate:    scope.Window.Start.String(),
		EndDate:      scope.Window.End.String(),
		TotalWeeks:   len(scope.Window.Weeks()),
		CreatedAt:    formatTime(scope.Timetable.CreatedAt),
	}
}
