package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// TimeSlotService 课时业务接口
type TimeSlotService interface {
	// CreateSlots 向已有课表批量添加课时，整体成功或整体回滚
	CreateSlots(ctx context.Context, timetableID string, req *dto.CreateTimeSlotsRequest, caller Caller) (*dto.CreateTimeSlotsResponse, error)
	// CreateSlotsForGroup 班级尚无课表时先创建课表，再批量添加课时
	CreateSlotsForGroup(ctx context.Context, groupID string, req *dto.CreateTimeSlotsRequest, caller Caller) (*dto.CreateTimeSlotsResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	ListByRange(ctx context.Context, timetableID string, q *dto.TimeSlotRangeQuery) ([]dto.TimeSlotResponse, error)
	ListByTeacher(ctx context.Context, teacherID string, q *dto.TimeSlotRangeQuery) ([]dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, caller Caller) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// BulkDelete 批量删除；任一 ID 不属于该课表则全部不删除
	BulkDelete(ctx context.Context, req *dto.BulkDeleteTimeSlotsRequest, caller Caller) (*dto.BulkDeleteTimeSlotsResponse, error)
}

type timeSlotService struct {
	repo         *repository.Repository
	identity     IdentityService
	scope        GroupScope
	maxBatchSize int
	logger       *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(
	repo *repository.Repository,
	identity IdentityService,
	scope GroupScope,
	maxBatchSize int,
	logger *zap.Logger,
) TimeSlotService {
	return &timeSlotService{
		repo:         repo,
		identity:     identity,
		scope:        scope,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) CreateSlots(ctx context.Context, timetableID string, req *dto.CreateTimeSlotsRequest, caller Caller) (*dto.CreateTimeSlotsResponse, error) {
	slots, err := s.parseBatch(req)
	if err != nil {
		return nil, err
	}

	var created []model.TimeSlot
	err = s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		scope, err := loadTimetableScope(ctx, tx, timetableID)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}
		created, err = persistSlots(ctx, tx, s.identity, scope, slots, caller.UserID)
		return err
	})
	if err != nil {
		s.logFailure("批量创建课时失败", err, zap.String("timetable_id", timetableID))
		return nil, err
	}

	return &dto.CreateTimeSlotsResponse{
		TimetableID: timetableID,
		Created:     len(created),
		Slots:       toTimeSlotResponses(created),
	}, nil
}

func (s *timeSlotService) CreateSlotsForGroup(ctx context.Context, groupID string, req *dto.CreateTimeSlotsRequest, caller Caller) (*dto.CreateTimeSlotsResponse, error) {
	slots, err := s.parseBatch(req)
	if err != nil {
		return nil, err
	}

	var (
		timetableID string
		created     []model.TimeSlot
	)
	err = s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		group, err := loadGroup(ctx, tx, groupID)
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
		if isNew {
			s.logger.Info("已为班级自动创建课表",
				zap.String("group_id", groupID),
				zap.String("timetable_id", tt.TimetableID),
			)
		}
		timetableID = tt.TimetableID

		scope, err := newTimetableScope(tt, group)
		if err != nil {
			return err
		}
		created, err = persistSlots(ctx, tx, s.identity, scope, slots, caller.UserID)
		return err
	})
	if err != nil {
		s.logFailure("按班级创建课时失败", err, zap.String("group_id", groupID))
		return nil, err
	}

	return &dto.CreateTimeSlotsResponse{
		TimetableID: timetableID,
		Created:     len(created),
		Slots:       toTimeSlotResponses(created),
	}, nil
}

// parseBatch 解析批量输入，格式错误同样按下标报告
func (s *timeSlotService) parseBatch(req *dto.CreateTimeSlotsRequest) ([]*model.TimeSlot, error) {
	if len(req.Slots) == 0 {
		return nil, ErrEmptySlotBatch
	}
	if s.maxBatchSize > 0 && len(req.Slots) > s.maxBatchSize {
		return nil, ErrSlotBatchTooLarge
	}

	slots := make([]*model.TimeSlot, 0, len(req.Slots))
	for i := range req.Slots {
		slot, err := parseSlotInput(&req.Slots[i])
		if err != nil {
			return nil, &SlotError{Index: i, Err: err}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ────────────────────── Query ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询课时失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

func (s *timeSlotService) ListByRange(ctx context.Context, timetableID string, q *dto.TimeSlotRangeQuery) ([]dto.TimeSlotResponse, error) {
	from, to, err := parseRange(q)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Timetable.GetByID(ctx, timetableID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		s.logger.Error("查询课表失败", zap.String("timetable_id", timetableID), zap.Error(err))
		return nil, err
	}

	slots, err := s.repo.TimeSlot.ListByDateRange(ctx, timetableID, from, to)
	if err != nil {
		s.logger.Error("查询课时列表失败", zap.String("timetable_id", timetableID), zap.Error(err))
		return nil, err
	}
	return toTimeSlotResponses(slots), nil
}

func (s *timeSlotService) ListByTeacher(ctx context.Context, teacherID string, q *dto.TimeSlotRangeQuery) ([]dto.TimeSlotResponse, error) {
	from, to, err := parseRange(q)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.TimeSlot.ListByTeacherRange(ctx, teacherID, from, to)
	if err != nil {
		s.logger.Error("查询教师课时失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return toTimeSlotResponses(slots), nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, caller Caller) (*dto.TimeSlotResponse, error) {
	var updated *model.TimeSlot
	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		slot, err := tx.TimeSlot.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if req.Version > 0 && req.Version != slot.Version {
			return pkgerrors.ErrOptimisticLock
		}

		scope, err := loadTimetableScope(ctx, tx, slot.TimetableID)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}

		if err := applySlotUpdate(slot, req); err != nil {
			return err
		}
		slot.UpdatedBy = &caller.UserID

		if err := tx.TimeSlot.LockForScheduling(ctx); err != nil {
			return err
		}
		if err := newSlotValidator(tx, s.identity).Validate(ctx, scope, slot); err != nil {
			return err
		}
		if err := tx.TimeSlot.Update(ctx, slot); err != nil {
			return err
		}

		updated, err = tx.TimeSlot.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("更新课时失败", err, zap.String("id", id))
		return nil, err
	}

	resp := toTimeSlotResponse(updated)
	return &resp, nil
}

// applySlotUpdate 合并更新字段，省略的字段保留原值
func applySlotUpdate(slot *model.TimeSlot, req *dto.UpdateTimeSlotRequest) error {
	if req.TimeSlotDate != nil {
		date, err := parseDate(*req.TimeSlotDate)
		if err != nil {
			return err
		}
		slot.Date = date
	}
	if req.TimeSlot != nil {
		start, end := slot.Interval.Start.String(), slot.Interval.End.String()
		if req.TimeSlot.StartTime != "" {
			start = req.TimeSlot.StartTime
		}
		if req.TimeSlot.EndTime != "" {
			end = req.TimeSlot.EndTime
		}
		interval, err := parseInterval(start, end)
		if err != nil {
			return err
		}
		slot.Interval = interval
	}
	if req.TeacherID != nil {
		slot.TeacherID = req.TeacherID
		slot.Teacher = nil
	}
	if req.SubjectID != nil {
		slot.SubjectID = req.SubjectID
		slot.Subject = nil
	}
	if req.LocationID != nil {
		slot.LocationID = req.LocationID
		slot.Location = nil
	}
	if req.Remark != nil {
		slot.Remark = *req.Remark
	}
	slot.SyncDayOfWeek()
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, id string, caller Caller) error {
	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		slot, err := tx.TimeSlot.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		scope, err := loadTimetableScope(ctx, tx, slot.TimetableID)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}

		return tx.TimeSlot.DeleteByIDs(ctx, slot.TimetableID, []string{id}, caller.UserID)
	})
	if err != nil {
		s.logFailure("删除课时失败", err, zap.String("id", id))
		return err
	}
	return nil
}

func (s *timeSlotService) BulkDelete(ctx context.Context, req *dto.BulkDeleteTimeSlotsRequest, caller Caller) (*dto.BulkDeleteTimeSlotsResponse, error) {
	ids := uniqueStrings(req.SlotIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySlotBatch
	}

	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		scope, err := loadTimetableScope(ctx, tx, req.TimeTableID)
		if err != nil {
			return err
		}
		if err := s.scope.Authorize(ctx, caller, scope.Group); err != nil {
			return err
		}

		// 非法 UUID 不可能属于任何课表，直接判为无效
		lookup := make([]string, 0, len(ids))
		for _, id := range ids {
			if _, err := uuid.Parse(id); err == nil {
				lookup = append(lookup, id)
			}
		}
		found, err := tx.TimeSlot.ListByIDs(ctx, lookup)
		if err != nil {
			return err
		}
		owned := make(map[string]bool, len(found))
		for _, slot := range found {
			if slot.TimetableID == req.TimeTableID {
				owned[slot.TimeSlotID] = true
			}
		}

		var invalid []string
		for _, id := range ids {
			if !owned[id] {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			return &InvalidSlotIDsError{TimetableID: req.TimeTableID, SlotIDs: invalid}
		}

		return tx.TimeSlot.DeleteByIDs(ctx, req.TimeTableID, ids, caller.UserID)
	})
	if err != nil {
		s.logFailure("批量删除课时失败", err, zap.String("timetable_id", req.TimeTableID))
		return nil, err
	}

	return &dto.BulkDeleteTimeSlotsResponse{Deleted: len(ids)}, nil
}

// ── 内部辅助方法 ──

// logFailure 业务拒绝记 Info，存储等意外错误记 Error
func (s *timeSlotService) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isBusinessError(err) {
		s.logger.Info(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
