package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// slotValidator 单个课时的结构与冲突校验，首个失败项立即返回
//
// 检查顺序：
//  1. 教师 / 课程 / 教室必填，且教室存在并启用
//  2. 日期在学期窗口内
//  3. 结束时间晚于开始时间
//  4. 教师角色与授课关系
//  5. 教师维度重叠
//  6. 班级维度重叠
//  7. 同课表完全重复
//  8. 教室维度重叠
type slotValidator struct {
	repo     *repository.Repository
	identity IdentityService
	detector *conflictDetector
}

func newSlotValidator(repo *repository.Repository, identity IdentityService) *slotValidator {
	return &slotValidator{
		repo:     repo,
		identity: identity,
		detector: newConflictDetector(repo.TimeSlot),
	}
}

// Validate 校验 slot；slot.TimeSlotID 非空时视为更新，冲突检测排除自身
func (v *slotValidator) Validate(ctx context.Context, scope *timetableScope, slot *model.TimeSlot) error {
	// 1. 必填项
	if isBlank(slot.TeacherID) || isBlank(slot.SubjectID) || isBlank(slot.LocationID) {
		return ErrSlotMissingField
	}
	loc, err := v.repo.Location.GetByID(ctx, *slot.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLocationNotFound
		}
		return err
	}
	if !loc.IsActive {
		return ErrLocationInactive
	}

	// 2. 学期窗口
	if !scope.Window.Contains(slot.Date) {
		return fmt.Errorf("%w: %s 不在 %s 至 %s 之间",
			ErrSlotOutOfRange, slot.Date, scope.Window.Start, scope.Window.End)
	}

	// 3. 时间区间
	if !slot.Interval.Valid() {
		return ErrSlotInvalidInterval
	}

	// 4. 教师与课程
	isTeacher, err := v.identity.TeacherHasRole(ctx, *slot.TeacherID)
	if err != nil {
		return err
	}
	if !isTeacher {
		return ErrTeacherRoleMissing
	}
	teaches, err := v.identity.TeacherTeachesSubject(ctx, *slot.TeacherID, *slot.SubjectID)
	if err != nil {
		return err
	}
	if !teaches {
		return ErrTeacherSubjectMismatch
	}

	// 5. 教师冲突
	if err := v.detector.check(ctx, DimensionTeacher, *slot.TeacherID, slot.Date, slot.Interval, slot.TimeSlotID); err != nil {
		return err
	}

	// 6. 班级冲突
	if err := v.detector.check(ctx, DimensionGroup, scope.Group.GroupID, slot.Date, slot.Interval, slot.TimeSlotID); err != nil {
		return err
	}

	// 7. 完全重复
	if _, err := v.repo.TimeSlot.FindDuplicate(ctx, slot); err == nil {
		return ErrDuplicateSlot
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 8. 教室冲突
	return v.detector.check(ctx, DimensionLocation, *slot.LocationID, slot.Date, slot.Interval, slot.TimeSlotID)
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
