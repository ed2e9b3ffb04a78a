package service

import (
	"context"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// conflictDetector 按维度查找与候选区间重叠的已有课时
// 只读；事务隔离由调用方提供的 repository 决定
type conflictDetector struct {
	slots repository.TimeSlotRepository
}

func newConflictDetector(slots repository.TimeSlotRepository) *conflictDetector {
	return &conflictDetector{slots: slots}
}

// FindOverlaps 返回 key 在 date 当天与 interval 重叠的全部课时
func (d *conflictDetector) FindOverlaps(
	ctx context.Context,
	dim ConflictDimension,
	key string,
	date calendar.Date,
	interval calendar.Interval,
	excludeSlotID string,
) ([]model.TimeSlot, error) {
	var (
		candidates []model.TimeSlot
		err        error
	)
	switch dim {
	case DimensionTeacher:
		candidates, err = d.slots.ListByTeacher(ctx, key, date, excludeSlotID)
	case DimensionGroup:
		candidates, err = d.slots.ListByGroup(ctx, key, date, excludeSlotID)
	case DimensionLocation:
		candidates, err = d.slots.ListByLocation(ctx, key, date, excludeSlotID)
	}
	if err != nil {
		return nil, err
	}

	var overlaps []model.TimeSlot
	for _, c := range candidates {
		if c.Interval.Overlaps(interval) {
			overlaps = append(overlaps, c)
		}
	}
	return overlaps, nil
}

// check 存在重叠时返回 *ConflictError
func (d *conflictDetector) check(
	ctx context.Context,
	dim ConflictDimension,
	key string,
	date calendar.Date,
	interval calendar.Interval,
	excludeSlotID string,
) error {
	overlaps, err := d.FindOverlaps(ctx, dim, key, date, interval, excludeSlotID)
	if err != nil {
		return err
	}
	if len(overlaps) == 0 {
		return nil
	}
	conflicts := make([]dto.SlotConflict, 0, len(overlaps))
	for i := range overlaps {
		conflicts = append(conflicts, toSlotConflict(&overlaps[i]))
	}
	return &ConflictError{Dimension: dim, Conflicts: conflicts}
}

func toSlotConflict(s *model.TimeSlot) dto.SlotConflict {
	return dto.SlotConflict{
		SlotID:       s.TimeSlotID,
		TimeSlotDate: s.Date.String(),
		StartTime:    s.Interval.Start.String(),
		EndTime:      s.Interval.End.String(),
		TeacherName:  s.TeacherName(),
		SubjectName:  s.SubjectName(),
		LocationName: s.LocationName(),
	}
}
