package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// TimeSlotRepository 课时数据访问接口
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	DeleteByIDs(ctx context.Context, timetableID string, ids []string, deletedBy string) error
	ListByIDs(ctx context.Context, ids []string) ([]model.TimeSlot, error)

	// ListByDateRange 课表在 [from, to] 内的课时；零值日期表示不限
	ListByDateRange(ctx context.Context, timetableID string, from, to calendar.Date) ([]model.TimeSlot, error)
	ListByTeacherRange(ctx context.Context, teacherID string, from, to calendar.Date) ([]model.TimeSlot, error)

	// ── 冲突检测：按维度键 + 日期查询，excludeID 非空时排除自身 ──
	ListByTeacher(ctx context.Context, teacherID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error)
	ListByGroup(ctx context.Context, groupID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error)
	ListByLocation(ctx context.Context, locationID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error)
	FindDuplicate(ctx context.Context, slot *model.TimeSlot) (*model.TimeSlot, error)

	// CountOutsideWindow 学期下所有班级课表中日期落在 [start, end] 之外的课时数
	CountOutsideWindow(ctx context.Context, semesterID string, start, end calendar.Date) (int64, error)

	// LockForScheduling 事务内对课时表加 SHARE ROW EXCLUSIVE 锁，串行化"检测后写入"
	LockForScheduling(ctx context.Context) error
}

type timeSlotRepo struct {
	db *gorm.DB
}

// NewTimeSlotRepo 创建 TimeSlotRepository 实例
func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

// withRefs 预加载教师、课程、地点，供冲突提示与展示使用
// 地点被软删除后仍需显示名称
func withRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Teacher").
		Preload("Subject").
		Preload("Location", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() })
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Omit("Timetable", "Teacher", "Subject", "Location").Create(slot).Error
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := withRefs(r.db.WithContext(ctx)).
		Where("time_slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) Update(ctx context.Context, slot *model.TimeSlot) error {
	slot.SyncDayOfWeek()
	oldVersion := slot.Version
	result := r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("time_slot_id = ? AND version = ?", slot.TimeSlotID, oldVersion).
		Updates(map[string]interface{}{
			"time_slot_date": slot.Date,
			"start_time":     slot.Interval.Start,
			"end_time":       slot.Interval.End,
			"day_of_week":    slot.DayOfWeek,
			"teacher_id":     slot.TeacherID,
			"subject_id":     slot.SubjectID,
			"location_id":    slot.LocationID,
			"remark":         slot.Remark,
			"updated_by":     slot.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version = oldVersion + 1
	return nil
}

func (r *timeSlotRepo) DeleteByIDs(ctx context.Context, timetableID string, ids []string, deletedBy string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("timetable_id = ? AND time_slot_id IN ?", timetableID, ids).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *timeSlotRepo) ListByIDs(ctx context.Context, ids []string) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if len(ids) == 0 {
		return slots, nil
	}
	err := r.db.WithContext(ctx).
		Where("time_slot_id IN ?", ids).
		Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) ListByDateRange(ctx context.Context, timetableID string, from, to calendar.Date) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	db := withRefs(r.db.WithContext(ctx)).Where("timetable_id = ?", timetableID)
	db = betweenDates(db, from, to)
	err := db.Order("time_slot_date ASC, start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) ListByTeacherRange(ctx context.Context, teacherID string, from, to calendar.Date) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	db := withRefs(r.db.WithContext(ctx)).Where("teacher_id = ?", teacherID)
	db = betweenDates(db, from, to)
	err := db.Order("time_slot_date ASC, start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) ListByTeacher(ctx context.Context, teacherID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	db := withRefs(r.db.WithContext(ctx)).
		Where("teacher_id = ? AND time_slot_date = ?", teacherID, date)
	return r.findExcluding(db, "time_slot_id", excludeID)
}

func (r *timeSlotRepo) ListByGroup(ctx context.Context, groupID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	db := withRefs(r.db.WithContext(ctx)).
		Joins("JOIN timetables ON timetables.timetable_id = time_slots.timetable_id").
		Where("timetables.group_id = ? AND time_slots.time_slot_date = ?", groupID, date)
	return r.findExcluding(db, "time_slots.time_slot_id", excludeID)
}

func (r *timeSlotRepo) ListByLocation(ctx context.Context, locationID string, date calendar.Date, excludeID string) ([]model.TimeSlot, error) {
	db := withRefs(r.db.WithContext(ctx)).
		Where("location_id = ? AND time_slot_date = ?", locationID, date)
	return r.findExcluding(db, "time_slot_id", excludeID)
}

func (r *timeSlotRepo) FindDuplicate(ctx context.Context, slot *model.TimeSlot) (*model.TimeSlot, error) {
	db := r.db.WithContext(ctx).
		Where("timetable_id = ? AND time_slot_date = ? AND start_time = ? AND end_time = ?",
			slot.TimetableID, slot.Date, slot.Interval.Start, slot.Interval.End)
	db = equalOrNull(db, "teacher_id", slot.TeacherID)
	db = equalOrNull(db, "subject_id", slot.SubjectID)
	db = equalOrNull(db, "location_id", slot.LocationID)
	if slot.TimeSlotID != "" {
		db = db.Where("time_slot_id <> ?", slot.TimeSlotID)
	}

	var dup model.TimeSlot
	if err := db.First(&dup).Error; err != nil {
		return nil, err
	}
	return &dup, nil
}

func (r *timeSlotRepo) CountOutsideWindow(ctx context.Context, semesterID string, start, end calendar.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Joins("JOIN timetables ON timetables.timetable_id = time_slots.timetable_id").
		Joins("JOIN student_groups ON student_groups.group_id = timetables.group_id").
		Where("student_groups.semester_id = ?", semesterID).
		Where("(time_slots.time_slot_date < ? OR time_slots.time_slot_date > ?)", start, end).
		Count(&count).Error
	return count, err
}

func (r *timeSlotRepo) LockForScheduling(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Exec("LOCK TABLE time_slots IN SHARE ROW EXCLUSIVE MODE").Error
}

// ── 查询辅助 ──

func (r *timeSlotRepo) findExcluding(db *gorm.DB, idColumn, excludeID string) ([]model.TimeSlot, error) {
	if excludeID != "" {
		db = db.Where(idColumn+" <> ?", excludeID)
	}
	var slots []model.TimeSlot
	err := db.Order("start_time ASC").Find(&slots).Error
	return slots, err
}

func betweenDates(db *gorm.DB, from, to calendar.Date) *gorm.DB {
	if !from.IsZero() {
		db = db.Where("time_slot_date >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where("time_slot_date <= ?", to)
	}
	return db
}

func equalOrNull(db *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *value)
}
