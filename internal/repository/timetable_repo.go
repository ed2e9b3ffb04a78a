package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
)

// TimetableRepository 课表数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, tt *model.Timetable) error
	GetByID(ctx context.Context, id string) (*model.Timetable, error)
	GetByGroupID(ctx context.Context, groupID string) (*model.Timetable, error)
	// Delete 物理删除课表，课时由外键级联删除
	Delete(ctx context.Context, id string) error
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, tt *model.Timetable) error {
	return r.db.WithContext(ctx).Create(tt).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.Timetable, error) {
	var tt model.Timetable
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Program").
		Preload("Group.Semester").
		Where("timetable_id = ?", id).
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *timetableRepo) GetByGroupID(ctx context.Context, groupID string) (*model.Timetable, error) {
	var tt model.Timetable
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Program").
		Preload("Group.Semester").
		Where("group_id = ?", groupID).
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *timetableRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("timetable_id = ?", id).
		Delete(&model.Timetable{}).Error
}
