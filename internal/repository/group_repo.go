package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
)

// GroupRepository 教学班数据访问接口（班级由目录服务维护，本服务只读）
type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*model.Group, error)
	// LockByID 在当前事务内对班级行加 FOR UPDATE 锁
	LockByID(ctx context.Context, id string) (*model.Group, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Semester").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) LockByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}
