package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
)

// LocationRepository 教室数据访问接口
// 教室被软删除后，历史课时仍通过 Unscoped 预加载显示名称
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	List(ctx context.Context, includeInactive bool) ([]model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

// Create 新建教室；is_active 为 false 时会落到列默认值 true，停用需走 Update
func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	if err := r.db.WithContext(ctx).First(&loc, "location_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) List(ctx context.Context, includeInactive bool) ([]model.Location, error) {
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active")
	}

	var locations []model.Location
	err := db.Order("building ASC NULLS LAST, name ASC").Find(&locations).Error
	return locations, err
}

// Update 只更新可编辑列；停用后已有课时不受影响，仅阻止新课时引用
func (r *locationRepo) Update(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).
		Model(&model.Location{}).
		Where("location_id = ?", loc.LocationID).
		Updates(map[string]interface{}{
			"name":       loc.Name,
			"building":   loc.Building,
			"capacity":   loc.Capacity,
			"is_active":  loc.IsActive,
			"updated_by": loc.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *locationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Location{}).
		Where("location_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
