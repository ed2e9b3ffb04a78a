package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
)

// DirectoryRepository 用户与课程目录的只读访问
// 身份、课程数据由外部服务维护，本服务仅查询
type DirectoryRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetSubject(ctx context.Context, id string) (*model.Subject, error)
	TeacherTeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type directoryRepo struct {
	db *gorm.DB
}

// NewDirectoryRepo 创建 DirectoryRepository 实例
func NewDirectoryRepo(db *gorm.DB) DirectoryRepository {
	return &directoryRepo{db: db}
}

func (r *directoryRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *directoryRepo) GetSubject(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *directoryRepo) TeacherTeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TeacherSubject{}).
		Where("teacher_id = ? AND subject_id = ?", teacherID, subjectID).
		Count(&count).Error
	return count > 0, err
}
