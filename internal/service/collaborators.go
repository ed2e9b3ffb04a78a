package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// Caller 当前请求的调用者身份，由 Handler 从认证信息中显式构造并逐层传递
type Caller struct {
	UserID       string
	Role         string
	DepartmentID string
}

// ── 外部协作方接口 ──

// IdentityService 身份与授课关系查询
type IdentityService interface {
	TeacherHasRole(ctx context.Context, userID string) (bool, error)
	TeacherTeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error)
}

// GroupScope 班级管理权限判定
type GroupScope interface {
	Authorize(ctx context.Context, caller Caller, group *model.Group) error
}

// ── 基于目录表的默认实现 ──

type directoryIdentity struct {
	dir repository.DirectoryRepository
}

// NewDirectoryIdentity 基于 users / teacher_subjects 表的身份查询
func NewDirectoryIdentity(dir repository.DirectoryRepository) IdentityService {
	return &directoryIdentity{dir: dir}
}

func (d *directoryIdentity) TeacherHasRole(ctx context.Context, userID string) (bool, error) {
	user, err := d.dir.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsTeacher(), nil
}

func (d *directoryIdentity) TeacherTeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	return d.dir.TeacherTeachesSubject(ctx, teacherID, subjectID)
}

// departmentScope admin 可管理全部班级；hod 仅限本院系专业下的班级
type departmentScope struct{}

// NewDepartmentScope 创建按院系划分的班级权限判定
func NewDepartmentScope() GroupScope { return departmentScope{} }

func (departmentScope) Authorize(_ context.Context, caller Caller, group *model.Group) error {
	switch caller.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleHOD:
		if caller.DepartmentID != "" && caller.DepartmentID == group.DepartmentID() {
			return nil
		}
	}
	return ErrGroupScopeDenied
}
