package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Semester  SemesterRepository
	Group     GroupRepository
	Location  LocationRepository
	Directory DirectoryRepository
	Timetable TimetableRepository
	TimeSlot  TimeSlotRepository
	Tx        TxRunner
}

// TxRunner 事务执行器
// fn 收到的 Repository 全部绑定在同一事务上；fn 返回错误时整体回滚
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Semester:  NewSemesterRepo(db),
		Group:     NewGroupRepo(db),
		Location:  NewLocationRepo(db),
		Directory: NewDirectoryRepo(db),
		Timetable: NewTimetableRepo(db),
		TimeSlot:  NewTimeSlotRepo(db),
		Tx:        &gormTxRunner{db: db},
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) RunInTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
