package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Monopich/AIST-Backend-sub000/config"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester  SemesterService
	Location  LocationService
	Timetable TimetableService
	TimeSlot  TimeSlotService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		logger.Warn("排课时区无效，回退为 UTC", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
		loc = time.UTC
	}

	identity := NewDirectoryIdentity(repo.Directory)
	scope := NewDepartmentScope()
	timetable := NewTimetableService(repo, identity, scope, loc, logger)

	return &Service{
		Semester:  NewSemesterService(repo, logger),
		Location:  NewLocationService(repo, logger),
		Timetable: timetable,
		TimeSlot:  NewTimeSlotService(repo, identity, scope, cfg.Schedule.MaxBatchSize, logger),
		Export:    NewExportService(repo, timetable, loc, logger),
	}
}
