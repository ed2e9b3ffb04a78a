package handler

import "github.com/Monopich/AIST-Backend-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Timetable *TimetableHandler
	TimeSlot  *TimeSlotHandler
	Semester  *SemesterHandler
	Location  *LocationHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable, svc.TimeSlot),
		TimeSlot:  NewTimeSlotHandler(svc.TimeSlot),
		Semester:  NewSemesterHandler(svc.Semester),
		Location:  NewLocationHandler(svc.Location),
		Export:    NewExportHandler(svc.Export),
	}
}
