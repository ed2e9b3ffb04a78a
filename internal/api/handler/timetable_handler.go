package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/service"
	"github.com/Monopich/AIST-Backend-sub000/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
	timeSlotSvc  service.TimeSlotService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService, timeSlotSvc service.TimeSlotService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc, timeSlotSvc: timeSlotSvc}
}

// CreateTimetable 为班级创建课表
// POST /api/v1/timetables
func (h *TimetableHandler) CreateTimetable(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	tt, err := h.timetableSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, tt)
}

// GetTimetable 获取课表详情
// GET /api/v1/timetables/:id
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	tt, err := h.timetableSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, tt)
}

// DeleteTimetable 删除课表及其全部课时
// DELETE /api/v1/timetables/:id
func (h *TimetableHandler) DeleteTimetable(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.timetableSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetGroupTimetable 获取班级的课表
// GET /api/v1/groups/:id/timetable
func (h *TimetableHandler) GetGroupTimetable(c *gin.Context) {
	tt, err := h.timetableSvc.GetByGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, tt)
}

// CreateGroupSlots 按班级提交课时，班级无课表时自动创建
// POST /api/v1/groups/:id/timetable/slots
func (h *TimetableHandler) CreateGroupSlots(c *gin.Context) {
	var req dto.CreateTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeSlotSvc.CreateSlotsForGroup(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateSlots 向课表批量添加课时
// POST /api/v1/timetables/:id/slots
func (h *TimetableHandler) CreateSlots(c *gin.Context) {
	var req dto.CreateTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeSlotSvc.CreateSlots(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// ListSlots 按日期范围查询课表课时
// GET /api/v1/timetables/:id/slots?from=&to=
func (h *TimetableHandler) ListSlots(c *gin.Context) {
	var q dto.TimeSlotRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.timeSlotSvc.ListByRange(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, slots)
}

// CloneWeek 复制一段日期的课时到目标周
// POST /api/v1/timetables/:id/clone-week
func (h *TimetableHandler) CloneWeek(c *gin.Context) {
	var req dto.CloneWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.CloneWeek(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// ListWeeks 全部周视图
// GET /api/v1/timetables/:id/weeks
func (h *TimetableHandler) ListWeeks(c *gin.Context) {
	view, err := h.timetableSvc.WeekView(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, view)
}

// GetWeek 单周视图
// GET /api/v1/timetables/:id/weeks/:week_number
func (h *TimetableHandler) GetWeek(c *gin.Context) {
	week, ok := parseWeekNumber(c)
	if !ok {
		return
	}

	view, err := h.timetableSvc.WeekView(c.Request.Context(), c.Param("id"), &week)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, view)
}

// parseWeekNumber 非整数直接 400；越界交给 Service 判定
func parseWeekNumber(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Param("week_number"))
	if err != nil {
		response.BadRequest(c, 10001, "周次必须为整数")
		return 0, false
	}
	return week, true
}
