package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/service"
	"github.com/Monopich/AIST-Backend-sub000/pkg/response"
)

// TimeSlotHandler 课时模块 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// GetTimeSlot 获取课时详情
// GET /api/v1/time-slots/:id
func (h *TimeSlotHandler) GetTimeSlot(c *gin.Context) {
	slot, err := h.timeSlotSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, slot)
}

// UpdateTimeSlot 更新课时，重新执行完整校验（排除自身）
// PUT /api/v1/time-slots/:id
func (h *TimeSlotHandler) UpdateTimeSlot(c *gin.Context) {
	var req dto.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	slot, err := h.timeSlotSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteTimeSlot 删除课时
// DELETE /api/v1/time-slots/:id
func (h *TimeSlotHandler) DeleteTimeSlot(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.timeSlotSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkDeleteTimeSlots 批量删除课时，全部属于该课表才执行
// POST /api/v1/time-slots/bulk-delete
func (h *TimeSlotHandler) BulkDeleteTimeSlots(c *gin.Context) {
	var req dto.BulkDeleteTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeSlotSvc.BulkDelete(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListTeacherSlots 教师在日期范围内的全部课时
// GET /api/v1/teachers/:id/slots?from=&to=
func (h *TimeSlotHandler) ListTeacherSlots(c *gin.Context) {
	var q dto.TimeSlotRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.timeSlotSvc.ListByTeacher(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, slots)
}
