package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/service"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
	"github.com/Monopich/AIST-Backend-sub000/pkg/response"
)

// ── 业务错误码 ──
//
//	170xx 资源不存在（404）
//	171xx 校验失败 / 冲突（422，data 为 dto.SlotErrorData）
//	172xx 状态冲突或权限（409 / 403）

type codedError struct {
	target error
	code   int
}

var notFoundErrors = []codedError{
	{service.ErrTimetableNotFound, 17001},
	{service.ErrSlotNotFound, 17002},
	{service.ErrSemesterNotFound, 17003},
	{service.ErrGroupNotFound, 17004},
	{service.ErrLocationNotFound, 17005},
	{service.ErrTeacherNotFound, 17006},
}

var validationErrors = []codedError{
	{service.ErrSlotMissingField, 17101},
	{service.ErrSlotOutOfRange, 17102},
	{service.ErrSlotInvalidInterval, 17103},
	{service.ErrTeacherRoleMissing, 17104},
	{service.ErrTeacherSubjectMismatch, 17105},
	{service.ErrTeacherConflict, 17106},
	{service.ErrGroupConflict, 17107},
	{service.ErrDuplicateSlot, 17108},
	{service.ErrLocationConflict, 17109},
	{service.ErrInvalidWeekNumber, 17110},
	{service.ErrSlotNotInTimetable, 17111},
	{service.ErrLocationInactive, 17112},
	{service.ErrLocationNotFound, 17113},
	{service.ErrInvalidDateFormat, 17114},
	{service.ErrInvalidTimeFormat, 17115},
	{service.ErrSlotInvalidRange, 17116},
	{service.ErrCloneTargetInPast, 17117},
	{service.ErrEmptySlotBatch, 17118},
	{service.ErrSlotBatchTooLarge, 17119},
	{service.ErrInvalidSemesterDates, 17120},
	{service.ErrSemesterHasSlotsOutside, 17121},
}

func match(list []codedError, err error) (codedError, bool) {
	for _, e := range list {
		if errors.Is(err, e.target) {
			return e, true
		}
	}
	return codedError{}, false
}

// handleServiceError 统一将 Service 错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	// 批量操作中的校验失败：带上失败下标
	var slotErr *service.SlotError
	if errors.As(err, &slotErr) {
		if e, ok := match(validationErrors, slotErr.Err); ok {
			data := slotErrorData(slotErr.Err)
			index := slotErr.Index
			data.Index = &index
			response.Unprocessable(c, e.code, e.target.Error(), data)
			return
		}
	}

	if e, ok := match(notFoundErrors, err); ok {
		response.NotFound(c, e.code, e.target.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrTimetableExists):
		response.Conflict(c, 17201, service.ErrTimetableExists.Error())
		return
	case errors.Is(err, service.ErrGroupScopeDenied):
		response.Forbidden(c, 17202, service.ErrGroupScopeDenied.Error())
		return
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 17203, pkgerrors.ErrOptimisticLock.Error())
		return
	case pkgerrors.IsConcurrentWrite(err):
		response.Conflict(c, 17204, "并发写入冲突，请重试")
		return
	}

	if e, ok := match(validationErrors, err); ok {
		response.Unprocessable(c, e.code, e.target.Error(), slotErrorData(err))
		return
	}

	response.InternalErrorWithDetails(c, err)
}

// slotErrorData 从错误链中提取结构化详情
func slotErrorData(err error) *dto.SlotErrorData {
	data := &dto.SlotErrorData{Reason: err.Error()}

	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		data.Dimension = string(conflictErr.Dimension)
		data.Conflicts = conflictErr.Conflicts
	}
	var weekErr *service.InvalidWeekNumberError
	if errors.As(err, &weekErr) {
		data.ValidRange = &dto.WeekBounds{Min: 1, Max: weekErr.Total}
	}
	var idsErr *service.InvalidSlotIDsError
	if errors.As(err, &idsErr) {
		data.InvalidSlotIDs = idsErr.SlotIDs
	}
	return data
}
