package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
)

// ── 排课模块业务错误 ──

var (
	ErrTimetableNotFound  = errors.New("课表不存在")
	ErrSlotNotFound       = errors.New("课时不存在")
	ErrSemesterNotFound   = errors.New("学期不存在")
	ErrGroupNotFound      = errors.New("班级不存在")
	ErrTimetableExists    = errors.New("该班级已有课表")
	ErrGroupScopeDenied   = errors.New("无权管理该班级的课表")
	ErrEmptySlotBatch     = errors.New("课时列表不能为空")
	ErrSlotBatchTooLarge  = errors.New("单次提交的课时数量超过上限")
	ErrInvalidDateFormat  = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidTimeFormat  = errors.New("时间格式无效，应为 HH:MM:SS")
	ErrSlotNotInTimetable = errors.New("部分课时不属于该课表")

	// 课时校验，按检查顺序排列
	ErrSlotMissingField       = errors.New("必须选择教师、课程和教室")
	ErrSlotOutOfRange         = errors.New("课时日期不在学期范围内")
	ErrSlotInvalidInterval    = errors.New("结束时间必须晚于开始时间")
	ErrTeacherRoleMissing     = errors.New("所选用户不是任课教师")
	ErrTeacherSubjectMismatch = errors.New("该教师未担任此课程")
	ErrTeacherConflict        = errors.New("教师在该时间段已有课程")
	ErrGroupConflict          = errors.New("班级在该时间段已有课程")
	ErrDuplicateSlot          = errors.New("课表中已存在完全相同的课时")
	ErrLocationConflict       = errors.New("教室在该时间段已被占用")

	// 周视图与复制
	ErrInvalidWeekNumber = errors.New("周次超出范围")
	ErrCloneTargetInPast = errors.New("目标开始日期不能早于今天")
	ErrSlotInvalidRange  = errors.New("源结束日期不能早于源开始日期")
)

// ConflictDimension 冲突检测维度
type ConflictDimension string

const (
	DimensionTeacher  ConflictDimension = "teacher"
	DimensionGroup    ConflictDimension = "group"
	DimensionLocation ConflictDimension = "location"
)

func (d ConflictDimension) sentinel() error {
	switch d {
	case DimensionTeacher:
		return ErrTeacherConflict
	case DimensionGroup:
		return ErrGroupConflict
	default:
		return ErrLocationConflict
	}
}

// ConflictError 某一维度上的时间重叠，携带全部冲突课时
type ConflictError struct {
	Dimension ConflictDimension
	Conflicts []dto.SlotConflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		label := c.StartTime + "-" + c.EndTime
		switch e.Dimension {
		case DimensionTeacher:
			label += " " + c.TeacherName
		case DimensionGroup:
			label += " " + c.SubjectName + " " + c.TeacherName
		case DimensionLocation:
			label += " " + c.LocationName
		}
		parts = append(parts, strings.TrimSpace(label))
	}
	return fmt.Sprintf("%s: %s", e.Dimension.sentinel().Error(), strings.Join(parts, "; "))
}

func (e *ConflictError) Unwrap() error { return e.Dimension.sentinel() }

// SlotError 批量操作中第 Index 个课时失败（下标从 0 开始）
type SlotError struct {
	Index int
	Err   error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("第 %d 个课时校验失败: %v", e.Index+1, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }

// InvalidWeekNumberError 请求的周次不在 [1, Total] 内
type InvalidWeekNumberError struct {
	Requested int
	Total     int
}

func (e *InvalidWeekNumberError) Error() string {
	return fmt.Sprintf("周次 %d 超出范围，有效范围为 1-%d", e.Requested, e.Total)
}

func (e *InvalidWeekNumberError) Unwrap() error { return ErrInvalidWeekNumber }

// InvalidSlotIDsError 批量删除时不属于该课表（或不存在）的课时 ID
type InvalidSlotIDsError struct {
	TimetableID string
	SlotIDs     []string
}

func (e *InvalidSlotIDsError) Error() string {
	return fmt.Sprintf("以下课时不属于课表 %s: %s", e.TimetableID, strings.Join(e.SlotIDs, ", "))
}

func (e *InvalidSlotIDsError) Unwrap() error { return ErrSlotNotInTimetable }
