package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/service"
	"github.com/Monopich/AIST-Backend-sub000/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出单周课表为 Excel
// GET /api/v1/export/timetables/:id/weeks/:week_number
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	week, ok := parseWeekNumber(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// TimetableCalendar 课表日历订阅
// GET /api/v1/export/timetables/:id/calendar.ics
func (h *ExportHandler) TimetableCalendar(c *gin.Context) {
	data, filename, err := h.exportSvc.TimetableCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeICS, data)
}

// TeacherCalendar 教师日历订阅
// GET /api/v1/export/teachers/:id/calendar.ics?from=&to=
func (h *ExportHandler) TeacherCalendar(c *gin.Context) {
	var q dto.TimeSlotRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.exportSvc.TeacherCalendar(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeICS, data)
}

// writeAttachment 设置下载响应头并写出文件内容
func writeAttachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
