package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
	ErrTeacherNotFound    = errors.New("教师不存在")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 周课表导出为 Excel (.xlsx)，一周一个 Sheet，按日期与开始时间排列
//   - 课表与教师日程导出为 iCalendar (.ics)，供日历客户端订阅
//   - 内容以内存缓冲返回，由 Handler 层设置响应头后写出
type ExportService interface {
	ExportWeek(ctx context.Context, timetableID string, weekNumber int) (*bytes.Buffer, string, error)
	TimetableCalendar(ctx context.Context, timetableID string) ([]byte, string, error)
	TeacherCalendar(ctx context.Context, teacherID string, q *dto.TimeSlotRangeQuery) ([]byte, string, error)
}

type exportService struct {
	repo      *repository.Repository
	timetable TimetableService
	loc       *time.Location
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, timetable TimetableService, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, timetable: timetable, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeek — 导出单周课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：第 N 周（起止日期）
//   - 表头：日期 | 星期 | 开始 | 结束 | 课程 | 教师 | 教室 | 备注
//   - 仅输出学期内的日期；无课的日期保留一行占位

func (s *exportService) ExportWeek(ctx context.Context, timetableID string, weekNumber int) (*bytes.Buffer, string, error) {
	view, err := s.timetable.WeekView(ctx, timetableID, &weekNumber)
	if err != nil {
		return nil, "", err
	}
	week := view.Weeks[0]

	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d周", week.WeekNumber)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "星期", "开始", "结束", "课程", "教师", "教室", "备注"}
	widths := []float64{12, 11, 10, 10, 24, 16, 16, 30}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("第%d周（%s ~ %s）", week.WeekNumber, week.WeekStart, week.WeekEnd))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for _, day := range week.Days {
		if !day.InSemester {
			continue
		}
		if len(day.Slots) == 0 {
			f.SetSheetRow(sheetName, cell("A", row), &[]interface{}{day.Date, day.DayOfWeek, "-", "-", "-"})
			row++
			continue
		}
		for _, slot := range day.Slots {
			f.SetSheetRow(sheetName, cell("A", row), &[]interface{}{
				day.Date,
				day.DayOfWeek,
				slot.TimeSlot.StartTime,
				slot.TimeSlot.EndTime,
				slot.SubjectName,
				slot.TeacherName,
				slot.LocationName,
				slot.Remark,
			})
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timetable_week%d_%s.xlsx", week.WeekNumber, week.WeekStart)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// iCalendar 导出
// ═══════════════════════════════════════════════════════════

func (s *exportService) TimetableCalendar(ctx context.Context, timetableID string) ([]byte, string, error) {
	scope, err := loadTimetableScope(ctx, s.repo, timetableID)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("查询课表失败", zap.String("id", timetableID), zap.Error(err))
		}
		return nil, "", err
	}

	slots, err := s.repo.TimeSlot.ListByDateRange(ctx, timetableID, scope.Window.Start, scope.Window.End)
	if err != nil {
		s.logger.Error("查询课时失败", zap.String("timetable_id", timetableID), zap.Error(err))
		return nil, "", err
	}

	name := fmt.Sprintf("%s %s", scope.Group.Name, scope.Semester.Name)
	return []byte(s.buildCalendar(name, slots)), fmt.Sprintf("timetable_%s.ics", timetableID), nil
}

func (s *exportService) TeacherCalendar(ctx context.Context, teacherID string, q *dto.TimeSlotRangeQuery) ([]byte, string, error) {
	from, to, err := parseRange(q)
	if err != nil {
		return nil, "", err
	}

	teacher, err := s.repo.Directory.GetUser(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, "", err
	}

	slots, err := s.repo.TimeSlot.ListByTeacherRange(ctx, teacherID, from, to)
	if err != nil {
		s.logger.Error("查询教师课时失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, "", err
	}

	return []byte(s.buildCalendar(teacher.Name, slots)), fmt.Sprintf("teacher_%s.ics", teacherID), nil
}

// buildCalendar 每个课时生成一个 VEVENT，UID 取课时 ID 以便客户端增量更新
func (s *exportService) buildCalendar(name string, slots []model.TimeSlot) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Campus Admin//Timetable//EN")
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		event := cal.AddEvent(slot.TimeSlotID + "@timetable")
		event.SetDtStampTime(stamp)
		event.SetModifiedAt(slot.UpdatedAt)
		event.SetStartAt(slot.Interval.Start.On(slot.Date, s.loc))
		event.SetEndAt(slot.Interval.End.On(slot.Date, s.loc))

		summary := slot.SubjectName()
		if summary == "" {
			summary = "课程"
		}
		event.SetSummary(summary)
		if loc := slot.LocationName(); loc != "" {
			event.SetLocation(loc)
		}

		var desc []string
		if teacher := slot.TeacherName(); teacher != "" {
			desc = append(desc, "教师: "+teacher)
		}
		if slot.Remark != "" {
			desc = append(desc, slot.Remark)
		}
		if len(desc) > 0 {
			event.SetDescription(strings.Join(desc, "\n"))
		}
	}
	return cal.Serialize()
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
