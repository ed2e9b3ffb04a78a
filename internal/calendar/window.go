package calendar

import "errors"

// ErrInvalidWindow 窗口起始日期晚于结束日期
var ErrInvalidWindow = errors.New("开始日期不能晚于结束日期")

// Window 学期窗口，首尾均包含
type Window struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// WeekRange 窗口内的一个教学周（周一至周日）
type WeekRange struct {
	Number int  `json:"week_number"`
	Start  Date `json:"week_start"`
	End    Date `json:"week_end"`
}

// NewWindow 构造窗口，拒绝 start > end
func NewWindow(start, end Date) (Window, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start, End: end}, nil
}

// Contains 日期是否在窗口内（含首尾）
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// DurationDays 窗口包含的天数
func (w Window) DurationDays() int {
	return w.Start.DaysUntil(w.End) + 1
}

// Weeks 将窗口切分为周一至周日的连续周。
// 第 1 周从 Start 当天或之前的周一开始，最后一周截断到 End。
// 每次调用重新计算，不做缓存。
func (w Window) Weeks() []WeekRange {
	if w.Start.After(w.End) {
		return nil
	}
	var weeks []WeekRange
	n := 1
	for ws := w.Start.MondayOnOrBefore(); !ws.After(w.End); ws = ws.AddDays(7) {
		we := ws.AddDays(6)
		if we.After(w.End) {
			we = w.End
		}
		weeks = append(weeks, WeekRange{Number: n, Start: ws, End: we})
		n++
	}
	return weeks
}

// Week 返回第 n 周（从 1 开始）
func (w Window) Week(n int) (WeekRange, bool) {
	weeks := w.Weeks()
	if n < 1 || n > len(weeks) {
		return WeekRange{}, false
	}
	return weeks[n-1], true
}

// Days 列出 Start..End 的每一天
func (r WeekRange) Days() []Date {
	days := make([]Date, 0, 7)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// DaysIn 本周落在窗口内的天数
func (r WeekRange) DaysIn(w Window) int {
	count := 0
	for _, d := range r.Days() {
		if w.Contains(d) {
			count++
		}
	}
	return count
}
