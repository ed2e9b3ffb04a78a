// Package calendar 提供排课所需的纯值类型：日期、时刻、时间区间与学期窗口。
// 所有类型均不依赖存储与传输层，可在任意层安全复制。
package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout 日期的线上与存储格式
const DateLayout = "2006-01-02"

// ErrInvalidDate 日期格式无效
var ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")

// Date 不含时刻的日历日，内部统一存为 UTC 零点
type Date struct {
	t time.Time
}

// NewDate 由年月日构造 Date
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 取 t 在 loc 时区下的日历日
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate 解析失败时 panic，仅用于常量与测试
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero 是否为零值
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time 返回 UTC 零点对应的 time.Time
func (d Date) Time() time.Time { return d.t }

// In 返回该日在 loc 时区的零点
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
}

// String 格式化为 YYYY-MM-DD
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// AddDays 返回偏移 n 天后的日期
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Weekday 星期几
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Before 是否早于 o
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After 是否晚于 o
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal 是否同一天
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// DaysUntil 从 d 到 o 的天数，o 早于 d 时为负
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// MondayOnOrBefore 返回不晚于 d 的最近一个周一
func (d Date) MondayOnOrBefore() Date {
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDays(-offset)
}

// WeekdayName 英文星期名，作为 day_of_week 持久化
func WeekdayName(d Date) string { return d.Weekday().String() }

// ── 序列化 ──

// MarshalJSON 输出 "YYYY-MM-DD"，零值输出 null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 解析 "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText 供 query/form 绑定使用
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText 供 query/form 绑定使用
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan 实现 sql.Scanner，兼容驱动返回的 time.Time 与文本
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value 实现 driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// GormDataType 列类型
func (Date) GormDataType() string { return "date" }
