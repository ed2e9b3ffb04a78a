package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock 时刻格式无效
var ErrInvalidClock = errors.New("时间格式无效，应为 HH:MM:SS")

const secondsPerDay = 24 * 60 * 60

// Clock 一天内的时刻，单位为距零点的秒数
type Clock int

// NewClock 由时分秒构造
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// ParseClock 解析 HH:MM:SS 或 HH:MM，容忍数据库返回的小数秒
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	limits := []int{23, 59, 59}
	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		fields[i] = n
	}
	return NewClock(fields[0], fields[1], fields[2]), nil
}

// MustParseClock 解析失败时 panic，仅用于常量与测试
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hour 时
func (c Clock) Hour() int { return int(c) / 3600 }

// Minute 分
func (c Clock) Minute() int { return int(c) % 3600 / 60 }

// Second 秒
func (c Clock) Second() int { return int(c) % 60 }

// String 格式化为 HH:MM:SS
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// On 将时刻落到指定日期（loc 时区）
func (c Clock) On(d Date, loc *time.Location) time.Time {
	return d.In(loc).Add(time.Duration(c) * time.Second)
}

// ── 序列化 ──

// MarshalJSON 输出 "HH:MM:SS"
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON 接受 "HH:MM:SS" 或 "HH:MM"
func (c *Clock) UnmarshalJSON(b []byte) error {
	parsed, err := ParseClock(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan 实现 sql.Scanner
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return c.scanText(v)
	case []byte:
		return c.scanText(string(v))
	case time.Time:
		*c = NewClock(v.Hour(), v.Minute(), v.Second())
		return nil
	case int64:
		// 部分驱动以微秒返回 TIME
		*c = Clock((v / int64(time.Second/time.Microsecond)) % secondsPerDay)
		return nil
	default:
		return fmt.Errorf("Clock.Scan: unsupported type %T", src)
	}
}

func (c *Clock) scanText(s string) error {
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value 实现 driver.Valuer
func (c Clock) Value() (driver.Value, error) { return c.String(), nil }

// GormDataType 列类型
func (Clock) GormDataType() string { return "time" }
