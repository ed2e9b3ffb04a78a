package calendar

// Interval 同一天内的半开区间 [Start, End)
type Interval struct {
	Start Clock `gorm:"column:start_time;type:time;not null" json:"start_time"`
	End   Clock `gorm:"column:end_time;type:time;not null"   json:"end_time"`
}

// Valid 结束时间必须严格晚于开始时间
func (i Interval) Valid() bool { return i.End > i.Start }

// Overlaps 半开区间相交判定，首尾相接不算重叠
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

// Equal 结构相等
func (i Interval) Equal(o Interval) bool {
	return i.Start == o.Start && i.End == o.End
}

// String 格式化为 HH:MM:SS-HH:MM:SS
func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}
