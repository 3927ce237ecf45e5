package program

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date 不可变的日历日期，不携带时区；需要换算成时刻时必须显式给出时区
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate 会像 time.Date 一样规范化越界的月/日
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// DateOf 返回时刻 t 在 loc 下所处的日历日期
func DateOf(t time.Time, loc *time.Location) Date {
	t = t.In(loc)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// FromStored 读取数据库 date 列，只取年月日，不做时区换算
func FromStored(t time.Time) Date {
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// ParseDate 解析 2006-01-02 格式
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromStored(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays 返回新的日期，d 本身不变
func (d Date) AddDays(n int) Date {
	return NewDate(d.year, d.month, d.day+n)
}

// DaysSince d 与 o 相差的天数，d 在 o 之后为正
func (d Date) DaysSince(o Date) int {
	return int(d.Stored().Sub(o.Stored()).Hours() / 24)
}

func (d Date) Before(o Date) bool {
	return d.Stored().Before(o.Stored())
}

// StartIn 该日在 loc 下的 00:00
func (d Date) StartIn(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// EndIn 该日的截止时刻，即次日 00:00（不含）
func (d Date) EndIn(loc *time.Location) time.Time {
	return d.AddDays(1).StartIn(loc)
}

// Stored 写入 date 列时使用的 UTC 零点表示
func (d Date) Stored() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Stored().Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Calendar 训练营使用的固定时区偏移
type Calendar struct {
	loc *time.Location
}

// NewCalendar 以 UTC 偏移小时数构造日历，例如 8 表示 UTC+8
func NewCalendar(offsetHours int) Calendar {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return Calendar{loc: time.FixedZone(name, offsetHours*3600)}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Today now 所在的日历日
func (c Calendar) Today(now time.Time) Date {
	return DateOf(now, c.Location())
}

// Deadline 某一天的打卡截止时刻
func (c Calendar) Deadline(d Date) time.Time {
	return d.EndIn(c.Location())
}
