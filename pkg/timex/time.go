// Package timex provides the timestamp type shared by every wire format
// Package timex 提供所有传输格式共用的时间类型
package timex

import (
	"time"

	"github.com/bytedance/sonic"
)

// ISO8601Milli is the layout written for every timestamp: UTC with millisecond precision
// ISO8601Milli 写出时间戳使用的格式：UTC，毫秒精度
const ISO8601Milli = "2006-01-02T15:04:05.000Z"

// Time wraps time.Time with ISO-8601 JSON encoding
// Time 封装 time.Time，使用 ISO-8601 JSON 编码
type Time time.Time

// Now returns the current time truncated to milliseconds, so that a value survives
// an encode/decode round trip unchanged.
// Now 返回截断到毫秒的当前时间，保证编码再解码后值不变
func Now() Time {
	return Time(time.Now().UTC().Truncate(time.Millisecond))
}

// Parse accepts any RFC 3339 timestamp, with or without fractional seconds
// Parse 接受任意 RFC 3339 时间戳（可带小数秒）
func Parse(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, err
	}
	return Time(t.UTC()), nil
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) After(u Time) bool {
	return time.Time(t).After(time.Time(u))
}

func (t Time) Before(u Time) bool {
	return time.Time(t).Before(time.Time(u))
}

func (t Time) Equal(u Time) bool {
	return time.Time(t).Equal(time.Time(u))
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// String formats the time as ISO-8601, the zero time as an empty string
// String 以 ISO-8601 格式化时间，零值返回空字符串
func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	return time.Time(t).UTC().Format(ISO8601Milli)
}

// MarshalJSON implements json.Marshaler
// MarshalJSON 实现 json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return sonic.ConfigStd.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler; null and "" decode to the zero time
// UnmarshalJSON 实现 json.Unmarshaler；null 与 "" 解码为零值
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	var unquoted string
	if err := sonic.ConfigStd.Unmarshal(data, &unquoted); err != nil {
		return err
	}
	parsed, err := Parse(unquoted)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
