package ipaddr

import (
	"encoding/binary"
	"fmt"
	"net"
)

// InvalidRangeError 非法地址范围错误
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("非法的IP地址范围: %s", e.Reason)
}

// ParseIPv4 解析IPv4地址为32位整数
func ParseIPv4(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0, fmt.Errorf("无效的IP地址: %s", s)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return 0, fmt.Errorf("仅支持IPv4地址: %s", s)
	}
	return binary.BigEndian.Uint32(ip4), nil
}

// FormatIPv4 32位整数转点分十进制
func FormatIPv4(u uint32) string {
	buf := make(net.IP, 4)
	binary.BigEndian.PutUint32(buf, u)
	return buf.String()
}

// Range IPv4地址区间，构造后不可变
type Range struct {
	start uint32
	end   uint32
}

// NewRange 从点分十进制构造地址区间
func NewRange(startStr, endStr string) (Range, error) {
	start, err := ParseIPv4(startStr)
	if err != nil {
		return Range{}, &InvalidRangeError{Reason: err.Error()}
	}
	end, err := ParseIPv4(endStr)
	if err != nil {
		return Range{}, &InvalidRangeError{Reason: err.Error()}
	}
	if start > end {
		return Range{}, &InvalidRangeError{Reason: fmt.Sprintf("起始地址 %s 大于结束地址 %s", startStr, endStr)}
	}
	return Range{start: start, end: end}, nil
}

// NewRangeUint32 从整数构造地址区间
func NewRangeUint32(start, end uint32) (Range, error) {
	if start > end {
		return Range{}, &InvalidRangeError{Reason: fmt.Sprintf("起始地址 %s 大于结束地址 %s", FormatIPv4(start), FormatIPv4(end))}
	}
	return Range{start: start, end: end}, nil
}

// Start 起始地址
func (r Range) Start() uint32 {
	return r.start
}

// End 结束地址
func (r Range) End() uint32 {
	return r.end
}

// StartString 起始地址的点分十进制表示
func (r Range) StartString() string {
	return FormatIPv4(r.start)
}

// EndString 结束地址的点分十进制表示
func (r Range) EndString() string {
	return FormatIPv4(r.end)
}

// Size 区间内地址总数
func (r Range) Size() uint32 {
	return r.end - r.start + 1
}

// Contains 判断地址是否在区间内
func (r Range) Contains(addr uint32) bool {
	return addr >= r.start && addr <= r.end
}

// ContainsString 判断点分十进制地址是否在区间内
func (r Range) ContainsString(s string) bool {
	addr, err := ParseIPv4(s)
	if err != nil {
		return false
	}
	return r.Contains(addr)
}

// Overlaps 判断两个区间是否有交集
func (r Range) Overlaps(other Range) bool {
	return r.start <= other.end && other.start <= r.end
}

// Iter 返回升序遍历器，可多次调用重新遍历
func (r Range) Iter() *Iterator {
	return &Iterator{next: r.start, end: r.end}
}

// Iterator 地址区间遍历器，按升序产出地址
type Iterator struct {
	next uint32
	end  uint32
	done bool
}

// Next 返回下一个地址，遍历结束时第二个返回值为false
func (it *Iterator) Next() (uint32, bool) {
	if it.done || it.next > it.end {
		return 0, false
	}
	addr := it.next
	if it.next == it.end {
		// 防止end为全1地址时递增回绕
		it.done = true
	} else {
		it.next++
	}
	return addr, true
}

func (r Range) String() string {
	return fmt.Sprintf("%s - %s", r.StartString(), r.EndString())
}
