package services

import (
	"errors"
	"fmt"
)

// 分配过程中的固定错误
var (
	// ErrOutOfPoolRange 手动指定的地址段不在地址池范围内
	ErrOutOfPoolRange = errors.New("地址段超出地址池范围")

	// ErrInvalidState 申请单状态不允许该操作
	ErrInvalidState = errors.New("申请单状态不允许该操作")
)

// ConflictError 地址与已有分配记录冲突
// 预检查和提交时的唯一约束都会产生该错误，Address为冲突的第一个地址
type ConflictError struct {
	Address string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("IP地址 %s 已被分配", e.Address)
}

// InsufficientCapacityError 自动模式下地址池可用地址不足
type InsufficientCapacityError struct {
	Available uint
	Required  uint
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("地址池可用地址不足: 需要 %d 个，仅剩 %d 个", e.Required, e.Available)
}

// SizeMismatchError 手动地址段大小与申请数量不一致
type SizeMismatchError struct {
	Got  uint
	Want uint
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("手动地址段包含 %d 个地址，与申请数量 %d 不一致", e.Got, e.Want)
}
