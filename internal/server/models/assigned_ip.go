package models

import (
	"time"
)

// AssignedIP 已分配的IP地址，一行对应一个地址
// ip_address上的唯一索引是全局唯一性的最终保障：预检查只用于提前给出
// 友好的错误提示，并发审批下真正挡住重复分配的是这条约束。
// 注意唯一性是跨VLAN全局生效的（沿用现网行为）；如需按VLAN隔离，
// 应将唯一索引改为(vlan, ip_address)联合索引。
type AssignedIP struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	RequestID       uint      `json:"request_id" gorm:"not null;index"`
	Request         IPRequest `json:"request" gorm:"foreignKey:RequestID"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	User            User      `json:"user" gorm:"foreignKey:UserID"`
	IPAddress       string    `json:"ip_address" gorm:"not null;size:15;uniqueIndex"`
	Description     string    `json:"description" gorm:"type:text"`
	AssignedByAdmin bool      `json:"assigned_by_admin" gorm:"default:false"`
	IsMonitored     bool      `json:"is_monitored" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
