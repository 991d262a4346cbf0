package models

import (
	"time"
)

// 申请单状态
const (
	RequestStatusPending  = "pending"  // 待审批
	RequestStatusApproved = "approved" // 已批准
	RequestStatusRejected = "rejected" // 已驳回
)

// IPRequest 用户的IP地址申请单
// 状态只允许从pending流转到approved或rejected，终态后不再变更
type IPRequest struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	User           User      `json:"user" gorm:"foreignKey:UserID"`
	VlanID         uint      `json:"vlan_id" gorm:"not null;index"`
	Vlan           Vlan      `json:"vlan" gorm:"foreignKey:VlanID"`
	IPCount        uint      `json:"ip_count" gorm:"not null"`
	Reason         string    `json:"reason" gorm:"type:text"`
	DurationDays   uint      `json:"duration_days" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;size:10;default:pending;index"`
	AdminComment   string    `json:"admin_comment" gorm:"type:text"`
	SelectedPoolID *uint     `json:"selected_pool_id" gorm:"index"`
	SelectedPool   *IPPool   `json:"selected_pool,omitempty" gorm:"foreignKey:SelectedPoolID"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsPending 是否处于待审批状态
func (r *IPRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// StatusText 状态中文描述
func (r *IPRequest) StatusText() string {
	switch r.Status {
	case RequestStatusPending:
		return "审批中"
	case RequestStatusApproved:
		return "已批准"
	case RequestStatusRejected:
		return "已驳回"
	default:
		return r.Status
	}
}
