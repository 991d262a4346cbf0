package models

import (
	"time"

	"gorm.io/gorm"
)

// VLAN类别
const (
	VlanCategoryPrivate = 1 // 私有网段
	VlanCategoryPublic  = 2 // 公有网段
	VlanCategoryOther   = 3 // 其他
)

// VLAN编号取值范围
const (
	VlanNumberMin = 1
	VlanNumberMax = 2048
)

// Vlan VLAN网段信息
type Vlan struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"not null;size:100"`
	VlanNumber       uint           `json:"vlan_number" gorm:"not null;uniqueIndex"`
	Description      string         `json:"description" gorm:"type:text"`
	Category         int            `json:"category" gorm:"default:1"`
	VpnName          string         `json:"vpn_name" gorm:"size:100"`
	IsVisibleToUsers bool           `json:"is_visible_to_users" gorm:"default:false"`
	Status           bool           `json:"status" gorm:"default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// CategoryText 类别中文描述
func (v *Vlan) CategoryText() string {
	switch v.Category {
	case VlanCategoryPrivate:
		return "私有"
	case VlanCategoryPublic:
		return "公有"
	default:
		return "其他"
	}
}
