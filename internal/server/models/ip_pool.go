package models

import (
	"time"

	"github.com/mir5/ipadmin/internal/shared/ipaddr"

	"gorm.io/gorm"
)

// IPPool IP地址池，归属于一个VLAN
type IPPool struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	VlanID      uint           `json:"vlan_id" gorm:"not null;index"`
	Vlan        Vlan           `json:"vlan" gorm:"foreignKey:VlanID"`
	RangeStart  string         `json:"range_start" gorm:"not null;size:15"`
	RangeEnd    string         `json:"range_end" gorm:"not null;size:15"`
	SubnetMask  string         `json:"subnet_mask" gorm:"not null;size:15"`
	Gateway     string         `json:"gateway" gorm:"not null;size:15"`
	DNSServers  string         `json:"dns_servers" gorm:"size:255"`
	Description string         `json:"description" gorm:"type:text"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Range 地址池的区间值对象
// 入库前已通过校验，正常情况下不会返回错误
func (p *IPPool) Range() (ipaddr.Range, error) {
	return ipaddr.NewRange(p.RangeStart, p.RangeEnd)
}

// TotalCount 地址池地址总数
func (p *IPPool) TotalCount() uint32 {
	r, err := p.Range()
	if err != nil {
		return 0
	}
	return r.Size()
}
