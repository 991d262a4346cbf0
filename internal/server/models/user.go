package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户信息
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"not null;size:50;uniqueIndex"`
	Email     string         `json:"email" gorm:"size:100;index"`
	Password  string         `json:"-" gorm:"not null;size:255"`
	IsAdmin   bool           `json:"is_admin" gorm:"default:false"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
