package services

import (
	"errors"
	"fmt"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"

	"gorm.io/gorm"
)

// AssignmentService 分配记录查询与维护
// 分配记录只能由分配器创建；这里只开放备注和监控标记等非关键字段的维护
type AssignmentService struct {
	db *gorm.DB
}

// NewAssignmentService 创建分配记录服务
func NewAssignmentService() *AssignmentService {
	return &AssignmentService{
		db: database.DB,
	}
}

// ListByRequest 查询申请单名下的分配记录，按地址升序
func (as *AssignmentService) ListByRequest(requestID uint) ([]models.AssignedIP, error) {
	var assignments []models.AssignedIP
	err := as.db.Where("request_id = ?", requestID).Order("ip_address").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询分配记录失败: %w", err)
	}
	return assignments, nil
}

// ListByUser 查询用户名下的全部分配记录
func (as *AssignmentService) ListByUser(userID uint) ([]models.AssignedIP, error) {
	var assignments []models.AssignedIP
	err := as.db.Preload("Request").Preload("Request.Vlan").
		Where("user_id = ?", userID).
		Order("ip_address").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询分配记录失败: %w", err)
	}
	return assignments, nil
}

// UpdateDescription 更新分配记录备注，仅限记录归属用户或管理员
func (as *AssignmentService) UpdateDescription(assignmentID, operatorID uint, isAdmin bool, description string) error {
	var assignment models.AssignedIP
	if err := as.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("分配记录不存在")
		}
		return fmt.Errorf("查询分配记录失败: %w", err)
	}

	if !isAdmin && assignment.UserID != operatorID {
		return errors.New("无权修改他人的分配记录")
	}

	if err := as.db.Model(&assignment).Update("description", description).Error; err != nil {
		return fmt.Errorf("更新备注失败: %w", err)
	}

	return nil
}

// SetMonitored 设置监控标记，仅限管理员
func (as *AssignmentService) SetMonitored(assignmentID uint, monitored bool) error {
	result := as.db.Model(&models.AssignedIP{}).
		Where("id = ?", assignmentID).
		Update("is_monitored", monitored)
	if result.Error != nil {
		return fmt.Errorf("更新监控标记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("分配记录不存在")
	}
	return nil
}
