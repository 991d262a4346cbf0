package services

import (
	"errors"
	"fmt"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/utils"

	"gorm.io/gorm"
)

// VlanService VLAN管理服务
type VlanService struct {
	db *gorm.DB
}

// NewVlanService 创建VLAN管理服务
func NewVlanService() *VlanService {
	return &VlanService{
		db: database.DB,
	}
}

// VlanInput VLAN创建/更新参数
type VlanInput struct {
	Name             string
	VlanNumber       uint
	Description      string
	Category         int
	VpnName          string
	IsVisibleToUsers bool
	Status           bool
}

// validateVlanInput 校验VLAN参数
func (vs *VlanService) validateVlanInput(in *VlanInput, excludeID uint) error {
	if in.Name == "" {
		return errors.New("VLAN名称不能为空")
	}
	if in.VlanNumber < models.VlanNumberMin || in.VlanNumber > models.VlanNumberMax {
		return fmt.Errorf("VLAN编号必须在 %d-%d 之间", models.VlanNumberMin, models.VlanNumberMax)
	}
	if in.Category < models.VlanCategoryPrivate || in.Category > models.VlanCategoryOther {
		return errors.New("无效的VLAN类别")
	}
	if in.VpnName != "" && !utils.IsAlphanumeric(in.VpnName) {
		return errors.New("VPN名称只能包含字母和数字")
	}

	// VLAN编号与VPN名称的组合不允许重复
	query := vs.db.Model(&models.Vlan{}).Where("vlan_number = ?", in.VlanNumber)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("查询VLAN失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("VLAN编号 %d 已存在", in.VlanNumber)
	}

	return nil
}

// CreateVlan 创建VLAN
func (vs *VlanService) CreateVlan(in *VlanInput) (*models.Vlan, error) {
	if err := vs.validateVlanInput(in, 0); err != nil {
		return nil, err
	}

	vlan := &models.Vlan{
		Name:             in.Name,
		VlanNumber:       in.VlanNumber,
		Description:      in.Description,
		Category:         in.Category,
		VpnName:          in.VpnName,
		IsVisibleToUsers: in.IsVisibleToUsers,
		Status:           in.Status,
	}

	if err := vs.db.Create(vlan).Error; err != nil {
		return nil, fmt.Errorf("创建VLAN失败: %w", err)
	}

	return vlan, nil
}

// UpdateVlan 更新VLAN
func (vs *VlanService) UpdateVlan(id uint, in *VlanInput) (*models.Vlan, error) {
	var vlan models.Vlan
	if err := vs.db.First(&vlan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("VLAN不存在")
		}
		return nil, fmt.Errorf("查询VLAN失败: %w", err)
	}

	if err := vs.validateVlanInput(in, id); err != nil {
		return nil, err
	}

	vlan.Name = in.Name
	vlan.VlanNumber = in.VlanNumber
	vlan.Description = in.Description
	vlan.Category = in.Category
	vlan.VpnName = in.VpnName
	vlan.IsVisibleToUsers = in.IsVisibleToUsers
	vlan.Status = in.Status

	if err := vs.db.Save(&vlan).Error; err != nil {
		return nil, fmt.Errorf("更新VLAN失败: %w", err)
	}

	return &vlan, nil
}

// GetVlan 查询VLAN
func (vs *VlanService) GetVlan(id uint) (*models.Vlan, error) {
	var vlan models.Vlan
	if err := vs.db.First(&vlan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("VLAN不存在")
		}
		return nil, fmt.Errorf("查询VLAN失败: %w", err)
	}
	return &vlan, nil
}

// ListVlans 查询VLAN列表
// visibleOnly为true时只返回开放给用户申请的VLAN
func (vs *VlanService) ListVlans(visibleOnly bool) ([]models.Vlan, error) {
	query := vs.db.Order("vlan_number")
	if visibleOnly {
		query = query.Where("status = ? AND is_visible_to_users = ?", true, true)
	}

	var vlans []models.Vlan
	if err := query.Find(&vlans).Error; err != nil {
		return nil, fmt.Errorf("查询VLAN列表失败: %w", err)
	}
	return vlans, nil
}

// DeleteVlan 删除VLAN，存在地址池或申请单时不允许删除
func (vs *VlanService) DeleteVlan(id uint) error {
	var poolCount int64
	if err := vs.db.Model(&models.IPPool{}).Where("vlan_id = ?", id).Count(&poolCount).Error; err != nil {
		return fmt.Errorf("查询地址池失败: %w", err)
	}
	if poolCount > 0 {
		return fmt.Errorf("VLAN下存在 %d 个地址池，不允许删除", poolCount)
	}

	var requestCount int64
	if err := vs.db.Model(&models.IPRequest{}).Where("vlan_id = ?", id).Count(&requestCount).Error; err != nil {
		return fmt.Errorf("查询申请单失败: %w", err)
	}
	if requestCount > 0 {
		return fmt.Errorf("VLAN下存在 %d 个申请单，不允许删除", requestCount)
	}

	result := vs.db.Delete(&models.Vlan{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除VLAN失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("VLAN不存在")
	}

	return nil
}
