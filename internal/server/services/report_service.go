package services

import (
	"fmt"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService 报表导出服务
type ReportService struct {
	db *gorm.DB
}

// NewReportService 创建报表导出服务
func NewReportService() *ReportService {
	return &ReportService{
		db: database.DB,
	}
}

// ExportAssignments 导出全部分配记录为Excel工作簿
func (rs *ReportService) ExportAssignments() (*excelize.File, error) {
	var assignments []models.AssignedIP
	err := rs.db.Preload("User").
		Preload("Request").
		Preload("Request.Vlan").
		Preload("Request.SelectedPool").
		Order("ip_address").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询分配记录失败: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Assignments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"IP地址", "用户", "申请单", "VLAN", "地址池", "管理员指定", "监控", "备注", "分配时间"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("生成表头失败: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("写入表头失败: %w", err)
		}
	}

	for rowIdx, a := range assignments {
		vlanName := ""
		poolRange := ""
		if a.Request.Vlan.ID != 0 {
			vlanName = fmt.Sprintf("%s (VLAN %d)", a.Request.Vlan.Name, a.Request.Vlan.VlanNumber)
		}
		if a.Request.SelectedPool != nil {
			poolRange = fmt.Sprintf("%s - %s", a.Request.SelectedPool.RangeStart, a.Request.SelectedPool.RangeEnd)
		}

		values := []interface{}{
			a.IPAddress,
			a.User.Username,
			a.RequestID,
			vlanName,
			poolRange,
			boolText(a.AssignedByAdmin),
			boolText(a.IsMonitored),
			a.Description,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("生成单元格坐标失败: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("写入数据失败: %w", err)
			}
		}
	}

	return f, nil
}

// boolText 布尔值中文描述
func boolText(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
