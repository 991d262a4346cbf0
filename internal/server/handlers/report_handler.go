package handlers

import (
	"fmt"
	"time"

	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报表导出处理器
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler 创建报表导出处理器
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// ExportAssignments 导出全部分配记录为Excel文件
func (rh *ReportHandler) ExportAssignments(c *gin.Context) {
	f, err := rh.reportService.ExportAssignments()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("assignments-%s.xlsx", time.Now().Format("20060102-150405"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		response.InternalError(c, "导出文件写入失败")
		return
	}
}
