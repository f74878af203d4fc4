package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// BindLimit 读取 limit 查询参数，缺省或非法时返回 0（由调用方取默认值）
func BindLimit(c *gin.Context) int {
	return parseIntWithDefault(c.Query("limit"), 0)
}

// BindSheetID 从 URI 绑定教案 ID
func BindSheetID(c *gin.Context) string {
	return c.Param("sid")
}

// BindExportID 从 URI 绑定导出 ID
func BindExportID(c *gin.Context) string {
	return c.Param("eid")
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
