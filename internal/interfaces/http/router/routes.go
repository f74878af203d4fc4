package router

import (
	"github.com/gin-gonic/gin"

	"lesson-sheet-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由；limited 作用于生成与导出
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	sheetHandler *handler.SheetHandler,
	exportHandler *handler.ExportHandler,
	limited gin.HandlerFunc,
) {
	sheets := v1.Group("/sheets")
	{
		sheets.POST("/generate", limited, sheetHandler.GenerateSheet)
		sheets.POST("/render", sheetHandler.RenderSheet)
		sheets.GET("", sheetHandler.ListSheets)
		sheets.GET("/:sid", sheetHandler.GetSheet)
		sheets.GET("/:sid/view", sheetHandler.ViewSheet)
		sheets.POST("/:sid/exports", limited, exportHandler.CreateStoredExport)
	}

	exports := v1.Group("/exports")
	{
		exports.POST("", limited, exportHandler.CreateExport)
		exports.GET("/:eid", exportHandler.DownloadExport)
	}
}
