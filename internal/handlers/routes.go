package handlers

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the router.
func SetupRoutes(router *gin.Engine, analysis *AnalysisHandler, reports *ReportsHandler, alerts *AlertsHandler, health *HealthHandler) {
	router.GET("/health", health.GetHealth)

	v1 := router.Group("/api/v1")
	{
		analysisGroup := v1.Group("/analysis")
		{
			analysisGroup.GET("/history/:symbol", analysis.GetHistory)
			analysisGroup.GET("/volatility/:symbol", analysis.GetVolatility)
			analysisGroup.GET("/correlation", analysis.GetCorrelation)
			analysisGroup.GET("/seasonality/:symbol", analysis.GetSeasonality)
		}

		v1.GET("/pnl/summary", analysis.GetPnLSummary)
		v1.GET("/alerts", alerts.ScanAlerts)

		reportsGroup := v1.Group("/reports")
		{
			reportsGroup.POST("", reports.CreateReport)
			reportsGroup.GET("/:id", reports.GetReport)
			reportsGroup.POST("/:id/distribute", reports.DistributeReport)
			reportsGroup.DELETE("/:id", reports.DeleteReport)
		}
	}
}
