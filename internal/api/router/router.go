package router

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/api/handler"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup 构建路由
func Setup(
	purchaseRequestHandler *handler.PurchaseRequestHandler,
	approvalMatrixHandler *handler.ApprovalMatrixHandler,
	userHandler *handler.UserHandler,
	mode string,
) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()

	// 使用自定义的 recovery 中间件（打印详细错误信息）
	r.Use(middleware.RecoveryMiddleware())
	// 使用 Gin 的 Logger 中间件（记录请求日志）
	r.Use(gin.Logger())

	// 中间件
	r.Use(middleware.CORS())
	r.Use(middleware.MetricsMiddleware())

	api := r.Group("/api")
	{
		// 采购申请
		requests := api.Group("/purchase-requests")
		{
			requests.POST("", purchaseRequestHandler.Submit)
			requests.GET("", purchaseRequestHandler.List)             // my/approve/all 视角
			requests.GET("/:prNumber", purchaseRequestHandler.Detail) // 含审批历史和升级记录
			requests.POST("/:prNumber/action", purchaseRequestHandler.Action)
			requests.POST("/:prNumber/resubmit", purchaseRequestHandler.Resubmit)
		}

		// 管理端：审批矩阵与组织人员
		adminGroup := api.Group("/admin")
		{
			adminGroup.GET("/approval-matrix", approvalMatrixHandler.List)
			adminGroup.GET("/approval-matrix/:empCode", approvalMatrixHandler.Get)
			adminGroup.POST("/approval-matrix", approvalMatrixHandler.Upsert)
			adminGroup.DELETE("/approval-matrix/:empCode", approvalMatrixHandler.Delete)

			adminGroup.GET("/users", userHandler.List)
			adminGroup.GET("/users/:empCode", userHandler.Get)
			adminGroup.POST("/users", userHandler.Upsert)
		}
	}

	// Prometheus Metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check (支持 GET 和 HEAD 方法)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"type":   "api-server",
		})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	return r
}
