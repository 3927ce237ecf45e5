package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"SevenDay/internal/handler"
	"SevenDay/internal/middleware"
	"SevenDay/pkg/token"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.HTTPMetricsMiddleware())

	h.GET("/healthz", handler.Healthz)

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.RefreshRateLimitMiddleware())
	{
		auth.POST("/refresh", handler.RefreshToken)
	}

	// 七天训练营
	program := v1.Group("/program")
	program.Use(middleware.AuthMiddleware(), middleware.SpanAttributesMiddleware(), middleware.GeneralRateLimitMiddleware())
	{
		program.POST("/start", handler.StartProgram)
		program.GET("/ledger", handler.GetLedger)
		program.POST("/check-ins", handler.SubmitCheckIn)
		program.POST("/reset", handler.ResetProgram)
		program.POST("/finalize", middleware.FinalizeRateLimitMiddleware(), handler.FinalizeProgram)
	}

	// 报告
	reports := v1.Group("/reports")
	reports.Use(middleware.AuthMiddleware(), middleware.SpanAttributesMiddleware())
	{
		// 代他人生成或 test_mode 需要 report:admin，由 service 判断
		reports.POST("/generate", middleware.GenerateRateLimitMiddleware(), handler.GenerateReport)
		reports.GET("/latest", middleware.GeneralRateLimitMiddleware(), handler.GetLatestReport)
	}

	// 审核
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.SpanAttributesMiddleware(), middleware.RequireCapability(token.CapCheckInReview))
	{
		admin.POST("/check-ins/:id/review", handler.ReviewCheckIn)
	}
}
