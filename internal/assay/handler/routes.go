package handler

import (
	"net/http"

	"github.com/bitfantasy/goldassay/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 /api/v1 下的业务路由；authMW 为 JWT 认证中间件
func RegisterRoutes(r *gin.Engine, h *Handlers, authMW gin.HandlerFunc) {
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": CodeNotFound, "message": "Not found"})
	})

	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		v1.POST("/auth/login", h.Auth.Login)

		// SSE 实时推送（支持 query param token）
		v1.GET("/sse/events", authMW, h.SSE.Stream)

		authorized := v1.Group("")
		authorized.Use(authMW)
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 表单编辑会话
			session := authorized.Group("/session")
			{
				session.GET("", h.Session.Get)
				session.POST("/new", h.Session.New)
				session.POST("/load", h.Session.Load)
				session.POST("/select", h.Session.Select)
				session.POST("/next", h.Session.Next)
				session.POST("/previous", h.Session.Previous)
				session.POST("/search", h.Session.Search)
				session.POST("/refresh", h.Session.Refresh)
				session.PATCH("/field", h.Session.UpdateField)
				session.POST("/template", h.Session.ApplyTemplate)
				session.POST("/save", h.Session.Save)
				session.POST("/print", h.Session.Print)
				session.GET("/photo", h.Session.Photo)
				session.POST("/photo", h.Session.UploadPhoto)
			}

			// 模板
			templates := authorized.Group("/templates")
			{
				templates.GET("", h.Template.List)
				templates.POST("", h.Template.Create)
			}

			// 报表
			reports := authorized.Group("/reports")
			{
				reports.GET("/forms", h.Report.ListForms)
				reports.GET("/forms/export", h.Report.ExportForms)
			}

			authorized.GET("/photos/*object", h.Photo.Get)

			// 管理员操作
			admin := authorized.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", h.Admin.CreateUser)
				admin.GET("/users", h.Admin.ListUsers)
				admin.GET("/forms", h.Admin.ListForms)
				admin.DELETE("/forms/:id", h.Admin.DeleteForm)
				admin.GET("/audit-logs", h.Admin.ListAuditLogs)
			}
		}
	}
}
