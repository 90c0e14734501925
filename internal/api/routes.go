package api

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/organizations", h.listOrganizations)
		api.GET("/organizations/:id", h.getOrganization)
		api.GET("/pledge", h.getPledge)
		api.GET("/share/qr", h.qrHandler)

		api.POST("/sessions", h.createSession)
		sess := api.Group("/sessions/:id")
		{
			sess.GET("", h.getSession)
			sess.DELETE("", h.deleteSession)
			sess.POST("/organization", h.selectOrganization)
			sess.PATCH("/form", h.updateForm)
			sess.POST("/form/reset", h.resetForm)
			sess.POST("/step", h.step)
			sess.POST("/pledge", h.acknowledge)

			sess.POST("/photo/upload", h.uploadPhoto)
			sess.POST("/photo/camera", h.capturePhoto)
			sess.GET("/photo.jpg", h.getPhoto)
			sess.POST("/crop/reopen", h.reopenCrop)
			sess.GET("/crop/source", h.getCropSource)
			sess.PUT("/crop", h.adjustCrop)
			sess.POST("/crop/confirm", h.confirmCrop)
			sess.DELETE("/crop", h.cancelCrop)

			sess.GET("/preview.png", h.preview)
			sess.GET("/poster/download", h.download)
			sess.POST("/poster/share", h.share)
		}

		if h.adminToken != "" {
			api.GET("/admin/submissions.csv", h.requireAdmin, h.exportSubmissions)
		}
	}
}
