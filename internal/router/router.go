package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dorse_dev_v1_202608/internal/controller"
	"dorse_dev_v1_202608/internal/middleware"

	_ "dorse_dev_v1_202608/docs"
)

// SetupRouter 创建引擎并挂载路由
func SetupRouter(listingCtl *controller.ListingController) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, listingCtl)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, listingCtl *controller.ListingController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// 位置查询不依赖会话，也无需登录
		api.GET("/cities", listingCtl.Cities)

		// listings 发布会话
		listings := api.Group("/listings")
		listings.Use(middleware.JWTAuth())
		{
			// POST /api/listings
			listings.POST("", listingCtl.StartSession)
			listings.GET("", listingCtl.ListSessions)
			listings.DELETE("/:session_id", listingCtl.Abandon)

			// 表单编辑
			listings.PATCH("/:session_id/fields", listingCtl.SetFields)
			listings.PUT("/:session_id/features", listingCtl.SetFeatures)
			listings.POST("/:session_id/advance", listingCtl.Advance)
			listings.GET("/:session_id/validate", listingCtl.Validate)
			listings.GET("/:session_id/districts", listingCtl.Districts)

			// 媒体暂存
			listings.GET("/:session_id/media", listingCtl.MediaState)
			listings.POST("/:session_id/photos", listingCtl.AddPhotos)
			listings.POST("/:session_id/videos", listingCtl.AddVideos)
			listings.PUT("/:session_id/showcase", listingCtl.SetShowcase)
			listings.DELETE("/:session_id/media/:asset_id", listingCtl.RemoveMedia)

			// 提交与进度
			listings.POST("/:session_id/submit", listingCtl.Submit)
			listings.GET("/:session_id/ad", listingCtl.AdStatus)
			listings.GET("/:session_id/stream", listingCtl.StreamProgress)
			listings.POST("/:session_id/suggest-copy", listingCtl.SuggestCopy)
		}
	}
}
