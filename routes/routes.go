package routes

import (
	"fleamarket_go/controllers"
	"fleamarket_go/middleware"
	"fleamarket_go/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes 设置路由
func SetupRoutes(r *gin.Engine) {
	// 应用全局中间件
	r.Use(middleware.CORS())
	r.Use(middleware.Logger())

	api := r.Group("/api")
	{
		// ====== 报价路由 ======
		offers := api.Group("/offers", middleware.AuthMiddleware())
		{
			offers.GET("/sent", controllers.NewOfferController().GetSentOffers)
			offers.GET("/received", controllers.NewOfferController().GetReceivedOffers)
			offers.PUT("/:id/accept", controllers.NewOfferController().AcceptOffer)
			offers.PUT("/:id/decline", controllers.NewOfferController().DeclineOffer)
			offers.PUT("/:id/counter", controllers.NewOfferController().CounterOffer)
			offers.DELETE("/:id", controllers.NewOfferController().DeleteOffer)
		}

		// ====== 商品路由 ======
		listings := api.Group("/listings")
		{
			listings.GET("/categories", controllers.NewListingController().GetCategories)
			listings.POST("", middleware.AuthMiddleware(), controllers.NewListingController().CreateListing)
			listings.PUT("/:id", middleware.AuthMiddleware(), controllers.NewListingController().UpdateListing)
			listings.POST("/images", middleware.AuthMiddleware(), controllers.NewListingController().UploadImages)
			// 展开报价分组时标记该商品下的报价为已读
			listings.PUT("/:id/offers/read", middleware.AuthMiddleware(), controllers.NewOfferController().MarkListingRead)
		}

		// ====== 消息路由 ======
		messages := api.Group("/messages", middleware.AuthMiddleware())
		{
			messages.GET("/:id", controllers.NewMessageController().GetConversation)
			messages.POST("", controllers.NewMessageController().SendMessage)
		}

		// ====== 评价路由 ======
		reviews := api.Group("/reviews", middleware.AuthMiddleware())
		{
			reviews.GET("/check", controllers.NewReviewController().CheckReview)
			reviews.POST("", controllers.NewReviewController().SubmitReview)
		}
	}

	// ====== WebSocket路由（会话视图实时消息） ======
	r.GET("/ws/messages", websocket.HandleLive)
}
