package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/tweetline/config"
	_ "github.com/d60-Lab/tweetline/docs"
	"github.com/d60-Lab/tweetline/internal/api/handler"
	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/internal/model"
)

// NewRouter 组装路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("tweetline"))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	optional := middleware.Auth(cfg.JWT.Secret, false)
	required := middleware.Auth(cfg.JWT.Secret, true)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", h.Register)
			users.POST("/login", h.Login)
			users.GET("/:user_id", optional, h.GetUser)
			users.GET("/:user_id/profile", optional, h.GetProfile)
			users.PUT("/profile", required, h.UpdateProfile)
		}

		friendships := v1.Group("/friendships")
		{
			friendships.POST("/:user_id/follow", required, h.Follow)
			friendships.POST("/:user_id/unfollow", required, h.Unfollow)
			friendships.GET("/:user_id/followers", optional, h.ListFollowers)
			friendships.GET("/:user_id/followings", optional, h.ListFollowings)
			friendships.GET("/:user_id/following_ids", optional, h.FollowingIDs)
			friendships.GET("/:user_id/has_followed", required, h.HasFollowed)
		}

		tweets := v1.Group("/tweets")
		{
			tweets.POST("", required, h.CreateTweet)
			tweets.GET("", optional, h.ListUserTweets)
			tweets.GET("/:tweet_id", optional, h.GetTweet)
		}

		v1.GET("/newsfeeds", required, h.ListFeed)

		comments := v1.Group("/comments")
		{
			comments.POST("", required, h.CreateComment)
			comments.GET("", optional, h.ListComments)
		}

		likes := v1.Group("/likes")
		{
			likes.POST("", required, h.CreateLike)
			likes.POST("/cancel", required, h.CancelLike)
			likes.GET("/count", optional, h.CountLikes)
		}

		notifications := v1.Group("/notifications", required)
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadCount)
			notifications.POST("/mark-all-as-read", h.MarkAllAsRead)
			notifications.PUT("/:notification_id", h.UpdateNotification)
		}
	}

	return r
}

// registerValidators 注册自定义校验：liketarget 只接受已知目标类型
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("liketarget", func(fl validator.FieldLevel) bool {
			return model.TargetType(fl.Field().String()).Valid()
		})
	}
}
