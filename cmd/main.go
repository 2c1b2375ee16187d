package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kitokazu/gymunyfu/config"
	"github.com/kitokazu/gymunyfu/internal/api/community"
	"github.com/kitokazu/gymunyfu/internal/api/user"
	"github.com/kitokazu/gymunyfu/internal/middleware"
	fsrepo "github.com/kitokazu/gymunyfu/internal/repository/firestore"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/storage"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 连接 Firestore
	ctx := context.Background()
	client, err := fsrepo.NewClient(ctx, config.AppConfig.FirestoreProjectID, config.AppConfig.FirestoreCredentialsFile)
	if err != nil {
		util.Logger.Fatal("连接 Firestore 失败", zap.Error(err))
	}
	defer client.Close()
	util.Logger.Info("Firestore 连接成功", zap.String("project", config.AppConfig.FirestoreProjectID))

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("handle", util.ValidateHandle)
	}

	// 初始化存储后端
	uploader := newUploader()

	// 初始化存储库、服务和处理器
	userRepo := fsrepo.NewUserRepository(client)
	postRepo := fsrepo.NewPostRepository(client)
	commentRepo := fsrepo.NewCommentRepository(client)
	likeRepo := fsrepo.NewLikeRepository(client)
	followRepo := fsrepo.NewFollowRepository(client)

	userService := service.NewUserService(userRepo, postRepo, commentRepo)
	postService := service.NewPostService(postRepo)
	commentService := service.NewCommentService(commentRepo)
	likeService := service.NewLikeService(likeRepo)
	followService := service.NewFollowService(followRepo)

	syncHandler := user.NewSyncHandler(userService)
	profileHandler := user.NewProfileHandler(userService, uploader)
	userHandler := user.NewUserHandler(userService, followService)
	postHandler := community.NewPostHandler(postService, userService, likeService, uploader)
	commentHandler := community.NewCommentHandler(commentService, userService, likeService)
	socialHandler := community.NewSocialHandler(likeService, followService)
	streamHandler := community.NewStreamHandler(postService, commentService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 本地存储时由后端直接伺服上传文件
	if config.AppConfig.StorageBackend == "local" {
		r.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
				c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
				c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

				if c.Request.Method == "OPTIONS" {
					c.AbortWithStatus(200)
					return
				}
			}
			c.Next()
		})
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 用户同步与查询
		api.POST("/users/sync", middleware.AuthMiddleware(), syncHandler.SyncUser)
		api.GET("/users/check-username", syncHandler.CheckUsername)
		api.GET("/users", middleware.OptionalAuthMiddleware(), userHandler.ListUsers)
		api.GET("/users/:id", middleware.OptionalAuthMiddleware(), userHandler.GetUser)
		api.GET("/users/by-username/:username", middleware.OptionalAuthMiddleware(), userHandler.GetUserByUsername)

		// 需要认证的个人资料路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.PUT("/profile/financial", profileHandler.UpdateFinancialProfile)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)
			authorized.POST("/profile/cover", profileHandler.UploadCoverImage)
		}

		// 社区相关路由
		api.POST("/posts", middleware.AuthMiddleware(), postHandler.CreatePost)
		api.GET("/posts", middleware.OptionalAuthMiddleware(), postHandler.ListPosts)
		api.GET("/posts/:id", middleware.OptionalAuthMiddleware(), postHandler.GetPost)
		api.PUT("/posts/:id", middleware.AuthMiddleware(), postHandler.UpdatePost)
		api.DELETE("/posts/:id", middleware.AuthMiddleware(), postHandler.DeletePost)
		api.GET("/users/:id/posts", middleware.OptionalAuthMiddleware(), postHandler.GetUserPosts)

		api.POST("/posts/:id/comments", middleware.AuthMiddleware(), commentHandler.AddComment)
		api.GET("/posts/:id/comments", middleware.OptionalAuthMiddleware(), commentHandler.ListComments)
		api.DELETE("/posts/:id/comments/:commentId", middleware.AuthMiddleware(), commentHandler.DeleteComment)

		api.POST("/posts/:id/like", middleware.AuthMiddleware(), socialHandler.TogglePostLike)
		api.POST("/posts/:id/comments/:commentId/like", middleware.AuthMiddleware(), socialHandler.ToggleCommentLike)

		api.POST("/users/:id/follow", middleware.AuthMiddleware(), socialHandler.ToggleFollow)
		api.GET("/users/:id/follow/status", middleware.AuthMiddleware(), socialHandler.GetFollowStatus)
		api.GET("/users/:id/followers", socialHandler.GetFollowers)
		api.GET("/users/:id/following", socialHandler.GetFollowing)

		// 实时流（SSE）
		api.GET("/stream/posts", middleware.OptionalAuthMiddleware(), streamHandler.StreamPosts)
		api.GET("/stream/posts/:id", middleware.OptionalAuthMiddleware(), streamHandler.StreamPost)
		api.GET("/stream/posts/:id/comments", middleware.OptionalAuthMiddleware(), streamHandler.StreamComments)
		api.GET("/stream/users/:id/posts", middleware.OptionalAuthMiddleware(), streamHandler.StreamUserPosts)
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 按配置选择存储后端
func newUploader() storage.Uploader {
	switch config.AppConfig.StorageBackend {
	case "s3":
		client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化 S3 存储失败", zap.Error(err))
		}
		return client
	case "gcs":
		client, err := storage.NewGCSClient(config.AppConfig.GCSBucketName, config.AppConfig.GCSCredentialsFile)
		if err != nil {
			util.Logger.Fatal("初始化 GCS 存储失败", zap.Error(err))
		}
		return client
	default:
		local, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		return local
	}
}
