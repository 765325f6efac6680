package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorse_dev_v1_202608/internal/auth"
	"dorse_dev_v1_202608/internal/controller"
	"dorse_dev_v1_202608/internal/model"
	"dorse_dev_v1_202608/internal/repository"
	"dorse_dev_v1_202608/internal/router"
	"dorse_dev_v1_202608/internal/service"
	"dorse_dev_v1_202608/internal/task"
	"dorse_dev_v1_202608/internal/taxonomy"
	"dorse_dev_v1_202608/pkg/database"
	"dorse_dev_v1_202608/pkg/net"
)

// @title Dorse Publish Engine API
// @version 1.0
// @description 商用车分类广告发布引擎
// @host localhost:8080
// @BasePath /
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.ListingCtl)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB         *gorm.DB
	Repos      *Repositories
	Dispatcher net.Dispatcher
	Services   *Services
	ListingCtl *controller.ListingController
}

// Repositories 仓库集合
type Repositories struct {
	Session repository.ListingSessionRepository
	Log     repository.SubmissionLogRepository
}

// Services 服务集合
type Services struct {
	Publish *service.PublishService
	AI      *service.AIService
	Tokens  *auth.SessionTokens
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=dorse_publish port=5432 sslmode=disable")
	return database.InitDB(dsn,
		&model.ListingSession{},
		&model.SubmissionLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Session: repository.NewListingSessionRepository(db),
		Log:     repository.NewSubmissionLogRepository(db),
	}

	// -------- 基础组件 --------
	dispatcher := net.NewDispatcher()
	resolver := taxonomy.NewResolver(getEnv("BACKEND_URL", "https://api.dorse.example.com"))
	tokens := auth.NewSessionTokens()

	// -------- 存储 (预览句柄) --------
	storage := initStorageProvider()

	// -------- 业务服务 --------
	publishSvc := service.NewPublishService(
		resolver,
		dispatcher,
		tokens,
		service.NewPreviewStore(storage),
		repos.Session,
		repos.Log,
		getEnv("BACKEND_URL", "https://api.dorse.example.com"),
	)
	aiSvc := service.NewAIService(getEnv("GEMINI_API_KEY", ""), getEnv("GEMINI_MODEL", ""))

	services := &Services{Publish: publishSvc, AI: aiSvc, Tokens: tokens}

	return &Dependencies{
		DB:         db,
		Repos:      repos,
		Dispatcher: dispatcher,
		Services:   services,
		ListingCtl: controller.NewListingController(publishSvc, aiSvc),
	}
}

// initStorageProvider 初始化预览存储
func initStorageProvider() service.StorageProvider {
	provider, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "dorse-publish"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败，回退本地存储: %v", err)
		provider, err = service.NewLocalStorage(&service.StorageConfig{})
		if err != nil {
			log.Fatalf("本地存储初始化失败: %v", err)
		}
	}
	return provider
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	sessionTTL := 48 * time.Hour
	if v := getEnv("SESSION_TTL_HOURS", ""); v != "" {
		if d, err := time.ParseDuration(v + "h"); err == nil {
			sessionTTL = d
		}
	}

	cleanupTask := task.NewCleanupTask(deps.Repos.Session, deps.Services.Publish, sessionTTL)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具 ====================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
