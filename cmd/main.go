package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/handler"
	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"
	"recordmate-backend/internal/tools"
	"recordmate-backend/internal/web"
	"recordmate-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const version = "0.1.0"

func main() {
	var (
		configPath string
		mcpMode    bool
	)
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.BoolVar(&mcpMode, "mcp", false, "以 MCP stdio 服务方式运行")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志；MCP 模式下 stdout 留给协议
	logOut := os.Stdout
	if mcpMode {
		logOut = os.Stderr
	}
	if err := logger.InitWithOutput(cfg.Log.Level, cfg.Log.Format, logOut); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化服务
	factory := model.NewChatModelFactory(cfg.LLM, logger.Logger())
	generator, err := service.NewGenerator(ctx, cfg.LLM, service.NewPromptBuilder(cfg.Prompt), factory)
	if err != nil {
		logger.Fatalf("Failed to create generator: %v", err)
	}
	store := service.NewStorage(cfg.Storage)
	defer store.Close()
	records := service.NewRecordService(generator, store, cfg.History)
	go records.RunCleanup(ctx)

	if mcpMode {
		if err := tools.ServeStdio(records, version); err != nil {
			logger.Fatalf("MCP server failed: %v", err)
		}
		return
	}

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 初始化处理器
	recordHandler := handler.NewRecordHandler(records, cfg.LLM.RequestTimeout)
	pageHandler := handler.NewPageHandler(records, tmpl, cfg.LLM.RequestTimeout)

	// 创建路由
	router := setupRouter(cfg, recordHandler, pageHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d (provider=%s, flash=%s, pro=%s)",
			cfg.Server.Port, cfg.LLM.Provider, cfg.LLM.FlashModel, cfg.LLM.ProModel)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	<-ctx.Done()

	logger.Info("服务器正在关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func setupRouter(cfg *config.Config, recordHandler *handler.RecordHandler, pageHandler *handler.PageHandler) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(logger.GinMiddleware())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	handler.RegisterRoutes(router, recordHandler, pageHandler)
	return router
}
