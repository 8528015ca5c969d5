// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/handler"
	"nova-chat-go/internal/matcher"
	"nova-chat-go/internal/middleware"
	"nova-chat-go/internal/model"
	"nova-chat-go/internal/repository"
	"nova-chat-go/internal/router"
	"nova-chat-go/internal/service"
	"nova-chat-go/pkg/database"
	"nova-chat-go/pkg/es"
	"nova-chat-go/pkg/kafka"
	"nova-chat-go/pkg/log"
	"nova-chat-go/pkg/modelsrv"
	"nova-chat-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与外围设施
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if cfg.Elasticsearch.Addresses != "" {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Errorf("es 初始化失败 %s", err)
			return
		}
	} else {
		log.Info("Elasticsearch 未配置，消息检索已禁用")
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	conversationRepo := repository.NewConversationRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)
	preferenceRepo := repository.NewPreferenceRepository(database.RDB)

	// 首次启动时植入默认模板
	seedTemplates(database.DB)

	// 5. 初始化编排引擎
	modelClient := modelsrv.NewClient(cfg.ModelServer)
	prober := router.NewProber(modelClient, cfg.ModelServer)
	templateMatcher := matcher.New(templateRepo, time.Duration(cfg.Router.TemplateCacheSec)*time.Second)
	orchestrator := router.New(
		router.NewLocalBackend(modelClient, cfg.ModelServer),
		router.NewWebBackend(),
		router.NewTemplateBackend(templateMatcher),
		cfg.Router,
	)

	// 6. 初始化 Service (依赖注入)
	sessionManager := token.NewSessionManager(cfg.Session.Secret, cfg.Session.ExpireHours)
	conversationService := service.NewConversationService(conversationRepo, preferenceRepo, cfg.Router)
	personalizeService := service.NewPersonalizeService(conversationService, cfg.Personalize)
	chatService := service.NewChatService(conversationService, personalizeService, orchestrator, prober, cfg.Router, cfg.Elasticsearch.IndexName)
	searchService := service.NewSearchService(es.ESClient, cfg.Elasticsearch.IndexName)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	chatHandler := handler.NewChatHandler(chatService, sessionManager)
	apiV1 := r.Group("/api/v1")
	{
		// 会话令牌签发（公开访问）
		apiV1.POST("/session", handler.NewSessionHandler(sessionManager).Create)

		// 聊天入口：请求体自带 sessionId，不要求令牌
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.GET("/chat/websocket-token", chatHandler.GetWebsocketToken)

		// 能力快照（状态面板）
		apiV1.GET("/status", handler.NewStatusHandler(prober).GetStatus)

		// 需要会话令牌的路由
		authed := apiV1.Group("/")
		authed.Use(middleware.SessionAuth(sessionManager))
		{
			authed.GET("/conversations", handler.NewConversationHandler(conversationService).GetHistory)
			if cfg.Elasticsearch.Addresses != "" {
				authed.GET("/search/messages", handler.NewSearchHandler(searchService).SearchMessages)
			}
		}
	}
	// Chat 路由 (WebSocket)
	r.GET("/chat/:token", chatHandler.HandleWS)

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// seedTemplates 在模板表为空时植入一组默认模板（幂等）。
// 正式环境中模板由外部管理端维护，这里只保证冷启动可用。
func seedTemplates(db *gorm.DB) {
	var count int64
	if err := db.Model(&model.Template{}).Count(&count).Error; err != nil {
		log.Warnf("seedTemplates: 统计模板数量失败: %v", err)
		return
	}
	if count > 0 {
		return
	}

	defaults := []model.Template{
		{Pattern: `\b(hello|hi|hey)\b`, ResponseText: "Hey {name}! Great to hear from you. What's going on?", Category: "greeting", Priority: 10, Active: true},
		{Pattern: `\bmy name is\b|\bcall me\b|\bi'm\s+[a-z]+\b`, ResponseText: "It's lovely to meet you, {name}!", Category: model.CategoryNameCollection, Priority: 20, Active: true},
		{Pattern: `\b(thanks|thank you)\b`, ResponseText: "Anytime, {name}. Happy to help.", Category: "gratitude", Priority: 10, Active: true},
		{Pattern: `\b(bye|goodbye|good night)\b`, ResponseText: "Take care, {name}. Talk soon!", Category: "farewell", Priority: 10, Active: true},
		{Pattern: `\bwhat can you do\b|\bhelp\b`, ResponseText: "I can chat, think through problems with you, and keep track of our conversations. Just talk to me like you would a friend.", Category: "help", Priority: 15, Active: true},
	}

	if err := db.Create(&defaults).Error; err != nil {
		log.Warnf("seedTemplates: 植入默认模板失败: %v", err)
		return
	}
	log.Infof("seedTemplates: 已植入 %d 条默认模板", len(defaults))
}
