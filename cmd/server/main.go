package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-social/config"
	"event-social/internal/handler"
	"event-social/internal/model"
	"event-social/internal/repository"
	"event-social/internal/service"
	"event-social/internal/social"
	dbPkg "event-social/pkg/db"
	"event-social/pkg/jwt"
	"event-social/pkg/logger"
	redisPkg "event-social/pkg/redis"
	"event-social/pkg/response"
	"event-social/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 活动社交服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.Bool("database_enabled", cfg.Database.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
		zap.String("seed_file", cfg.Seed.File),
	)

	// 3. 创建会话（所有状态的内存真相）
	session := social.NewSession(social.Options{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		EventIDs:         uuid.NewString,
	})
	defer session.Close()

	jwtSvc := jwt.NewJWTService(cfg.JWT)

	// 4. 数据库归档（可选）
	var userStore service.UserStore
	var archiver *service.Archiver
	if cfg.Database.Enabled {
		orm, err := dbPkg.InitDB(cfg.Database, cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			log.Fatal("数据库连接失败", zap.Error(err))
		}
		defer func() {
			if err := dbPkg.CloseDB(); err != nil {
				log.Error("关闭数据库连接失败", zap.Error(err))
			}
		}()
		log.Info("数据库连接成功")

		if err := dbPkg.AutoMigrate(model.All()...); err != nil {
			log.Fatal("自动迁移失败", zap.Error(err))
		}
		log.Info("自动迁移完成")
		userStore = repository.NewUserRepository(orm)
	}

	userSvc := service.NewUserService(session, jwtSvc, userStore)
	if userStore != nil {
		archiver = service.NewArchiver(dbPkg.GetDB(), session, userSvc)
	}

	// 5. 恢复或导入初始数据
	if err := loadState(cfg, archiver, userSvc); err != nil {
		log.Fatal("初始化会话数据失败", zap.Error(err))
	}
	if archiver != nil {
		stop := archiver.Start()
		defer stop()
	}

	// 6. Redis（可选）：在线状态、未读数、最近会话
	var redisStore *redisPkg.Store
	var tracker service.ConversationTracker
	var presence websocket.Presence
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := redisPkg.InitRedis(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Fatal("Redis连接失败", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("关闭Redis连接失败", zap.Error(err))
			}
		}()
		log.Info("Redis连接成功")
		redisStore, tracker, presence = store, store, store
	}

	// 7. 业务服务与处理器
	friendSvc := service.NewFriendService(session)
	handlers := handler.Handlers{
		User:   handler.NewUserHandler(userSvc, friendSvc),
		Friend: handler.NewFriendHandler(friendSvc),
		Event:  handler.NewEventHandler(service.NewEventService(session, cfg.Chat.PageSize)),
		Chat:   handler.NewChatHandler(service.NewChatService(session, tracker, cfg.Chat.PageSize)),
	}
	wsManager := websocket.NewManager(session.Broker, presence)
	wsHandler := websocket.NewHandler(wsManager, session, jwtSvc, cfg.WebSocket)

	// 8. 设置Gin模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// 9. 创建Gin路由
	router := gin.New()
	router.Use(logger.LoggerMiddleware())      // 自定义日志中间件
	router.Use(logger.ErrorLoggerMiddleware()) // 错误日志中间件

	setupBasicRoutes(router, redisStore, wsManager)
	handler.RegisterRoutes(router.Group("/api/v1"), jwtSvc.AuthMiddleware(), handlers)

	// WebSocket路由
	router.GET("/ws", wsHandler.Serve)

	// 10. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 11. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 12. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// WebSocket 连接已被劫持，Shutdown 不会等待它们
	wsManager.Close()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// loadState 启用数据库时先从归档恢复；归档为空（或未启用数据库）时导入种子数据
func loadState(cfg *config.Config, archiver *service.Archiver, users *service.UserService) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if archiver != nil {
		restored, err := archiver.Restore(ctx)
		if err != nil {
			return err
		}
		if restored {
			return nil
		}
	}

	if cfg.Seed.File == "" {
		return nil
	}
	seed, err := service.LoadSeed(cfg.Seed.File)
	if err != nil {
		return err
	}
	if err := users.ApplySeed(seed); err != nil {
		return err
	}
	logger.Info("种子数据导入完成", zap.String("file", cfg.Seed.File), zap.Int("users", len(seed.Profiles)))

	if archiver != nil {
		return archiver.SaveAll(ctx)
	}
	return nil
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, redisStore *redisPkg.Store, ws *websocket.Manager) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"database": "disabled", "redis": "disabled"}
		if dbPkg.GetDB() != nil {
			status["database"] = "ok"
			if err := dbPkg.HealthCheck(); err != nil {
				status["database"] = "down"
			}
		}
		body := gin.H{
			"status":     "ok",
			"components": status,
			"online":     ws.OnlineCount(),
			"time":       time.Now().Format(time.RFC3339),
		}
		if redisStore != nil {
			status["redis"] = "ok"
			if err := redisStore.HealthCheck(c.Request.Context()); err != nil {
				status["redis"] = "down"
			}
			// 多实例部署时以redis中的在线集合为准
			if users, err := redisStore.OnlineUsers(c.Request.Context()); err == nil {
				body["online_users"] = len(users)
			}
		}
		response.Success(c, body)
	})

	// 根路径
	// 完整url为：http://localhost:8080/
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "欢迎使用活动社交服务",
			"version": "1.0.0",
		})
	})
}
