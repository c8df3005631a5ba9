package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"MatchServer/apps/match/internal/gateway"
	"MatchServer/apps/match/internal/handler"
	"MatchServer/apps/match/internal/manager"
	"MatchServer/apps/match/internal/repository"
	"MatchServer/apps/match/internal/router"
	v1 "MatchServer/apps/match/internal/router/v1"
	"MatchServer/apps/match/internal/server"
	"MatchServer/apps/match/internal/service"
	"MatchServer/apps/match/internal/svc"
	"MatchServer/config"
	"MatchServer/model"
	"MatchServer/pkg/async"
	"MatchServer/pkg/ctxmeta"
	"MatchServer/pkg/id"
	"MatchServer/pkg/logger"
	pkgmysql "MatchServer/pkg/mysql"
	pkgredis "MatchServer/pkg/redis"
)

func main() {
	// 初始化根上下文，并放入一个默认 trace_id。
	// 服务不是从 HTTP 请求起步，因此先放一个固定值用于启动期日志串联。
	ctx := ctxmeta.WithTraceID(context.Background(), "0")

	// 1) 初始化日志组件（必须最先完成，后续模块初始化都依赖日志输出）。
	logCfg := config.DefaultLoggerConfig()
	l, err := logger.Build(logCfg)
	if err != nil {
		panic(err)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		_ = l.Sync()
	}()

	// 2) 初始化 MySQL。
	// 配对状态与会话数据都落在 MySQL，初始化失败直接退出。
	mysqlCfg := config.DefaultMySQLConfig()
	db, err := pkgmysql.Build(mysqlCfg)
	if err != nil {
		logger.Fatal(ctx, "Match 服务 MySQL 初始化失败", logger.ErrorField(err))
	}
	if err := db.AutoMigrate(
		&model.Like{},
		&model.Connection{},
		&model.Chat{},
		&model.Message{},
	); err != nil {
		logger.Fatal(ctx, "Match 服务表结构迁移失败", logger.ErrorField(err))
	}
	logger.Info(ctx, "Match 服务 MySQL 初始化成功")

	// 3) 初始化 Redis。
	// 说明：
	// - 会话吊销校验依赖 Redis。
	// - 这里采用降级策略：Redis 不可用时服务仍可启动（仅 JWT 校验）。
	redisCfg := config.DefaultRedisConfig()
	redisClient, err := pkgredis.Build(redisCfg)
	if err != nil {
		logger.Warn(ctx, "Match 服务 Redis 初始化失败，降级为无 Redis 模式",
			logger.ErrorField(err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Match 服务 Redis 初始化成功",
			logger.String("addr", redisCfg.Addr),
		)
	}

	// 4) 初始化协程池与 ID 生成器。
	if err := async.Init(config.DefaultAsyncConfig()); err != nil {
		logger.Fatal(ctx, "Match 服务协程池初始化失败", logger.ErrorField(err))
	}
	if err := id.Init(); err != nil {
		logger.Fatal(ctx, "Match 服务 ID 生成器初始化失败", logger.ErrorField(err))
	}

	// 5) 组装核心依赖：
	// - repository: 关系/会话存储与事务执行器。
	// - service:    配对状态机、会话服务与事件分发。
	// - manager:    连接注册/注销与在线连接索引。
	// - gateway:    面向单用户通道的下行投递（带会话复核）。
	// - handler:    Gin /ws 入口，承接协议层逻辑。
	relRepo := repository.NewRelationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	txRunner := repository.NewTxRunner(db)

	sessionSvc, err := svc.NewSessionService(redisClient)
	if err != nil {
		logger.Fatal(ctx, "Match 服务会话校验器初始化失败", logger.ErrorField(err))
	}

	connManager := manager.NewConnectionManager()
	notifyGateway := gateway.NewNotificationGateway(connManager, sessionSvc)
	dispatcher := service.NewEventDispatcher(notifyGateway)

	matchSvc := service.NewMatchService(relRepo, txRunner)
	chatSvc := service.NewChatService(chatRepo)

	wsHandler := handler.NewWSHandler(connManager, sessionSvc, chatSvc, dispatcher, notifyGateway)
	relationHandler := v1.NewRelationHandler(matchSvc, dispatcher)

	// 6) 构建 HTTP 服务（/health、/metrics、/ws 与 /api/v1）。
	srvCfg := config.DefaultServerConfig()
	r := router.InitRouter(srvCfg, sessionSvc, wsHandler, relationHandler)
	srv := server.New(srvCfg, r)

	// 7) 后台启动 HTTP 监听。
	// ListenAndServe 的正常退出会返回 http.ErrServerClosed，这种情况不视为启动失败。
	go func() {
		logger.Info(ctx, "Match 服务启动中",
			logger.String("addr", srvCfg.Addr),
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Match 服务启动失败", logger.ErrorField(err))
		}
	}()

	// 8) 阻塞等待系统退出信号（Ctrl+C / SIGTERM）。
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 9) 优雅关闭流程：
	// - 先关闭连接管理器，主动断开所有 WebSocket 连接，避免悬挂连接。
	// - 再关闭 HTTP 服务，等待进行中的请求在超时时间内结束。
	// - 最后释放协程池，等待未投递完的事件任务收尾。
	logger.Info(ctx, "Match 服务开始优雅停机")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	connManager.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Match 服务优雅停机失败", logger.ErrorField(err))
	}
	if err := async.Release(); err != nil {
		logger.Warn(ctx, "Match 服务协程池释放超时", logger.ErrorField(err))
	}

	logger.Info(ctx, "Match 服务已退出")
}
