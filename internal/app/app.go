/**
 * 应用装配
 * @author: sun977
 * @description: 依赖装配与生命周期管理，server 模式的骨架
 */
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"neoprobe/internal/config"
	"neoprobe/internal/core/brute"
	"neoprobe/internal/core/brute/protocol"
	"neoprobe/internal/core/probe"
	"neoprobe/internal/core/webvuln"
	"neoprobe/internal/handler"
	"neoprobe/internal/model"
	"neoprobe/internal/pkg/database"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/repository"
	pentestsvc "neoprobe/internal/service/pentest"
	scansvc "neoprobe/internal/service/scan"
)

// App 应用实例
type App struct {
	cfg       *config.Config
	db        *gorm.DB
	redis     *redis.Client
	scheduler *scansvc.Scheduler
	server    *http.Server

	cancelWorkers context.CancelFunc
}

// NewApp 装配应用
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	if _, err := logger.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("日志初始化失败: %w", err)
	}

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	if err := db.AutoMigrate(
		&model.UploadBatch{},
		&model.ScanTask{},
		&model.PentestSession{},
		&model.PentestResult{},
		&model.DiscoveredCredential{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis != nil && cfg.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(cfg.Redis)
		if err != nil {
			// 缓存是可选依赖，连不上降级为直连数据库
			logger.Warnf("Redis连接失败，状态缓存降级停用: %v", err)
			redisClient = nil
		}
	}

	batchRepo := repository.NewBatchRepository(db)
	taskRepo := repository.NewScanTaskRepository(db)
	pentestRepo := repository.NewPentestRepository(db)

	probeEngine := probe.NewEngine(
		probe.WithPingTimeout(cfg.Scanner.PingTimeout),
		probe.WithPortTimeout(cfg.Scanner.PortTimeout),
		probe.WithPortParallel(cfg.Scanner.PortParallel),
	)

	runner := scansvc.NewTaskRunner(taskRepo, batchRepo, probeEngine)
	scheduler := scansvc.NewScheduler(runner,
		scansvc.WithWorkers(cfg.Scanner.Workers),
		scansvc.WithQueueSize(cfg.Scanner.QueueSize),
		scansvc.WithMaxAttempts(cfg.Scanner.MaxAttempts),
		scansvc.WithTaskTimeout(cfg.Scanner.TaskTimeout),
	)

	cacheTTL := 5 * time.Second
	if cfg.Redis != nil && cfg.Redis.CacheTTL > 0 {
		cacheTTL = cfg.Redis.CacheTTL
	}
	orchestrator := scansvc.NewOrchestrator(batchRepo, taskRepo, scheduler, redisClient, cacheTTL)
	reporter := scansvc.NewReporter(taskRepo)
	exporter := scansvc.NewExporter(taskRepo)

	bruteEngine := brute.NewEngine(
		[]brute.Cracker{
			protocol.NewSSHCracker(),
			protocol.NewFTPCracker(),
			protocol.NewTelnetCracker(),
			protocol.NewMySQLCracker(),
			protocol.NewPostgresCracker(),
		},
		brute.WithDetectTimeout(cfg.Pentest.DetectTimeout),
		brute.WithAuthTimeout(cfg.Pentest.AuthTimeout),
	)
	webScanner := webvuln.NewScanner(
		webvuln.WithHTTPTimeout(cfg.Pentest.HTTPTimeout),
		webvuln.WithDetectTimeout(cfg.Pentest.DetectTimeout),
	)
	pentestService := pentestsvc.NewService(pentestRepo, batchRepo, taskRepo, bruteEngine, webScanner)

	scanHandler := handler.NewScanHandler(orchestrator, reporter, exporter)
	pentestHandler := handler.NewPentestHandler(pentestService)
	router := handler.NewRouter(scanHandler, pentestHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		cfg:       cfg,
		db:        db,
		redis:     redisClient,
		scheduler: scheduler,
		server:    server,
	}, nil
}

// Start 启动工作池和HTTP服务
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWorkers = cancel
	a.scheduler.Start(ctx)

	logger.Infof("HTTP服务启动 addr=%s", a.server.Addr)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP服务异常退出: %v", err)
		}
	}()
	return nil
}

// Stop 优雅停机：先停HTTP入口，再等在途任务结束
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP服务关闭失败: %v", err)
	}
	if a.cancelWorkers != nil {
		a.cancelWorkers()
	}
	a.scheduler.Stop()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnf("Redis连接关闭失败: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warnf("数据库连接关闭失败: %v", err)
		}
	}

	logger.Infof("应用已停止")
	return nil
}
