package app

import (
	"log"
	"os"

	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/database"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
	pkgredis "github.com/AdityaDodda/purchasekandhari-sub000/pkg/redis"
)

// Bootstrap 初始化基础设施（logger, database, redis）
func Bootstrap(cfgPath string) (*config.Config, error) {
	// 支持通过环境变量指定配置文件路径
	if cfgPath == "" {
		cfgPath = os.Getenv("PR_APPROVAL_CONFIG")
		if cfgPath == "" {
			cfgPath = "config/config.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	logger.Infof("Database initialized successfully")

	// Initialize Redis (optional, for distributed scheduler locking)
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("⚠️  Redis initialization failed: %v", err)
		logger.Info("   → Escalation scheduler will run without the distributed lock")
	} else if cfg.Redis.Enabled {
		logger.Infof("✅ Redis initialized successfully - distributed scheduler lock enabled")
	} else {
		logger.Info("ℹ️  Redis is disabled in config - single-instance mode")
	}

	return cfg, nil
}
