package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/api/router"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/database"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
	pkgredis "github.com/AdityaDodda/purchasekandhari-sub000/pkg/redis"
)

// StartServer 启动 HTTP 服务器
func StartServer(cfg *config.Config, handlers *Handlers, backgroundServices *BackgroundServices) {
	// Setup router
	r := router.Setup(
		handlers.PurchaseRequest,
		handlers.ApprovalMatrix,
		handlers.User,
		cfg.Server.Mode,
	)

	// Start escalation scheduler
	backgroundServices.EscalationScheduler.Start()

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.APIPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	printStartupBanner(cfg)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("\nShutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// 1. Shutdown HTTP server
	logger.Infof("  → Stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Infof("  Warning: HTTP server shutdown error: %v", err)
	} else {
		logger.Infof("  ✓ HTTP server stopped")
	}

	// 2. Stop escalation scheduler (waits for an in-flight scan)
	logger.Infof("  → Stopping escalation scheduler...")
	backgroundServices.EscalationScheduler.Stop()
	logger.Infof("  ✓ Escalation scheduler stopped")

	// 3. Close database
	logger.Infof("  → Closing database...")
	database.Close()
	logger.Infof("  ✓ Database closed")

	// 4. Close Redis if enabled
	if cfg.Redis.Enabled {
		logger.Infof("  → Closing Redis...")
		pkgredis.Close()
		logger.Infof("  ✓ Redis closed")
	}

	logger.Infof("")
	logger.Infof("Shutdown complete")
	logger.Infof("")
}

// printStartupBanner 打印启动横幅
func printStartupBanner(cfg *config.Config) {
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("Purchase Request Approval Server")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
	logger.Infof("Features:")
	logger.Infof("   • Three-level approval workflow with parallel final approvers")
	logger.Infof("   • Time-based escalation to managers (interval: %d minutes)", cfg.Escalation.CheckIntervalMinutes)
	logger.Infof("   • Auto-reject on final-level timeout")
	logger.Infof("   • Full audit trail per request")
	if cfg.SMTP.Enabled {
		logger.Infof("   • Email notifications via %s", cfg.SMTP.Host)
	} else {
		logger.Infof("   • Email notifications disabled (log only)")
	}
	logger.Infof("")
	logger.Infof("API listening on :%d", cfg.Server.APIPort)
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
}
