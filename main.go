package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bustracker/internal/shared/config"
	"bustracker/internal/shared/logger"

	adminboot "bustracker/internal/admin/bootstrap"
	driverboot "bustracker/internal/driver/bootstrap"
	viewerboot "bustracker/internal/viewer/bootstrap"
)

func main() {
	svc := flag.String("service", "viewer", "driver|viewer|admin|all")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() { <-quit; cancel() }()

	switch *svc {
	case "driver":
		log := logger.NewLogger("driver-service")
		driverboot.Run(ctx, cfg, log)

	case "viewer":
		log := logger.NewLogger("viewer-service")
		viewerboot.Run(ctx, cfg, log)

	case "admin":
		log := logger.NewLogger("admin-service")
		adminboot.Run(ctx, cfg, log)

	case "all":
		driverLog := logger.NewLogger("driver-service")
		viewerLog := logger.NewLogger("viewer-service")
		adminLog := logger.NewLogger("admin-service")

		go driverboot.Run(ctx, cfg, driverLog)
		go viewerboot.Run(ctx, cfg, viewerLog)

		// admin блокирует main до отмены контекста
		adminboot.Run(ctx, cfg, adminLog)

	default:
		logger.NewLogger("bustracker").Fatal(logger.Entry{
			Action:  "unknown_service",
			Message: *svc,
		})
	}
}
