package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bustracker/internal/driver/adapters/in/transport"
	"bustracker/internal/driver/adapters/out/geo"
	"bustracker/internal/driver/application/usecase"
	"bustracker/internal/fleet/store"
	"bustracker/internal/shared/config"
	db_conn "bustracker/internal/shared/db"
	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/mq"
)

// Run запускает Driver Service
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "driver_service_starting", Message: "initializing driver service"})

	// 1. PostgreSQL
	dbPool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer db_conn.Close(dbPool, log)

	if err := db_conn.Migrate(ctx, dbPool); err != nil {
		log.Error(logger.Entry{
			Action:  "db_migration_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		// не падаем если миграции уже применены
	}

	// 2. RabbitMQ
	mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(mqConn, log); err != nil {
		log.Error(logger.Entry{
			Action:  "rabbitmq_topology_setup_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	// 3. Fleet Store: Postgres + fanout уведомления
	fleetStore := store.NewFleet(store.NewPGStore(dbPool), mqConn, log)

	// 4. Источник позиции: фид от устройства
	source := geo.NewDeviceSource(log)

	// 5. Use cases
	shareService := usecase.NewShareService(fleetStore, source, cfg.Geo, log)

	// 6. HTTP transport
	handler := transport.NewHandler(shareService, source, log)
	mux := http.NewServeMux()
	handler.Routes(mux)

	wrapped := transport.LoggingMiddleware(log)(transport.RequestIDMiddleware(mux))

	addr := fmt.Sprintf(":%d", cfg.Services.DriverServicePort)
	server := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()
	log.Info(logger.Entry{Action: "driver_service_stopping", Message: "shutting down driver service"})

	// останавливаем активный шаринг, чтобы автобус ушел в offline
	if _, err := shareService.Stop(context.Background()); err != nil {
		log.Debug(logger.Entry{Action: "share_stop_on_shutdown", Message: err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	} else {
		log.Info(logger.Entry{Action: "http_server_stopped", Message: "http server stopped gracefully"})
	}

	log.Info(logger.Entry{Action: "driver_service_stopped", Message: "driver service stopped"})
}
