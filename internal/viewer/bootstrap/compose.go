package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bustracker/internal/fleet/store"
	"bustracker/internal/shared/config"
	db_conn "bustracker/internal/shared/db"
	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/mq"
	"bustracker/internal/shared/ws"
	"bustracker/internal/viewer/adapters/in/transport"
	"bustracker/internal/viewer/adapters/out/out_ws"
	"bustracker/internal/viewer/application/usecase"
	"bustracker/internal/viewer/view"
)

// Run запускает Viewer Service
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "viewer_service_starting", Message: "initializing viewer service"})

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

	// 3. Fleet Store
	fleetStore := store.NewFleet(store.NewPGStore(dbPool), mqConn, log)

	// 4. WebSocket hub + sink + renderer
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	sink := out_ws.NewViewSink(hub, log)
	renderer := view.NewRenderer(sink, sink, sink, log)

	// 5. Use cases
	search := usecase.NewSearchService(fleetStore, renderer, log)

	// 6. Подписка на изменения флота: каждый snapshot — рендер
	snapshots, err := fleetStore.Watch(ctx)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "fleet_watch_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapshots:
				renderer.Render(snap)
			}
		}
	}()

	// 7. HTTP transport
	handler := transport.NewHandler(search, renderer, hub, log)
	mux := http.NewServeMux()
	handler.Routes(mux)

	addr := fmt.Sprintf(":%d", cfg.Services.ViewerServicePort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
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
	log.Info(logger.Entry{Action: "viewer_service_stopping", Message: "shutting down viewer service"})

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

	log.Info(logger.Entry{Action: "viewer_service_stopped", Message: "viewer service stopped"})
}
