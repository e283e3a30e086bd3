package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fresco/internal/interfaces/scheduler"
	"fresco/internal/shared/config"
	"fresco/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry (if enabled)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	// Initialize dependencies
	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Initialize scheduler (if enabled)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Println("Initializing scheduler...")
		sched, err = scheduler.NewScheduler(scheduler.Config{
			ScheduleTimes: cfg.Scheduler.ScheduleTimes,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
			JobProvider:   scheduler.NewLinkedWorkspaceJobProvider(deps.WorkspaceRepo, deps.Reconciler),
		})
		if err != nil {
			return err
		}

		sched.Start()
		log.Printf("Scheduler started with times: %v", cfg.Scheduler.ScheduleTimes)
	} else {
		log.Println("Scheduler is disabled")
	}

	// Set up routes and start servers
	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg))

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, redirectSrv, sched, 30*time.Second)
	return nil
}
