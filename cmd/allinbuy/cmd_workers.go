package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/allinbuy/api/app/jobs"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/pkg/cache"
	"github.com/allinbuy/api/pkg/logger"
	"github.com/allinbuy/api/pkg/queue"
	"github.com/allinbuy/api/pkg/schedule"
)

var queueWorkersFlag int

// allinbuy queue:work runs a standalone worker process against the Redis
// queue, so workers can scale independently of the API server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}

		queue.SetDriver(queue.NewRedisDriver(cache.Client()))
		queue.UseDB(db)
		jobs.UseDB(db)
		queue.Register("*jobs.OrderConfirmationJob", func() queue.Job {
			return &jobs.OrderConfirmationJob{}
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

// allinbuy schedule:run runs the scheduler as its own process.
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}

		carts := repositories.NewCartRepository(db)
		schedule.Daily().Name("carts.purge_stale").WithoutOverlapping().Run(func() {
			purged, err := carts.PurgeStale(30 * 24 * time.Hour)
			if err != nil {
				logger.Error("schedule: purge stale carts", "error", err)
				return
			}
			if purged > 0 {
				logger.Info("schedule: purged stale cart items", "count", purged)
			}
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tasks := schedule.List()
		fmt.Println("Registered scheduled tasks:")
		for _, t := range tasks {
			fmt.Println("  •", t)
		}

		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		schedule.Start(ctx)

		<-ctx.Done()
		fmt.Println("\nScheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
