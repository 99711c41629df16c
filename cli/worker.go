package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipbot/config"
	"clipbot/queue"

	"github.com/spf13/cobra"
)

var (
	workerBusyWait time.Duration
	workerPoll     bool
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume generation requests from Kafka",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a, err := buildApp(ctx, settings, buildOptions{poll: workerPoll}, log)
		if err != nil {
			return err
		}
		defer a.Close()

		consumer, err := queue.NewConsumer(queue.ConsumerConfig{
			Brokers: queue.Brokers(),
			Topic:   queue.Topic(),
			GroupID: queue.GroupID(),
			Handler: queue.NewRunHandler(a.runner, log, workerBusyWait),
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create Kafka consumer: %w", err)
		}
		if err := consumer.Start(ctx); err != nil {
			consumer.Close()
			return fmt.Errorf("failed to start Kafka consumer: %w", err)
		}

		log.Info("👷 worker ready", "topic", queue.Topic(), "group", queue.GroupID())
		<-ctx.Done()
		log.Info("shutting down worker")
		return consumer.Close()
	},
}

func init() {
	workerCmd.Flags().DurationVar(&workerBusyWait, "busy-wait", 30*time.Second, "Delay before retrying a request while a run is in progress")
	workerCmd.Flags().BoolVar(&workerPoll, "poll", true, "Answer Telegram commands from this process while curating")

	rootCmd.AddCommand(workerCmd)
}
