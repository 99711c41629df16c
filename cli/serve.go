package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipbot/api"
	"clipbot/config"
	"clipbot/queue"

	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveCron  string
	serveQueue bool
	servePoll  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with an optional cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr == "" {
			serveAddr = ":" + config.GetEnvOrDefault("API_PORT", "8081")
		}
		if serveCron == "" {
			serveCron = os.Getenv("CRON_SCHEDULE")
		}

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a, err := buildApp(context.Background(), settings, buildOptions{poll: servePoll}, log)
		if err != nil {
			return err
		}
		defer a.Close()

		server := api.NewServer(api.Config{
			Addr:       serveAddr,
			State:      a.state,
			Runner:     a.runner,
			Store:      a.store,
			RunLogPath: config.RunLogFile,
			Log:        log,
		})
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		if serveCron != "" {
			if err := server.StartCron(serveCron); err != nil {
				return err
			}
		}

		var consumer *queue.Consumer
		if serveQueue {
			consumer, err = queue.NewConsumer(queue.ConsumerConfig{
				Brokers: queue.Brokers(),
				Topic:   queue.Topic(),
				GroupID: queue.GroupID(),
				Handler: queue.NewRunHandler(a.runner, log, 30*time.Second),
			}, log)
			if err != nil {
				log.Error("failed to create Kafka consumer", "error", err)
			} else if err := consumer.Start(context.Background()); err != nil {
				log.Error("failed to start Kafka consumer", "error", err)
			}
		}

		fmt.Printf("🤖 clipbot\n")
		fmt.Printf("   API:            http://%s\n", serveAddr)
		fmt.Printf("   Cron Schedule:  %s\n", firstNonEmpty(serveCron, "off"))
		fmt.Printf("   Profile:        %s\n", settings.Profile)
		fmt.Println("\nPress Ctrl+C to shutdown")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if consumer != nil {
			if err := consumer.Close(); err != nil {
				log.Warn("Kafka consumer close error", "error", err)
			}
		}
		return server.Shutdown(ctx)
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default :$API_PORT or :8081)")
	serveCmd.Flags().StringVar(&serveCron, "cron", "", `Cron schedule for automated runs, e.g. "0 */6 * * *" (default $CRON_SCHEDULE)`)
	serveCmd.Flags().BoolVar(&serveQueue, "queue", false, "Also consume generation requests from Kafka")
	serveCmd.Flags().BoolVar(&servePoll, "poll", true, "Answer Telegram commands from this process while curating")

	rootCmd.AddCommand(serveCmd)
}
