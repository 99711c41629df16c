package cli

import (
	"context"
	"fmt"

	"clipbot/queue"

	"github.com/spf13/cobra"
)

var (
	enqueueProfile    string
	enqueueTopic      string
	enqueueCurate     bool
	enqueueSkipUpload bool
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Send a generation request to the Kafka queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := queue.GenerationRequest{
			Profile:    enqueueProfile,
			Topic:      enqueueTopic,
			Curate:     curateFlag(cmd.Flags().Changed("curate"), enqueueCurate),
			SkipUpload: enqueueSkipUpload,
		}
		if err := validateProfile(req.Profile); err != nil {
			return err
		}

		producer, err := queue.NewProducer(queue.Brokers(), queue.Topic(), log)
		if err != nil {
			return fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		defer producer.Close()

		id, err := producer.Enqueue(context.Background(), req)
		if err != nil {
			return err
		}
		fmt.Printf("📨 Request %s queued on %s\n", id, queue.Topic())
		return nil
	},
}

func validateProfile(name string) error {
	switch name {
	case "", "short", "long":
		return nil
	}
	return fmt.Errorf("unknown profile %q (want short or long)", name)
}

func init() {
	enqueueCmd.Flags().StringVarP(&enqueueProfile, "profile", "p", "", "Video profile: short or long")
	enqueueCmd.Flags().StringVarP(&enqueueTopic, "topic", "t", "", "Topic for the video")
	enqueueCmd.Flags().BoolVar(&enqueueCurate, "curate", false, "Force Telegram curation on or off")
	enqueueCmd.Flags().BoolVar(&enqueueSkipUpload, "skip-upload", false, "Render only, do not upload")

	rootCmd.AddCommand(enqueueCmd)
}
