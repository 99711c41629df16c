package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/pipeline"

	"github.com/spf13/cobra"
)

var (
	runProfile    string
	runTopic      string
	runCurate     bool
	runSkipUpload bool
	runPoll       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce one video now",
	Long: `Pick a topic (or use --topic), generate the video and upload it.
With curation enabled the command waits for the Telegram review to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a, err := buildApp(ctx, settings, buildOptions{poll: runPoll, noUpload: runSkipUpload}, log)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.runner.Run(ctx, pipeline.Request{
			Profile:    runProfile,
			Topic:      runTopic,
			Curate:     curateFlag(cmd.Flags().Changed("curate"), runCurate),
			SkipUpload: runSkipUpload,
		})
		if errors.Is(err, curation.ErrCancelled) || errors.Is(err, curation.ErrTimeout) {
			fmt.Printf("🚫 Video cancelled: %v\n", err)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("🎬 %s\n", res.Record.Title)
		fmt.Printf("   Video: %s\n", res.VideoPath)
		if res.Record.URL != "" {
			fmt.Printf("   URL:   %s\n", res.Record.URL)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", "", "Video profile: short or long (default from settings)")
	runCmd.Flags().StringVarP(&runTopic, "topic", "t", "", "Use this topic instead of picking one")
	runCmd.Flags().BoolVar(&runCurate, "curate", false, "Force Telegram curation on or off (default from settings)")
	runCmd.Flags().BoolVar(&runSkipUpload, "skip-upload", false, "Render only, do not upload")
	runCmd.Flags().BoolVar(&runPoll, "poll", true, "Answer Telegram commands from this process while curating")

	rootCmd.AddCommand(runCmd)
}
