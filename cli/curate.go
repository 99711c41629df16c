package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/render"
	"clipbot/stock"

	"github.com/spf13/cobra"
)

var curateProfile string

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Run the Telegram curation bot on its own",
	Long: `Answer Telegram commands and button presses for the pending curation
record. Use it when runs are started with --poll=false, so that one
process owns the bot while others produce videos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		profileName := curateProfile
		if profileName == "" {
			if settings, err := config.Load(configPath); err == nil {
				profileName = settings.Profile
			} else {
				log.Warn("settings not loaded, using long profile", "error", err)
				profileName = "long"
			}
		}
		profile, err := render.ProfileByName(profileName)
		if err != nil {
			return err
		}

		msg, chatID, err := buildMessenger()
		if err != nil {
			return err
		}
		store, closeStore := buildStore()
		if closeStore != nil {
			defer closeStore()
		}

		media := buildFinder(log).Bind(stock.Target{
			Width:       profile.Width,
			Height:      profile.Height,
			PreferVideo: profile.Vertical(),
		})
		handler := curation.NewHandler(store, msg, media, chatID, log)

		err = curation.NewPoller(msg, handler, log).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	curateCmd.Flags().StringVarP(&curateProfile, "profile", "p", "", "Profile replacement media is searched for (default from settings)")

	rootCmd.AddCommand(curateCmd)
}
