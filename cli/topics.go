package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"clipbot/config"
	"clipbot/history"
	"clipbot/newsfeeds"
	"clipbot/pipeline"
	"clipbot/types"

	"github.com/spf13/cobra"
)

var (
	topicsFeeds   []string
	topicsMax     int
	topicsExtract bool
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Preview the topics the next run can pick from",
	Long: `List the configured themes, or the latest items of the given feeds,
marking the ones already used. Feeds may be preset names or URLs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		feeds := topicsFeeds
		var themes []string
		if len(feeds) == 0 {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if settings.Source == config.SourceNews {
				feeds = settings.Feeds
			} else {
				themes = settings.Topics
			}
		}

		hist, closeHist := buildHistory(ctx, log)
		if closeHist != nil {
			defer closeHist()
		}

		if len(feeds) == 0 {
			topics := make([]*types.Topic, 0, len(themes))
			for _, t := range themes {
				topics = append(topics, pipeline.ManualTopic(t))
			}
			printTopics(ctx, os.Stdout, topics, hist)
			return nil
		}

		for _, feed := range feeds {
			url := newsfeeds.ResolveFeedURL(feed)
			items, err := newsfeeds.FetchFeed(ctx, url, topicsMax)
			if err != nil {
				log.Warn("failed to fetch feed", "feed", url, "error", err)
				continue
			}
			if topicsExtract {
				newsfeeds.ExtractAllContent(log, items)
			}
			fmt.Printf("📰 %s (%d items)\n", url, len(items))
			printTopics(ctx, os.Stdout, items, hist)
		}
		return nil
	},
}

func printTopics(ctx context.Context, w io.Writer, topics []*types.Topic, hist history.History) {
	for i, t := range topics {
		mark := "  "
		if seen, err := hist.Seen(ctx, t); err == nil && seen {
			mark = "✓ "
		}
		fmt.Fprintf(w, "%s%2d. %s\n", mark, i+1, t.Title)
		if t.URL != "" {
			fmt.Fprintf(w, "      %s\n", t.URL)
		}
		if t.ExtractionError != "" {
			fmt.Fprintf(w, "      ⚠️ %s\n", t.ExtractionError)
		} else if t.Body != "" {
			fmt.Fprintf(w, "      %d chars of text\n", len(t.Body))
		}
	}
}

func init() {
	topicsCmd.Flags().StringSliceVarP(&topicsFeeds, "feed", "f", nil, "Feed preset or URL (repeatable; default from settings)")
	topicsCmd.Flags().IntVarP(&topicsMax, "max", "n", newsfeeds.DefaultCount, "Items per feed")
	topicsCmd.Flags().BoolVar(&topicsExtract, "extract", false, "Also download and extract article text")

	rootCmd.AddCommand(topicsCmd)
}
