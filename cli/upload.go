package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipbot/config"
	"clipbot/publish"
	"clipbot/runlog"
	"clipbot/speech"
	"clipbot/types"

	"github.com/spf13/cobra"
)

var (
	uploadVideo       string
	uploadTitle       string
	uploadDescription string
	uploadSourceURL   string
	uploadTags        string
	uploadCategoryID  string
	uploadPrivacy     string
	uploadThumbnail   string
	uploadShort       bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload an existing video file to YouTube",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureFileExists(uploadVideo); err != nil {
			return fmt.Errorf("invalid video path: %w", err)
		}

		title := strings.TrimSpace(uploadTitle)
		if title == "" {
			filename := filepath.Base(uploadVideo)
			title = strings.TrimSuffix(filename, filepath.Ext(filename))
		}

		meta := publish.GenerateMetadata(title, uploadSourceURL, parseTags(uploadTags))
		if d := strings.TrimSpace(uploadDescription); d != "" {
			meta.Description = d
		}
		if uploadCategoryID != "" {
			meta.CategoryID = uploadCategoryID
		}
		meta = publish.PrepareMetadata(meta, config.YouTubeCategoryID,
			firstNonEmpty(uploadPrivacy, config.YouTubePrivacyStatus), uploadShort)

		ctx := context.Background()
		uploader, err := publish.NewUploaderFromEnv(ctx, log)
		if err != nil {
			return fmt.Errorf("failed to initialize uploader: %w", err)
		}

		videoID, err := uploader.Upload(ctx, uploadVideo, meta)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		if uploadThumbnail != "" {
			if err := uploader.SetThumbnail(ctx, videoID, uploadThumbnail); err != nil {
				log.Warn("⚠️ thumbnail not set", "error", err)
			}
		}

		url := publish.URLFor(videoID, uploadShort)
		record := types.RunRecord{
			RunID:   videoID,
			Date:    types.NewTimestamp(time.Now()),
			Topic:   title,
			Title:   meta.Title,
			Profile: profileForShort(uploadShort),
			VideoID: videoID,
			URL:     url,
			File:    uploadVideo,
		}
		if d, err := speech.Duration(uploadVideo); err == nil {
			record.Duration = d
		}
		if err := runlog.Append(config.RunLogFile, record); err != nil {
			log.Warn("failed to append run log", "error", err)
		}

		fmt.Printf("✅ Uploaded successfully! %s\n", url)
		return nil
	},
}

func ensureFileExists(path string) error {
	if path == "" {
		return fmt.Errorf("--video is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected file: %s", path)
	}
	return nil
}

func parseTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(tag); clean != "" {
			tags = append(tags, clean)
		}
	}
	return tags
}

func profileForShort(short bool) string {
	if short {
		return "short"
	}
	return "long"
}

func init() {
	uploadCmd.Flags().StringVar(&uploadVideo, "video", "", "Path to the MP4 file to upload (required)")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Video title (defaults to the file name)")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Description (generated when empty)")
	uploadCmd.Flags().StringVar(&uploadSourceURL, "source-url", "", "Source URL appended to the generated description")
	uploadCmd.Flags().StringVar(&uploadTags, "tags", "", "Comma-separated list of tags")
	uploadCmd.Flags().StringVar(&uploadCategoryID, "category-id", "", "YouTube category ID (default 27, Education)")
	uploadCmd.Flags().StringVar(&uploadPrivacy, "privacy", "", "public, unlisted or private (default public)")
	uploadCmd.Flags().StringVar(&uploadThumbnail, "thumbnail", "", "Thumbnail image to set after upload")
	uploadCmd.Flags().BoolVar(&uploadShort, "short", false, "Mark the upload as a YouTube Short")

	rootCmd.AddCommand(uploadCmd)
}
