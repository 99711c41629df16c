// Package publish uploads finished videos to YouTube.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"clipbot/config"
	"clipbot/logger"
	"clipbot/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type Uploader struct {
	service *youtube.Service
	log     *logger.Logger
}

// authorizedUser is the token JSON produced by an installed-app OAuth flow.
type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	TokenURI     string `json:"token_uri"`
}

// NewUploaderFromEnv reads credentials from YOUTUBE_CREDENTIALS (JSON content)
// or the file named by YOUTUBE_CREDENTIALS_FILE.
func NewUploaderFromEnv(ctx context.Context, log *logger.Logger) (*Uploader, error) {
	data := []byte(os.Getenv("YOUTUBE_CREDENTIALS"))
	if len(data) == 0 {
		path := os.Getenv("YOUTUBE_CREDENTIALS_FILE")
		if path == "" {
			return nil, errors.New("YOUTUBE_CREDENTIALS or YOUTUBE_CREDENTIALS_FILE must be set")
		}
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
	}
	return NewUploader(ctx, data, log)
}

// NewUploader accepts authorized-user JSON (client_id/client_secret/refresh_token)
// or a service account key.
func NewUploader(ctx context.Context, credentials []byte, log *logger.Logger) (*Uploader, error) {
	ts, err := tokenSource(ctx, credentials)
	if err != nil {
		return nil, err
	}
	service, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &Uploader{service: service, log: log}, nil
}

// NewUploaderWithService wraps an existing service. Used in tests.
func NewUploaderWithService(service *youtube.Service, log *logger.Logger) *Uploader {
	return &Uploader{service: service, log: log}
}

func tokenSource(ctx context.Context, data []byte) (oauth2.TokenSource, error) {
	var cred authorizedUser
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unable to parse YouTube credentials: %w", err)
	}

	if cred.Type == "service_account" {
		jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope, youtube.YoutubeScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}

	if cred.ClientID == "" || cred.ClientSecret == "" || cred.RefreshToken == "" {
		return nil, errors.New("authorized user credentials need client_id, client_secret and refresh_token")
	}
	endpoint := google.Endpoint
	if cred.TokenURI != "" {
		endpoint.TokenURL = cred.TokenURI
	}
	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{
		AccessToken:  firstNonEmpty(cred.Token, cred.AccessToken),
		RefreshToken: cred.RefreshToken,
	}
	return cfg.TokenSource(ctx, token), nil
}

// Upload sends the video and returns its ID.
func (u *Uploader) Upload(ctx context.Context, videoPath string, metadata types.VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	u.log.Info("📤 uploading", "file", videoPath, "size_mb", fmt.Sprintf("%.2f", float64(fileInfo.Size())/(1024*1024)))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  firstNonEmpty(metadata.CategoryID, config.YouTubeCategoryID),
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           firstNonEmpty(metadata.PrivacyStatus, config.YouTubePrivacyStatus),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	response, err := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	u.log.Info("✅ uploaded", "video_id", response.Id, "url", WatchURL(response.Id))
	return response.Id, nil
}

// SetThumbnail replaces the video's thumbnail. Channels without custom
// thumbnail permission get an error here.
func (u *Uploader) SetThumbnail(ctx context.Context, videoID, imagePath string) error {
	file, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer file.Close()

	if _, err := u.service.Thumbnails.Set(videoID).Media(file).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	return nil
}

func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func ShortsURL(id string) string {
	return "https://youtube.com/shorts/" + id
}

// URLFor picks the shorts URL for vertical videos.
func URLFor(id string, short bool) string {
	if short {
		return ShortsURL(id)
	}
	return WatchURL(id)
}

// PrepareMetadata applies channel defaults and the shorts hashtag.
func PrepareMetadata(meta types.VideoMetadata, categoryID, privacy string, short bool) types.VideoMetadata {
	if meta.CategoryID == "" {
		meta.CategoryID = categoryID
	}
	if meta.PrivacyStatus == "" {
		meta.PrivacyStatus = privacy
	}
	if short && !strings.Contains(strings.ToLower(meta.Title+" "+meta.Description), "#shorts") {
		meta.Description = strings.TrimSpace(meta.Description + "\n\n#shorts")
	}
	if len([]rune(meta.Title)) > config.MaxTitleLength {
		meta.Title = string([]rune(meta.Title)[:config.MaxTitleLength-3]) + "..."
	}
	return meta
}

// GenerateMetadata builds metadata for a manual upload.
func GenerateMetadata(title, sourceURL string, tags []string) types.VideoMetadata {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	if strings.TrimSpace(sourceURL) != "" {
		b.WriteString("🔗 Fonte: ")
		b.WriteString(sourceURL)
		b.WriteString("\n\n")
	}
	b.WriteString("📱 Inscreva-se para mais curiosidades!")

	if len(tags) == 0 {
		tags = []string{"curiosidades", "fatos", "educação"}
	}
	return types.VideoMetadata{
		Title:       title,
		Description: b.String(),
		Tags:        tags,
		CategoryID:  config.YouTubeCategoryID,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
