package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipbot/logger"
	"clipbot/scriptgen"
	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func TestUploadSendsSnippetAndStatus(t *testing.T) {
	var paths []string
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		if strings.Contains(r.URL.Path, "/videos") {
			body = string(data)
			assert.Contains(t, r.URL.Query().Get("part"), "snippet")
			_, _ = w.Write([]byte(`{"id":"vid123"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := youtube.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	u := NewUploaderWithService(svc, logger.Nop())

	dir := t.TempDir()
	video := filepath.Join(dir, "out.mp4")
	require.NoError(t, os.WriteFile(video, []byte("fake mp4"), 0644))

	id, err := u.Upload(context.Background(), video, types.VideoMetadata{
		Title: "Segredos do oceano", Description: "d", Tags: []string{"mar"},
	})
	require.NoError(t, err)
	assert.Equal(t, "vid123", id)
	assert.Contains(t, body, `"categoryId":"27"`)
	assert.Contains(t, body, `"privacyStatus":"public"`)
	assert.Contains(t, body, `"selfDeclaredMadeForKids":false`)

	thumb := filepath.Join(dir, "thumb.jpg")
	require.NoError(t, os.WriteFile(thumb, []byte("jpg"), 0644))
	require.NoError(t, u.SetThumbnail(context.Background(), id, thumb))
	assert.True(t, strings.HasSuffix(paths[len(paths)-1], "/thumbnails/set"))

	_, err = u.Upload(context.Background(), filepath.Join(dir, "missing.mp4"), types.VideoMetadata{})
	assert.Error(t, err)
}

func TestTokenSource(t *testing.T) {
	_, err := tokenSource(context.Background(), []byte(`{"client_id":"a","client_secret":"b","refresh_token":"c","token":"t"}`))
	assert.NoError(t, err)

	_, err = tokenSource(context.Background(), []byte(`{"client_id":"a"}`))
	assert.Error(t, err)

	_, err = tokenSource(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestPrepareMetadata(t *testing.T) {
	meta := PrepareMetadata(types.VideoMetadata{Title: strings.Repeat("a", 120), Description: "desc"}, "27", "unlisted", true)
	assert.Equal(t, "27", meta.CategoryID)
	assert.Equal(t, "unlisted", meta.PrivacyStatus)
	assert.True(t, strings.HasSuffix(meta.Description, "#shorts"))
	assert.Len(t, []rune(meta.Title), 100)
	assert.True(t, strings.HasSuffix(meta.Title, "..."))

	meta = PrepareMetadata(types.VideoMetadata{Title: "x #Shorts", CategoryID: "22"}, "27", "public", true)
	assert.Equal(t, "22", meta.CategoryID)
	assert.Empty(t, meta.Description)
}

func TestGeneratedTitleTruncatedOnce(t *testing.T) {
	exact := strings.Repeat("é", 100)
	meta := PrepareMetadata(types.VideoMetadata{Title: exact}, "27", "public", false)
	assert.Equal(t, exact, meta.Title)

	parsed, err := scriptgen.ParseMetadata(`{"titulo": "` + strings.Repeat("é", 150) + `"}`)
	require.NoError(t, err)
	meta = PrepareMetadata(*parsed, "27", "public", false)
	assert.Equal(t, strings.Repeat("é", 97)+"...", meta.Title)

	fallback := scriptgen.FallbackMetadata(&types.Topic{Title: strings.Repeat("a", 101)}, "Roteiro.")
	meta = PrepareMetadata(*fallback, "27", "public", false)
	assert.Equal(t, strings.Repeat("a", 97)+"...", meta.Title)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", URLFor("abc", false))
	assert.Equal(t, "https://youtube.com/shorts/abc", URLFor("abc", true))
}

func TestGenerateMetadata(t *testing.T) {
	meta := GenerateMetadata("Oceanos", "https://news.example.com/x", nil)
	assert.Contains(t, meta.Description, "https://news.example.com/x")
	assert.Equal(t, []string{"curiosidades", "fatos", "educação"}, meta.Tags)
	assert.Equal(t, "27", meta.CategoryID)
}
