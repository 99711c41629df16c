package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCreatesAndGrows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "videos_gerados.json")

	require.NoError(t, Append(path, types.RunRecord{Topic: "Oceanos", Title: "Mistérios do oceano", VideoID: "a1"}))
	require.NoError(t, Append(path, types.RunRecord{Topic: "Espaço", Title: "Buracos negros", VideoID: "b2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Mistérios do oceano"), "UTF-8 text kept unescaped")
	assert.Contains(t, string(data), "\n  {")

	all, err := Recent(path, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a1", all[0].VideoID)

	last, err := Recent(path, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "b2", last[0].VideoID)
}

func TestRecentMissingFile(t *testing.T) {
	records, err := Recent(filepath.Join(t.TempDir(), "none.json"), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecentCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Recent(path, 1)
	assert.Error(t, err)
}

func TestLegacyDateFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos_gerados.json")
	legacy := `[
  {"data": "2025-03-14T09:26:53.589793", "tema": "Vulcões", "titulo": "Vulcões ativos", "duracao": 42.5, "perfil": "short", "curado": false, "video_id": "old1"}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	require.NoError(t, Append(path, types.RunRecord{Date: types.NewTimestamp(time.Now()), Title: "Novo", VideoID: "new1"}))

	records, err := Recent(path, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "old1", records[0].VideoID)
	want := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)
	assert.True(t, want.Equal(records[0].Date.Time), "got %s", records[0].Date.Time)
	assert.Equal(t, "new1", records[1].VideoID)
}
