package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
app_port = 8080
METADATA_FILE="data/items.json"
BROKEN LINE
STORAGE_DISK='s3'
`), 0o644))

	out := defaultValues()
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "8080", out["APP_PORT"])
	assert.Equal(t, "data/items.json", out["METADATA_FILE"])
	assert.Equal(t, "s3", out["STORAGE_DISK"])
	assert.NotContains(t, out, "BROKEN LINE")
}

func TestMergeJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"app_port": 9000, "max_upload_bytes": 1048576, "item_store": "redis", "nested": {"x": 1}}`), 0o644))

	out := defaultValues()
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9000", out["APP_PORT"])
	assert.Equal(t, "1048576", out["MAX_UPLOAD_BYTES"])
	assert.Equal(t, "redis", out["ITEM_STORE"])
	assert.NotContains(t, out, "NESTED")
}

func TestMergeEnviron_OnlyAppKeys(t *testing.T) {
	out := defaultValues()
	mergeEnviron([]string{
		"APP_PORT=7000",
		"TELEGRAM_TIMEOUT=3s",
		"HOME=/root",
		"S3_BUCKET=",
	}, out)

	assert.Equal(t, "7000", out["APP_PORT"])
	assert.Equal(t, "3s", out["TELEGRAM_TIMEOUT"])
	assert.NotContains(t, out, "HOME")
	assert.NotContains(t, out, "S3_BUCKET")
}

func TestLoadFromFiles_EnvWins(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"DATE_LAYOUT": "2006-01-02", "STORAGE_PREFIX": "json"}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("STORAGE_PREFIX=dotenv\n"), 0o644))
	// Registered before Setenv so it runs after the variable is restored.
	t.Cleanup(func() { _ = loadFromFiles(filepath.Join(dir, "none.json"), filepath.Join(dir, "none.env")) })
	t.Setenv("STORAGE_PREFIX", "environ")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "2006-01-02", get("DATE_LAYOUT", ""))
	assert.Equal(t, "environ", get("STORAGE_PREFIX", ""))
}

func TestLoadFromFiles_MissingFilesAreFine(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadFromFiles(filepath.Join(dir, "app.json"), filepath.Join(dir, ".env")))
}

func TestLoadFromFiles_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	assert.Error(t, loadFromFiles(path, filepath.Join(t.TempDir(), ".env")))
}

func TestDuration(t *testing.T) {
	Set("TEST_TIMEOUT", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, Duration("TEST_TIMEOUT", time.Second))

	Set("TEST_TIMEOUT", "4")
	assert.Equal(t, 4*time.Second, Duration("TEST_TIMEOUT", time.Second))

	Set("TEST_TIMEOUT", "soon")
	assert.Equal(t, time.Second, Duration("TEST_TIMEOUT", time.Second))

	Set("TEST_TIMEOUT", "-2s")
	assert.Equal(t, time.Second, Duration("TEST_TIMEOUT", time.Second))
}

func TestInt64(t *testing.T) {
	Set("TEST_LIMIT", "42")
	assert.Equal(t, int64(42), Int64("TEST_LIMIT", 7))

	Set("TEST_LIMIT", "-1")
	assert.Equal(t, int64(7), Int64("TEST_LIMIT", 7))
}

func TestAppPort_FallsBackToPORT(t *testing.T) {
	Set("APP_PORT", defaultAppPort)
	Set("PORT", "8123")
	t.Cleanup(func() { Set("PORT", "") })
	assert.Equal(t, "8123", AppPort())

	Set("APP_PORT", "9001")
	t.Cleanup(func() { Set("APP_PORT", defaultAppPort) })
	assert.Equal(t, "9001", AppPort())
}

func TestItemStore_UnknownFallsBackToFile(t *testing.T) {
	Set("ITEM_STORE", "postgres")
	t.Cleanup(func() { Set("ITEM_STORE", defaultItemStore) })
	assert.Equal(t, "file", ItemStore())
}

func TestCORSOrigins(t *testing.T) {
	Set("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Cleanup(func() { Set("CORS_ORIGINS", "") })
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())

	Set("CORS_ORIGINS", "")
	assert.Equal(t, []string{"*"}, CORSOrigins())
}
