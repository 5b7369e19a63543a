package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppPort          = "3000"
	defaultAppHost          = "0.0.0.0"
	defaultAppEnv           = "local"
	defaultMetadataFile     = "file_metadata.json"
	defaultItemStore        = "file"
	defaultItemStoreKey     = "clouddrive:items"
	defaultRedisAddr        = "localhost:6379"
	defaultStorageDisk      = "local"
	defaultStoragePrefix    = "files"
	defaultTelegramEndpoint = "https://api.telegram.org/bot%s/%s"
	defaultTelegramTimeout  = 10 * time.Second
	defaultDateLayout       = "2/1/2006"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, then .env, then the process environment
// over the built-in defaults. Later sources win. Safe to call many times.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":              defaultAppPort,
		"APP_HOST":              defaultAppHost,
		"APP_ENV":               defaultAppEnv,
		"METADATA_FILE":         defaultMetadataFile,
		"ITEM_STORE":            defaultItemStore,
		"ITEM_STORE_REDIS_KEY":  defaultItemStoreKey,
		"REDIS_ADDR":            defaultRedisAddr,
		"REDIS_PASSWORD":        "",
		"STORAGE_DISK":          defaultStorageDisk,
		"STORAGE_PREFIX":        defaultStoragePrefix,
		"TELEGRAM_API_ENDPOINT": defaultTelegramEndpoint,
		"DATE_LAYOUT":           defaultDateLayout,
	}
}

func AppPort() string {
	_ = Load()
	// PORT is what most PaaS hosts inject; APP_PORT wins when both are set.
	if p := get("APP_PORT", ""); p != "" && p != defaultAppPort {
		return p
	}
	return get("PORT", defaultAppPort)
}

func AppHost() string { _ = Load(); return get("APP_HOST", defaultAppHost) }

func AppEnv() string { _ = Load(); return get("APP_ENV", defaultAppEnv) }

func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// ── Item store ───────────────────────────────────────────────────────────────

func MetadataFile() string { _ = Load(); return get("METADATA_FILE", defaultMetadataFile) }

// ItemStore returns the item store backend: "file" or "redis".
func ItemStore() string {
	_ = Load()
	switch driver := strings.ToLower(get("ITEM_STORE", defaultItemStore)); driver {
	case "file", "redis":
		return driver
	default:
		return defaultItemStore
	}
}

func ItemStoreRedisKey() string { _ = Load(); return get("ITEM_STORE_REDIS_KEY", defaultItemStoreKey) }
func RedisAddr() string         { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string     { _ = Load(); return get("REDIS_PASSWORD", "") }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string   { _ = Load(); return get("STORAGE_DISK", defaultStorageDisk) }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", ".") }
func StoragePrefix() string    { _ = Load(); return get("STORAGE_PREFIX", defaultStoragePrefix) }

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Telegram ─────────────────────────────────────────────────────────────────

func TelegramAPIEndpoint() string {
	_ = Load()
	return get("TELEGRAM_API_ENDPOINT", defaultTelegramEndpoint)
}

// TelegramTimeout bounds every bot identity check. Accepts Go durations
// ("5s") or plain seconds ("5").
func TelegramTimeout() time.Duration {
	_ = Load()
	return Duration("TELEGRAM_TIMEOUT", defaultTelegramTimeout)
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func MaxBodyBytes() int64 { _ = Load(); return Int64("MAX_BODY_BYTES", 4<<20) }

// MaxUploadBytes is the multipart upload cap. 0 means unlimited.
func MaxUploadBytes() int64 { _ = Load(); return Int64("MAX_UPLOAD_BYTES", 0) }

// RateLimit is the per-IP request budget per minute. 0 disables limiting.
func RateLimit() int { _ = Load(); return int(Int64("RATE_LIMIT_PER_MINUTE", 200)) }

func DateLayout() string { _ = Load(); return get("DATE_LAYOUT", defaultDateLayout) }

// CORSOrigins returns the allowed origins; "*" when unset.
func CORSOrigins() []string {
	_ = Load()
	raw := get("CORS_ORIGINS", "*")
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// ── Log shipping ─────────────────────────────────────────────────────────────

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string         { _ = Load(); return get("LOG_MONGO_DB", "clouddrive") }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "logs") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(os.Environ(), loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitAssignment(line)
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// mergeEnviron overlays KEY=VALUE pairs from the process environment.
// Only keys the app knows about or that were already set by a file are
// taken, so unrelated shell variables never leak into Get().
func mergeEnviron(environ []string, out map[string]string) {
	for _, kv := range environ {
		key, value, ok := splitAssignment(kv)
		if !ok || value == "" {
			continue
		}
		if _, known := out[key]; known || isAppKey(key) {
			out[key] = value
		}
	}
}

var appKeyPrefixes = []string{"APP_", "S3_", "STORAGE_", "TELEGRAM_", "REDIS_", "ITEM_STORE", "LOG_MONGO_", "MAX_", "CORS_", "RATE_"}

func isAppKey(key string) bool {
	if key == "PORT" || key == "METADATA_FILE" || key == "DATE_LAYOUT" {
		return true
	}
	for _, p := range appKeyPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func splitAssignment(line string) (string, string, bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToUpper(strings.TrimSpace(line[:idx]))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int64 reads key as an integer, returning fallback when unset or invalid.
func Int64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(Get(key, ""), 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// Duration reads key as a time.Duration ("1500ms", "5s") or whole seconds.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
