package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envStrings maps environment variables to string fields.
func envStrings(c *Config) map[string]*string {
	return map[string]*string{
		"HTTP_ADDRESS":       &c.HTTPAddress,
		"DATABASE_URI":       &c.DatabaseDSN,
		"SECRET_KEY":         &c.SecretKey,
		"BLOB_BACKEND":       &c.BlobBackend,
		"S3_ROOT_USER":       &c.S3RootUser,
		"S3_ROOT_PASSWORD":   &c.S3RootPassword,
		"S3_BUCKET":          &c.S3Bucket,
		"S3_REGION":          &c.S3Region,
		"S3_BASE_ENDPOINT":   &c.S3BaseEndpoint,
		"BLOB_URL_BASE":      &c.BlobURLBase,
		"BLOB_URL_MARKER":    &c.BlobURLMarker,
		"REDIS_URL":          &c.RedisURL,
		"ROBOFLOW_API_URL":   &c.ClassifierBaseURL,
		"ROBOFLOW_API_KEY":   &c.ClassifierAPIKey,
		"ROBOFLOW_MODEL_ID":  &c.ClassifierModelID,
		"ALLOWED_ORIGINS":    &c.AllowedOrigins,
		"APP_ENV":            &c.Env,
		"TRACING_EXPORTER":   &c.TracingExporter,
		"OTEL_OTLP_ENDPOINT": &c.OTLPEndpoint,
	}
}

// parseEnv overlays values from the process environment. A .env file in the
// working directory is loaded first; variables already set win over it.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	for name, dst := range envStrings(config) {
		if s := v.GetString(name); s != "" {
			*dst = s
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY": &config.AccessTokenValidityDuration,
		"BLOB_TIMEOUT":          &config.BlobTimeout,
		"CATALOG_CACHE_TTL":     &config.CatalogCacheTTL,
		"ROBOFLOW_TIMEOUT":      &config.ClassifierTimeout,
		"TRASH_RETENTION":       &config.TrashRetention,
	}
	for name, dst := range durations {
		if v.IsSet(name) {
			if d := v.GetDuration(name); d > 0 {
				*dst = d
			}
		}
	}
}
