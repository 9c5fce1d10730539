package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/flagx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration fields
// accept both "24h" style strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddress                 string         `json:"http_address"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BlobBackend                 string         `json:"blob_backend"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	BlobURLBase                 string         `json:"blob_url_base"`
	BlobURLMarker               string         `json:"blob_url_marker"`
	BlobTimeout                 timex.Duration `json:"blob_timeout"`
	RedisURL                    string         `json:"redis_url"`
	CatalogCacheTTL             timex.Duration `json:"catalog_cache_ttl"`
	ClassifierBaseURL           string         `json:"classifier_base_url"`
	ClassifierAPIKey            string         `json:"classifier_api_key"`
	ClassifierModelID           string         `json:"classifier_model_id"`
	ClassifierTimeout           timex.Duration `json:"classifier_timeout"`
	AllowedOrigins              string         `json:"allowed_origins"`
	TrashRetention              timex.Duration `json:"trash_retention"`
	Env                         string         `json:"env"`
	TracingExporter             string         `json:"tracing_exporter"`
	OTLPEndpoint                string         `json:"otlp_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Absent keys
// keep their current value. An unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.BlobURLBase, c.BlobURLBase)
	setString(&config.BlobURLMarker, c.BlobURLMarker)
	setDuration(&config.BlobTimeout, c.BlobTimeout)
	setString(&config.RedisURL, c.RedisURL)
	setDuration(&config.CatalogCacheTTL, c.CatalogCacheTTL)
	setString(&config.ClassifierBaseURL, c.ClassifierBaseURL)
	setString(&config.ClassifierAPIKey, c.ClassifierAPIKey)
	setString(&config.ClassifierModelID, c.ClassifierModelID)
	setDuration(&config.ClassifierTimeout, c.ClassifierTimeout)
	setString(&config.AllowedOrigins, c.AllowedOrigins)
	setDuration(&config.TrashRetention, c.TrashRetention)
	setString(&config.Env, c.Env)
	setString(&config.TracingExporter, c.TracingExporter)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
