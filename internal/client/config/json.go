package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
	"github.com/dmitrijs2005/recipebox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-checked fields only override Config when present in the file.
type JsonConfig struct {
	DatabaseDSN    string `json:"database_dsn"`
	MigrateOnStart *bool  `json:"migrate_on_start"`

	JWTSecret            string         `json:"jwt_secret"`
	AccessTokenTTL       timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL      timex.Duration `json:"refresh_token_ttl"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
	RefreshMargin        timex.Duration `json:"refresh_margin"`

	StorageDriver string `json:"storage_driver"`
	ImageBucket   string `json:"image_bucket"`

	S3Endpoint      string `json:"s3_endpoint"`
	S3Region        string `json:"s3_region"`
	S3AccessKey     string `json:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key"`
	S3PublicBaseURL string `json:"s3_public_base_url"`

	CloudinaryCloudName string `json:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `json:"cloudinary_api_key"`
	CloudinaryAPISecret string `json:"cloudinary_api_secret"`

	StorageURL   string `json:"storage_url"`
	StorageToken string `json:"storage_token"`

	LocalDBPath      string         `json:"local_db_path"`
	ToastDuration    timex.Duration `json:"toast_duration"`
	SettleDelay      timex.Duration `json:"settle_delay"`
	PlaceholderImage string         `json:"placeholder_image"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// parseJson overlays cfg with the JSON file named by -c / -config.
// Without the flag nothing happens; read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	if jc.MigrateOnStart != nil {
		cfg.MigrateOnStart = *jc.MigrateOnStart
	}

	setString(&cfg.JWTSecret, jc.JWTSecret)
	setDuration(&cfg.AccessTokenTTL, jc.AccessTokenTTL)
	setDuration(&cfg.RefreshTokenTTL, jc.RefreshTokenTTL)
	setDuration(&cfg.SessionCheckInterval, jc.SessionCheckInterval)
	setDuration(&cfg.RefreshMargin, jc.RefreshMargin)

	setString(&cfg.StorageDriver, jc.StorageDriver)
	setString(&cfg.ImageBucket, jc.ImageBucket)

	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)

	setString(&cfg.CloudinaryCloudName, jc.CloudinaryCloudName)
	setString(&cfg.CloudinaryAPIKey, jc.CloudinaryAPIKey)
	setString(&cfg.CloudinaryAPISecret, jc.CloudinaryAPISecret)

	setString(&cfg.StorageURL, jc.StorageURL)
	setString(&cfg.StorageToken, jc.StorageToken)

	setString(&cfg.LocalDBPath, jc.LocalDBPath)
	setDuration(&cfg.ToastDuration, jc.ToastDuration)
	setDuration(&cfg.SettleDelay, jc.SettleDelay)
	setString(&cfg.PlaceholderImage, jc.PlaceholderImage)

	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
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
