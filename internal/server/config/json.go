package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rms/internal/flagx"
	"github.com/dmitrijs2005/rms/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// both strings such as "15m" and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                             string         `json:"http_addr"`
	GRPCAddr                             string         `json:"grpc_addr"`
	DatabaseDSN                          string         `json:"database_dsn"`
	AccessTokenSecret                    string         `json:"access_token_secret"`
	RefreshTokenSecret                   string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration          timex.Duration `json:"access_token_validity_duration"`
	RefreshedAccessTokenValidityDuration timex.Duration `json:"refreshed_access_token_validity_duration"`
	RefreshTokenValidityDuration         timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                           int            `json:"bcrypt_cost"`
	AllowedOrigins                       []string       `json:"allowed_origins"`
	CookieSecure                         *bool          `json:"cookie_secure"`
	S3AccessKeyID                        string         `json:"s3_access_key_id"`
	S3SecretAccessKey                    string         `json:"s3_secret_access_key"`
	S3Bucket                             string         `json:"s3_bucket"`
	S3Region                             string         `json:"s3_region"`
	S3BaseEndpoint                       string         `json:"s3_base_endpoint"`
	UploadURLValidityDuration            timex.Duration `json:"upload_url_validity_duration"`
	LogBackend                           string         `json:"log_backend"`
}

// parseJson overlays values from the file named by -c / -config.
// Keys missing from the file leave the current value alone.
// Unreadable files and invalid JSON panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.S3AccessKeyID, c.S3AccessKeyID)
	setString(&config.S3SecretAccessKey, c.S3SecretAccessKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogBackend, c.LogBackend)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshedAccessTokenValidityDuration.Duration > 0 {
		config.RefreshedAccessTokenValidityDuration = c.RefreshedAccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.UploadURLValidityDuration.Duration > 0 {
		config.UploadURLValidityDuration = c.UploadURLValidityDuration.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
