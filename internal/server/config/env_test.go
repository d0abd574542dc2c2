package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                  "4000",
		"DATABASE_URL":          "postgres://env/rms",
		"ACCESS_TOKEN_SECRET":   "acc",
		"REFRESH_TOKEN_SECRET":  "ref",
		"ALLOWED_ORIGINS":       "https://a.example, https://b.example,,",
		"AWS_ACCESS_KEY_ID":     "AKIA",
		"AWS_SECRET_ACCESS_KEY": "shh",
		"AWS_REGION":            "us-west-2",
		"AWS_BUCKET_NAME":       "bucket",
		"AWS_ENDPOINT_URL":      "http://minio:9000",
		"LOG_BACKEND":           "zerolog",
		"COOKIE_SECURE":         "false",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	var c Config
	c.LoadDefaults()
	parseEnv(&c, lookup)

	assert.Equal(t, ":4000", c.HTTPAddr)
	assert.Equal(t, "postgres://env/rms", c.DatabaseDSN)
	assert.Equal(t, "acc", c.AccessTokenSecret)
	assert.Equal(t, "ref", c.RefreshTokenSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "AKIA", c.S3AccessKeyID)
	assert.Equal(t, "shh", c.S3SecretAccessKey)
	assert.Equal(t, "us-west-2", c.S3Region)
	assert.Equal(t, "bucket", c.S3Bucket)
	assert.Equal(t, "http://minio:9000", c.S3BaseEndpoint)
	assert.Equal(t, "zerolog", c.LogBackend)
	assert.False(t, c.CookieSecure)
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	lookup := func(k string) (string, bool) { return "", true }

	var c Config
	c.LoadDefaults()
	parseEnv(&c, lookup)

	assert.Equal(t, ":3000", c.HTTPAddr)
	assert.Equal(t, "access-secret", c.AccessTokenSecret)
	assert.Equal(t, []string{"http://localhost:5173"}, c.AllowedOrigins)
}
