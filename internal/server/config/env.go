package config

import (
	"strconv"
	"strings"
)

// parseEnv overlays the environment variables used by the hosted deployment.
// PORT only carries a port number, so it becomes ":<port>".
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}

	get("DATABASE_URL", &config.DatabaseDSN)
	get("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	get("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	get("AWS_ACCESS_KEY_ID", &config.S3AccessKeyID)
	get("AWS_SECRET_ACCESS_KEY", &config.S3SecretAccessKey)
	get("AWS_REGION", &config.S3Region)
	get("AWS_BUCKET_NAME", &config.S3Bucket)
	get("AWS_ENDPOINT_URL", &config.S3BaseEndpoint)
	get("LOG_BACKEND", &config.LogBackend)

	if v, ok := lookup("COOKIE_SECURE"); ok {
		if secure, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = secure
		}
	}

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowedOrigins = origins
	}
}
