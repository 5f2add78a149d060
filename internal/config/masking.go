package config

import (
	"fmt"
	"strings"
)

// maskSecret маскирует секрет, оставляя только первые 4 и последние 4 символа
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	// Если секрет слишком короткий, маскируем полностью
	if len(secret) < 8 {
		return "***"
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// Describe renders the storage target for logs with the password masked.
func (s StorageConfig) Describe() string {
	switch strings.ToLower(s.Backend) {
	case "file":
		return "file:" + s.Path
	case "sqlite":
		return "sqlite:" + s.SQLitePath
	case "redis":
		target := fmt.Sprintf("redis://%s/%d", s.RedisAddr, s.RedisDB)
		if s.RedisPassword != "" {
			target += " (password " + maskSecret(s.RedisPassword) + ")"
		}
		return target
	default:
		return strings.ToLower(s.Backend)
	}
}
