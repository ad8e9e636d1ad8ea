package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"counties/internal/logger"
)

// EnvString：未设置或为空时返回 def
func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvBool：接受 true/false/1/0 等 strconv 形式，非法值记录后返回 def
func EnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.L().Warn("config_bad_bool", "key", key, "value", v)
		return def
	}
	return b
}

func EnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.L().Warn("config_bad_int", "key", key, "value", v)
		return def
	}
	return n
}

func EnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.L().Warn("config_bad_float", "key", key, "value", v)
		return def
	}
	return f
}

// EnvSeconds：以秒为单位的整数时长
func EnvSeconds(key string, def time.Duration) time.Duration {
	n := EnvInt(key, -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
