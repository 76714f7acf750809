package config

import (
	"os"
	"strconv"
	"strings"
)

// MailConfig SMTP 传输配置
type MailConfig struct {
	Service            string `yaml:"service"` // 可选预设，目前支持 gmail
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	SenderAddress      string `yaml:"sender_address"`
	Recipient          string `yaml:"recipient"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port  string `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// OverrideMailFromEnv 从环境变量覆盖邮件配置
func OverrideMailFromEnv(cfg *MailConfig) {
	if host := os.Getenv("MAIL_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("MAIL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("MAIL_USERNAME"); user != "" {
		cfg.Username = user
	}
	if password := os.Getenv("MAIL_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if recipient := os.Getenv("MAIL_RECIPIENT"); recipient != "" {
		cfg.Recipient = recipient
	}
	if sender := os.Getenv("MAIL_SENDER_ADDRESS"); sender != "" {
		cfg.SenderAddress = sender
	}
}

// OverrideCORSFromEnv 从环境变量覆盖跨域配置
func OverrideCORSFromEnv(cfg *CORSConfig) {
	if origin := os.Getenv("CORS_ALLOWED_ORIGIN"); origin != "" {
		cfg.AllowedOrigin = origin
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		cfg.Port = port
	}
}

// OverrideLogFromEnv 从环境变量覆盖日志级别
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}
