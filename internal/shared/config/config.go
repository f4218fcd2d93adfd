package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config — полная конфигурация проекта
type Config struct {
	Database DBConfig
	RabbitMQ MQConfig
	Services ServicesConfig
	Geo      GeoConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type MQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type ServicesConfig struct {
	DriverServicePort int
	ViewerServicePort int
	AdminServicePort  int
}

// GeoConfig — параметры непрерывного location watch.
// Значения повторяют настройки устройства: кэшированный fix
// принимается не старше MaxAge, ожидание следующего fix ограничено Timeout.
type GeoConfig struct {
	MaxAge  time.Duration
	Timeout time.Duration
}

// Load — загрузка из CONFIG_DIR (по умолчанию ./config) + ENV перекрывает
func Load() Config {
	configDir := getEnv("CONFIG_DIR", "./config")
	cfg := Config{}

	dbKV := parseFile(filepath.Join(configDir, "db.yaml"))
	cfg.Database.Host = getStr("DB_HOST", dbKV, "host", "localhost")
	cfg.Database.Port = getInt("DB_PORT", dbKV, "port", 5432)
	cfg.Database.User = getStr("DB_USER", dbKV, "user", "bustracker_user")
	cfg.Database.Password = getStr("DB_PASSWORD", dbKV, "password", "bustracker_pass")
	cfg.Database.Database = getStr("DB_NAME", dbKV, "database", "bustracker_db")
	cfg.Database.SSLMode = getStr("DB_SSLMODE", dbKV, "sslmode", "disable")

	mqKV := parseFile(filepath.Join(configDir, "mq.yaml"))
	cfg.RabbitMQ.Host = getStr("RABBITMQ_HOST", mqKV, "host", "localhost")
	cfg.RabbitMQ.Port = getInt("RABBITMQ_PORT", mqKV, "port", 5672)
	cfg.RabbitMQ.User = getStr("RABBITMQ_USER", mqKV, "user", "guest")
	cfg.RabbitMQ.Password = getStr("RABBITMQ_PASSWORD", mqKV, "password", "guest")
	cfg.RabbitMQ.VHost = getStr("RABBITMQ_VHOST", mqKV, "vhost", "/")

	svcKV := parseFile(filepath.Join(configDir, "service.yaml"))
	cfg.Services.DriverServicePort = getInt("DRIVER_SERVICE_PORT", svcKV, "driver_service", 3001)
	cfg.Services.ViewerServicePort = getInt("VIEWER_SERVICE_PORT", svcKV, "viewer_service", 3002)
	cfg.Services.AdminServicePort = getInt("ADMIN_SERVICE_PORT", svcKV, "admin_service", 3004)

	geoKV := parseFile(filepath.Join(configDir, "geo.yaml"))
	cfg.Geo.MaxAge = time.Duration(getInt("GEO_MAX_AGE_MS", geoKV, "max_age_ms", 2000)) * time.Millisecond
	cfg.Geo.Timeout = time.Duration(getInt("GEO_TIMEOUT_MS", geoKV, "timeout_ms", 8000)) * time.Millisecond

	return cfg
}

// parseFile — плоский YAML (key: value), без вложенности.
// Отсутствующий файл не ошибка: остаются env + defaults.
func parseFile(path string) map[string]string {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil
	}
	defer f.Close()

	result := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		result[key] = val
	}
	return result
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getStr(envKey string, kv map[string]string, key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if val, ok := kv[key]; ok && val != "" {
		return val
	}
	return def
}

func getInt(envKey string, kv map[string]string, key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if val, ok := kv[key]; ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}
