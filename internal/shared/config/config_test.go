package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir()) // пустая директория: только defaults
	clearEnv(t,
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USER", "RABBITMQ_PASSWORD", "RABBITMQ_VHOST",
		"DRIVER_SERVICE_PORT", "VIEWER_SERVICE_PORT", "ADMIN_SERVICE_PORT",
		"GEO_MAX_AGE_MS", "GEO_TIMEOUT_MS",
	)

	cfg := Load()

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("db defaults = %+v", cfg.Database)
	}
	if cfg.Services.DriverServicePort != 3001 || cfg.Services.ViewerServicePort != 3002 || cfg.Services.AdminServicePort != 3004 {
		t.Errorf("service ports = %+v", cfg.Services)
	}
	if cfg.Geo.MaxAge != 2*time.Second || cfg.Geo.Timeout != 8*time.Second {
		t.Errorf("geo defaults = %+v", cfg.Geo)
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "db.yaml", "host: db.internal\nport: 5433\n# comment\nsslmode: require\n")
	writeFile(t, dir, "geo.yaml", "max_age_ms: 1000\ntimeout_ms: 4000\n")

	t.Setenv("CONFIG_DIR", dir)
	clearEnv(t, "DB_HOST", "DB_PORT", "DB_SSLMODE", "GEO_MAX_AGE_MS", "GEO_TIMEOUT_MS")

	cfg := Load()

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 || cfg.Database.SSLMode != "require" {
		t.Errorf("db = %+v", cfg.Database)
	}
	if cfg.Geo.MaxAge != time.Second || cfg.Geo.Timeout != 4*time.Second {
		t.Errorf("geo = %+v", cfg.Geo)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "db.yaml", "host: from-file\n")

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("DB_HOST", "from-env")

	cfg := Load()

	if cfg.Database.Host != "from-env" {
		t.Errorf("host = %q, want env to win over file", cfg.Database.Host)
	}
}

func TestDSN(t *testing.T) {
	db := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=d sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestAMQPURL(t *testing.T) {
	mq := MQConfig{Host: "h", Port: 5672, User: "u", Password: "p", VHost: "/"}
	if got := mq.AMQPURL(); got != "amqp://u:p@h:5672/" {
		t.Errorf("AMQPURL = %q", got)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
