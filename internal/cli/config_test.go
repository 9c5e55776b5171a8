package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cacheBackendFile)
	}
	if cfg.Store.Backend != storeBackendFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, storeBackendFile)
	}
	if cfg.Solver.TimeoutSeconds != 30 {
		t.Errorf("Solver.TimeoutSeconds = %d, want 30", cfg.Solver.TimeoutSeconds)
	}
	if cfg.Serve.Addr != ":8714" {
		t.Errorf("Serve.Addr = %q, want :8714", cfg.Serve.Addr)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[solver]
klee = "/opt/klee/bin/klee"
timeout_seconds = 120

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Solver.Klee != "/opt/klee/bin/klee" {
		t.Errorf("Solver.Klee = %q", cfg.Solver.Klee)
	}
	if cfg.Solver.TimeoutSeconds != 120 {
		t.Errorf("Solver.TimeoutSeconds = %d, want 120", cfg.Solver.TimeoutSeconds)
	}
	if cfg.Cache.Backend != cacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Store.Backend != storeBackendMongo {
		t.Errorf("Store.Backend = %q, want mongo", cfg.Store.Backend)
	}
	// Unspecified sections keep their defaults.
	if cfg.Serve.Addr != ":8714" {
		t.Errorf("Serve.Addr = %q, want default :8714", cfg.Serve.Addr)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[solver\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail on malformed TOML")
	}
}

func TestLoadConfigNonPositiveTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[solver]\ntimeout_seconds = -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Solver.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want default 30", cfg.Solver.TimeoutSeconds)
	}
}
