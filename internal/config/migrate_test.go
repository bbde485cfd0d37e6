package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateCurrentVersionNoop(t *testing.T) {
	cfg := NewDefault()
	if err := migrate(cfg); err != nil {
		t.Errorf("migrate() current version: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
}

func TestMigrateRejectsBadVersions(t *testing.T) {
	for _, v := range []int{CurrentVersion + 1, 0, -1} {
		cfg := NewDefault()
		cfg.Version = v
		err := migrate(cfg)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("migrate() version %d error = %v, want ErrInvalid", v, err)
		}
	}
}

func TestMigrateV1ToCurrentVersion(t *testing.T) {
	cfg := &Config{Version: 1, Store: StoreConfig{Backend: BackendSQLite}}

	if err := migrate(cfg); err != nil {
		t.Fatalf("migrate() v1: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Authority.Mode != AuthorityLocal {
		t.Errorf("Authority.Mode = %q, want %q", cfg.Authority.Mode, AuthorityLocal)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want existing value kept", cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after migration: %v", err)
	}
}

func TestLoadMigratesV1File(t *testing.T) {
	dir := t.TempDir()
	v1 := "version: 1\nstore:\n  backend: json\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), fileMode); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() v1 file: %v", err)
	}
	if cfg.Version != CurrentVersion || cfg.Authority.Addr != DefaultAuthorityAddr {
		t.Errorf("migrated config = %+v", cfg)
	}
}
