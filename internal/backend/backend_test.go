package backend

import (
	"context"
	"path/filepath"
	"testing"

	"homebudget/internal/config"
	"homebudget/internal/docstore"
)

func TestTypeIsValid(t *testing.T) {
	for _, valid := range []Type{MemoryBackend, SQLiteBackend, MongoBackend} {
		if !valid.IsValid() {
			t.Errorf("%s reported invalid", valid)
		}
	}
	if Type("redis").IsValid() {
		t.Errorf("unknown type reported valid")
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DocStoreBackend: "sqlite",
		SQLiteDBPath:    "/tmp/x.db",
		MongoURI:        "mongodb://h",
		MongoDB:         "db",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DocStoreBackend: "redis"}); err == nil {
		t.Errorf("unknown backend accepted")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Errorf("nil config accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{Type: MemoryBackend}},
		{name: "sqlite with path", cfg: Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/x.db"}},
		{name: "sqlite without path", cfg: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "mongo complete", cfg: Config{Type: MongoBackend, MongoURI: "mongodb://h", MongoDB: "db"}},
		{name: "mongo without uri", cfg: Config{Type: MongoBackend, MongoDB: "db"}, wantErr: true},
		{name: "mongo without db", cfg: Config{Type: MongoBackend, MongoURI: "mongodb://h"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenMemoryAndSQLite(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Config{Type: MemoryBackend}, nil)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	defer mem.Close(ctx)

	sq, err := Open(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "docs.db")}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sq.Close(ctx)

	for name, st := range map[string]docstore.Store{"memory": mem, "sqlite": sq} {
		if err := st.SetDocument(ctx, "p", docstore.Document{"v": 1.0}, false); err != nil {
			t.Errorf("%s write: %v", name, err)
		}
	}
}
