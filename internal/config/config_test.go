package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POLIT_CONFIG", "POLIT_UPLOAD_URL", "POLIT_QUERY_URL", "POLIT_DROP_DIR",
		"POLIT_LOG_LEVEL", "POLIT_LOG_FILE", "POLIT_STUB_ADDR", "NO_COLOR",
		"POLIT_STUB_OLLAMA_URL", "POLIT_STUB_OLLAMA_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := &Config{
		UploadURL: "http://localhost:8000/upload-pdf",
		QueryURL:  "http://localhost:8000/query",
		LogLevel:  "info",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "polit.yaml")
	os.WriteFile(path, []byte(`
upload_url: http://file.example/upload
query_url: http://file.example/query
log_level: debug
log_file: /tmp/polit.log
`), 0644)

	t.Setenv("POLIT_QUERY_URL", "http://env.example/query")
	t.Setenv("POLIT_LOG_LEVEL", "warn")

	cfg, err := Load([]string{"-config", path, "-log-level", "error", "-drop-dir", dir, "-no-color"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := &Config{
		UploadURL: "http://file.example/upload",
		QueryURL:  "http://env.example/query",
		DropDir:   dir,
		LogLevel:  "error",
		LogFile:   "/tmp/polit.log",
		NoColor:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "polit.yaml")
	os.WriteFile(path, []byte("upload_url: https://rag.internal/upload-pdf\n"), 0644)
	t.Setenv("POLIT_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.UploadURL != "https://rag.internal/upload-pdf" {
		t.Errorf("unexpected upload url: %s", cfg.UploadURL)
	}
}

func TestLoad_NoColorEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.NoColor {
		t.Error("NO_COLOR should disable color")
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	notDir := filepath.Join(t.TempDir(), "file.txt")
	os.WriteFile(notDir, []byte("x"), 0644)
	badYAML := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(badYAML, []byte("upload_url: [unterminated"), 0644)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"relative url", []string{"-upload-url", "/upload-pdf"}},
		{"bad scheme", []string{"-query-url", "ftp://host/query"}},
		{"missing host", []string{"-query-url", "http:///query"}},
		{"missing config file", []string{"-config", "/nonexistent/polit.yaml"}},
		{"malformed config file", []string{"-config", badYAML}},
		{"missing drop dir", []string{"-drop-dir", "/nonexistent/drop"}},
		{"drop dir is a file", []string{"-drop-dir", notDir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadStub(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadStub(nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != DefaultStubAddr {
		t.Errorf("unexpected default addr: %s", cfg.Addr)
	}

	t.Setenv("POLIT_STUB_ADDR", "127.0.0.1:9000")
	cfg, _ = LoadStub(nil)
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("env should set addr, got %s", cfg.Addr)
	}

	cfg, _ = LoadStub([]string{"-addr", ":7000"})
	if cfg.Addr != ":7000" {
		t.Errorf("flag should override env, got %s", cfg.Addr)
	}

	if _, err := LoadStub([]string{"-addr", ""}); err == nil {
		t.Error("empty addr should be rejected")
	}
	if _, err := LoadStub([]string{"-ollama-url", "localhost:11434"}); err == nil {
		t.Error("ollama url without scheme should be rejected")
	}

	t.Setenv("POLIT_STUB_OLLAMA_URL", "http://gpu-box:11434")
	cfg, err = LoadStub([]string{"-ollama-model", "mistral"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OllamaURL != "http://gpu-box:11434" || cfg.OllamaModel != "mistral" {
		t.Errorf("unexpected ollama settings: %+v", cfg)
	}
}
