package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/acmgrab/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "acmgrab", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	os.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.WorkspacePath != "" {
		t.Errorf("WorkspacePath = %q, want empty", cfg.WorkspacePath)
	}
	if GetBaseURL() != DefaultBaseURL {
		t.Errorf("GetBaseURL() = %q, want default", GetBaseURL())
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "acmgrab")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `workspace_path: ~/crawls/acm
base_url: https://dl.example.org
page_size: 50
rate_per_sec: 0.5
settle_seconds: 3
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "crawls/acm"); cfg.WorkspacePath != want {
		t.Errorf("WorkspacePath = %q, want %q", cfg.WorkspacePath, want)
	}
	if cfg.BaseURL != "https://dl.example.org" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.RatePerSec != 0.5 {
		t.Errorf("RatePerSec = %v, want 0.5", cfg.RatePerSec)
	}
	if cfg.SettleSeconds != 3 {
		t.Errorf("SettleSeconds = %d, want 3", cfg.SettleSeconds)
	}
}

func TestValidateWorkspacePath(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	t.Run("not configured", func(t *testing.T) {
		ResetGlobalConfigCache()
		os.Setenv("XDG_CONFIG_HOME", t.TempDir())

		if _, err := ValidateWorkspacePath(); err != ErrWorkspaceNotConfigured {
			t.Errorf("error = %v, want ErrWorkspaceNotConfigured", err)
		}
	})

	t.Run("configured but missing", func(t *testing.T) {
		ResetGlobalConfigCache()
		tmpDir := t.TempDir()
		configDir := filepath.Join(tmpDir, "acmgrab")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}
		content := "workspace_path: " + filepath.Join(tmpDir, "nope") + "\n"
		if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		os.Setenv("XDG_CONFIG_HOME", tmpDir)

		_, err := ValidateWorkspacePath()
		if err == nil {
			t.Fatal("error = nil, want ErrWorkspaceNotExist")
		}
	})

	t.Run("valid", func(t *testing.T) {
		ResetGlobalConfigCache()
		tmpDir := t.TempDir()
		ws := filepath.Join(tmpDir, "ws")
		if err := os.MkdirAll(ws, 0755); err != nil {
			t.Fatal(err)
		}
		configDir := filepath.Join(tmpDir, "acmgrab")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("workspace_path: "+ws+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		os.Setenv("XDG_CONFIG_HOME", tmpDir)

		got, err := ValidateWorkspacePath()
		if err != nil {
			t.Fatalf("ValidateWorkspacePath() error = %v", err)
		}
		if got != ws {
			t.Errorf("ValidateWorkspacePath() = %q, want %q", got, ws)
		}
	})
}
