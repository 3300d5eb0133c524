package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", "")
	os.Setenv("BRIDGE_URL", "")
	os.Setenv("DB_PATH", "")
	os.Setenv("CEREBRAS_MODEL_ID", "")
	os.Setenv("VOICE_NAME", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.BridgeURL == "" {
		t.Fatalf("expected default bridge url")
	}
	if cfg.DatabasePath == "" {
		t.Fatalf("expected default database path")
	}
	if cfg.CerebrasModelID == "" {
		t.Fatalf("expected default cerebras model id")
	}
	if cfg.VoiceName == "" {
		t.Fatalf("expected default voice name")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", ":9999")
	os.Setenv("VOICE_NAME", "aura-2-orion-en")
	defer os.Unsetenv("HTTP_ADDRESS")
	defer os.Unsetenv("VOICE_NAME")
	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("expected HTTP_ADDRESS override, got %s", cfg.HTTPAddress)
	}
	if cfg.VoiceName != "aura-2-orion-en" {
		t.Fatalf("expected VOICE_NAME override, got %s", cfg.VoiceName)
	}
}
