package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration for both the coordinator daemon and
// the agent CLI.
type Config struct {
	HTTPAddress  string
	BridgeURL    string
	DatabasePath string

	AssemblyAIKey   string
	CerebrasKey     string
	CerebrasModelID string
	DeepgramKey     string
	VoiceName       string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	bridgeURL := os.Getenv("BRIDGE_URL")
	if bridgeURL == "" {
		bridgeURL = "ws://127.0.0.1:8080/bridge"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "interviewer.db"
	}

	assemblyAIKey := os.Getenv("ASSEMBLYAI_API_KEY")
	if assemblyAIKey == "" {
		log.Println("Warning: ASSEMBLYAI_API_KEY not set - transcription will not work")
	}

	cerebrasKey := os.Getenv("CEREBRAS_API_KEY")
	cerebrasModel := os.Getenv("CEREBRAS_MODEL_ID")
	if cerebrasModel == "" {
		cerebrasModel = "gpt-oss-120b"
	}
	if cerebrasKey == "" {
		log.Println("Warning: CEREBRAS_API_KEY not set - interviewer replies will not work")
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - speech synthesis will not work")
	}

	voiceName := os.Getenv("VOICE_NAME")
	if voiceName == "" {
		voiceName = "aura-2-thalia-en"
	}

	log.Printf("config: HTTP_ADDRESS=%s DB_PATH=%s", addr, dbPath)
	return Config{
		HTTPAddress:        addr,
		BridgeURL:          bridgeURL,
		DatabasePath:       dbPath,
		AssemblyAIKey:      assemblyAIKey,
		CerebrasKey:        cerebrasKey,
		CerebrasModelID:    cerebrasModel,
		DeepgramKey:        deepgramKey,
		VoiceName:          voiceName,
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:     os.Getenv("SUPABASE_BUCKET"),
	}
}
