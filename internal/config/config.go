package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

// Config enthält alle Konfigurationseinstellungen
type Config struct {
	// Server-Einstellungen
	ServerPort string `json:"server_port"`

	// Speicher-Einstellungen
	StorageBackend   string `json:"storage_backend"` // "sqlite" oder "firestore"
	DatabasePath     string `json:"database_path"`
	FirestoreProject string `json:"firestore_project"`

	// LLM-Einstellungen
	LLMProvider  string `json:"llm_provider"` // "gemini" oder "ollama"
	OllamaURL    string `json:"ollama_url"`
	DefaultModel string `json:"default_model"`

	// Video-Einstellungen
	MaxVideoResults int64 `json:"max_video_results"`

	// API-Keys kommen aus der Umgebung, nie aus der config.json
	GoogleAPIKey  string `json:"-"`
	YouTubeAPIKey string `json:"-"`
}

// Default gibt die Standardkonfiguration zurück
func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		StorageBackend:  "sqlite",
		DatabasePath:    "lerncoach.db",
		LLMProvider:     "gemini",
		OllamaURL:       "http://localhost:11434",
		DefaultModel:    "gemini-2.0-flash",
		MaxVideoResults: 3,
	}
}

// Load lädt die Konfiguration aus einer Datei und die API-Keys aus der
// Umgebung. Eine vorhandene .env-Datei wird vorher eingelesen.
func Load(path string) (*Config, error) {
	// .env ist optional, Fehler hier sind kein Abbruchgrund
	godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		cfg.loadEnv()
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		cfg.loadEnv()
		return cfg, err
	}

	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadEnv() {
	c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	c.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
}

// Save speichert die Konfiguration in eine Datei (ohne API-Keys)
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
