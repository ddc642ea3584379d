package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lerncoach/internal/api"
	"lerncoach/internal/config"
	"lerncoach/internal/llm"
	"lerncoach/internal/storage"
	"lerncoach/internal/video"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("📚 KI-LERN-COACH - Start")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Kommandozeilen-Flags
	configPath := flag.String("config", "config.json", "Pfad zur Konfigurationsdatei")
	port := flag.String("port", "", "Server-Port (überschreibt die Konfiguration)")
	flag.Parse()

	// Konfiguration laden
	log.Println("📋 Lade Konfiguration...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("⚠️  Konnte Konfiguration nicht laden, verwende Standardwerte: %v", err)
	}
	if *port != "" {
		cfg.ServerPort = *port
	}
	log.Printf("   ✓ Konfiguration geladen")

	ctx := context.Background()

	// Storage initialisieren
	log.Println("💾 Initialisiere Dokumentenspeicher...")
	var store storage.Storage
	switch cfg.StorageBackend {
	case "firestore":
		store, err = storage.NewFirestoreStorage(ctx, cfg.FirestoreProject)
		if err != nil {
			log.Fatalf("❌ Fehler beim Initialisieren von Firestore: %v", err)
		}
		log.Printf("   ✓ Firestore: Projekt %s", cfg.FirestoreProject)
	default:
		store, err = storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("❌ Fehler beim Initialisieren der Datenbank: %v", err)
		}
		log.Printf("   ✓ SQLite: %s", cfg.DatabasePath)
	}
	defer store.Close()

	// LLM-Provider initialisieren
	log.Println("🤖 Initialisiere LLM-Provider...")
	var llmProvider llm.Provider
	if cfg.LLMProvider == "gemini" && cfg.GoogleAPIKey != "" {
		llmProvider, err = llm.NewGeminiProvider(ctx, cfg.GoogleAPIKey, cfg.DefaultModel)
		if err != nil {
			log.Fatalf("❌ Fehler beim Initialisieren von Gemini: %v", err)
		}
		log.Printf("   ✓ Gemini, Modell: %s", llmProvider.GetCurrentModel())
	} else {
		if cfg.LLMProvider == "gemini" {
			log.Println("   ⚠️  Kein GOOGLE_API_KEY gesetzt, weiche auf Ollama aus")
		}
		ollama := llm.NewOllamaProvider(cfg.OllamaURL, cfg.DefaultModel)
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if ollama.IsAvailable(checkCtx) {
			log.Printf("   ✓ Ollama erreichbar: %s", cfg.OllamaURL)
		} else {
			log.Printf("   ⚠️  Ollama NICHT erreichbar unter %s", cfg.OllamaURL)
			log.Println("      Starte Ollama mit: ollama serve")
		}
		cancel()
		llmProvider = ollama
	}

	// Video-Recommender initialisieren (optional)
	var recommender api.Recommender
	if cfg.YouTubeAPIKey != "" {
		log.Println("📺 Initialisiere Video-Empfehlungen...")
		rec, err := video.NewRecommender(ctx, cfg.YouTubeAPIKey, cfg.MaxVideoResults)
		if err != nil {
			log.Printf("   ⚠️  Video-Empfehlungen deaktiviert: %v", err)
		} else {
			recommender = rec
			log.Println("   ✓ YouTube-Suche aktiv")
		}
	} else {
		log.Println("📺 Kein YOUTUBE_API_KEY gesetzt, Video-Empfehlungen deaktiviert")
	}

	// API-Handler erstellen
	handler := api.NewHandler(store, llmProvider, recommender, cfg)

	// Router erstellen
	router := api.NewRouter(handler)

	// Server starten
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Graceful Shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("")
		log.Println("⏹️  Server wird heruntergefahren...")
		server.Close()
	}()

	log.Println("")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✅ Server läuft auf: http://localhost:%s", cfg.ServerPort)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("💡 Drücke Strg+C zum Beenden")
	log.Println("")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server-Fehler: %v", err)
	}
}
