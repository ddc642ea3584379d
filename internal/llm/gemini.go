package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implementiert den Provider über die Gemini-API.
// Der API-Key kommt aus der Umgebung (GOOGLE_API_KEY).
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiProvider erstellt einen neuen Gemini-Provider
func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("kein GOOGLE_API_KEY gesetzt")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini-client konnte nicht erstellt werden: %w", err)
	}

	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
	}, nil
}

func (g *GeminiProvider) GetName() string {
	return "Gemini"
}

// SetModel ändert das Standard-Modell
func (g *GeminiProvider) SetModel(model string) {
	if model != "" {
		g.defaultModel = model
	}
}

// GetCurrentModel gibt das aktuelle Modell zurück
func (g *GeminiProvider) GetCurrentModel() string {
	return g.defaultModel
}

// IsAvailable prüft nur, ob der Client initialisiert ist - die Gemini-API
// bietet keinen billigen Health-Endpunkt
func (g *GeminiProvider) IsAvailable(ctx context.Context) bool {
	return g.client != nil
}

// GetModels gibt die nutzbaren Gemini-Modelle zurück (feste Auswahl,
// kein Listen-Aufruf gegen die API)
func (g *GeminiProvider) GetModels(ctx context.Context) ([]ModelInfo, error) {
	names := []string{"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-1.5-pro"}

	var models []ModelInfo
	seen := false
	for _, name := range names {
		if name == g.defaultModel {
			seen = true
		}
		models = append(models, ModelInfo{Name: name})
	}
	if !seen {
		models = append(models, ModelInfo{Name: g.defaultModel})
	}
	return models, nil
}

func (g *GeminiProvider) generateConfig(options *GenerateOptions) *genai.GenerateContentConfig {
	if options == nil {
		return nil
	}

	cfg := &genai.GenerateContentConfig{}
	if options.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(options.System, genai.RoleUser)
	}
	return cfg
}

func (g *GeminiProvider) model(options *GenerateOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	return g.defaultModel
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, options *GenerateOptions) (*GenerateResponse, error) {
	model := g.model(options)

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), g.generateConfig(options))
	if err != nil {
		return nil, fmt.Errorf("gemini-anfrage fehlgeschlagen: %w", err)
	}

	return &GenerateResponse{
		Content: resp.Text(),
		Model:   model,
		Done:    true,
	}, nil
}

func (g *GeminiProvider) GenerateStream(ctx context.Context, prompt string, options *GenerateOptions) (<-chan StreamChunk, error) {
	model := g.model(options)
	stream := g.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), g.generateConfig(options))

	ch := make(chan StreamChunk, 100)

	go func() {
		defer close(ch)

		for resp, err := range stream {
			if err != nil {
				ch <- StreamChunk{Error: fmt.Errorf("gemini-stream fehlgeschlagen: %w", err)}
				return
			}
			ch <- StreamChunk{Content: resp.Text()}
		}
		ch <- StreamChunk{Done: true}
	}()

	return ch, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, messages []ChatMessage, options *GenerateOptions) (*GenerateResponse, error) {
	model := g.model(options)
	cfg := g.generateConfig(options)

	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		case "system":
			// Gemini kennt keine System-Nachrichten im Verlauf
			if cfg == nil {
				cfg = &genai.GenerateContentConfig{}
			}
			cfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini-chat fehlgeschlagen: %w", err)
	}

	return &GenerateResponse{
		Content: resp.Text(),
		Model:   model,
		Done:    true,
	}, nil
}
