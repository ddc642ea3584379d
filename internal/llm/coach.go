package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"lerncoach/internal/storage"
)

// followUpKeywords sind die festen Schlüsselwörter für die Folgebedarf-Heuristik.
// Reiner Substring-Abgleich, bewusst keine Intent-Erkennung - die Wortliste
// darf nicht verändert werden, ohne das Produktverhalten zu ändern.
var followUpKeywords = []string{
	"i don't understand",
	"explain",
	"help me with",
}

// NeedsFollowUp prüft, ob die Frage auf Verständnisprobleme hindeutet.
// Unabhängig von der Modellantwort, rein lokal berechnet.
func NeedsFollowUp(query string) bool {
	lower := strings.ToLower(query)
	for _, keyword := range followUpKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Coach verwaltet die didaktische KI-Logik: Prompt bauen, Modell fragen,
// Gesprächsschritt in der Historie ablegen.
type Coach struct {
	provider Provider
	store    storage.Storage
}

// NewCoach erstellt einen neuen Coach
func NewCoach(provider Provider, store storage.Storage) *Coach {
	return &Coach{
		provider: provider,
		store:    store,
	}
}

// Ask beantwortet eine Studentenfrage. Liefert die Modellantwort unverändert
// zurück und hängt den Gesprächsschritt an die Historie an. Fehler von
// Speicher oder Modell brechen die Interaktion ab.
func (c *Coach) Ask(ctx context.Context, studentName, query string) (string, bool, error) {
	record, err := c.store.GetStudent(ctx, studentName)
	if err != nil {
		return "", false, fmt.Errorf("studenten-datensatz konnte nicht geladen werden: %w", err)
	}

	prompt := c.buildPrompt(studentName, record.Progress, query)

	log.Printf("   [Coach] Frage von %s (%d Zeichen Prompt)", studentName, len(prompt))

	resp, err := c.provider.Generate(ctx, prompt, &GenerateOptions{
		Temperature: 0.7,
		System:      coachPersona,
	})
	if err != nil {
		return "", false, err
	}

	// Antwort unverändert übernehmen - keine Validierung oder Kürzung
	reply := resp.Content

	if err := c.store.AppendHistoryTurn(ctx, studentName, query, reply); err != nil {
		return "", false, fmt.Errorf("historie konnte nicht gespeichert werden: %w", err)
	}

	return reply, NeedsFollowUp(query), nil
}

// AskStream ist die Streaming-Variante von Ask. Der Gesprächsschritt wird
// erst angehängt, wenn der Stream vollständig durchgelaufen ist.
func (c *Coach) AskStream(ctx context.Context, studentName, query string) (<-chan StreamChunk, bool, error) {
	record, err := c.store.GetStudent(ctx, studentName)
	if err != nil {
		return nil, false, fmt.Errorf("studenten-datensatz konnte nicht geladen werden: %w", err)
	}

	prompt := c.buildPrompt(studentName, record.Progress, query)

	chunks, err := c.provider.GenerateStream(ctx, prompt, &GenerateOptions{
		Temperature: 0.7,
		System:      coachPersona,
	})
	if err != nil {
		return nil, false, err
	}

	out := make(chan StreamChunk, 100)

	go func() {
		defer close(out)

		var reply strings.Builder
		for chunk := range chunks {
			if chunk.Error != nil {
				out <- chunk
				return
			}
			reply.WriteString(chunk.Content)
			out <- chunk
			if chunk.Done {
				break
			}
		}

		if err := c.store.AppendHistoryTurn(ctx, studentName, query, reply.String()); err != nil {
			out <- StreamChunk{Error: fmt.Errorf("historie konnte nicht gespeichert werden: %w", err)}
		}
	}()

	return out, NeedsFollowUp(query), nil
}

const coachPersona = "Du bist ein KI-Lern-Coach für Online-Bildung. " +
	"Du hilfst Studenten, indem du Fragen beantwortest, Konzepte erklärst und sie anleitest."

// buildPrompt baut den Prompt aus Persona, Name, Fortschritt und Frage.
// Der Prompt ist flüchtig und wird nie persistiert.
func (c *Coach) buildPrompt(studentName string, progress map[string]interface{}, query string) string {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		progressJSON = []byte("{}")
	}

	return fmt.Sprintf(`%s

Student: %s
Fortschritt: %s

Frage des Studenten: %s

Richtlinien:
- Beim Erklären: gib eine klare, direkte Antwort.
- Wenn der Student Schwierigkeiten hat: erstelle ein **kurzes Quiz** (max. 3 Fragen).
- Wenn passend: empfiehl YouTube-Videos zum Thema.`,
		coachPersona, studentName, string(progressJSON), query)
}
