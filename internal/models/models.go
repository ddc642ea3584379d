package models

// HistoryTurn repräsentiert einen Gesprächsschritt (Frage + Antwort)
type HistoryTurn struct {
	User      string `json:"user" firestore:"user"`
	Assistant string `json:"assistant" firestore:"assistant"`
}

// StudentRecord repräsentiert den gespeicherten Datensatz eines Studenten.
// Der Name ist der Schlüssel im Dokumentenspeicher (keine Normalisierung,
// "Alice" und "alice" sind verschiedene Datensätze).
type StudentRecord struct {
	Name     string                 `json:"name"`
	Progress map[string]interface{} `json:"progress"`
	History  []HistoryTurn          `json:"history"`
}

// NewStudentRecord erstellt einen leeren Datensatz für einen Studenten.
// Ein fehlender Datensatz ist kein Fehler, sondern ein gültiger Zustand.
func NewStudentRecord(name string) *StudentRecord {
	return &StudentRecord{
		Name:     name,
		Progress: map[string]interface{}{},
		History:  []HistoryTurn{},
	}
}

// VideoResult repräsentiert ein empfohlenes Video (nicht persistiert)
type VideoResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// RecommendationStatus kennzeichnet das Ergebnis einer Videosuche
type RecommendationStatus string

const (
	RecommendationFound RecommendationStatus = "found"
	RecommendationEmpty RecommendationStatus = "empty"
	RecommendationError RecommendationStatus = "error"
)

// Recommendation ist das getypte Ergebnis der Videosuche. Statt eines
// Warn-Strings in der Ergebnisliste trägt der Status die Unterscheidung
// zwischen Treffern, "nichts gefunden" und Fehler.
type Recommendation struct {
	Status  RecommendationStatus `json:"status"`
	Videos  []VideoResult        `json:"videos,omitempty"`
	Message string               `json:"message,omitempty"`
}
