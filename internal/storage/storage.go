package storage

import (
	"context"

	"lerncoach/internal/models"
)

// Storage definiert das Interface für den Studenten-Dokumentenspeicher.
// Schlüssel ist der rohe Studentenname.
type Storage interface {
	// GetStudent liefert den Datensatz eines Studenten. Existiert keiner,
	// wird ein leerer Datensatz zurückgegeben - kein Fehler.
	GetStudent(ctx context.Context, name string) (*models.StudentRecord, error)

	// AppendHistoryTurn hängt einen Gesprächsschritt an die Historie an.
	// Die Historie ist append-only, bestehende Einträge werden nie verändert.
	AppendHistoryTurn(ctx context.Context, name, userText, assistantText string) error

	// SetProgress merge-schreibt die übergebenen Schlüssel in den Fortschritt.
	// Andere Fortschritts-Schlüssel und die Historie bleiben unberührt.
	SetProgress(ctx context.Context, name string, patch map[string]interface{}) error

	Close() error
}
