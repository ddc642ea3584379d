package storage

import (
	"context"
	"fmt"

	"lerncoach/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// studentsCollection ist die Firestore-Collection für Studenten-Datensätze
const studentsCollection = "students"

// FirestoreStorage implementiert Storage mit Google Cloud Firestore.
// Jeder Student ist ein Dokument unter "students", Schlüssel ist der Name.
//
// Bekannte Einschränkung: AppendHistoryTurn liest und schreibt das komplette
// history-Array zurück (read-modify-write). Schreiben zwei gleichzeitige
// Sitzungen für denselben Namen, gewinnt der letzte Schreiber.
type FirestoreStorage struct {
	client *firestore.Client
}

type firestoreRecord struct {
	Progress map[string]interface{} `firestore:"progress"`
	History  []models.HistoryTurn   `firestore:"history"`
}

// NewFirestoreStorage erstellt eine neue Firestore-Storage-Instanz
func NewFirestoreStorage(ctx context.Context, projectID string) (*FirestoreStorage, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore-projekt fehlt in der konfiguration")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore-client konnte nicht erstellt werden: %w", err)
	}
	return &FirestoreStorage{client: client}, nil
}

func (f *FirestoreStorage) Close() error {
	return f.client.Close()
}

func (f *FirestoreStorage) GetStudent(ctx context.Context, name string) (*models.StudentRecord, error) {
	record := models.NewStudentRecord(name)

	snap, err := f.client.Collection(studentsCollection).Doc(name).Get(ctx)
	if status.Code(err) == codes.NotFound {
		// Kein Dokument: leerer Datensatz, kein Fehler
		return record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("firestore-lesefehler: %w", err)
	}

	var data firestoreRecord
	if err := snap.DataTo(&data); err != nil {
		return nil, fmt.Errorf("firestore-datensatz ungültig: %w", err)
	}
	if data.Progress != nil {
		record.Progress = data.Progress
	}
	if data.History != nil {
		record.History = data.History
	}
	return record, nil
}

func (f *FirestoreStorage) AppendHistoryTurn(ctx context.Context, name, userText, assistantText string) error {
	record, err := f.GetStudent(ctx, name)
	if err != nil {
		return err
	}

	history := append(record.History, models.HistoryTurn{
		User:      userText,
		Assistant: assistantText,
	})

	// Merge-Write: nur das history-Feld, progress bleibt unberührt
	_, err = f.client.Collection(studentsCollection).Doc(name).Set(ctx, map[string]interface{}{
		"history": history,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore-schreibfehler: %w", err)
	}
	return nil
}

func (f *FirestoreStorage) SetProgress(ctx context.Context, name string, patch map[string]interface{}) error {
	// Merge-Write: nur die übergebenen Fortschritts-Schlüssel,
	// andere Schlüssel und die Historie bleiben erhalten
	_, err := f.client.Collection(studentsCollection).Doc(name).Set(ctx, map[string]interface{}{
		"progress": patch,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore-schreibfehler: %w", err)
	}
	return nil
}
