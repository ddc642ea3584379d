package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lerncoach/internal/config"
	"lerncoach/internal/llm"
	"lerncoach/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider liefert eine feste Antwort
type fakeProvider struct {
	reply string
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options *llm.GenerateOptions) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Content: f.reply, Model: "fake", Done: true}, nil
}

func (f *fakeProvider) GenerateStream(ctx context.Context, prompt string, options *llm.GenerateOptions) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 2)
	ch <- llm.StreamChunk{Content: f.reply}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.ChatMessage, options *llm.GenerateOptions) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Content: f.reply, Model: "fake", Done: true}, nil
}

func (f *fakeProvider) GetModels(ctx context.Context) ([]llm.ModelInfo, error) {
	return []llm.ModelInfo{{Name: "fake"}}, nil
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeProvider) GetName() string                      { return "Fake" }
func (f *fakeProvider) SetModel(model string)                {}
func (f *fakeProvider) GetCurrentModel() string              { return "fake" }

// fakeStorage hält Datensätze im Speicher
type fakeStorage struct {
	records map[string]*models.StudentRecord
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{records: map[string]*models.StudentRecord{}}
}

func (f *fakeStorage) GetStudent(ctx context.Context, name string) (*models.StudentRecord, error) {
	if record, ok := f.records[name]; ok {
		return record, nil
	}
	return models.NewStudentRecord(name), nil
}

func (f *fakeStorage) AppendHistoryTurn(ctx context.Context, name, userText, assistantText string) error {
	record, ok := f.records[name]
	if !ok {
		record = models.NewStudentRecord(name)
		f.records[name] = record
	}
	record.History = append(record.History, models.HistoryTurn{User: userText, Assistant: assistantText})
	return nil
}

func (f *fakeStorage) SetProgress(ctx context.Context, name string, patch map[string]interface{}) error {
	record, ok := f.records[name]
	if !ok {
		record = models.NewStudentRecord(name)
		f.records[name] = record
	}
	for k, v := range patch {
		record.Progress[k] = v
	}
	return nil
}

func (f *fakeStorage) Close() error { return nil }

// fakeRecommender merkt sich das angefragte Thema
type fakeRecommender struct {
	lastTopic string
	result    models.Recommendation
}

func (f *fakeRecommender) Recommend(ctx context.Context, topic string) models.Recommendation {
	f.lastTopic = topic
	return f.result
}

func newTestServer(t *testing.T, store *fakeStorage, rec Recommender) *httptest.Server {
	t.Helper()
	handler := NewHandler(store, &fakeProvider{reply: "Hier ist die Erklärung."}, rec, config.Default())
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestAskCoachValidation(t *testing.T) {
	server := newTestServer(t, newFakeStorage(), nil)

	resp, body := postJSON(t, server.URL+"/api/v1/coach", map[string]string{"name": "", "query": "explain"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Namen")

	resp, body = postJSON(t, server.URL+"/api/v1/coach", map[string]string{"name": "Alice", "query": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Frage")
}

func TestAskCoachWithFollowUpFetchesVideos(t *testing.T) {
	store := newFakeStorage()
	rec := &fakeRecommender{result: models.Recommendation{
		Status: models.RecommendationFound,
		Videos: []models.VideoResult{{Title: "Photosynthese einfach erklärt", URL: "https://www.youtube.com/watch?v=abc", Thumbnail: "https://img/1.jpg"}},
	}}
	server := newTestServer(t, store, rec)

	resp, body := postJSON(t, server.URL+"/api/v1/coach", map[string]string{
		"name":  "Alice",
		"query": "Explain photosynthesis",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hier ist die Erklärung.", body["reply"])
	assert.Equal(t, true, body["needs_follow_up"])

	// Thema ist die rohe Frage, keine Schlagwort-Extraktion
	assert.Equal(t, "Explain photosynthesis", rec.lastTopic)
	require.Contains(t, body, "videos")

	// Historie ist um genau einen Schritt gewachsen
	record, _ := store.GetStudent(context.Background(), "Alice")
	require.Len(t, record.History, 1)
	assert.Equal(t, "Explain photosynthesis", record.History[0].User)
}

func TestAskCoachWithoutFollowUpSkipsVideos(t *testing.T) {
	rec := &fakeRecommender{}
	server := newTestServer(t, newFakeStorage(), rec)

	resp, body := postJSON(t, server.URL+"/api/v1/coach", map[string]string{
		"name":  "Alice",
		"query": "What is photosynthesis?",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["needs_follow_up"])
	assert.NotContains(t, body, "videos")
	assert.Empty(t, rec.lastTopic)
}

func TestUpdateProgressDefaultsToTimestamp(t *testing.T) {
	store := newFakeStorage()
	store.SetProgress(context.Background(), "Alice", map[string]interface{}{"level": 2})
	server := newTestServer(t, store, nil)

	resp, body := postJSON(t, server.URL+"/api/v1/students/Alice/progress", map[string]interface{}{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Fortschritt aktualisiert!", body["message"])

	record, _ := store.GetStudent(context.Background(), "Alice")
	assert.Equal(t, 2, record.Progress["level"])

	lastUpdated, ok := record.Progress["last_updated"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, lastUpdated)
	assert.NoError(t, err)
}

func TestGetProgressEmptyStudent(t *testing.T) {
	server := newTestServer(t, newFakeStorage(), nil)

	resp, err := http.Get(server.URL + "/api/v1/students/Neu/progress")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Neu", body["name"])
	assert.Empty(t, body["progress"])
}

func TestGetStudentRefetchesFullRecord(t *testing.T) {
	store := newFakeStorage()
	store.AppendHistoryTurn(context.Background(), "Alice", "Frage", "Antwort")
	store.SetProgress(context.Background(), "Alice", map[string]interface{}{"level": 2})
	server := newTestServer(t, store, nil)

	resp, err := http.Get(server.URL + "/api/v1/students/Alice")
	require.NoError(t, err)
	defer resp.Body.Close()

	var record models.StudentRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "Alice", record.Name)
	require.Len(t, record.History, 1)
	assert.Equal(t, float64(2), record.Progress["level"])
}
