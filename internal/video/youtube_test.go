package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lerncoach/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestRecommender(t *testing.T, handler http.HandlerFunc) *Recommender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec, err := NewRecommender(context.Background(), "test-key", 3,
		option.WithEndpoint(server.URL))
	require.NoError(t, err)
	return rec
}

func TestRecommendReturnsVideos(t *testing.T) {
	var gotQuery string
	rec := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "viewCount", r.URL.Query().Get("order"))
		assert.Equal(t, "true", r.URL.Query().Get("videoEmbeddable"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":{"videoId":"abc"},"snippet":{"title":"Video Eins","thumbnails":{"medium":{"url":"https://img/1.jpg"}}}},
			{"id":{"videoId":"def"},"snippet":{"title":"Video Zwei","thumbnails":{"medium":{"url":"https://img/2.jpg"}}}}
		]}`))
	})

	result := rec.Recommend(context.Background(), "Explain photosynthesis")

	assert.Equal(t, "Explain photosynthesis", gotQuery)
	assert.Equal(t, models.RecommendationFound, result.Status)
	require.Len(t, result.Videos, 2)
	assert.Equal(t, "Video Eins", result.Videos[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", result.Videos[0].URL)
	assert.Equal(t, "https://img/1.jpg", result.Videos[0].Thumbnail)
}

func TestRecommendSkipsItemsWithoutVideoID(t *testing.T) {
	rec := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":{"videoId":"abc"},"snippet":{"title":"Mit ID","thumbnails":{"medium":{"url":"https://img/1.jpg"}}}},
			{"id":{"channelId":"kanal"},"snippet":{"title":"Ohne Video-ID"}}
		]}`))
	})

	result := rec.Recommend(context.Background(), "thema")

	assert.Equal(t, models.RecommendationFound, result.Status)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "Mit ID", result.Videos[0].Title)
}

func TestRecommendEmptyResult(t *testing.T) {
	rec := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	})

	result := rec.Recommend(context.Background(), "sehr obskures thema")

	// Getypter Leer-Status statt Warn-String in der Ergebnisliste
	assert.Equal(t, models.RecommendationEmpty, result.Status)
	assert.Empty(t, result.Videos)
	assert.NotEmpty(t, result.Message)
}

func TestRecommendAPIError(t *testing.T) {
	rec := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaputt", http.StatusInternalServerError)
	})

	result := rec.Recommend(context.Background(), "thema")

	assert.Equal(t, models.RecommendationError, result.Status)
	assert.NotEmpty(t, result.Message)
	// Platzhalter-Eintrag für den Render-Pfad
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "#", result.Videos[0].URL)
	assert.Empty(t, result.Videos[0].Thumbnail)
}

func TestRecommendRequiresAPIKey(t *testing.T) {
	_, err := NewRecommender(context.Background(), "", 3)
	assert.Error(t, err)
}
