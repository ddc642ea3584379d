package video

import (
	"context"
	"fmt"
	"log"

	"lerncoach/internal/models"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// watchURLFormat ist die kanonische Video-URL, gebaut aus der Video-ID
const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// Recommender sucht passende YouTube-Videos zu einem Thema
type Recommender struct {
	service    *youtube.Service
	maxResults int64
}

// NewRecommender erstellt einen neuen Video-Recommender. Zusätzliche
// ClientOptions (z.B. Endpoint-Override) werden für Tests durchgereicht.
func NewRecommender(ctx context.Context, apiKey string, maxResults int64, opts ...option.ClientOption) (*Recommender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("kein YOUTUBE_API_KEY gesetzt")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	allOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("youtube-client konnte nicht erstellt werden: %w", err)
	}

	return &Recommender{
		service:    service,
		maxResults: maxResults,
	}, nil
}

// Recommend sucht die meistgesehenen einbettbaren Videos zum Thema.
// Fehler brechen die Interaktion nicht ab, sondern landen als getypter
// Fehler-Status im Ergebnis - die UI zeigt die Meldung an.
func (r *Recommender) Recommend(ctx context.Context, topic string) models.Recommendation {
	call := r.service.Search.List([]string{"snippet"}).
		Q(topic).
		MaxResults(r.maxResults).
		Type("video").
		Order("viewCount").
		VideoEmbeddable("true")

	resp, err := call.Context(ctx).Do()
	if err != nil {
		log.Printf("   [Video] ❌ YouTube-API-Fehler: %v", err)
		return models.Recommendation{
			Status:  models.RecommendationError,
			Message: fmt.Sprintf("YouTube-API-Fehler: %v", err),
			// Platzhalter-Eintrag für den Render-Pfad der UI
			Videos: []models.VideoResult{{Title: "⚠️ YouTube-API-Fehler", URL: "#", Thumbnail: ""}},
		}
	}

	var videos []models.VideoResult
	for _, item := range resp.Items {
		// Einträge ohne Video-ID überspringen
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}

		thumbnail := ""
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
			thumbnail = item.Snippet.Thumbnails.Medium.Url
		}

		videos = append(videos, models.VideoResult{
			Title:     item.Snippet.Title,
			URL:       fmt.Sprintf(watchURLFormat, item.Id.VideoId),
			Thumbnail: thumbnail,
		})
	}

	if len(videos) == 0 {
		return models.Recommendation{
			Status:  models.RecommendationEmpty,
			Message: "⚠️ Keine Videos gefunden. Versuche ein anderes Thema.",
		}
	}

	return models.Recommendation{
		Status: models.RecommendationFound,
		Videos: videos,
	}
}
