package pipeline

import (
	"context"

	"github.com/swipecast/vidgen/internal/catalog"
)

type MockStore struct {
	Swipes    []catalog.Swipe
	SwipesErr error

	Videos    map[string]catalog.Video
	VideosErr error

	PutVideos []catalog.Video
	PutErr    error

	Recent    []catalog.Video
	RecentErr error

	BatchGetCalls int
}

func (m *MockStore) SwipesByUser(ctx context.Context, userID string) ([]catalog.Swipe, error) {
	if m.SwipesErr != nil {
		return nil, m.SwipesErr
	}
	return m.Swipes, nil
}

func (m *MockStore) VideosByIDs(ctx context.Context, ids []string) (map[string]catalog.Video, error) {
	m.BatchGetCalls++
	if m.VideosErr != nil {
		return nil, m.VideosErr
	}
	out := make(map[string]catalog.Video, len(ids))
	for _, id := range ids {
		if v, ok := m.Videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *MockStore) PutVideo(ctx context.Context, v catalog.Video) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.PutVideos = append(m.PutVideos, v)
	return nil
}

func (m *MockStore) RecentVideos(ctx context.Context, limit int) ([]catalog.Video, error) {
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	return m.Recent, nil
}

type MockLLM struct {
	Response   string
	Err        error
	LastSystem string
	LastUser   string
}

func (m *MockLLM) Complete(ctx context.Context, system string, user string) (string, error) {
	m.LastSystem = system
	m.LastUser = user
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockEmbedder struct {
	Vector []float32
	Err    error
	Calls  int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string, dimensions int) ([]float32, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

type MockIndex struct {
	Err     error
	Upserts []string
}

func (m *MockIndex) Upsert(ctx context.Context, id string, values []float32, metadata map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Upserts = append(m.Upserts, id)
	return nil
}

type MockObjectStore struct {
	Err     error
	URL     string
	Uploads []string
}

func (m *MockObjectStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Uploads = append(m.Uploads, path)
	if m.URL != "" {
		return m.URL, nil
	}
	return "https://cdn.example.com/" + path, nil
}

type MockGenerator struct {
	PredictionID string
	Err          error
	LastPrompt   string
	LastCallback string
}

func (m *MockGenerator) Submit(ctx context.Context, prompt string, callbackURL string) (string, error) {
	m.LastPrompt = prompt
	m.LastCallback = callbackURL
	if m.Err != nil {
		return "", m.Err
	}
	return m.PredictionID, nil
}
