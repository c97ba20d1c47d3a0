package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipecast/vidgen/internal/apierr"
	"github.com/swipecast/vidgen/internal/catalog"
	"github.com/swipecast/vidgen/internal/logger"
)

type completionFixture struct {
	store    *MockStore
	objects  *MockObjectStore
	embedder *MockEmbedder
	index    *MockIndex
	handler  *Completion
	server   *httptest.Server
}

func newCompletionFixture(t *testing.T, videoBytes []byte, maxBytes int64) *completionFixture {
	t.Helper()

	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(videoBytes)
	}))
	t.Cleanup(ts.Close)

	f := &completionFixture{
		store:    &MockStore{},
		objects:  &MockObjectStore{},
		embedder: &MockEmbedder{Vector: []float32{0.1, 0.2}},
		index:    &MockIndex{},
		server:   ts,
	}
	f.handler = NewCompletion(logger.NewNop(), f.store, f.objects, f.embedder, f.index, "generated", maxBytes, 2)
	f.handler.SetHTTPClient(ts.Client())
	return f
}

func TestHandleMissingID(t *testing.T) {
	f := newCompletionFixture(t, []byte("video"), 1<<20)

	_, err := f.handler.Handle(context.Background(), CompletionPayload{Status: "succeeded"})

	require.Error(t, err)
	ae := apierr.From(err)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "missing_id", ae.Code)
}

func TestHandleStartingIsAcknowledgedWithoutSideEffects(t *testing.T) {
	f := newCompletionFixture(t, []byte("video"), 1<<20)

	result, err := f.handler.Handle(context.Background(), CompletionPayload{ID: "p1", Status: "starting"})

	require.NoError(t, err)
	assert.Equal(t, StatusStarting, result.Status)
	assert.Empty(t, f.objects.Uploads)
	assert.Empty(t, f.store.PutVideos)
	assert.Empty(t, f.index.Upserts)
}

func TestHandleFailedIsAcknowledgedWithoutSideEffects(t *testing.T) {
	f := newCompletionFixture(t, []byte("video"), 1<<20)

	result, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "failed",
		Error:  "NSFW content detected",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "NSFW content detected", result.Error)
	assert.Empty(t, f.objects.Uploads)
	assert.Empty(t, f.store.PutVideos)
}

func TestHandleRejectsNonHTTPSOutputBeforeDownload(t *testing.T) {
	f := newCompletionFixture(t, []byte("video"), 1<<20)

	_, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: "http://example.com/v.mp4",
	})

	require.Error(t, err)
	ae := apierr.From(err)
	assert.Equal(t, "invalid_output", ae.Code)
	assert.Empty(t, f.objects.Uploads)
	assert.Empty(t, f.store.PutVideos)
}

func TestHandleRejectsMalformedOutput(t *testing.T) {
	f := newCompletionFixture(t, []byte("video"), 1<<20)

	for _, output := range []any{nil, 42, []any{}, []any{7}} {
		_, err := f.handler.Handle(context.Background(), CompletionPayload{
			ID:     "p1",
			Status: "succeeded",
			Output: output,
		})
		require.Error(t, err)
		assert.Equal(t, "invalid_output", apierr.From(err).Code)
	}
}

func TestHandleSucceededPersists(t *testing.T) {
	f := newCompletionFixture(t, []byte("fake mp4 bytes"), 1<<20)

	result, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "pred-123",
		Status: "succeeded",
		Output: f.server.URL + "/v.mp4",
		Prompt: "a calm golden-hour video",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, "pred-123.mp4", result.VideoID)
	assert.Equal(t, "https://cdn.example.com/generated/pred-123.mp4", result.VideoURL)

	require.Len(t, f.objects.Uploads, 1)
	assert.Equal(t, "generated/pred-123.mp4", f.objects.Uploads[0])

	require.Len(t, f.store.PutVideos, 1)
	v := f.store.PutVideos[0]
	assert.Equal(t, "pred-123.mp4", v.ID)
	assert.Equal(t, "pred-123", v.Title)
	assert.Equal(t, "a calm golden-hour video", v.Description)
	assert.Equal(t, GeneratedCreatorID, v.CreatorID)
	assert.True(t, v.IsGenerated)
	assert.Equal(t, catalog.Stats{}, v.Stats)

	require.Len(t, f.index.Upserts, 1)
	assert.Equal(t, "pred-123.mp4", f.index.Upserts[0])
}

func TestHandleAcceptsListOutput(t *testing.T) {
	f := newCompletionFixture(t, []byte("fake mp4 bytes"), 1<<20)

	result, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: []any{f.server.URL + "/v.mp4", "https://example.com/ignored.mp4"},
		Prompt: "p",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1.mp4", result.VideoID)
}

func TestHandleEnforcesSizeCeiling(t *testing.T) {
	f := newCompletionFixture(t, make([]byte, 64), 32)

	_, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: f.server.URL + "/v.mp4",
	})

	require.Error(t, err)
	assert.Equal(t, "video_too_large", apierr.From(err).Code)
	assert.Empty(t, f.objects.Uploads)
	assert.Empty(t, f.store.PutVideos)
}

func TestHandleDownloadFailureAborts(t *testing.T) {
	f := newCompletionFixture(t, nil, 1<<20)
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)
	f.handler.SetHTTPClient(ts.Client())

	_, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: ts.URL + "/v.mp4",
	})

	require.Error(t, err)
	assert.Equal(t, "download_failed", apierr.From(err).Code)
	assert.Empty(t, f.objects.Uploads)
	assert.Empty(t, f.store.PutVideos)
}

// Indexing is best effort: a vector upsert failure must not fail the request
// once the video and catalog entry are durable.
func TestHandleVectorFailureDoesNotFailRequest(t *testing.T) {
	f := newCompletionFixture(t, []byte("fake mp4 bytes"), 1<<20)
	f.index.Err = assert.AnError

	result, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: f.server.URL + "/v.mp4",
		Prompt: "p",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1.mp4", result.VideoID)
	assert.NotEmpty(t, result.VideoURL)
	require.Len(t, f.store.PutVideos, 1)
}

func TestHandleEmbedderUnavailableDoesNotFailRequest(t *testing.T) {
	f := newCompletionFixture(t, []byte("fake mp4 bytes"), 1<<20)
	f.handler.embedder = nil

	result, err := f.handler.Handle(context.Background(), CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: f.server.URL + "/v.mp4",
		Prompt: "p",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1.mp4", result.VideoID)
	assert.Empty(t, f.index.Upserts)
}

// Replayed callbacks are not deduplicated: the second delivery re-uploads and
// re-writes the same object and document. This asserts the current behavior,
// not a desirable contract.
func TestHandleReplayedCallbackWritesTwice(t *testing.T) {
	f := newCompletionFixture(t, []byte("fake mp4 bytes"), 1<<20)

	payload := CompletionPayload{
		ID:     "p1",
		Status: "succeeded",
		Output: f.server.URL + "/v.mp4",
		Prompt: "p",
	}

	_, err := f.handler.Handle(context.Background(), payload)
	require.NoError(t, err)
	_, err = f.handler.Handle(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, []string{"generated/p1.mp4", "generated/p1.mp4"}, f.objects.Uploads)
	require.Len(t, f.store.PutVideos, 2)
	assert.Equal(t, f.store.PutVideos[0].ID, f.store.PutVideos[1].ID)
	assert.Equal(t, []string{"p1.mp4", "p1.mp4"}, f.index.Upserts)
}
