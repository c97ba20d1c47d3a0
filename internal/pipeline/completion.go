package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/swipecast/vidgen/internal/apierr"
	"github.com/swipecast/vidgen/internal/catalog"
	"github.com/swipecast/vidgen/internal/llm"
	"github.com/swipecast/vidgen/internal/logger"
	"github.com/swipecast/vidgen/internal/storage"
	"github.com/swipecast/vidgen/internal/vector"
)

const videoExtension = ".mp4"

// GeneratedCreatorID attributes completion-handler catalog writes.
const GeneratedCreatorID = "system"

// CompletionPayload is the provider's callback body. Prompt is recovered from
// the callback URL's query parameter, merged in by the HTTP layer.
type CompletionPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  string `json:"error,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// CompletionResult describes how a callback was handled. VideoID and VideoURL
// are set only when the persistence pipeline ran.
type CompletionResult struct {
	Status   Status
	Error    string
	VideoID  string
	VideoURL string
}

// Completion processes provider callbacks statelessly: each call is driven
// purely by its own payload, with no persisted job record and no replay
// detection. A replayed succeeded callback overwrites the same object and
// document.
type Completion struct {
	log          *logger.Logger
	store        catalog.Store
	objects      storage.ObjectStore
	embedder     llm.Embedder
	index        vector.Index
	http         *http.Client
	objectPrefix string
	maxBytes     int64
	dimension    int
}

func NewCompletion(
	log *logger.Logger,
	store catalog.Store,
	objects storage.ObjectStore,
	embedder llm.Embedder,
	index vector.Index,
	objectPrefix string,
	maxBytes int64,
	dimension int,
) *Completion {
	if maxBytes <= 0 {
		maxBytes = 100 * 1024 * 1024
	}
	return &Completion{
		log:          log.With("component", "completion"),
		store:        store,
		objects:      objects,
		embedder:     embedder,
		index:        index,
		http:         &http.Client{Timeout: 5 * time.Minute},
		objectPrefix: strings.Trim(objectPrefix, "/"),
		maxBytes:     maxBytes,
		dimension:    dimension,
	}
}

// SetHTTPClient overrides the download client, for tests and callers that
// need custom transport settings.
func (c *Completion) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Handle routes the callback by status. Any error it returns occurred before
// catalog persistence; once the video and document are written the call
// succeeds even if indexing fails.
func (c *Completion) Handle(ctx context.Context, p CompletionPayload) (*CompletionResult, error) {
	if p.ID == "" {
		return nil, apierr.BadRequest("missing_id", errors.New("missing prediction id"))
	}

	status := ParseStatus(p.Status)
	switch status {
	case StatusStarting, StatusInProgress:
		c.log.Debug("generation in progress", "prediction_id", p.ID, "status", p.Status)
		return &CompletionResult{Status: status}, nil
	case StatusFailed:
		c.log.Warn("generation failed", "prediction_id", p.ID, "status", p.Status, "provider_error", p.Error)
		return &CompletionResult{Status: status, Error: p.Error}, nil
	case StatusSucceeded:
		return c.persist(ctx, p)
	default:
		return &CompletionResult{Status: status}, nil
	}
}

func (c *Completion) persist(ctx context.Context, p CompletionPayload) (*CompletionResult, error) {
	outputURL, err := extractOutputURL(p.Output)
	if err != nil {
		return nil, err
	}

	data, err := c.download(ctx, outputURL)
	if err != nil {
		return nil, err
	}

	videoID := p.ID + videoExtension
	objectPath := videoID
	if c.objectPrefix != "" {
		objectPath = c.objectPrefix + "/" + videoID
	}

	videoURL, err := c.objects.Upload(ctx, objectPath, data, "video/mp4")
	if err != nil {
		return nil, apierr.Upstream("storage_upload_failed", err)
	}

	video := catalog.Video{
		ID:          videoID,
		Description: p.Prompt,
		CreatorID:   GeneratedCreatorID,
		DisplayName: "vidgen",
		Title:       strings.TrimSuffix(videoID, videoExtension),
		VideoURL:    videoURL,
		IsGenerated: true,
	}
	if err := c.store.PutVideo(ctx, video); err != nil {
		return nil, apierr.Upstream("catalog_write_failed", err)
	}

	// Best effort from here on: the video and catalog entry are durable, which
	// is the success condition. Indexing failures must not fail the request.
	if err := c.indexPrompt(ctx, videoID, p.Prompt); err != nil {
		c.log.Warn("vector indexing skipped", "video_id", videoID, "error", err)
	}

	c.log.Info("generated video persisted", "video_id", videoID, "video_url", videoURL, "bytes", len(data))
	return &CompletionResult{Status: StatusSucceeded, VideoID: videoID, VideoURL: videoURL}, nil
}

func (c *Completion) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apierr.Upstream("download_request_failed", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierr.Upstream("download_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierr.Upstream("download_failed", fmt.Errorf("video download http %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, apierr.Upstream("download_failed", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, apierr.PayloadTooLarge("video_too_large", fmt.Errorf("video exceeds %d byte limit", c.maxBytes))
	}
	return data, nil
}

func (c *Completion) indexPrompt(ctx context.Context, videoID string, prompt string) error {
	if c.index == nil {
		return errors.New("vector index not configured")
	}
	if c.embedder == nil {
		return errors.New("embedding model not available for configured provider")
	}
	if strings.TrimSpace(prompt) == "" {
		return errors.New("empty prompt, nothing to index")
	}

	vec, err := c.embedder.Embed(ctx, prompt, c.dimension)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	metadata := map[string]any{
		"description":  prompt,
		"is_generated": true,
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.index.Upsert(ctx, videoID, vec, metadata); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// extractOutputURL accepts the provider's output as either a single string or
// the first element of a list, and requires an https scheme.
func extractOutputURL(output any) (string, error) {
	var raw string
	switch v := output.(type) {
	case string:
		raw = v
	case []any:
		if len(v) == 0 {
			return "", apierr.Upstream("invalid_output", errors.New("invalid output format: empty list"))
		}
		s, ok := v[0].(string)
		if !ok {
			return "", apierr.Upstream("invalid_output", errors.New("invalid output format: non-string list element"))
		}
		raw = s
	default:
		return "", apierr.Upstream("invalid_output", errors.New("invalid output format"))
	}

	if !strings.HasPrefix(raw, "https://") {
		return "", apierr.Upstream("invalid_output", fmt.Errorf("output url must be https, got %q", raw))
	}
	return raw, nil
}
