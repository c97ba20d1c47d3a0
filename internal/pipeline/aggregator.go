package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/swipecast/vidgen/internal/apierr"
	"github.com/swipecast/vidgen/internal/catalog"
	"github.com/swipecast/vidgen/internal/llm"
	"github.com/swipecast/vidgen/internal/logger"
)

// Aggregator turns a user's swipe history into a single-paragraph prompt for a
// new video that user is likely to enjoy. It persists nothing.
type Aggregator struct {
	log             *logger.Logger
	store           catalog.Store
	llm             llm.Client
	systemPrompt    string
	maxDescriptions int
}

// AggregateResult carries the synthesized prompt plus the debug counters the
// dispatch response echoes back to the caller.
type AggregateResult struct {
	Prompt               string
	ProcessedSwipes      int
	ValidSwipes          int
	LikedDescriptions    int
	DislikedDescriptions int
}

func NewAggregator(log *logger.Logger, store catalog.Store, client llm.Client, systemPrompt string, maxDescriptions int) *Aggregator {
	if maxDescriptions <= 0 {
		maxDescriptions = 50
	}
	return &Aggregator{
		log:             log.With("component", "aggregator"),
		store:           store,
		llm:             client,
		systemPrompt:    systemPrompt,
		maxDescriptions: maxDescriptions,
	}
}

func (a *Aggregator) BuildPrompt(ctx context.Context, userID string) (*AggregateResult, error) {
	swipes, err := a.store.SwipesByUser(ctx, userID)
	if err != nil {
		return nil, apierr.Upstream("swipes_fetch_failed", err)
	}
	if len(swipes) == 0 {
		return nil, apierr.NotFound("no_swipes", errors.New("no swipes found for user"))
	}

	valid := make([]catalog.Swipe, 0, len(swipes))
	for _, sw := range swipes {
		if sw.Valid() {
			valid = append(valid, sw)
		}
	}
	if len(valid) == 0 {
		return nil, apierr.NotFound("no_valid_swipes", errors.New("no valid swipes"))
	}

	// Oldest first, so tail truncation below keeps the most recent entries.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].CreatedAt.Before(valid[j].CreatedAt)
	})

	weights := make(map[string]int, len(valid))
	distinct := make([]string, 0, len(valid))
	for _, sw := range valid {
		if _, seen := weights[sw.VideoID]; !seen {
			distinct = append(distinct, sw.VideoID)
		}
		if sw.Direction == catalog.DirectionRight {
			weights[sw.VideoID]++
		} else {
			weights[sw.VideoID]--
		}
	}
	a.log.Debug("swipe weights accumulated", "user_id", userID, "distinct_videos", len(distinct))

	videos, err := a.store.VideosByIDs(ctx, distinct)
	if err != nil {
		return nil, apierr.Upstream("videos_fetch_failed", err)
	}

	// Partition per swipe, not per net weight: a video swiped both ways
	// contributes its description to both lists.
	var liked, disliked []string
	for _, sw := range valid {
		v, ok := videos[sw.VideoID]
		if !ok || strings.TrimSpace(v.Description) == "" {
			continue
		}
		if sw.Direction == catalog.DirectionRight {
			liked = append(liked, v.Description)
		} else {
			disliked = append(disliked, v.Description)
		}
	}

	liked = tail(liked, a.maxDescriptions)
	disliked = tail(disliked, a.maxDescriptions)

	result := &AggregateResult{
		ProcessedSwipes:      len(swipes),
		ValidSwipes:          len(valid),
		LikedDescriptions:    len(liked),
		DislikedDescriptions: len(disliked),
	}

	completion, err := a.llm.Complete(ctx, a.systemPrompt, userMessage(liked, disliked))
	if err != nil {
		return nil, apierr.Upstream("completion_failed", err)
	}
	completion = strings.TrimSpace(completion)
	if completion == "" {
		return nil, apierr.Upstream("empty_completion", errors.New("model returned an empty completion"))
	}

	result.Prompt = completion
	return result, nil
}

func userMessage(liked, disliked []string) string {
	var b strings.Builder
	b.WriteString("Videos the viewer liked:\n")
	writeList(&b, liked)
	b.WriteString("\nVideos the viewer disliked:\n")
	writeList(&b, disliked)
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- (none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// tail returns at most n items from the end of s.
func tail(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
