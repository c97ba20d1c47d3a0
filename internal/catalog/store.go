package catalog

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/swipecast/vidgen/internal/config"
	"github.com/swipecast/vidgen/internal/logger"
)

// Store is the document-store surface the pipeline needs. Reads are strongly
// consistent per document.
type Store interface {
	SwipesByUser(ctx context.Context, userID string) ([]Swipe, error)
	// VideosByIDs fetches the given documents in a single batched multi-get.
	// Missing documents are absent from the result, not an error.
	VideosByIDs(ctx context.Context, ids []string) (map[string]Video, error)
	PutVideo(ctx context.Context, v Video) error
	RecentVideos(ctx context.Context, limit int) ([]Video, error)
}

type firestoreStore struct {
	log    *logger.Logger
	client *firestore.Client
	swipes string
	videos string
}

func NewFirestoreStore(ctx context.Context, log *logger.Logger, cfg config.FirestoreConfig) (Store, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("missing firestore project id")
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &firestoreStore{
		log:    log.With("component", "firestore"),
		client: client,
		swipes: cfg.SwipesCollection,
		videos: cfg.VideosCollection,
	}, nil
}

func (s *firestoreStore) SwipesByUser(ctx context.Context, userID string) ([]Swipe, error) {
	iter := s.client.Collection(s.swipes).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var out []Swipe
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("swipes query: %w", err)
		}
		var sw Swipe
		if err := doc.DataTo(&sw); err != nil {
			s.log.Warn("skipping malformed swipe document", "doc_id", doc.Ref.ID, "error", err)
			continue
		}
		out = append(out, sw)
	}
	return out, nil
}

func (s *firestoreStore) VideosByIDs(ctx context.Context, ids []string) (map[string]Video, error) {
	if len(ids) == 0 {
		return map[string]Video{}, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.client.Collection(s.videos).Doc(id))
	}
	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("videos batch get: %w", err)
	}

	out := make(map[string]Video, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var v Video
		if err := snap.DataTo(&v); err != nil {
			s.log.Warn("skipping malformed video document", "doc_id", snap.Ref.ID, "error", err)
			continue
		}
		v.ID = snap.Ref.ID
		out[v.ID] = v
	}
	return out, nil
}

func (s *firestoreStore) PutVideo(ctx context.Context, v Video) error {
	if v.ID == "" {
		return fmt.Errorf("video id required")
	}
	if _, err := s.client.Collection(s.videos).Doc(v.ID).Set(ctx, v); err != nil {
		return fmt.Errorf("video write: %w", err)
	}
	return nil
}

func (s *firestoreStore) RecentVideos(ctx context.Context, limit int) ([]Video, error) {
	iter := s.client.Collection(s.videos).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []Video
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("videos query: %w", err)
		}
		var v Video
		if err := doc.DataTo(&v); err != nil {
			s.log.Warn("skipping malformed video document", "doc_id", doc.Ref.ID, "error", err)
			continue
		}
		v.ID = doc.Ref.ID
		out = append(out, v)
	}
	return out, nil
}
