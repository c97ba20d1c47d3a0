package videogen

import (
	"context"
	"fmt"
	"strings"

	"github.com/replicate/replicate-go"

	"github.com/swipecast/vidgen/internal/config"
	"github.com/swipecast/vidgen/internal/logger"
)

// Generator submits asynchronous video generation jobs. The returned job ID is
// the durable handle; completion arrives later at the callback URL.
type Generator interface {
	Submit(ctx context.Context, prompt string, callbackURL string) (string, error)
}

type replicateGenerator struct {
	log         *logger.Logger
	client      *replicate.Client
	modelOwner  string
	modelName   string
	aspectRatio string
}

func NewReplicateGenerator(log *logger.Logger, cfg config.ReplicateConfig) (Generator, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, fmt.Errorf("missing replicate api token")
	}
	owner, name, ok := strings.Cut(cfg.Model, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("replicate model must be owner/name, got %q", cfg.Model)
	}

	client, err := replicate.NewClient(replicate.WithToken(cfg.APIToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create replicate client: %w", err)
	}

	return &replicateGenerator{
		log:         log.With("component", "replicate"),
		client:      client,
		modelOwner:  owner,
		modelName:   name,
		aspectRatio: cfg.AspectRatio,
	}, nil
}

func (g *replicateGenerator) Submit(ctx context.Context, prompt string, callbackURL string) (string, error) {
	input := replicate.PredictionInput{
		"prompt":       prompt,
		"loop":         false,
		"aspect_ratio": g.aspectRatio,
	}
	// Only the completed event class should hit the webhook; intermediate
	// progress events are noise for this pipeline.
	webhook := &replicate.Webhook{
		URL:    callbackURL,
		Events: []replicate.WebhookEventType{replicate.WebhookEventCompleted},
	}

	pred, err := g.client.CreatePredictionWithModel(ctx, g.modelOwner, g.modelName, input, webhook, false)
	if err != nil {
		return "", fmt.Errorf("create prediction: %w", err)
	}
	if pred == nil || pred.ID == "" {
		return "", fmt.Errorf("no prediction id returned")
	}

	g.log.Info("prediction created", "prediction_id", pred.ID, "model", g.modelOwner+"/"+g.modelName)
	return pred.ID, nil
}
