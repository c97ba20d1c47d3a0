package pipeline

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/swipecast/vidgen/internal/apierr"
	"github.com/swipecast/vidgen/internal/logger"
	"github.com/swipecast/vidgen/internal/videogen"
)

// WebhookPath is where the generation provider delivers completion callbacks.
const WebhookPath = "/webhooks/generation"

// Dispatcher submits a synthesized prompt for asynchronous video generation.
// The prompt travels to the completion handler inside the callback URL's query
// string; there is no durable record of in-flight jobs.
type Dispatcher struct {
	log           *logger.Logger
	generator     videogen.Generator
	publicBaseURL string
}

func NewDispatcher(log *logger.Logger, gen videogen.Generator, publicBaseURL string) *Dispatcher {
	return &Dispatcher{
		log:           log.With("component", "dispatcher"),
		generator:     gen,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Dispatch returns the provider's job handle without waiting for generation to
// finish.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (string, error) {
	if d.publicBaseURL == "" {
		return "", apierr.Upstream("webhook_base_unset", errors.New("server public base url not configured"))
	}
	callback := d.publicBaseURL + WebhookPath + "?prompt=" + url.QueryEscape(prompt)

	predictionID, err := d.generator.Submit(ctx, prompt, callback)
	if err != nil {
		return "", apierr.Upstream("generation_submit_failed", err)
	}

	d.log.Info("generation dispatched", "prediction_id", predictionID)
	return predictionID, nil
}
