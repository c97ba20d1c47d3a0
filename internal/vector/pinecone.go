package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/swipecast/vidgen/internal/config"
	"github.com/swipecast/vidgen/internal/logger"
)

const apiVersion = "2024-10"

// Index is a nearest-neighbor store keyed by content identifier.
type Index interface {
	// Upsert writes one vector. The vector's length must match the index's
	// configured dimensionality; a mismatch fails this call only.
	Upsert(ctx context.Context, id string, values []float32, metadata map[string]any) error
}

type pineconeIndex struct {
	log       *logger.Logger
	http      *http.Client
	apiKey    string
	indexHost string
	namespace string
	dimension int
}

type indexDescription struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
}

type upsertVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace,omitempty"`
}

func NewPineconeIndex(ctx context.Context, log *logger.Logger, cfg config.PineconeConfig) (Index, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing pinecone api key")
	}
	if strings.TrimSpace(cfg.IndexName) == "" && strings.TrimSpace(cfg.IndexHost) == "" {
		return nil, fmt.Errorf("missing pinecone index name")
	}

	idx := &pineconeIndex{
		log:       log.With("component", "pinecone"),
		http:      &http.Client{Timeout: 30 * time.Second},
		apiKey:    cfg.APIKey,
		indexHost: strings.TrimSpace(cfg.IndexHost),
		namespace: cfg.Namespace,
		dimension: cfg.Dimension,
	}

	// Resolve the data-plane host via the control plane when not pinned in
	// config. Fine for dev; pin index_host in production.
	if idx.indexHost == "" {
		desc, err := idx.describeIndex(ctx, cfg.IndexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index: %w", err)
		}
		if desc.Host == "" {
			return nil, fmt.Errorf("pinecone describe_index returned empty host")
		}
		idx.indexHost = desc.Host
		idx.log.Warn("pinecone index host resolved via describe_index; set index_host in config for production",
			"index_name", cfg.IndexName,
			"index_host", desc.Host,
		)
	}

	return idx, nil
}

func (p *pineconeIndex) describeIndex(ctx context.Context, name string) (*indexDescription, error) {
	u := "https://api.pinecone.io/indexes/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	p.setHeaders(req)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(raw))
	}

	var out indexDescription
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}

func (p *pineconeIndex) Upsert(ctx context.Context, id string, values []float32, metadata map[string]any) error {
	if p.dimension > 0 && len(values) != p.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(values), p.dimension)
	}

	body, err := json.Marshal(upsertRequest{
		Vectors:   []upsertVector{{ID: id, Values: values, Metadata: metadata}},
		Namespace: p.namespace,
	})
	if err != nil {
		return err
	}

	u := "https://" + p.indexHost + "/vectors/upsert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone upsert http %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (p *pineconeIndex) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("X-Pinecone-Api-Version", apiVersion)
}
