// Package patra publishes model cards to a Patra knowledge graph server.
package patra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"artifact-hub-service/internal/adapters/secondary/platforms/gitlfs"
	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/core/ports/output"
)

const (
	DefaultBaseURL = "https://patraserver.pods.icicleai.tapis.io"
	modelCardsPath = "/modelcards"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type modelCard struct {
	ID                 string            `json:"external_id"`
	Name               string            `json:"name"`
	Version            string            `json:"version,omitempty"`
	Framework          string            `json:"framework,omitempty"`
	ModelType          string            `json:"model_type,omitempty"`
	License            string            `json:"license,omitempty"`
	Keywords           []string          `json:"keywords,omitempty"`
	Categories         []string          `json:"categories,omitempty"`
	InferencePrecision string            `json:"inference_precision,omitempty"`
	Inputs             []domain.ModelIO  `json:"input_data,omitempty"`
	Outputs            []domain.ModelIO  `json:"output_data,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	Regulatory         []string          `json:"regulatory,omitempty"`
}

func toModelCard(m *domain.ModelMetadata) modelCard {
	return modelCard{
		ID:                 m.ArtifactID.String(),
		Name:               m.Name,
		Version:            m.Version,
		Framework:          m.Framework,
		ModelType:          m.ModelType,
		License:            m.License,
		Keywords:           m.Labels,
		Categories:         m.TaskTypes,
		InferencePrecision: m.InferencePrecision,
		Inputs:             m.ModelInputs,
		Outputs:            m.ModelOutputs,
		Attributes:         m.LabelMap,
		Regulatory:         m.Regulatory,
	}
}

// PublishModelMetadata posts the metadata as a model card.
func (c *Client) PublishModelMetadata(ctx context.Context, req ports.PublishArtifactRequest, metadata *domain.ModelMetadata) error {
	body, err := json.Marshal(toModelCard(metadata))
	if err != nil {
		return fmt.Errorf("marshal model card: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+modelCardsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token := gitlfs.BearerToken(req.Headers); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("patra request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("patra returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
