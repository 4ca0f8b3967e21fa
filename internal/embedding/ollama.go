package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/logging"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

var log = logging.GetLogger("embedding")

// OllamaProvider is the reference Provider implementation, talking to
// a local Ollama daemon's embeddings endpoint.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewOllamaProvider builds an OllamaProvider from configuration,
// applying the documented nomic-embed-text defaults.
func NewOllamaProvider(cfg config.EmbeddingConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = 768
	}

	return &OllamaProvider{
		baseURL:    baseURL,
		model:      model,
		dimensions: dims,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// IsAvailable checks whether the Ollama daemon is reachable.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates a dense embedding for text via Ollama's /api/embeddings.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{Model: p.model, Prompt: text}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: p.Name(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	return embResp.Embedding, nil
}

// Dimensions returns the configured vector width.
func (p *OllamaProvider) Dimensions() int { return p.dimensions }

// Name identifies the provider for cache keys and diagnostics.
func (p *OllamaProvider) Name() string { return "ollama:" + p.model }

// ProviderUnavailableError wraps a transport-level failure reaching
// the embedding provider (spec §7 "EmbeddingProviderUnavailable").
type ProviderUnavailableError struct {
	Provider string
	Cause    error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("embedding provider %q unavailable: %v", e.Provider, e.Cause)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Cause }
