package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clipbot/curation"
	"clipbot/pipeline"
)

// APIClient is a thin HTTP client for the clipbot API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the pipeline status.
func (c *APIClient) GetStatus() (*pipeline.Status, error) {
	var status pipeline.Status
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetCuration fetches the curation summary. A missing session returns nil, nil.
func (c *APIClient) GetCuration() (*curation.Summary, error) {
	var body struct {
		Summary curation.Summary `json:"summary"`
	}
	err := c.get("/api/curation", &body)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &body.Summary, nil
}

// Start triggers a run with the given profile ("" uses the server default).
func (c *APIClient) Start(profile string) error {
	payload, _ := json.Marshal(pipeline.Request{Profile: profile})
	return c.post("/api/run", payload, http.StatusAccepted)
}

func (c *APIClient) ApproveCuration() error {
	return c.post("/api/curation/approve", nil, http.StatusOK)
}

func (c *APIClient) CancelCuration() error {
	return c.post("/api/curation/cancel", nil, http.StatusOK)
}

var errNotFound = fmt.Errorf("not found")

func (c *APIClient) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *APIClient) post(path string, payload []byte, want int) error {
	if payload == nil {
		payload = []byte("{}")
	}
	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
