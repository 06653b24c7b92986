// Package gemini is a thin client for the Google generative-AI file and
// content endpoints, covering the two calls the subtitle pipeline needs.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"srtbot/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"

	// Media uploads and generation over large files are slow.
	requestTimeout = 120 * time.Second

	uploadDisplayName = "media_file"

	subtitlePrompt = "Transcribe this audio/video and return accurate subtitles in SRT format. " +
		"Include timestamps. Return ONLY the raw SRT text without any markdown formatting or code blocks."
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// UploadFile stages raw media bytes and returns the opaque file URI
// assigned by the API. Any response without a URI is a hard failure.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	meta, err := w.CreatePart(partHeader("metadata", "metadata", "application/json"))
	if err != nil {
		return "", fmt.Errorf("failed to create metadata part: %w", err)
	}
	metadata := map[string]any{"file": map[string]any{"displayName": uploadDisplayName}}
	if err := json.NewEncoder(meta).Encode(metadata); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	file, err := w.CreatePart(partHeader("file", uploadDisplayName, mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file part: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/upload/v1beta/files", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")
	// Transport errors quote the request URL, so the key must never
	// appear in it.
	req.Header.Set("x-goog-api-key", c.apiKey)

	logger.Debug("Uploading media to Gemini",
		zap.String("mime", mimeType),
		zap.Int("size", len(data)))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if uploaded.File.URI == "" {
		return "", fmt.Errorf("upload rejected: status=%d, body=%s", resp.StatusCode, respBody)
	}

	logger.Info("Media staged", zap.String("file_uri", uploaded.File.URI))

	return uploaded.File.URI, nil
}

// GenerateSubtitles asks the model for SRT text over a staged file. The
// returned text is raw model output; fencing cleanup is the caller's job.
func (c *Client) GenerateSubtitles(ctx context.Context, fileURI, mimeType string) (string, error) {
	reqBody := GenerateRequest{
		Contents: []Content{{
			Parts: []Part{
				{Text: subtitlePrompt},
				{FileData: &FileData{MimeType: mimeType, FileURI: fileURI}},
			},
		}},
		GenerationConfig: &GenerationConfig{
			Temperature: 0.1,
			TopP:        0.8,
			TopK:        10,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	logger.Debug("Requesting subtitle generation", zap.String("file_uri", fileURI))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var gen GenerateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(gen.Candidates) == 0 {
		if gen.Error != nil {
			return "", fmt.Errorf("generation failed: %w", gen.Error)
		}
		return "", fmt.Errorf("generation returned no candidates: status=%d", resp.StatusCode)
	}

	parts := gen.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", fmt.Errorf("generation returned a candidate with no parts")
	}

	logger.Info("Subtitles generated",
		zap.String("file_uri", fileURI),
		zap.Int("text_length", len(parts[0].Text)))

	return parts[0].Text, nil
}

func partHeader(field, filename, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	return h
}
