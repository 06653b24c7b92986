package gemini

import "fmt"

// uploadResponse is the file-staging endpoint response; success is
// signaled solely by a non-empty file URI.
type uploadResponse struct {
	File struct {
		URI      string `json:"uri"`
		MimeType string `json:"mimeType"`
	} `json:"file"`
}

// GenerateRequest is the generateContent payload.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one turn of model input or output.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is either inline text or a reference to a staged file.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

// FileData references a previously staged file by URI.
type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// GenerationConfig holds sampling parameters.
type GenerationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP,omitempty"`
	TopK        int     `json:"topK,omitempty"`
}

// GenerateResponse is the generateContent response.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
	Error      *APIError   `json:"error,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content Content `json:"content"`
}

// APIError is the provider-reported error body.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error: %s (code: %d)", e.Message, e.Code)
}
