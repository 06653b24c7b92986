package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"srtbot/internal/downloader"
	"srtbot/internal/gemini"
	"srtbot/internal/media"
	"srtbot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"
)

// Stage identifies the pipeline step that produced an error.
type Stage string

const (
	StageDownload Stage = "download"
	StageUpload   Stage = "upload"
	StageGenerate Stage = "generate"
	StageDeliver  Stage = "deliver"
)

// Error is a pipeline failure carrying a message fit for the chat. The
// webhook boundary sends UserMsg and logs the wrapped error.
type Error struct {
	Stage   Stage
	UserMsg string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// User-facing message texts.
const (
	msgTooLarge       = "⚠️ Video too large. Please send under 20MB."
	msgVideoReceived  = "📥 Video received. Preparing subtitles..."
	msgProcessing     = "🎵 Processing video..."
	msgFetchYouTube   = "🎬 Fetching audio from YouTube..."
	msgFetchInstagram = "📸 Fetching audio from Instagram..."
	msgGenerating     = "✍️ Generating subtitles..."
	msgNoLink         = "📎 Send a YouTube/Instagram link or upload a video."
	msgUnsupported    = "⚠️ Unsupported link.\n\nSupported:\n• YouTube / Shorts\n• Instagram Reels\n• Upload video file (under 20MB)"

	msgYouTubeFailed   = "❌ Could not extract audio. Try a different link."
	msgInstagramFailed = "❌ Could not extract audio. Make sure the reel is public."
	msgFetchFailed     = "🛑 Video processing failed. Please resend the file."
	msgUploadFailed    = "❌ Failed to upload media to Gemini."
	msgGenerateFailed  = "❌ AI failed to process the media."
	msgEmptySubtitles  = "❌ Generated subtitles are empty."
	msgDeliverFailed   = "🛑 Failed to deliver the subtitle file. Please try again."
	msgSuccess         = "✅ Subtitles generated successfully!"
)

// minSubtitleLen rejects near-empty model output after fencing cleanup.
const minSubtitleLen = 10

// Transcriber stages media bytes and generates subtitle text.
type Transcriber interface {
	UploadFile(ctx context.Context, data []byte, mimeType string) (string, error)
	GenerateSubtitles(ctx context.Context, fileURI, mimeType string) (string, error)
}

// Extractor pulls an audio stream out of a web link.
type Extractor interface {
	Extract(ctx context.Context, url string) (*downloader.Media, error)
}

type Processor struct {
	messenger  Messenger
	ai         Transcriber
	extractor  Extractor
	httpClient *http.Client
}

func NewProcessor(m Messenger, ai Transcriber, ex Extractor) *Processor {
	return &Processor{
		messenger: m,
		ai:        ai,
		extractor: ex,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Process runs the whole pipeline for one inbound message, synchronously.
// User-input problems (oversized upload, missing or unsupported link) are
// reported to the chat and return nil; external-dependency failures come
// back as *Error for the webhook boundary to report.
func (p *Processor) Process(ctx context.Context, msg *tele.Message) error {
	chatID := msg.Chat.ID
	jobID := uuid.NewString()

	c := media.Classify(msg)

	logger.Info("Update classified",
		zap.String("job_id", jobID),
		zap.Int64("chat_id", chatID),
		zap.String("kind", c.Kind.String()))

	switch c.Kind {
	case media.KindNone:
		p.say(chatID, msgNoLink)
		return nil

	case media.KindUnsupported:
		p.say(chatID, msgUnsupported)
		return nil

	case media.KindUpload:
		if c.FileSize > media.MaxUploadSize {
			p.say(chatID, msgTooLarge)
			return nil
		}
		p.say(chatID, msgVideoReceived)
		return p.processUpload(ctx, chatID, c.FileID)

	case media.KindYouTube:
		p.say(chatID, msgFetchYouTube)
		return p.processLink(ctx, chatID, c.URL, msgYouTubeFailed)

	case media.KindInstagram:
		p.say(chatID, msgFetchInstagram)
		return p.processLink(ctx, chatID, c.URL, msgInstagramFailed)
	}

	return nil
}

func (p *Processor) processUpload(ctx context.Context, chatID int64, fileID string) error {
	p.say(chatID, msgProcessing)

	url, err := p.messenger.FileURL(fileID)
	if err != nil {
		return &Error{Stage: StageDownload, UserMsg: msgFetchFailed, Err: err}
	}

	data, err := p.fetch(ctx, url)
	if err != nil {
		return &Error{Stage: StageDownload, UserMsg: msgFetchFailed, Err: err}
	}

	// Telegram video uploads are mp4 in practice.
	return p.transcribe(ctx, chatID, data, "video/mp4")
}

func (p *Processor) processLink(ctx context.Context, chatID int64, url, failMsg string) error {
	m, err := p.extractor.Extract(ctx, url)
	if err != nil {
		return &Error{Stage: StageDownload, UserMsg: failMsg, Err: err}
	}

	p.say(chatID, msgGenerating)
	return p.transcribe(ctx, chatID, m.Data, m.MIME)
}

func (p *Processor) transcribe(ctx context.Context, chatID int64, data []byte, mimeType string) error {
	fileURI, err := p.ai.UploadFile(ctx, data, mimeType)
	if err != nil {
		return &Error{Stage: StageUpload, UserMsg: msgUploadFailed, Err: err}
	}

	raw, err := p.ai.GenerateSubtitles(ctx, fileURI, mimeType)
	if err != nil {
		userMsg := msgGenerateFailed
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			userMsg = "❌ AI failed to process the media: " + apiErr.Message
		}
		return &Error{Stage: StageGenerate, UserMsg: userMsg, Err: err}
	}

	srt := CleanSRT(raw)
	if len(srt) < minSubtitleLen {
		return &Error{
			Stage:   StageGenerate,
			UserMsg: msgEmptySubtitles,
			Err:     fmt.Errorf("subtitles too short: %d chars", len(srt)),
		}
	}

	if err := p.messenger.SendSubtitles(chatID, srt); err != nil {
		return &Error{Stage: StageDeliver, UserMsg: msgDeliverFailed, Err: err}
	}

	p.say(chatID, msgSuccess)
	return nil
}

// fetch reads the whole body of a media URL.
func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}

	return data, nil
}

// say sends a status message best-effort: the chat is the only sink, so
// a failed status update is logged and never escalated.
func (p *Processor) say(chatID int64, text string) {
	if err := p.messenger.SendText(chatID, text); err != nil {
		logger.Warn("Failed to send status message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// CleanSRT strips the markdown code fencing the model sometimes wraps
// around its output and trims surrounding whitespace.
func CleanSRT(s string) string {
	s = strings.ReplaceAll(s, "```srt", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
