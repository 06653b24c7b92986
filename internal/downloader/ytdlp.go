// Package downloader extracts audio from web links via the yt-dlp tool.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"srtbot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Media is a resolved byte stream ready for transcription.
type Media struct {
	Data []byte
	MIME string
}

var mimeByExt = map[string]string{
	".m4a":  "audio/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".opus": "audio/opus",
}

const defaultMIME = "audio/mpeg"

var ErrNoOutput = errors.New("downloader produced no output")

type YTDLP struct {
	binary  string
	timeout time.Duration
}

func New(binary string, timeout time.Duration) *YTDLP {
	return &YTDLP{
		binary:  binary,
		timeout: timeout,
	}
}

// Extract downloads the best available audio for the URL into a scratch
// directory and returns its bytes. One attempt, no retries; the scratch
// directory is removed on every exit path.
func (d *YTDLP) Extract(ctx context.Context, url string) (*Media, error) {
	dir, err := os.MkdirTemp("", "srtbot-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.binary,
		"--no-playlist",
		"-f", "bestaudio/best",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		url,
	)

	logger.Debug("Running downloader", zap.String("url", url))

	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Warn("Downloader failed",
			zap.String("url", url),
			zap.Error(err),
			zap.ByteString("output", tail(out)))
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	path, err := firstNonEmptyFile(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloaded file: %w", err)
	}

	mime := MIMEForFile(path)
	logger.Info("Audio extracted",
		zap.String("url", url),
		zap.String("mime", mime),
		zap.Int("size", len(data)))

	return &Media{Data: data, MIME: mime}, nil
}

// firstNonEmptyFile returns the first non-empty regular file in dir.
// os.ReadDir sorts by name, so the tie-break on multiple outputs is
// lexicographic.
func firstNonEmptyFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list scratch dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		return filepath.Join(dir, e.Name()), nil
	}

	return "", ErrNoOutput
}

// MIMEForFile infers a MIME type from the file extension.
func MIMEForFile(path string) string {
	if mime, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return defaultMIME
}

func tail(b []byte) []byte {
	const max = 512
	if len(b) > max {
		return b[len(b)-max:]
	}
	return b
}
