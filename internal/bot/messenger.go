package bot

import (
	"fmt"
	"os"
	"path/filepath"

	"srtbot/pkg/logger"

	tele "gopkg.in/telebot.v4"
)

const subtitleFileName = "subtitles.srt"

// Messenger is the chat-facing side of the pipeline: status messages,
// the final subtitle document, and file URL resolution for uploads.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendSubtitles(chatID int64, srt string) error
	FileURL(fileID string) (string, error)
}

// Telegram implements Messenger over the Bot API.
type Telegram struct {
	tb *tele.Bot
}

func NewTelegram(token string) (*Telegram, error) {
	tb, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram client created")

	return &Telegram{tb: tb}, nil
}

func (t *Telegram) SendText(chatID int64, text string) error {
	_, err := t.tb.Send(&tele.Chat{ID: chatID}, text)
	return err
}

// FileURL resolves the direct download URL for an uploaded file.
func (t *Telegram) FileURL(fileID string) (string, error) {
	file, err := t.tb.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	return t.tb.URL + "/file/bot" + t.tb.Token + "/" + file.FilePath, nil
}

// SendSubtitles writes the SRT text to a scratch file and uploads it as
// a document. The scratch file is removed on every exit path.
func (t *Telegram) SendSubtitles(chatID int64, srt string) error {
	dir, err := os.MkdirTemp("", "srtbot")
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, subtitleFileName)
	if err := os.WriteFile(path, []byte(srt), 0o600); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}

	doc := &tele.Document{
		File:     tele.FromDisk(path),
		FileName: subtitleFileName,
		MIME:     "text/plain",
	}
	if _, err := t.tb.Send(&tele.Chat{ID: chatID}, doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}
