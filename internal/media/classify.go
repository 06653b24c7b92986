// Package media classifies an inbound Telegram message into the media
// source it refers to: a direct upload, a supported web link, or nothing.
package media

import (
	"regexp"
	"strings"
	"unicode/utf16"

	tele "gopkg.in/telebot.v4"
)

// MaxUploadSize is the byte limit for direct uploads (binary MiB, the
// Telegram bot file download ceiling).
const MaxUploadSize = 20 * 1024 * 1024

type Kind int

const (
	KindNone Kind = iota
	KindUpload
	KindYouTube
	KindInstagram
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindUpload:
		return "upload"
	case KindYouTube:
		return "youtube"
	case KindInstagram:
		return "instagram"
	case KindUnsupported:
		return "unsupported"
	default:
		return "none"
	}
}

// Classification is the single branch chosen for a message.
type Classification struct {
	Kind     Kind
	FileID   string // set for KindUpload
	FileSize int64  // set for KindUpload
	URL      string // set for link kinds
}

var (
	urlRegexp = regexp.MustCompile(`https?://\S+`)

	youtubeHosts   = []string{"youtube.com", "youtu.be", "m.youtube.com"}
	instagramPaths = []string{"instagram.com/reel", "instagram.com/p/", "instagram.com/tv/"}
)

// Classify picks exactly one branch for the message: an attached video
// or document wins over any link in the text.
func Classify(msg *tele.Message) Classification {
	if msg.Video != nil {
		return Classification{Kind: KindUpload, FileID: msg.Video.FileID, FileSize: msg.Video.FileSize}
	}
	if msg.Document != nil {
		return Classification{Kind: KindUpload, FileID: msg.Document.FileID, FileSize: msg.Document.FileSize}
	}

	url := ExtractURL(msg.Text, msg.Entities)
	if url == "" {
		return Classification{Kind: KindNone}
	}
	return Classification{Kind: classifyURL(url), URL: url}
}

// ExtractURL resolves a URL from the message text, in strict priority
// order: an explicit url entity, then a text_link entity, then a regexp
// scan of the raw text. Entity offsets are UTF-16 code units per the
// Telegram contract.
func ExtractURL(text string, entities tele.Entities) string {
	units := utf16.Encode([]rune(text))

	for _, e := range entities {
		if e.Type != tele.EntityURL {
			continue
		}
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(units) {
			continue
		}
		return strings.TrimSpace(string(utf16.Decode(units[e.Offset : e.Offset+e.Length])))
	}

	for _, e := range entities {
		if e.Type == tele.EntityTextLink && e.URL != "" {
			return strings.TrimSpace(e.URL)
		}
	}

	return strings.TrimSpace(urlRegexp.FindString(text))
}

// classifyURL matches by substring on purpose: a false positive only
// routes to a downloader that fails safely on the wrong URL.
func classifyURL(url string) Kind {
	for _, h := range youtubeHosts {
		if strings.Contains(url, h) {
			return KindYouTube
		}
	}
	for _, p := range instagramPaths {
		if strings.Contains(url, p) {
			return KindInstagram
		}
	}
	return KindUnsupported
}
