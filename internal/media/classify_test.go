package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		msg      *tele.Message
		expected Classification
	}{
		{
			name: "attached video wins over link in text",
			msg: &tele.Message{
				Video: &tele.Video{File: tele.File{FileID: "vid-1", FileSize: 1024}},
				Text:  "https://youtube.com/watch?v=abc",
			},
			expected: Classification{Kind: KindUpload, FileID: "vid-1", FileSize: 1024},
		},
		{
			name: "attached document",
			msg: &tele.Message{
				Document: &tele.Document{File: tele.File{FileID: "doc-1", FileSize: 2048}},
			},
			expected: Classification{Kind: KindUpload, FileID: "doc-1", FileSize: 2048},
		},
		{
			name:     "youtube link",
			msg:      &tele.Message{Text: "watch this https://www.youtube.com/watch?v=abc"},
			expected: Classification{Kind: KindYouTube, URL: "https://www.youtube.com/watch?v=abc"},
		},
		{
			name:     "short youtube link",
			msg:      &tele.Message{Text: "https://youtu.be/abc"},
			expected: Classification{Kind: KindYouTube, URL: "https://youtu.be/abc"},
		},
		{
			name:     "mobile youtube link",
			msg:      &tele.Message{Text: "https://m.youtube.com/watch?v=abc"},
			expected: Classification{Kind: KindYouTube, URL: "https://m.youtube.com/watch?v=abc"},
		},
		{
			name:     "instagram reel",
			msg:      &tele.Message{Text: "https://instagram.com/reel/xyz"},
			expected: Classification{Kind: KindInstagram, URL: "https://instagram.com/reel/xyz"},
		},
		{
			name:     "instagram post",
			msg:      &tele.Message{Text: "https://www.instagram.com/p/xyz/"},
			expected: Classification{Kind: KindInstagram, URL: "https://www.instagram.com/p/xyz/"},
		},
		{
			name:     "instagram tv",
			msg:      &tele.Message{Text: "https://instagram.com/tv/xyz"},
			expected: Classification{Kind: KindInstagram, URL: "https://instagram.com/tv/xyz"},
		},
		{
			name:     "unsupported link",
			msg:      &tele.Message{Text: "https://vimeo.com/12345"},
			expected: Classification{Kind: KindUnsupported, URL: "https://vimeo.com/12345"},
		},
		{
			name:     "instagram profile page is unsupported",
			msg:      &tele.Message{Text: "https://instagram.com/someuser"},
			expected: Classification{Kind: KindUnsupported, URL: "https://instagram.com/someuser"},
		},
		{
			name:     "no media at all",
			msg:      &tele.Message{Text: "hello there"},
			expected: Classification{Kind: KindNone},
		},
		{
			name:     "empty message",
			msg:      &tele.Message{},
			expected: Classification{Kind: KindNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.msg))
		})
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		entities tele.Entities
		expected string
	}{
		{
			name: "url entity",
			text: "check https://youtu.be/abc out",
			entities: tele.Entities{
				{Type: tele.EntityURL, Offset: 6, Length: 20},
			},
			expected: "https://youtu.be/abc",
		},
		{
			name: "url entity after an emoji uses utf-16 offsets",
			text: "🎬 https://youtu.be/abc",
			entities: tele.Entities{
				{Type: tele.EntityURL, Offset: 3, Length: 20},
			},
			expected: "https://youtu.be/abc",
		},
		{
			name: "url entity beats text_link regardless of order",
			text: "a https://youtu.be/abc b",
			entities: tele.Entities{
				{Type: tele.EntityTextLink, Offset: 0, Length: 1, URL: "https://example.com/hidden"},
				{Type: tele.EntityURL, Offset: 2, Length: 20},
			},
			expected: "https://youtu.be/abc",
		},
		{
			name: "text_link entity",
			text: "this reel",
			entities: tele.Entities{
				{Type: tele.EntityTextLink, Offset: 0, Length: 9, URL: "https://instagram.com/reel/xyz"},
			},
			expected: "https://instagram.com/reel/xyz",
		},
		{
			name:     "regex fallback without entities",
			text:     "look https://youtu.be/abc now",
			expected: "https://youtu.be/abc",
		},
		{
			name: "out-of-range entity falls through to regex",
			text: "https://youtu.be/abc",
			entities: tele.Entities{
				{Type: tele.EntityURL, Offset: 10, Length: 50},
			},
			expected: "https://youtu.be/abc",
		},
		{
			name:     "plain http url",
			text:     "http://youtube.com/watch?v=abc",
			expected: "http://youtube.com/watch?v=abc",
		},
		{
			name:     "no url anywhere",
			text:     "just words",
			expected: "",
		},
		{
			name: "bold entity is ignored",
			text: "bold text only",
			entities: tele.Entities{
				{Type: tele.EntityBold, Offset: 0, Length: 4},
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractURL(tt.text, tt.entities))
		})
	}
}
