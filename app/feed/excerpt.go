package feed

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const DefaultExcerptLength = 280

type ExcerptExtractor struct {
	maxLength int
}

func NewExcerptExtractor(maxLength int) *ExcerptExtractor {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}
	return &ExcerptExtractor{maxLength: maxLength}
}

// Run returns a plain-text excerpt of a content body. HTML bodies go through
// readability first; fragments readability cannot score fall back to their text.
func (e *ExcerptExtractor) Run(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	text := ""
	if looksLikeHTML(body) {
		article, err := readability.FromReader(strings.NewReader(body), nil)
		if err == nil {
			text = article.TextContent
		} else {
			slog.Debug("Readability extraction failed", "error", err)
		}

		if strings.TrimSpace(text) == "" {
			if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
				text = doc.Text()
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		text = body
	}

	return truncate(strings.Join(strings.Fields(text), " "), e.maxLength)
}

func looksLikeHTML(body string) bool {
	start := strings.Index(body, "<")
	return start >= 0 && strings.Contains(body[start:], ">")
}

func truncate(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxLength])
	if space := strings.LastIndex(cut, " "); space > maxLength/2 {
		cut = cut[:space]
	}

	return strings.TrimRight(cut, " ,.;:") + "…"
}
