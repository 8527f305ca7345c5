package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/quill/app/database"
)

const DefaultFeedLimit = 50

type Generator struct {
	baseURL   string
	title     string
	version   string
	excerpter *ExcerptExtractor
}

func NewGenerator(baseURL, title, version string, excerpter *ExcerptExtractor) *Generator {
	return &Generator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		title:     title,
		version:   version,
		excerpter: excerpter,
	}
}

// Run renders published content as an RSS 2.0 document.
func (g *Generator) Run(items []database.Content) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.title, 4)
	g.writeElement(&buf, "link", g.baseURL, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Latest published content from %s", g.title), 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.baseURL+"/feed.xml")))

	lastBuildDate := time.Now().UTC()
	if len(items) > 0 {
		lastBuildDate = g.itemDate(items[0])
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Quill/%s", g.version), 4)

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item database.Content) {
	link := fmt.Sprintf("%s/content/%d", g.baseURL, item.ID)

	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", cmp.Or(g.excerpter.Run(item.Body), "No description available"), 6)

	if item.Body != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(item.Body, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", g.itemDate(item).Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", item.AuthorName, 6)

	for _, tag := range item.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	if item.FeaturedImage != nil && *item.FeaturedImage != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(*item.FeaturedImage),
			imageType(*item.FeaturedImage)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) itemDate(item database.Content) time.Time {
	if item.PublishDate != nil {
		return *item.PublishDate
	}
	return item.CreatedAt
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func imageType(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
