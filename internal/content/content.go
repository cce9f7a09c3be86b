package content

import (
	"fmt"
	"html"
	"strings"
)

// Kind tells how a generated body is rendered into the final HTML
type Kind int

const (
	PlainText Kind = iota
	HTML
)

func (k Kind) String() string {
	if k == HTML {
		return "html"
	}
	return "plain"
}

// Content is a generated email body tagged with its kind. The kind is
// decided once by Classify; Compose never re-inspects the text.
type Content struct {
	Kind Kind
	Text string
}

// Classify tags generated text as HTML when it carries a document
// container, plain text otherwise
func Classify(text string) Content {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<body") {
		return Content{Kind: HTML, Text: text}
	}
	return Content{Kind: PlainText, Text: text}
}

// TrackingURL is the pixel URL for an email record
func TrackingURL(baseURL, emailID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/track/" + emailID
}

// PixelTag is the invisible 1x1 image embedded in every sent body
func PixelTag(baseURL, emailID string) string {
	return fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none">`,
		html.EscapeString(TrackingURL(baseURL, emailID)))
}

// Compose renders c into the final HTML body with pixel embedded.
// HTML gets the pixel just before its last closing body tag (or at the
// end if there is none); plain text is escaped, line breaks become <br>,
// and the result is wrapped in a minimal document.
func Compose(c Content, pixel string) string {
	if c.Kind == HTML {
		idx := lastIndexFold(c.Text, "</body>")
		if idx < 0 {
			return c.Text + pixel
		}
		return c.Text[:idx] + pixel + c.Text[idx:]
	}

	text := strings.ReplaceAll(c.Text, "\r\n", "\n")
	text = strings.ReplaceAll(html.EscapeString(text), "\n", "<br>\n")
	return "<html><body>" + text + pixel + "</body></html>"
}

// lastIndexFold is a case-insensitive strings.LastIndex that keeps byte
// offsets into s intact
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
