package content_test

import (
	"strings"
	"testing"

	"github.com/outreachly/outreach-backend/internal/content"
	"github.com/outreachly/outreach-backend/internal/model"
)

const pixel = `<img src="http://t/api/track/abc" width="1" height="1" alt="" style="display:none">`

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want content.Kind
	}{
		{"Hi Bob,\n\nThanks.", content.PlainText},
		{"<HTML><BODY>Hi</BODY></HTML>", content.HTML},
		{"<body><p>Hi</p></body>", content.HTML},
		{"Use <b>bold</b> sparingly", content.PlainText},
	}
	for _, tc := range cases {
		if got := content.Classify(tc.text).Kind; got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestComposeHTMLInsertsBeforeLastBodyClose(t *testing.T) {
	c := content.Classify("<html><body><p>Hi</p></BODY></html>")
	got := content.Compose(c, pixel)
	want := "<html><body><p>Hi</p>" + pixel + "</BODY></html>"
	if got != want {
		t.Errorf("unexpected body:\n%s", got)
	}
}

func TestComposeHTMLWithoutBodyCloseAppends(t *testing.T) {
	c := content.Content{Kind: content.HTML, Text: "<html><body><p>Hi</p>"}
	got := content.Compose(c, pixel)
	if !strings.HasSuffix(got, pixel) || !strings.HasPrefix(got, c.Text) {
		t.Errorf("expected pixel appended, got %s", got)
	}
}

func TestComposePlainTextEscapesAndKeepsText(t *testing.T) {
	c := content.Classify("Hi Bob & team,\r\nPrice < $5\nBest")
	got := content.Compose(c, pixel)

	want := "<html><body>Hi Bob &amp; team,<br>\nPrice &lt; $5<br>\nBest" + pixel + "</body></html>"
	if got != want {
		t.Errorf("unexpected body:\n%s", got)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	c := content.Classify("Hello\nWorld")
	if content.Compose(c, pixel) != content.Compose(c, pixel) {
		t.Error("compose should be deterministic")
	}
}

func TestPixelTagPointsAtRecord(t *testing.T) {
	tag := content.PixelTag("https://api.example.com/", "5f0c8a4e")
	if !strings.Contains(tag, `src="https://api.example.com/api/track/5f0c8a4e"`) {
		t.Errorf("unexpected tag %s", tag)
	}
}

func TestBuildPrompt(t *testing.T) {
	from := content.Sender{Brand: "23 Ventures", Signature: "Manthan Gupta, Founder, 23Ventures"}

	p, err := content.BuildPrompt(from, content.PromptInput{
		Type:          model.CampaignOutreach,
		RecipientName: "Bob",
		CompanyName:   "Acme",
		Context:       "venture studio services",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"initial outreach email to Bob at Acme", "venture studio services", "'Manthan Gupta, Founder, 23Ventures'"} {
		if !strings.Contains(p, want) {
			t.Errorf("outreach prompt missing %q", want)
		}
	}

	p, err = content.BuildPrompt(from, content.PromptInput{
		Type:          model.CampaignFollowUp,
		RecipientName: "Bob",
		CompanyName:   "Acme",
		Context:       "Initial email sent at 2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p, `"Initial email sent at 2024-01-01T00:00:00Z"`) {
		t.Errorf("follow-up prompt should quote the previous interaction:\n%s", p)
	}

	if _, err := content.BuildPrompt(from, content.PromptInput{Type: "newsletter"}); err == nil {
		t.Error("expected error for unknown campaign type")
	}
}

func TestSubject(t *testing.T) {
	from := content.Sender{Brand: "23 Ventures"}
	if got := content.Subject(from, model.CampaignOutreach, "Acme"); got != "Let's Unlock Acme's Potential | 23 Ventures" {
		t.Errorf("unexpected outreach subject %q", got)
	}
	if got := content.Subject(from, model.CampaignFollowUp, "Acme"); got != "Following Up: 23 Ventures & Acme" {
		t.Errorf("unexpected follow-up subject %q", got)
	}
}
