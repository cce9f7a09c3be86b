package content

import (
	"fmt"
	"strings"

	"github.com/outreachly/outreach-backend/internal/model"
)

// Sender identifies who the generated emails come from
type Sender struct {
	Brand     string
	Signature string
}

// PromptInput carries the recipient attributes a prompt is built from.
// Context is the product description for outreach and the previous
// interaction for follow-ups.
type PromptInput struct {
	Type          model.CampaignType
	RecipientName string
	CompanyName   string
	Context       string
}

// BuildPrompt returns the instruction sent to the language model
func BuildPrompt(from Sender, in PromptInput) (string, error) {
	switch in.Type {
	case model.CampaignOutreach:
		return outreachPrompt(from, in), nil
	case model.CampaignFollowUp:
		return followUpPrompt(from, in), nil
	}
	return "", fmt.Errorf("unsupported campaign type %q", in.Type)
}

func outreachPrompt(from Sender, in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant tasked with drafting an initial outreach email to %s at %s. ", in.RecipientName, in.CompanyName)
	fmt.Fprintf(&b, "Introduce %s and its offerings: %s.\n\n", from.Brand, in.Context)
	b.WriteString("Compose a concise, engaging, and personalized email that:\n")
	fmt.Fprintf(&b, "- Introduces %s.\n", from.Brand)
	b.WriteString("- Highlights the value proposition.\n")
	b.WriteString("- Encourages a response or meeting.\n\n")
	fmt.Fprintf(&b, "End the email with a signature: '%s'\n", from.Signature)
	b.WriteString("Ensure the tone is professional and friendly.")
	return b.String()
}

func followUpPrompt(from Sender, in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant tasked with drafting a follow-up email to %s at %s. ", in.RecipientName, in.CompanyName)
	fmt.Fprintf(&b, "The previous interaction was: %q\n\n", in.Context)
	b.WriteString("Compose a concise, engaging, and personalized follow-up email that:\n")
	b.WriteString("- References the previous interaction.\n")
	fmt.Fprintf(&b, "- Highlights the value proposition of %s.\n", from.Brand)
	b.WriteString("- Encourages a response or meeting.\n\n")
	fmt.Fprintf(&b, "End the email with a signature: '%s'\n", from.Signature)
	b.WriteString("Ensure the tone is professional and friendly.")
	return b.String()
}

// Subject returns the subject line for a campaign type
func Subject(from Sender, t model.CampaignType, companyName string) string {
	if t == model.CampaignFollowUp {
		return fmt.Sprintf("Following Up: %s & %s", from.Brand, companyName)
	}
	return fmt.Sprintf("Let's Unlock %s's Potential | %s", companyName, from.Brand)
}
