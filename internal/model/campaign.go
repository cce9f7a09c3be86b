// internal/model/campaign.go
package model

import "strings"

// CampaignType distinguishes initial outreach from follow-ups
type CampaignType string

const (
	CampaignOutreach CampaignType = "outreach"
	CampaignFollowUp CampaignType = "followup"
)

// ParseCampaignType resolves a request value to a supported campaign type
func ParseCampaignType(s string) (CampaignType, bool) {
	switch CampaignType(strings.ToLower(strings.TrimSpace(s))) {
	case CampaignOutreach:
		return CampaignOutreach, true
	case CampaignFollowUp:
		return CampaignFollowUp, true
	}
	return "", false
}

// Title is used in user-facing messages ("Outreach email sent to ...")
func (c CampaignType) Title() string {
	switch c {
	case CampaignOutreach:
		return "Outreach"
	case CampaignFollowUp:
		return "Followup"
	}
	return string(c)
}
