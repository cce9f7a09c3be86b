// internal/model/email.go
package model

import "time"

// EmailStatus is the lifecycle state of an Email record
type EmailStatus string

const (
	StatusDrafting   EmailStatus = "drafting"    // id allocated, content pending
	StatusGenerated  EmailStatus = "generated"   // subject/body persisted
	StatusSent       EmailStatus = "sent"
	StatusSendFailed EmailStatus = "send_failed" // terminal for automatic processing
	StatusViewed     EmailStatus = "viewed"
	StatusFollowedUp EmailStatus = "followed_up" // terminal
)

// Valid reports whether s is a known status
func (s EmailStatus) Valid() bool {
	switch s {
	case StatusDrafting, StatusGenerated, StatusSent, StatusSendFailed, StatusViewed, StatusFollowedUp:
		return true
	}
	return false
}

// Email is one generated/sent message
type Email struct {
	ID             string       `db:"id" json:"id"`
	ProspectID     *int64       `db:"prospect_id" json:"prospect_id,omitempty"`
	RecipientEmail string       `db:"recipient_email" json:"recipient_email"`
	RecipientName  string       `db:"recipient_name" json:"recipient_name"`
	CompanyName    string       `db:"company_name" json:"company_name"`
	CampaignType   CampaignType `db:"campaign_type" json:"campaign_type"`
	Status         EmailStatus  `db:"status" json:"status"`
	Subject        string       `db:"subject" json:"subject"`
	Body           string       `db:"body" json:"body"`
	LastError      string       `db:"last_error" json:"last_error,omitempty"`
	Viewed         bool         `db:"viewed" json:"viewed"`
	ViewedAt       *time.Time   `db:"viewed_at" json:"viewed_at,omitempty"`
	FollowUp       bool         `db:"follow_up" json:"follow_up"`
	SentAt         *time.Time   `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// EmailStats backs the dashboard counters
type EmailStats struct {
	Prospects  int `db:"prospects" json:"prospects"`
	Emails     int `db:"emails" json:"emails"`
	Viewed     int `db:"viewed" json:"viewed"`
	Sent       int `db:"sent" json:"sent"`
	SendFailed int `db:"send_failed" json:"send_failed"`
	FollowedUp int `db:"followed_up" json:"followed_up"`
}
