package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/content"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/mailer"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SendRequest is the input of the Send workflow
type SendRequest struct {
	Type                string `json:"type" validate:"required"`
	RecipientName       string `json:"recipient_name" validate:"required"`
	RecipientEmail      string `json:"recipient_email" validate:"required,email"`
	CompanyName         string `json:"company_name" validate:"required"`
	ProductDescription  string `json:"product_description"`
	PreviousInteraction string `json:"previous_interaction"`
}

// SendResult reports a delivered email
type SendResult struct {
	EmailID string `json:"email_id"`
	Message string `json:"message"`
}

type EmailService struct {
	EmailRepo    repository.EmailRepositoryInterface
	ProspectRepo repository.ProspectRepositoryInterface
	Generator    content.Generator
	Sender       mailer.Sender
	Campaign     config.CampaignConfig
	TrackingURL  string // public base URL for pixel links
	Log          *logger.Logger

	// NewID allocates record ids; uuid.NewString when nil
	NewID func() string
	Now   func() time.Time
}

func (s *EmailService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *EmailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *EmailService) sender() content.Sender {
	return content.Sender{Brand: s.Campaign.Brand, Signature: s.Campaign.Signature}
}

// Send runs one email through drafting -> generated -> sent. A record is
// written before generation so the pixel can reference it; on generation
// failure it stays in drafting with last_error set, on delivery failure it
// moves to send_failed with its content kept.
func (s *EmailService) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	campaignType, ok := model.ParseCampaignType(req.Type)
	if !ok {
		return nil, appErrors.NewValidation("", "Invalid email type")
	}

	promptContext := req.ProductDescription
	if campaignType == model.CampaignFollowUp {
		promptContext = req.PreviousInteraction
		if promptContext == "" {
			promptContext = s.Campaign.DefaultPreviousInteraction
		}
	} else if promptContext == "" {
		promptContext = s.Campaign.DefaultProductDescription
	}

	prompt, err := content.BuildPrompt(s.sender(), content.PromptInput{
		Type:          campaignType,
		RecipientName: req.RecipientName,
		CompanyName:   req.CompanyName,
		Context:       promptContext,
	})
	if err != nil {
		return nil, appErrors.NewValidation("type", err.Error())
	}

	email := &model.Email{
		ID:             s.newID(),
		ProspectID:     s.lookupProspect(ctx, req.RecipientEmail, req.CompanyName),
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		CompanyName:    req.CompanyName,
		CampaignType:   campaignType,
		Status:         model.StatusDrafting,
		Subject:        content.Subject(s.sender(), campaignType, req.CompanyName),
	}
	if err := s.EmailRepo.Create(ctx, email); err != nil {
		return nil, err
	}
	log := s.Log.With().Str("email_id", email.ID).Logger()

	generated, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		var ge *appErrors.GenerationError
		if !errors.As(err, &ge) {
			err = appErrors.NewGeneration(err)
		}
		log.Error().Err(err).Msg("content generation failed")
		if uerr := s.EmailRepo.UpdateStatus(ctx, email.ID, model.StatusDrafting, model.StatusDrafting, err.Error()); uerr != nil {
			log.Error().Err(uerr).Msg("failed to record generation error")
		}
		return nil, err
	}

	body := content.Compose(generated, content.PixelTag(s.TrackingURL, email.ID))
	if err := s.EmailRepo.UpdateContent(ctx, email.ID, email.Subject, body); err != nil {
		return nil, err
	}

	err = s.Sender.Send(ctx, mailer.Message{
		To:       email.RecipientEmail,
		Subject:  email.Subject,
		HTMLBody: body,
	})
	if err != nil {
		log.Error().Err(err).Msg("delivery failed")
		if uerr := s.EmailRepo.UpdateStatus(ctx, email.ID, model.StatusGenerated, model.StatusSendFailed, err.Error()); uerr != nil {
			log.Error().Err(uerr).Msg("failed to record delivery error")
		}
		return nil, appErrors.NewDelivery(email.ID, err)
	}

	if err := s.EmailRepo.MarkSent(ctx, email.ID, s.now()); err != nil {
		log.Error().Err(err).Msg("email delivered but not marked sent")
		return nil, err
	}

	log.Info().Str("type", string(campaignType)).Str("recipient", email.RecipientEmail).Msg("email sent")
	return &SendResult{
		EmailID: email.ID,
		Message: fmt.Sprintf("%s email sent to %s.", campaignType.Title(), email.RecipientEmail),
	}, nil
}

// lookupProspect attaches a prospect reference when one matches; a miss or
// a store error leaves the email unlinked
func (s *EmailService) lookupProspect(ctx context.Context, email, company string) *int64 {
	if s.ProspectRepo == nil {
		return nil
	}
	p, err := s.ProspectRepo.FindMatch(ctx, email, company)
	switch {
	case err == nil:
		return &p.ID
	case appErrors.IsNotFound(err):
		s.Log.Debug().Str("recipient", email).Msg("no matching prospect")
	default:
		s.Log.Warn().Err(err).Str("recipient", email).Msg("prospect lookup failed")
	}
	return nil
}

func validateRequest(req SendRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.NewValidation("", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return appErrors.NewValidation(fe.Field(), "is required")
	case "email":
		return appErrors.NewValidation(fe.Field(), "must be a valid email address")
	}
	return appErrors.NewValidation(fe.Field(), "is invalid")
}

// EmailPage is one page of the email listing
type EmailPage struct {
	Data       []*model.Email `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

func (s *EmailService) ListEmails(ctx context.Context, page, pageSize int, status string) (*EmailPage, error) {
	if status != "" && !model.EmailStatus(status).Valid() {
		return nil, appErrors.NewValidation("status", "unknown status")
	}
	page, pageSize, offset := normalizePage(page, pageSize)

	emails, total, err := s.EmailRepo.List(ctx, offset, pageSize, status)
	if err != nil {
		return nil, err
	}
	return &EmailPage{Data: emails, Pagination: newPagination(page, pageSize, total)}, nil
}

func (s *EmailService) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewNotFound("email", id)
	}
	return s.EmailRepo.GetByID(ctx, id)
}

func (s *EmailService) Stats(ctx context.Context) (*model.EmailStats, error) {
	return s.EmailRepo.Stats(ctx)
}
