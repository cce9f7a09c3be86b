package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/outreachly/outreach-backend/internal/config"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/service"
)

var testCampaign = config.CampaignConfig{
	Brand:                      "23 Ventures",
	Signature:                  "Manthan Gupta, Founder, 23Ventures",
	DefaultProductDescription:  "our founder-first accelerator with equity-for-growth model.",
	DefaultPreviousInteraction: "Initial outreach email sent last week.",
}

type emailFixture struct {
	svc       *service.EmailService
	emails    *MockEmailRepo
	prospects *MockProspectRepo
	gen       *MockGenerator
	sender    *MockSender
}

func newEmailFixture() *emailFixture {
	f := &emailFixture{
		emails:    NewMockEmailRepo(),
		prospects: &MockProspectRepo{},
		gen:       &MockGenerator{text: "Hi Bob,\n\nLet's talk about Acme.\n\nManthan"},
		sender:    &MockSender{},
	}
	f.svc = &service.EmailService{
		EmailRepo:    f.emails,
		ProspectRepo: f.prospects,
		Generator:    f.gen,
		Sender:       f.sender,
		Campaign:     testCampaign,
		TrackingURL:  "https://api.outreach.test",
		Log:          logger.Nop(),
	}
	return f
}

func bobRequest() service.SendRequest {
	return service.SendRequest{
		Type:           "outreach",
		RecipientName:  "Bob",
		RecipientEmail: "bob@x.com",
		CompanyName:    "Acme",
	}
}

func TestSendOutreachEndToEnd(t *testing.T) {
	f := newEmailFixture()

	res, err := f.svc.Send(context.Background(), bobRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Outreach email sent to bob@x.com." {
		t.Errorf("unexpected message %q", res.Message)
	}

	e := f.emails.Get(res.EmailID)
	if e == nil {
		t.Fatalf("no record stored for %s", res.EmailID)
	}
	if e.CampaignType != model.CampaignOutreach || e.Status != model.StatusSent {
		t.Errorf("unexpected type/status %s/%s", e.CampaignType, e.Status)
	}
	if !strings.Contains(e.Subject, "Acme") {
		t.Errorf("subject should mention the company, got %q", e.Subject)
	}
	if !strings.Contains(e.Body, "/api/track/"+e.ID) {
		t.Errorf("body should carry the pixel for %s:\n%s", e.ID, e.Body)
	}
	if e.SentAt == nil {
		t.Error("sent_at should be set")
	}

	sent := f.sender.Sent()
	if len(sent) != 1 || sent[0].To != "bob@x.com" || sent[0].HTMLBody != e.Body {
		t.Errorf("delivered message does not match stored record: %+v", sent)
	}
	if !strings.Contains(f.gen.prompts[0], testCampaign.DefaultProductDescription) {
		t.Errorf("missing product description should fall back to the default")
	}
}

func TestSendUnknownTypeCreatesNothing(t *testing.T) {
	f := newEmailFixture()
	req := bobRequest()
	req.Type = "newsletter"

	_, err := f.svc.Send(context.Background(), req)
	if appErrors.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.emails.Count() != 0 {
		t.Errorf("expected no record, found %d", f.emails.Count())
	}
	if len(f.gen.prompts) != 0 || len(f.sender.Sent()) != 0 {
		t.Error("no collaborator should be called for an invalid request")
	}
}

func TestSendValidation(t *testing.T) {
	cases := map[string]func(*service.SendRequest){
		"missing email": func(r *service.SendRequest) { r.RecipientEmail = "" },
		"bad email":     func(r *service.SendRequest) { r.RecipientEmail = "bob" },
		"missing name":  func(r *service.SendRequest) { r.RecipientName = "" },
		"missing type":  func(r *service.SendRequest) { r.Type = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newEmailFixture()
			req := bobRequest()
			mutate(&req)

			_, err := f.svc.Send(context.Background(), req)
			var ve *appErrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if f.emails.Count() != 0 {
				t.Error("record created for invalid request")
			}
		})
	}
}

func TestSendGenerationFailureLeavesDraft(t *testing.T) {
	f := newEmailFixture()
	f.gen.err = errors.New("context deadline exceeded")

	_, err := f.svc.Send(context.Background(), bobRequest())
	var ge *appErrors.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}

	if f.emails.Count() != 1 {
		t.Fatalf("expected the draft to be kept, found %d records", f.emails.Count())
	}
	for _, e := range f.emails.emails {
		if e.Status != model.StatusDrafting || e.LastError == "" || e.Body != "" {
			t.Errorf("unexpected draft state: %+v", e)
		}
	}
	if len(f.sender.Sent()) != 0 {
		t.Error("nothing should be delivered")
	}
}

func TestSendDeliveryFailureKeepsContent(t *testing.T) {
	f := newEmailFixture()
	f.sender.err = errors.New("535 authentication failed")

	_, err := f.svc.Send(context.Background(), bobRequest())
	var de *appErrors.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}

	e := f.emails.Get(de.EmailID)
	if e == nil || e.Status != model.StatusSendFailed {
		t.Fatalf("expected send_failed record, got %+v", e)
	}
	if !strings.Contains(e.Body, "/api/track/"+e.ID) {
		t.Error("generated content should be preserved")
	}
}

func TestSendLinksMatchingProspect(t *testing.T) {
	f := newEmailFixture()
	f.prospects.InsertBatch(context.Background(), []model.Prospect{{Name: "Acme", Email: "bob@x.com"}})

	res, err := f.svc.Send(context.Background(), bobRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := f.emails.Get(res.EmailID)
	if e.ProspectID == nil || *e.ProspectID != 1 {
		t.Errorf("expected prospect 1 linked, got %v", e.ProspectID)
	}
}

func TestSendProceedsWhenProspectLookupFails(t *testing.T) {
	f := newEmailFixture()
	f.prospects.findErr = errors.New("connection refused")

	res, err := f.svc.Send(context.Background(), bobRequest())
	if err != nil {
		t.Fatalf("lookup failure must not block sending: %v", err)
	}
	if e := f.emails.Get(res.EmailID); e.ProspectID != nil {
		t.Errorf("expected no prospect reference, got %v", *e.ProspectID)
	}
}

func TestSendFollowUpUsesPreviousInteraction(t *testing.T) {
	f := newEmailFixture()
	req := bobRequest()
	req.Type = "FollowUp"
	req.PreviousInteraction = "Met at Demo Day"

	res, err := f.svc.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Followup email sent to bob@x.com." {
		t.Errorf("unexpected message %q", res.Message)
	}
	if !strings.Contains(f.gen.prompts[0], `"Met at Demo Day"`) {
		t.Errorf("prompt should quote the previous interaction: %s", f.gen.prompts[0])
	}
	if e := f.emails.Get(res.EmailID); e.Subject != "Following Up: 23 Ventures & Acme" {
		t.Errorf("unexpected subject %q", e.Subject)
	}
}

func TestListEmailsRejectsUnknownStatus(t *testing.T) {
	f := newEmailFixture()
	if _, err := f.svc.ListEmails(context.Background(), 1, 20, "archived"); appErrors.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetEmailMalformedIDIsNotFound(t *testing.T) {
	f := newEmailFixture()
	if _, err := f.svc.GetEmail(context.Background(), "not-a-uuid"); !appErrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
