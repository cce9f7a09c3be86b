package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/content"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/mailer"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
)

const (
	sweepLockKey     = "followup:sweep:lock"
	defaultBatchSize = 100
)

// Lock is a held sweep lock. Refresh extends it by its ttl and fails once
// the lock has been lost.
type Lock interface {
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

// Locker takes a named lock shared between processes
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, bool, error)
}

// SweepResult summarizes one follow-up sweep
type SweepResult struct {
	Selected   int      `json:"selected"`
	FollowedUp int      `json:"followed_up"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

func (r *SweepResult) skip(format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *SweepResult) fail(format string, args ...any) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type FollowUpService struct {
	EmailRepo    repository.EmailRepositoryInterface
	ProspectRepo repository.ProspectRepositoryInterface
	Generator    content.Generator
	Sender       mailer.Sender
	Campaign     config.CampaignConfig
	TrackingURL  string
	Log          *logger.Logger

	Threshold time.Duration
	BatchSize int

	// Locker is optional; without it sweeps are only serialized in-process.
	// The lock is refreshed before every page and record, so LockTTL only
	// has to cover one follow-up.
	Locker  Locker
	LockTTL time.Duration

	Now func() time.Time

	running atomic.Bool
}

func (s *FollowUpService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Sweep sends one follow-up for every delivered email older than the
// threshold that has not been followed up yet, paging through all of them
// in (sent_at, id) order. Per-record failures are collected in the result;
// only a failure to start (lock, first selection) is returned as an error.
func (s *FollowUpService) Sweep(ctx context.Context) (*SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, appErrors.ErrSweepInProgress
	}
	defer s.running.Store(false)

	var lock Lock
	if s.Locker != nil {
		l, ok, err := s.Locker.TryLock(ctx, sweepLockKey, s.LockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, appErrors.ErrSweepInProgress
		}
		lock = l
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				s.Log.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	cutoff := s.now().Add(-s.Threshold)

	result := &SweepResult{}
	var after *repository.DueCursor
	for {
		if err := s.keepLock(ctx, lock); err != nil {
			result.fail("sweep stopped: %v", err)
			return result, nil
		}

		page, err := s.EmailRepo.ListDueForFollowUp(ctx, cutoff, after, batch)
		if err != nil {
			if after == nil {
				return nil, err
			}
			result.fail("sweep stopped: %v", err)
			return result, nil
		}
		result.Selected += len(page)

		for _, email := range page {
			if err := ctx.Err(); err != nil {
				result.fail("sweep interrupted before %s: %v", email.ID, err)
				return result, nil
			}
			if err := s.keepLock(ctx, lock); err != nil {
				result.fail("sweep stopped before %s: %v", email.ID, err)
				return result, nil
			}
			s.followUp(ctx, email, result)
		}

		if len(page) < batch {
			return result, nil
		}
		last := page[len(page)-1]
		after = &repository.DueCursor{SentAt: *last.SentAt, ID: last.ID}
	}
}

func (s *FollowUpService) keepLock(ctx context.Context, lock Lock) error {
	if lock == nil {
		return nil
	}
	if err := lock.Refresh(ctx); err != nil {
		s.Log.Error().Err(err).Msg("sweep lock lost")
		return err
	}
	return nil
}

func (s *FollowUpService) followUp(ctx context.Context, email *model.Email, result *SweepResult) {
	log := s.Log.With().Str("email_id", email.ID).Logger()

	if email.ProspectID == nil {
		log.Warn().Msg("no prospect linked, skipping follow-up")
		result.skip("email %s: no prospect linked", email.ID)
		return
	}
	prospect, err := s.ProspectRepo.GetByID(ctx, *email.ProspectID)
	if err != nil {
		log.Warn().Err(err).Int64("prospect_id", *email.ProspectID).Msg("prospect lookup failed, skipping follow-up")
		result.skip("email %s: %v", email.ID, err)
		return
	}

	company := prospect.Name
	if prospect.CompanyName != nil && *prospect.CompanyName != "" {
		company = *prospect.CompanyName
	}
	from := content.Sender{Brand: s.Campaign.Brand, Signature: s.Campaign.Signature}
	sentAt := email.CreatedAt
	if email.SentAt != nil {
		sentAt = *email.SentAt
	}

	prompt, err := content.BuildPrompt(from, content.PromptInput{
		Type:          model.CampaignFollowUp,
		RecipientName: prospect.Name,
		CompanyName:   company,
		Context:       "Initial email sent at " + sentAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		result.fail("email %s: %v", email.ID, err)
		return
	}

	generated, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("follow-up generation failed")
		result.fail("email %s: %v", email.ID, err)
		return
	}

	subject := content.Subject(from, model.CampaignFollowUp, company)
	body := content.Compose(generated, content.PixelTag(s.TrackingURL, email.ID))
	if err := s.Sender.Send(ctx, mailer.Message{To: email.RecipientEmail, Subject: subject, HTMLBody: body}); err != nil {
		log.Error().Err(err).Msg("follow-up delivery failed")
		result.fail("email %s: %v", email.ID, appErrors.NewDelivery(email.ID, err))
		return
	}

	marked, err := s.EmailRepo.MarkFollowedUp(ctx, email.ID, s.now())
	if err != nil {
		log.Error().Err(err).Msg("follow-up sent but not recorded")
		result.fail("email %s: %v", email.ID, err)
		return
	}
	if !marked {
		log.Warn().Msg("email was already followed up")
	}
	result.FollowedUp++
	log.Info().Str("recipient", email.RecipientEmail).Msg("follow-up sent")
}

// SweepOnce runs a sweep and logs its outcome
func (s *FollowUpService) SweepOnce(ctx context.Context, trigger string) error {
	start := time.Now()
	result, err := s.Sweep(ctx)
	if err != nil {
		if !errors.Is(err, appErrors.ErrSweepInProgress) {
			s.Log.Error().Err(err).Str("trigger", trigger).Msg("follow-up sweep failed")
		}
		return err
	}

	s.Log.Info().
		Str("trigger", trigger).
		Int("selected", result.Selected).
		Int("followed_up", result.FollowedUp).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("follow-up sweep finished")
	return nil
}

// Run sweeps immediately and then every interval until ctx is done
func (s *FollowUpService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.SweepOnce(ctx, "schedule")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx, "schedule")
		}
	}
}
