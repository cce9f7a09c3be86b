package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/repository"
)

// TrackingPixel is a 1x1 transparent GIF
var TrackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x01, 0x44, 0x00, 0x3b,
}

type TrackingService struct {
	EmailRepo repository.EmailRepositoryInterface
	Log       *logger.Logger
	Now       func() time.Time
}

// RecordOpen marks the email viewed on its first pixel fetch. It never
// fails: unknown ids and store errors are logged and ignored.
func (s *TrackingService) RecordOpen(ctx context.Context, emailID string) {
	if _, err := uuid.Parse(emailID); err != nil {
		s.Log.Debug().Str("email_id", emailID).Msg("ignoring pixel fetch for malformed id")
		return
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	first, err := s.EmailRepo.MarkViewed(ctx, emailID, now)
	if err != nil {
		s.Log.Error().Err(err).Str("email_id", emailID).Msg("failed to record email open")
		return
	}
	if first {
		s.Log.Info().Str("email_id", emailID).Msg("email opened")
	}
}
