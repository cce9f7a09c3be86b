package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
)

// SweepRequest asks a worker to run one follow-up sweep
type SweepRequest struct {
	RequestedAt time.Time `json:"requested_at"`
	Trigger     string    `json:"trigger"` // "api", "schedule"
}

// DecodeSweepRequest accepts the in-memory value or an AMQP body
func DecodeSweepRequest(payload any) (SweepRequest, error) {
	switch v := payload.(type) {
	case SweepRequest:
		return v, nil
	case *SweepRequest:
		if v == nil {
			return SweepRequest{}, errors.New("nil sweep request")
		}
		return *v, nil
	case []byte:
		var req SweepRequest
		if err := json.Unmarshal(v, &req); err != nil {
			return SweepRequest{}, fmt.Errorf("decode sweep request: %w", err)
		}
		return req, nil
	}
	return SweepRequest{}, fmt.Errorf("unexpected sweep payload type %T", payload)
}

// Sweeper runs one follow-up sweep
type Sweeper interface {
	SweepOnce(ctx context.Context, trigger string) error
}

// StartFollowUpSweepSubscriber runs a sweep for every request published
// on topic. Undecodable requests and requests that arrive while a sweep
// is running are dropped; anything else is returned for redelivery.
func StartFollowUpSweepSubscriber(ctx context.Context, q Queue, topic string, sweeper Sweeper, log *logger.Logger) error {
	log = log.WithComponent("sweep-subscriber")

	return q.Subscribe(topic, func(payload any) error {
		req, err := DecodeSweepRequest(payload)
		if err != nil {
			log.Warn().Err(err).Msg("dropping invalid sweep request")
			return nil
		}

		log.Info().Str("trigger", req.Trigger).Time("requested_at", req.RequestedAt).Msg("processing sweep request")

		err = sweeper.SweepOnce(ctx, req.Trigger)
		if errors.Is(err, appErrors.ErrSweepInProgress) {
			log.Info().Msg("sweep already running, request dropped")
			return nil
		}
		return err
	})
}
