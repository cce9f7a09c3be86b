// internal/controller/followup_controller.go
package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/queue"
)

type FollowUpController struct {
	Queue queue.Queue
	Topic string
	Log   *logger.Logger
}

// TriggerFollowUps queues a sweep; the worker decides whether it runs now
// or is folded into one already in progress.
func (c *FollowUpController) TriggerFollowUps(w http.ResponseWriter, r *http.Request) {
	req := queue.SweepRequest{RequestedAt: time.Now().UTC(), Trigger: "api"}
	if err := c.Queue.Publish(c.Topic, req); err != nil {
		writeError(w, c.Log, fmt.Errorf("failed to queue follow-up sweep: %w", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Follow-up sweep queued"})
}
