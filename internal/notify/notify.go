// Package notify announces layout lifecycle events to chat channels.
//
// Announcements are best effort: a failed post is logged and dropped, it
// never fails the operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/zulandar/waybill/internal/models"
)

// Notifier posts a single announcement to one destination.
type Notifier interface {
	Name() string
	Announce(ctx context.Context, message string) error
}

// Hub fans announcements out to every configured notifier.
type Hub struct {
	notifiers []Notifier
}

// NewHub builds a hub over the given notifiers. A hub with none is valid
// and silently does nothing.
func NewHub(notifiers ...Notifier) *Hub {
	return &Hub{notifiers: notifiers}
}

// SessionAdvanced announces a completed session advance.
func (h *Hub) SessionAdvanced(ctx context.Context, sessionNumber, trainsDeleted int) {
	h.broadcast(ctx, fmt.Sprintf(
		"Operating session advanced to %d. %d completed trains cleared.",
		sessionNumber, trainsDeleted))
}

// SessionRolledBack announces a rollback to the previous session.
func (h *Hub) SessionRolledBack(ctx context.Context, sessionNumber int) {
	h.broadcast(ctx, fmt.Sprintf("Rolled back to operating session %d.", sessionNumber))
}

// TrainCompleted announces a finished run with its delivery totals.
func (h *Hub) TrainCompleted(ctx context.Context, t *models.Train) {
	setouts := 0
	if t.SwitchList != nil {
		setouts = t.SwitchList.TotalSetouts
	}
	h.broadcast(ctx, fmt.Sprintf("Train %q completed its run, %d cars delivered.", t.Name, setouts))
}

func (h *Hub) broadcast(ctx context.Context, message string) {
	for _, n := range h.notifiers {
		if err := n.Announce(ctx, message); err != nil {
			log.Printf("notify: %s announce failed: %v", n.Name(), err)
		}
	}
}
