package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Mailer is satisfied by *email.Service
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []cart.Item) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer Mailer
}

func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent processes an event from Kafka. Events other than OrderPlaced are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType == order.EventOrderPlaced {
		return h.handleOrderPlaced(event)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(event store.Event) error {
	var e order.OrderPlaced
	if err := event.Decode(&e); err != nil {
		return err
	}

	logger := log.WithFields(log.Fields{"order_id": e.OrderID, "user_id": e.UserID})
	if e.Email == "" {
		logger.Warn("[Notifier] OrderPlaced without email, skipping")
		return nil
	}

	if err := h.mailer.SendOrderConfirmation(e.Email, e.OrderID, e.Total, e.Items); err != nil {
		return err
	}

	logger.WithField("to", e.Email).Info("[Notifier] Order confirmation email sent")
	return nil
}
