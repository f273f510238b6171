package service

import (
	"context"
	"strings"
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
	"github.com/sigmora-labs/ms-go-orders/app/types"
)

// paymentStatusTransitions maps gateway payment_status values onto order
// statuses. Statuses not listed here (waiting, confirming, sending, ...) are
// acknowledged without touching the order.
var paymentStatusTransitions = map[string]string{
	"finished": entity.OrderStatusPaid,
	"failed":   entity.OrderStatusFailed,
	"expired":  entity.OrderStatusExpired,
}

// HandleWebhook processes one gateway notification: verify the signature,
// find the order, apply the pending-only transition. The order of checks is
// deliberate — the signature is verified before any lookup so unauthenticated
// callers learn nothing about which orders exist.
//
// A nil error means the delivery must be acknowledged with 200, including the
// unknown-order and already-terminal cases; the gateway cannot resolve those
// by retrying.
func (s *OrderService) HandleWebhook(ctx context.Context, providerName, signature string, payload []byte) (*entity.Order, error) {
	providerClient, err := s.providerReg.Get(providerName)
	if err != nil {
		return nil, ErrProviderUnsupported
	}

	if !providerClient.VerifyWebhookSignature(payload, signature) {
		s.logWebhook(ctx, nil, providerClient.Name(), signature, payload, entity.WebhookDispositionRejected, "signature verification failed")
		return nil, ErrInvalidSignature
	}

	parsed, err := types.ParseIPNPayload(payload)
	if err != nil {
		s.logWebhook(ctx, nil, providerClient.Name(), signature, payload, entity.WebhookDispositionRejected, "payload could not be parsed")
		return nil, ErrInvalidPayload
	}

	order, err := s.orderRepo.FindByOrderID(ctx, parsed.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.logWebhook(ctx, nil, providerClient.Name(), signature, payload, entity.WebhookDispositionIgnored, "no order for order_id "+parsed.OrderID)
		return nil, nil
	}

	newStatus, ok := paymentStatusTransitions[parsed.PaymentStatus]
	if !ok {
		s.logWebhook(ctx, &order.ID, providerClient.Name(), signature, payload, entity.WebhookDispositionIgnored, "unhandled payment_status "+parsed.PaymentStatus)
		return order, nil
	}

	now := time.Now().UTC()
	var paymentID *string
	var paidAt *time.Time
	if newStatus == entity.OrderStatusPaid {
		if id := strings.TrimSpace(parsed.PaymentID.String()); id != "" {
			paymentID = &id
		}
		paidAt = &now
	}

	transitioned, err := s.orderRepo.TransitionFromPending(ctx, order.OrderID, newStatus, paymentID, paidAt, now)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		s.logWebhook(ctx, &order.ID, providerClient.Name(), signature, payload, entity.WebhookDispositionIgnored, "order already "+order.Status)
		return order, nil
	}

	oldStatus := entity.OrderStatusPending
	payloadJSON := string(payload)
	_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:     order.ID,
		EventType:   "payment_" + parsed.PaymentStatus,
		OldStatus:   &oldStatus,
		NewStatus:   newStatus,
		PayloadJSON: &payloadJSON,
		CreatedAt:   now,
	})

	s.logWebhook(ctx, &order.ID, providerClient.Name(), signature, payload, entity.WebhookDispositionProcessed, "")

	order.Status = newStatus
	order.PaymentID = paymentID
	order.PaidAt = paidAt
	order.UpdatedAt = now

	return order, nil
}

func (s *OrderService) logWebhook(ctx context.Context, orderID *uint64, providerName, signature string, payload []byte, disposition, reason string) {
	log := &entity.WebhookLog{
		OrderID:     orderID,
		Provider:    providerName,
		Signature:   strings.TrimSpace(signature),
		PayloadJSON: string(payload),
		Disposition: disposition,
		CreatedAt:   time.Now().UTC(),
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		trimmed := truncate(reason, 1024)
		log.Error = &trimmed
	}
	_ = s.webhookRepo.Create(ctx, log)
}
