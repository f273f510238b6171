package service

import (
	"context"
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
)

// RunExpirePendingBatch marks stale pending orders expired. The gateway also
// reports expiry over IPN; the conditional transition makes whichever side
// arrives first win and the other a no-op.
func (s *OrderService) RunExpirePendingBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.ordersCfg.PendingTimeout)
	items, err := s.orderRepo.ListExpiredPending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, order := range items {
		if order == nil || entity.TerminalOrderStatus(order.Status) {
			continue
		}

		transitioned, err := s.orderRepo.TransitionFromPending(ctx, order.OrderID, entity.OrderStatusExpired, nil, nil, now)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		if !transitioned {
			continue
		}

		oldStatus := entity.OrderStatusPending
		_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
			OrderID:   order.ID,
			EventType: "order_expired",
			OldStatus: &oldStatus,
			NewStatus: entity.OrderStatusExpired,
			CreatedAt: now,
		})
	}

	return firstErr
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
