package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sigmora-labs/ms-go-orders/app/entity"
	"github.com/sigmora-labs/ms-go-orders/app/provider"
	"github.com/sigmora-labs/ms-go-orders/app/repository"
	"github.com/sigmora-labs/ms-go-orders/app/types"
	"github.com/sigmora-labs/ms-go-orders/config"
)

const defaultBatchSize = int32(100)

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	SetInvoiceID(ctx context.Context, orderID, invoiceID string, now time.Time) error
	TransitionFromPending(ctx context.Context, orderID, newStatus string, paymentID *string, paidAt *time.Time, now time.Time) (bool, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Order, error)
}

type orderEventRepository interface {
	Create(ctx context.Context, event *entity.OrderEvent) error
}

type webhookLogRepository interface {
	Create(ctx context.Context, log *entity.WebhookLog) error
}

type catalogRepository interface {
	FindProductByID(ctx context.Context, id uint64) (*entity.Product, error)
	FindTierForProduct(ctx context.Context, tierID, productID uint64) (*entity.PricingTier, error)
	ListProducts(ctx context.Context) ([]*entity.Product, error)
	ListTiersForProduct(ctx context.Context, productID uint64) ([]*entity.PricingTier, error)
	ListFeaturesForTier(ctx context.Context, tierID uint64) ([]*entity.TierFeature, error)
}

type OrderService struct {
	orderRepo   orderRepository
	eventRepo   orderEventRepository
	webhookRepo webhookLogRepository
	catalogRepo catalogRepository
	providerReg *provider.Registry
	checkoutCfg config.CheckoutConfig
	ordersCfg   config.OrdersConfig
}

func NewOrderService(
	orderRepo orderRepository,
	eventRepo orderEventRepository,
	webhookRepo webhookLogRepository,
	catalogRepo catalogRepository,
	providerReg *provider.Registry,
	checkoutCfg config.CheckoutConfig,
	ordersCfg config.OrdersConfig,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		webhookRepo: webhookRepo,
		catalogRepo: catalogRepo,
		providerReg: providerReg,
		checkoutCfg: checkoutCfg,
		ordersCfg:   ordersCfg,
	}
}

// Checkout validates the product/tier pair, creates a pending order with the
// tier price snapshotted, and asks the gateway for a hosted payment URL.
// A gateway failure forces the order to failed; the user resubmits, nothing
// retries.
func (s *OrderService) Checkout(ctx context.Context, req *types.CheckoutRequest) (*entity.Order, string, error) {
	product, err := s.catalogRepo.FindProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, "", err
	}
	if product == nil {
		return nil, "", ErrProductNotFound
	}

	tier, err := s.catalogRepo.FindTierForProduct(ctx, req.PricingTierID, product.ID)
	if err != nil {
		return nil, "", err
	}
	if tier == nil {
		return nil, "", ErrTierNotFound
	}

	providerClient, err := s.providerReg.Get(provider.NowPaymentsName)
	if err != nil {
		return nil, "", ErrProviderUnsupported
	}

	now := time.Now().UTC()
	order := &entity.Order{
		OrderID:           uuid.NewString(),
		ProductID:         product.ID,
		PricingTierID:     tier.ID,
		FullName:          req.FullName,
		Email:             req.Email,
		PriceAtPurchase:   tier.Price,
		PriceCurrency:     strings.ToLower(strings.TrimSpace(s.checkoutCfg.Currency)),
		PlatformChoice:    req.PlatformChoice,
		ProjectName:       req.ProjectName,
		CoreFunctionality: req.CoreFunctionality,
		BrandDetails:      normalizeOptionalString(req.BrandDetails),
		PaymentProvider:   providerClient.Name(),
		Status:            entity.OrderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, "", err
	}

	_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:   order.ID,
		EventType: "order_created",
		NewStatus: order.Status,
		CreatedAt: now,
	})

	output, err := providerClient.InitiatePayment(ctx, &provider.InitiateInput{
		OrderID:        order.OrderID,
		Amount:         order.PriceAtPurchase,
		Currency:       order.PriceCurrency,
		Description:    fmt.Sprintf("Order for %s - %s", product.Title, tier.Name),
		IPNCallbackURL: s.callbackURL("/webhooks/" + providerClient.Name()),
		SuccessURL:     s.callbackURL("/payments/success"),
		CancelURL:      s.callbackURL("/payments/cancel"),
	})
	if err != nil {
		s.failOrderAfterGatewayError(ctx, order, err)
		return nil, "", err
	}

	if err := s.orderRepo.SetInvoiceID(ctx, order.OrderID, output.InvoiceID, time.Now().UTC()); err != nil {
		return nil, "", err
	}
	invoiceID := output.InvoiceID
	order.InvoiceID = &invoiceID

	return order, output.PaymentURL, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, req *types.ListOrdersRequest) ([]*entity.Order, error) {
	filter := repository.OrderFilter{
		Status:    strings.TrimSpace(req.Status),
		Email:     strings.TrimSpace(req.Email),
		ProductID: req.ProductID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultBatchSize
	}

	return s.orderRepo.List(ctx, filter)
}

func (s *OrderService) failOrderAfterGatewayError(ctx context.Context, order *entity.Order, cause error) {
	now := time.Now().UTC()
	transitioned, err := s.orderRepo.TransitionFromPending(ctx, order.OrderID, entity.OrderStatusFailed, nil, nil, now)
	if err != nil || !transitioned {
		return
	}

	oldStatus := entity.OrderStatusPending
	message := truncate(cause.Error(), 1024)
	_ = s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:     order.ID,
		EventType:   "gateway_error",
		OldStatus:   &oldStatus,
		NewStatus:   entity.OrderStatusFailed,
		PayloadJSON: &message,
		CreatedAt:   now,
	})
}

func (s *OrderService) callbackURL(path string) string {
	base := strings.TrimRight(strings.TrimSpace(s.checkoutCfg.PublicBaseURL), "/")
	return base + path
}

func (s *OrderService) batchSize() int32 {
	if s.ordersCfg.JobBatchSize > 0 {
		return s.ordersCfg.JobBatchSize
	}
	return defaultBatchSize
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
