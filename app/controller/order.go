package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sigmora-labs/ms-go-orders/app/factory"
	"github.com/sigmora-labs/ms-go-orders/app/mapper"
	"github.com/sigmora-labs/ms-go-orders/app/provider"
	"github.com/sigmora-labs/ms-go-orders/app/service"
	"github.com/sigmora-labs/ms-go-orders/app/types"
	"github.com/sirupsen/logrus"
)

type OrderController struct {
	orderService *service.OrderService
	providerReg  *provider.Registry
	logger       logrus.FieldLogger
}

func NewOrderController(orderService *service.OrderService, providerReg *provider.Registry) *OrderController {
	return &OrderController{
		orderService: orderService,
		providerReg:  providerReg,
		logger:       factory.NewModuleLogger("orders-controller"),
	}
}

func (c *OrderController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// Checkout handles the order form for a product pricing tier. On success the
// response is a redirect to the gateway's hosted payment page, not a body.
func (c *OrderController) Checkout(ctx echo.Context) error {
	req, err := types.NewCheckoutRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	_, paymentURL, err := c.orderService.Checkout(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrTierNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, provider.ErrGateway):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Checkout gateway call failed")
			return c.writeError(ctx, http.StatusBadGateway, "could not connect to the payment gateway, please try again")
		default:
			c.logger.WithError(err).Error("Checkout failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.Redirect(http.StatusSeeOther, paymentURL)
}

// HandleWebhook receives payment-status notifications from a gateway.
// Contract: 400 for an unparsable body, 403 for a bad signature, 200 for
// everything else so the gateway stops redelivering.
func (c *OrderController) HandleWebhook(ctx echo.Context) error {
	providerName := strings.ToLower(strings.TrimSpace(ctx.Param("provider")))

	providerClient, err := c.providerReg.Get(providerName)
	if err != nil {
		return c.writeError(ctx, http.StatusNotFound, "unknown payment provider")
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil || !json.Valid(payload) {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	signature := ctx.Request().Header.Get(providerClient.SignatureHeader())

	_, err = c.orderService.HandleWebhook(ctx.Request().Context(), providerName, signature, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			factory.LoggerWithContext(c.logger, ctx).WithField("provider", providerName).Warn("Webhook signature rejected")
			return c.writeError(ctx, http.StatusForbidden, "invalid signature")
		case errors.Is(err, service.ErrInvalidPayload):
			return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
		case errors.Is(err, service.ErrProviderUnsupported):
			return c.writeError(ctx, http.StatusNotFound, "unknown payment provider")
		default:
			c.logger.WithError(err).Error("Handle webhook failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "webhook processed"})
}

func (c *OrderController) GetOrder(ctx echo.Context) error {
	req, err := types.NewGetOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.orderService.GetOrder(ctx.Request().Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		}
		c.logger.WithError(err).Error("Get order failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.OrderEnvelopeResponse{Order: mapper.OrderToResponse(item)})
}

func (c *OrderController) ListOrders(ctx echo.Context) error {
	req, err := types.NewListOrdersRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.orderService.ListOrders(ctx.Request().Context(), req)
	if err != nil {
		c.logger.WithError(err).Error("List orders failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListOrdersResponse{Orders: mapper.OrdersToResponse(items)})
}

func (c *OrderController) GetProduct(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid product id")
	}

	item, err := c.orderService.GetProduct(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "product not found")
		}
		c.logger.WithError(err).Error("Get product failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ProductEnvelopeResponse{Product: mapper.ProductToResponse(item)})
}

func (c *OrderController) ListProducts(ctx echo.Context) error {
	items, err := c.orderService.ListProducts(ctx.Request().Context())
	if err != nil {
		c.logger.WithError(err).Error("List products failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListProductsResponse{Products: mapper.ProductsToResponse(items)})
}

// PaymentSuccess is the landing endpoint the gateway redirects paid customers
// to. The site renders its own page; this just acknowledges the redirect.
func (c *OrderController) PaymentSuccess(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "payment received, thank you"})
}

func (c *OrderController) PaymentCancel(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "payment was not completed"})
}

func (c *OrderController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(ctx.Param(name), 10, 64)
}
