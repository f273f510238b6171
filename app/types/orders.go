package types

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sigmora-labs/ms-go-orders/app/entity"
)

var platformChoices = map[string]bool{
	"web":     true,
	"android": true,
	"ios":     true,
}

// CheckoutRequest is the order form submitted against a product pricing tier.
type CheckoutRequest struct {
	ProductID     uint64 `json:"-" form:"-"`
	PricingTierID uint64 `json:"-" form:"-"`

	FullName          string `json:"full_name" form:"full_name"`
	Email             string `json:"email" form:"email"`
	ProjectName       string `json:"project_name" form:"project_name"`
	PlatformChoice    string `json:"platform_choice" form:"platform_choice"`
	CoreFunctionality string `json:"core_functionality" form:"core_functionality"`
	BrandDetails      string `json:"brand_details" form:"brand_details"`
}

func NewCheckoutRequestFromContext(ctx echo.Context) (*CheckoutRequest, error) {
	productID, err := strconv.ParseUint(ctx.Param("product_id"), 10, 64)
	if err != nil {
		return nil, err
	}
	tierID, err := strconv.ParseUint(ctx.Param("tier_id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body CheckoutRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.ProductID = productID
	body.PricingTierID = tierID
	body.FullName = strings.TrimSpace(body.FullName)
	body.Email = strings.TrimSpace(body.Email)
	body.ProjectName = strings.TrimSpace(body.ProjectName)
	body.PlatformChoice = strings.ToLower(strings.TrimSpace(body.PlatformChoice))
	body.CoreFunctionality = strings.TrimSpace(body.CoreFunctionality)
	body.BrandDetails = strings.TrimSpace(body.BrandDetails)

	return &body, nil
}

func (r *CheckoutRequest) Validate() error {
	if r.ProductID == 0 {
		return errors.New("invalid product id")
	}
	if r.PricingTierID == 0 {
		return errors.New("invalid pricing tier id")
	}
	if r.FullName == "" {
		return errors.New("full_name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email is invalid")
	}
	if r.ProjectName == "" {
		return errors.New("project_name is required")
	}
	if !platformChoices[r.PlatformChoice] {
		return errors.New("platform_choice must be web, android, or ios")
	}
	if r.CoreFunctionality == "" {
		return errors.New("core_functionality is required")
	}
	return nil
}

type GetOrderRequest struct {
	OrderID string
}

func NewGetOrderRequestFromContext(ctx echo.Context) (*GetOrderRequest, error) {
	return &GetOrderRequest{OrderID: strings.TrimSpace(ctx.Param("order_id"))}, nil
}

func (r *GetOrderRequest) Validate() error {
	if _, err := uuid.Parse(r.OrderID); err != nil {
		return errors.New("invalid order id")
	}
	return nil
}

type ListOrdersRequest struct {
	Status    string
	Email     string
	ProductID uint64
	Limit     int32
	Offset    int32
}

func NewListOrdersRequestFromContext(ctx echo.Context) (*ListOrdersRequest, error) {
	req := &ListOrdersRequest{
		Status: strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))),
		Email:  strings.TrimSpace(ctx.QueryParam("email")),
		Limit:  100,
		Offset: 0,
	}

	if productRaw := strings.TrimSpace(ctx.QueryParam("product_id")); productRaw != "" {
		productID, err := strconv.ParseUint(productRaw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ProductID = productID
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListOrdersRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	if r.Status != "" && !isValidOrderStatus(r.Status) {
		return errors.New("invalid status")
	}
	return nil
}

// IPNPayload carries the fields this service reads from a NOWPayments
// notification body. Numeric ids stay json.Number so they survive both the
// numeric and string forms the gateway has been observed to send.
type IPNPayload struct {
	OrderID       string      `json:"order_id"`
	PaymentStatus string      `json:"payment_status"`
	PaymentID     json.Number `json:"payment_id"`
	InvoiceID     json.Number `json:"invoice_id"`
}

func ParseIPNPayload(payload []byte) (*IPNPayload, error) {
	var body IPNPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}
	body.OrderID = strings.TrimSpace(body.OrderID)
	body.PaymentStatus = strings.ToLower(strings.TrimSpace(body.PaymentStatus))
	if body.OrderID == "" {
		return nil, errors.New("order_id is required")
	}
	if body.PaymentStatus == "" {
		return nil, errors.New("payment_status is required")
	}
	return &body, nil
}

func isValidOrderStatus(status string) bool {
	switch status {
	case entity.OrderStatusPending,
		entity.OrderStatusPaid,
		entity.OrderStatusFailed,
		entity.OrderStatusExpired:
		return true
	default:
		return false
	}
}
