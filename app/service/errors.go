package service

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrTierNotFound        = errors.New("pricing tier not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProviderUnsupported = errors.New("provider is not supported")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrInvalidPayload      = errors.New("invalid webhook payload")
)
