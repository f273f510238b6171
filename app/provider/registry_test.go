package provider

import (
	"errors"
	"testing"
)

func TestRegistryResolvesByName(t *testing.T) {
	p := NewNowPaymentsProvider(NowPaymentsConfig{})
	registry := NewRegistry(p)

	resolved, err := registry.Get("nowpayments")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resolved.Name() != NowPaymentsName {
		t.Fatalf("unexpected provider: %s", resolved.Name())
	}

	if _, err := registry.Get(" NowPayments "); err != nil {
		t.Fatalf("expected case-insensitive lookup, got %v", err)
	}

	if _, err := registry.Get("flutterwave"); !errors.Is(err, ErrProviderNotSupported) {
		t.Fatalf("expected ErrProviderNotSupported, got %v", err)
	}
}
