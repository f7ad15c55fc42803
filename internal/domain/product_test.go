package domain

import (
	"errors"
	"testing"
)

func TestProduct_Validate_OK(t *testing.T) {
	p := Product{ID: "prod-1", Name: "Galaxy A14", PriceMinor: 19900, Stock: 5}
	if errs := p.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestProduct_Validate_Invalid(t *testing.T) {
	p := Product{ID: "prod-1", Name: "", PriceMinor: -1, Stock: -2}

	errs := p.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}

	want := []error{ErrProductNameRequired, ErrProductPriceInvalid, ErrProductStockInvalid}
	for _, sentinel := range want {
		found := false
		for _, err := range errs {
			if errors.Is(err, sentinel) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %v in %v", sentinel, errs)
		}
	}
}

func TestIsVersionConflict(t *testing.T) {
	if !IsVersionConflict(ErrOrderVersionConflict) {
		t.Error("expected true for ErrOrderVersionConflict")
	}
	if IsVersionConflict(ErrOrderNotFound) {
		t.Error("expected false for ErrOrderNotFound")
	}
	if IsVersionConflict(nil) {
		t.Error("expected false for nil")
	}
}
