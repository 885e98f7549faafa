package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPricingDefaults(t *testing.T) {
	t.Setenv("PRICING_FILE", "")
	t.Setenv("GAS_PRICE_PER_LITER", "")
	p, err := LoadPricing()
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}
	if p != DefaultPricing() {
		t.Fatalf("got %+v, want defaults", p)
	}
}

func TestLoadPricingFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	body := []byte("gasPricePerLiter: 2.10\nhotelNightly: 95\nmealPrice: 12\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRICING_FILE", path)
	t.Setenv("HOTEL_NIGHTLY", "140")
	t.Setenv("GAS_PRICE_PER_LITER", "")
	t.Setenv("MEAL_PRICE", "")

	p, err := LoadPricing()
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}
	if p.GasPricePerLiter != 2.10 || p.MealPrice != 12 {
		t.Fatalf("file values not applied: %+v", p)
	}
	if p.HotelNightly != 140 {
		t.Fatalf("env override lost: %+v", p)
	}
}

func TestLoadPricingMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(path, []byte("gasPricePerLiter: [nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRICING_FILE", path)
	if _, err := LoadPricing(); err == nil {
		t.Fatal("expected a parse error")
	}
}
