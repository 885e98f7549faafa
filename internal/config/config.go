// Package config loads service configuration from the environment plus
// an optional YAML pricing file.
package config

import (
	"fmt"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// Pricing holds the default unit prices applied to trips that do not
// set their own. Values are currency-agnostic.
type Pricing struct {
	GasPricePerLiter float64 `yaml:"gasPricePerLiter"`
	HotelNightly     float64 `yaml:"hotelNightly"`
	MealPrice        float64 `yaml:"mealPrice"`
}

// DefaultPricing matches a mid-range North American road trip.
func DefaultPricing() Pricing {
	return Pricing{GasPricePerLiter: 1.60, HotelNightly: 120, MealPrice: 15}
}

// LoadPricing reads the pricing file named by PRICING_FILE, overlays
// environment overrides, and falls back to defaults. A missing file is
// not an error; a malformed one is.
func LoadPricing() (Pricing, error) {
	p := DefaultPricing()
	if path := os.Getenv("PRICING_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("read pricing file: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse pricing file: %w", err)
		}
	}
	if v := envFloat("GAS_PRICE_PER_LITER"); v > 0 {
		p.GasPricePerLiter = v
	}
	if v := envFloat("HOTEL_NIGHTLY"); v > 0 {
		p.HotelNightly = v
	}
	if v := envFloat("MEAL_PRICE"); v > 0 {
		p.MealPrice = v
	}
	return p, nil
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
