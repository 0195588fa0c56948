package moderation

import (
	"fmt"
	"strings"
)

// highRiskCountries are signup countries that account for most romance and
// payment scams reported by riders. Keys are lower case.
var highRiskCountries = map[string]struct{}{
	"nigeria":       {},
	"ghana":         {},
	"cameroon":      {},
	"benin":         {},
	"togo":          {},
	"ivory coast":   {},
	"côte d'ivoire": {},
	"senegal":       {},
	"philippines":   {},
	"malaysia":      {},
	"indonesia":     {},
	"romania":       {},
	"pakistan":      {},
}

var unitedStatesNames = map[string]struct{}{
	"united states":            {},
	"united states of america": {},
	"usa":                      {},
	"us":                       {},
}

// RiskInput is the location data of a user. Country is derived from the
// signup IP; City and State are what the user typed into their profile.
type RiskInput struct {
	Country string
	City    string
	State   string
}

// EvaluateRiskFlags returns human readable signup risk indicators. The high
// risk country flag always comes before the location mismatch flag.
func EvaluateRiskFlags(in RiskInput) []string {
	flags := []string{}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		return flags
	}
	key := strings.ToLower(country)

	if _, ok := highRiskCountries[key]; ok {
		flags = append(flags, fmt.Sprintf("High-risk country: %s", country))
	}

	_, isUS := unitedStatesNames[key]
	claimsUS := strings.TrimSpace(in.City) != "" || strings.TrimSpace(in.State) != ""
	if !isUS && claimsUS {
		flags = append(flags, fmt.Sprintf("IP in %s but claims US location", country))
	}
	return flags
}
