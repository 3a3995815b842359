package settings

import (
	"errors"
	"strings"
)

// PlaceholderAPIKey is the default key published with the card manifest.
// It identifies an unconfigured deployment, never a real credential.
const PlaceholderAPIKey = "6020297c-8506-4f23-b2db-6c95dc0f0bee"

// Domain errors
var (
	ErrNegativeLimit     = errors.New("club limit cannot be negative")
	ErrEmptyCategory     = errors.New("club category cannot be empty")
	ErrEmptyFees         = errors.New("club fees cannot be empty")
	ErrEmptyAPIKey       = errors.New("ethos api key cannot be empty")
	ErrPlaceholderAPIKey = errors.New("ethos api key is the published placeholder")
)

// Card holds the administrator configuration of one card instance.
// ClubLimit, ClubCategory and ClubFees are client-visible; EthosAPIKey is server-only.
type Card struct {
	ClubLimit    int
	ClubCategory string
	ClubFees     string
	EthosAPIKey  string
}

// Validate checks the configuration is complete.
// In production the placeholder API key is rejected; elsewhere it is accepted.
// PRE: Card struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Card) Validate(production bool) error {
	if c.ClubLimit < 0 {
		return ErrNegativeLimit
	}
	if strings.TrimSpace(c.ClubCategory) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(c.ClubFees) == "" {
		return ErrEmptyFees
	}
	if strings.TrimSpace(c.EthosAPIKey) == "" {
		return ErrEmptyAPIKey
	}
	if production && c.UsesPlaceholderKey() {
		return ErrPlaceholderAPIKey
	}
	return nil
}

// UsesPlaceholderKey reports whether the API key is the published default.
func (c *Card) UsesPlaceholderKey() bool {
	return strings.TrimSpace(c.EthosAPIKey) == PlaceholderAPIKey
}
