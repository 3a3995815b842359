// Package manifest decodes the card's extension manifest (extension.hcl).
package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"studentclubs/internal/domain/settings"
)

// Manifest errors
var (
	ErrNoCard = errors.New("manifest declares no card")
)

// Manifest is the extension manifest: publisher metadata plus card declarations.
type Manifest struct {
	Name      string  `hcl:"name"`
	Publisher string  `hcl:"publisher"`
	Cards     []*Card `hcl:"card,block"`
}

// Card declares one card and the configuration an administrator fills in.
type Card struct {
	Type        string  `hcl:"type,label"`
	Title       string  `hcl:"title"`
	DisplayType string  `hcl:"display_type,optional"`
	Description string  `hcl:"description,optional"`
	Pipeline    string  `hcl:"pipeline,optional"`
	Client      *Client `hcl:"client,block"`
	Server      *Server `hcl:"server,block"`
}

// Client holds the settings the card's client side may read.
type Client struct {
	ClubLimit    int    `hcl:"club_limit"`
	ClubCategory string `hcl:"club_category"`
	ClubFees     string `hcl:"club_fees"`
}

// Server holds settings never sent to the browser.
type Server struct {
	EthosAPIKey *string `hcl:"ethos_api_key,optional"`
}

// Load parses and decodes the manifest at path.
// PRE: path names an HCL file
// POST: Returns a manifest declaring at least one card, or an error
func Load(path string) (*Manifest, error) {
	slog.Debug("manifest_decode", "path", path)
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %s", path, diags.Error())
	}
	return decode(path, file.Body)
}

// Parse decodes manifest source held in memory; filename is used in diagnostics.
func Parse(src []byte, filename string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %s", filename, diags.Error())
	}
	return decode(filename, file.Body)
}

func decode(name string, body hcl.Body) (*Manifest, error) {
	var m Manifest
	if diags := gohcl.DecodeBody(body, nil, &m); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %s", name, diags.Error())
	}
	if len(m.Cards) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoCard)
	}
	slog.Debug("manifest_decoded", "path", name, "cards", len(m.Cards))
	return &m, nil
}

// Card returns the first declared card.
func (m *Manifest) Card() *Card {
	return m.Cards[0]
}

// Settings builds the card settings. A non-empty apiKeyOverride replaces the
// manifest key; with neither, the published placeholder applies.
// PRE: m was returned by Load or Parse
// POST: Returns validated settings
func (m *Manifest) Settings(apiKeyOverride string, production bool) (settings.Card, error) {
	c := m.Card()
	if c.Client == nil {
		return settings.Card{}, fmt.Errorf("card %q: client block is required", c.Type)
	}
	s := settings.Card{
		ClubLimit:    c.Client.ClubLimit,
		ClubCategory: strings.TrimSpace(c.Client.ClubCategory),
		ClubFees:     strings.TrimSpace(c.Client.ClubFees),
		EthosAPIKey:  settings.PlaceholderAPIKey,
	}
	if c.Server != nil && c.Server.EthosAPIKey != nil {
		s.EthosAPIKey = strings.TrimSpace(*c.Server.EthosAPIKey)
	}
	if v := strings.TrimSpace(apiKeyOverride); v != "" {
		s.EthosAPIKey = v
	}
	if err := s.Validate(production); err != nil {
		return settings.Card{}, fmt.Errorf("card %q: %w", c.Type, err)
	}
	return s, nil
}
