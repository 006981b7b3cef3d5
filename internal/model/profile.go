// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import "fmt"

// ResponseProfile is a named generation preset. Selecting a profile is a
// pure lookup: the registry is fixed at startup and never mutated.
type ResponseProfile struct {
	// Name is the display name shown in selectors ("Short", "Balanced", "Long").
	Name string
	// MaxTokens caps the completion length. Always positive.
	MaxTokens int
	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
	// TopP is the nucleus sampling cutoff in [0, 1].
	TopP float64
}

// DefaultProfileName is the profile used when none is selected.
const DefaultProfileName = "Balanced"

// Profiles maps profile names to their presets. The three entries cover
// quick answers, everyday replies, and long-form output.
var Profiles = map[string]ResponseProfile{
	"Short": {
		Name:        "Short",
		MaxTokens:   256,
		Temperature: 0.6,
		TopP:        0.6,
	},
	"Balanced": {
		Name:        "Balanced",
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.7,
	},
	"Long": {
		Name:        "Long",
		MaxTokens:   2048,
		Temperature: 0.8,
		TopP:        0.8,
	},
}

// ProfileNames returns the profile names in selector order.
func ProfileNames() []string {
	return []string{"Short", "Balanced", "Long"}
}

// GetProfile looks up a profile by name. The second return is false for
// unknown names.
func GetProfile(name string) (ResponseProfile, bool) {
	p, ok := Profiles[name]
	return p, ok
}

// DefaultProfile returns the preset used when none is selected.
func DefaultProfile() ResponseProfile {
	return Profiles[DefaultProfileName]
}

// Validate checks that the profile values are inside their legal ranges.
func (p ResponseProfile) Validate() error {
	if p.MaxTokens <= 0 {
		return fmt.Errorf("profile %s: max tokens must be positive, got %d", p.Name, p.MaxTokens)
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("profile %s: temperature must be in [0, 1], got %g", p.Name, p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("profile %s: top_p must be in [0, 1], got %g", p.Name, p.TopP)
	}
	return nil
}
