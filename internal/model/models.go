// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import (
	"fmt"
	"strings"
)

// ModelChoice describes a selectable chat model.
type ModelChoice struct {
	// ID is the identifier sent to the API.
	ID string
	// Name is the display name shown in the model selector.
	Name string
	// ContextWindow is the model's context length in tokens.
	ContextWindow int
	// Description is a one-line summary for pickers and help output.
	Description string
}

// DefaultModelName is the display name of the model selected at startup.
const DefaultModelName = "Llama3.3-70B-Versatile"

// Choices maps display names to model metadata. The set is a fixed
// allow-list: selection changes which entry is active, never the map.
var Choices = map[string]ModelChoice{
	"Llama3.3-70B-Versatile": {
		ID:            "llama-3.3-70b-versatile",
		Name:          "Llama3.3-70B-Versatile",
		ContextWindow: 128000,
		Description:   "General-purpose instruction model, strong all-rounder",
	},
	"DeepSeek-V2-70B": {
		ID:            "deepseek-r1-distill-llama-70b",
		Name:          "DeepSeek-V2-70B",
		ContextWindow: 128000,
		Description:   "Reasoning-tuned distillation, better at multi-step problems",
	},
}

// ChoiceNames returns the display names in selector order.
func ChoiceNames() []string {
	return []string{"Llama3.3-70B-Versatile", "DeepSeek-V2-70B"}
}

// DefaultChoice returns the model active at startup.
func DefaultChoice() ModelChoice {
	return Choices[DefaultModelName]
}

// GetModelChoice resolves a display name or API ID to a model. Matching
// tries exact display name, exact API ID, then a case-insensitive prefix
// of the display name, so "/model deepseek" works at the prompt.
func GetModelChoice(nameOrID string) (ModelChoice, bool) {
	if c, ok := Choices[nameOrID]; ok {
		return c, true
	}
	for _, c := range Choices {
		if c.ID == nameOrID {
			return c, true
		}
	}
	lower := strings.ToLower(nameOrID)
	if lower == "" {
		return ModelChoice{}, false
	}
	for _, name := range ChoiceNames() {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return Choices[name], true
		}
	}
	return ModelChoice{}, false
}

// IsAllowedModel reports whether apiID is in the fixed allow-list. The
// client checks this before any network call, so unknown models never
// leave the process.
func IsAllowedModel(apiID string) bool {
	for _, c := range Choices {
		if c.ID == apiID {
			return true
		}
	}
	return false
}

// ContextString returns a formatted context window string.
func (c ModelChoice) ContextString() string {
	if c.ContextWindow >= 1000 {
		return fmt.Sprintf("%dK ctx", c.ContextWindow/1000)
	}
	return fmt.Sprintf("%d ctx", c.ContextWindow)
}
