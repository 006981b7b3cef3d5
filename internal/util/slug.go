// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the llamachat application.
package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSlugLen bounds generated filenames well under common filesystem limits.
const maxSlugLen = 48

// Slugify converts an arbitrary title into a string safe for use as a
// filename component. Input is NFKC-normalized first so visually identical
// Unicode variants (fullwidth forms, ligatures) collapse to the same slug
// instead of producing lookalike filenames.
func Slugify(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
