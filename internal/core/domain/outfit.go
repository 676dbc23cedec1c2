// Package domain contains the core business entities for the stylist service.
// This package defines the fundamental types and business rules that are independent
// of external frameworks and infrastructure concerns.
package domain

import (
	"fmt"
	"strings"
)

// Mood describes the feeling an outfit is styled around.
// The set is closed; unrecognized input normalizes to MoodConfident.
type Mood string

const (
	// MoodConfident is bold, statement-making styling
	MoodConfident Mood = "confident"

	// MoodChill is relaxed, comfort-first styling
	MoodChill Mood = "chill"

	// MoodSoft is gentle, pastel-leaning styling
	MoodSoft Mood = "soft"

	// MoodPower is sharp, professional styling
	MoodPower Mood = "power"

	// MoodEdgy is dark, unconventional styling
	MoodEdgy Mood = "edgy"
)

// ParseMood normalizes free-form mood input to a known Mood.
// Unrecognized or empty input maps to MoodConfident, which is the
// product default for the daily outfit.
func ParseMood(s string) Mood {
	switch Mood(strings.ToLower(strings.TrimSpace(s))) {
	case MoodConfident, MoodChill, MoodSoft, MoodPower, MoodEdgy:
		return Mood(strings.ToLower(strings.TrimSpace(s)))
	default:
		return MoodConfident
	}
}

// Outfit is a single styled recommendation: a named set of clothing items
// with a color palette. Items are free-text names, ordered head to toe by
// convention but not enforced.
type Outfit struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Items        []string `json:"items"`
	Mood         Mood     `json:"mood"`
	Occasion     string   `json:"occasion"`
	Colors       []string `json:"colors"`
	WeatherNotes string   `json:"weatherNotes,omitempty"`
}

// Clone returns a deep copy of the outfit. Fallback tables hand out
// template outfits; callers append condition-specific items, so shared
// backing arrays would leak between requests.
func (o Outfit) Clone() Outfit {
	c := o
	c.Items = append([]string(nil), o.Items...)
	c.Colors = append([]string(nil), o.Colors...)

	return c
}

// ItemCategory is a coarse classification of a clothing item name.
type ItemCategory string

const (
	CategoryTop       ItemCategory = "top"
	CategoryBottom    ItemCategory = "bottom"
	CategoryShoes     ItemCategory = "shoes"
	CategoryOuterwear ItemCategory = "outerwear"
	CategoryDress     ItemCategory = "dress"
	CategoryAccessory ItemCategory = "accessory"
)

// ClassifyItem infers a category from substrings in a free-text item name.
// This is a best-effort heuristic used to reconcile generated item names
// against a user's real inventory; it is not authoritative. Unmatched
// names classify as CategoryAccessory.
func ClassifyItem(name string) ItemCategory {
	n := strings.ToLower(name)

	switch {
	case containsAny(n, "coat", "jacket", "parka", "blazer", "cardigan", "hoodie"):
		return CategoryOuterwear
	case containsAny(n, "boot", "shoe", "sneaker", "sandal", "loafer", "heel", "pump", "flat"):
		return CategoryShoes
	case containsAny(n, "dress", "gown", "skirt"):
		return CategoryDress
	case containsAny(n, "jeans", "trouser", "pant", "short", "legging", "jogger"):
		return CategoryBottom
	case containsAny(n, "shirt", "tee", "top", "sweater", "blouse", "t-shirt"):
		return CategoryTop
	default:
		return CategoryAccessory
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// StyleError represents domain-specific errors that can occur during outfit operations.
// It provides structured error information with error codes and optional underlying causes.
type StyleError struct {
	// Code identifies the type of error for programmatic handling
	Code string

	// Message provides a human-readable error description
	Message string

	// Cause wraps an underlying error if applicable
	Cause error
}

// Error implements the error interface for StyleError.
func (e StyleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
