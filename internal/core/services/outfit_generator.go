package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// moodFallbacks is the static table substituted whenever the
// text-generation provider is disabled, errors, or returns something
// unparseable. Every entry carries at least five items.
var moodFallbacks = map[domain.Mood]domain.Outfit{
	domain.MoodConfident: {
		Title:       "Urban Explorer Look",
		Description: "Bold and confident streetwear for making a statement",
		Items: []string{
			"Black Leather Moto Jacket",
			"White Graphic Tee",
			"Distressed Denim Jeans",
			"Combat Boots",
			"Silver Chain Necklace",
		},
		Mood:     domain.MoodConfident,
		Occasion: "casual",
		Colors:   []string{"#000000", "#FFFFFF", "#36454F"},
	},
	domain.MoodChill: {
		Title:       "Cozy Comfort Outfit",
		Description: "Relaxed and comfortable for laid-back days",
		Items: []string{
			"Oversized Hoodie",
			"Black Leggings",
			"Platform Sneakers",
			"Beanie",
			"Crossbody Bag",
		},
		Mood:     domain.MoodChill,
		Occasion: "casual",
		Colors:   []string{"#8B4513", "#000000", "#696969"},
	},
	domain.MoodSoft: {
		Title:       "Gentle Elegance",
		Description: "Soft and delicate with gentle pastel tones",
		Items: []string{
			"Cashmere Sweater",
			"Wide-leg Trousers",
			"Minimalist Sneakers",
			"Delicate Jewelry",
			"Structured Tote",
		},
		Mood:     domain.MoodSoft,
		Occasion: "casual",
		Colors:   []string{"#FFB6C1", "#FFFFFF", "#E6E6FA"},
	},
	domain.MoodPower: {
		Title:       "Executive Power",
		Description: "Sharp and sophisticated professional look",
		Items: []string{
			"Structured Blazer",
			"Crisp White Button-Down",
			"Tailored Trousers",
			"Leather Loafers",
			"Statement Watch",
		},
		Mood:     domain.MoodPower,
		Occasion: "work",
		Colors:   []string{"#000080", "#FFFFFF", "#2F4F4F"},
	},
	domain.MoodEdgy: {
		Title:       "Dark Aesthetic",
		Description: "Bold and edgy with monochrome elements",
		Items: []string{
			"Biker Jacket",
			"Ripped Black Jeans",
			"Harness Details",
			"Combat Boots",
			"Chunky Rings",
		},
		Mood:     domain.MoodEdgy,
		Occasion: "party",
		Colors:   []string{"#000000", "#2F4F4F", "#800000"},
	},
}

type outfitGenerator struct {
	text    ports.TextGenerator
	enabled bool
	logger  *zap.Logger
}

// NewOutfitGenerator creates a generator. enabled is computed once from
// credential presence; when false the text provider is never called and
// the mood fallback table serves every request.
func NewOutfitGenerator(text ports.TextGenerator, enabled bool, logger *zap.Logger) ports.OutfitGenerator {
	return &outfitGenerator{
		text:    text,
		enabled: enabled,
		logger:  logger,
	}
}

// Generate produces an outfit for the mood, occasion, and weather. The
// second return is true only when the text provider produced a valid
// outfit; on any failure the mood fallback is substituted and the method
// still succeeds.
func (g *outfitGenerator) Generate(ctx context.Context, mood domain.Mood, occasion string, weather domain.Weather) (domain.Outfit, bool) {
	if !g.enabled || g.text == nil {
		g.logger.Debug("text generation disabled, using mood fallback",
			zap.String("mood", string(mood)))

		return g.fallback(mood, occasion), false
	}

	raw, err := g.text.GenerateText(ctx, buildOutfitPrompt(mood, occasion, weather))

	if err != nil {
		g.logger.Warn("outfit generation call failed, using mood fallback",
			zap.String("mood", string(mood)),
			zap.Error(err))

		return g.fallback(mood, occasion), false
	}

	outfit, err := parseOutfitResponse(raw)

	if err != nil {
		g.logger.Warn("outfit response unparseable, using mood fallback",
			zap.String("mood", string(mood)),
			zap.Error(err))

		return g.fallback(mood, occasion), false
	}

	outfit.Mood = domain.ParseMood(string(outfit.Mood))

	if outfit.Occasion == "" {
		outfit.Occasion = occasion
	}

	g.logger.Info("outfit generated",
		zap.String("title", outfit.Title),
		zap.String("mood", string(outfit.Mood)))

	return outfit, true
}

// fallback returns a copy of the static table entry for the mood,
// defaulting to the confident entry for anything unrecognized.
func (g *outfitGenerator) fallback(mood domain.Mood, occasion string) domain.Outfit {
	entry, ok := moodFallbacks[mood]

	if !ok {
		entry = moodFallbacks[domain.MoodConfident]
	}

	outfit := entry.Clone()

	if occasion != "" {
		outfit.Occasion = occasion
	}

	return outfit
}

// buildOutfitPrompt constrains the provider to emit strict JSON matching
// the Outfit shape.
func buildOutfitPrompt(mood domain.Mood, occasion string, weather domain.Weather) string {
	return fmt.Sprintf(`Create a fashionable outfit recommendation for today's weather:
- Temperature: %d°C
- Condition: %s (%s)
- Location: %s
- Desired mood: %s
- Occasion: %s

Return ONLY valid JSON in this exact format:
{
  "title": "Creative outfit name",
  "description": "Brief description explaining why this outfit works for today's weather",
  "items": ["item1", "item2", "item3", "item4", "item5"],
  "mood": "confident/chill/soft/power/edgy",
  "occasion": "casual/formal/work/party",
  "colors": ["#hex1", "#hex2", "#hex3"],
  "weatherNotes": "How this outfit addresses today's weather conditions"
}

Make it practical and stylish for the current conditions.`,
		weather.Temperature, weather.Condition, weather.Description,
		weather.Location, mood, occasion)
}

// parseOutfitResponse strips any markdown code-fence wrapping from the
// raw provider text and parses it as an Outfit. An outfit with no items
// is rejected so fallbacks keep the never-empty-items guarantee.
func parseOutfitResponse(raw string) (domain.Outfit, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var outfit domain.Outfit

	if err := json.Unmarshal([]byte(cleaned), &outfit); err != nil {
		return domain.Outfit{}, fmt.Errorf("invalid outfit JSON: %w", err)
	}

	if len(outfit.Items) == 0 {
		return domain.Outfit{}, fmt.Errorf("outfit has no items")
	}

	return outfit, nil
}

// Weather-only templates keyed by temperature band. Used on the
// total-failure path and for the weather recommendations endpoint; no
// external call is ever made here.
var (
	coldTemplate = domain.Outfit{
		Title:       "Cozy Winter Warrior",
		Description: "Stay warm and stylish in the cold weather",
		Items: []string{
			"Insulated Winter Coat",
			"Thermal Base Layer",
			"Warm Sweater",
			"Winter Trousers",
			"Insulated Boots",
			"Beanie and Gloves",
		},
		Mood:         domain.MoodChill,
		Occasion:     "casual",
		Colors:       []string{"#2F4F4F", "#8B4513", "#000000"},
		WeatherNotes: "Layered for maximum warmth in cold conditions",
	}

	mildTemplate = domain.Outfit{
		Title:       "Comfortable Layers",
		Description: "Perfect for mild weather with versatile layers",
		Items: []string{
			"Light Jacket or Cardigan",
			"Long Sleeve Top",
			"Comfortable Jeans",
			"Sneakers",
			"Light Scarf",
		},
		Mood:         domain.MoodConfident,
		Occasion:     "casual",
		Colors:       []string{"#808080", "#2F4F4F", "#FFFFFF"},
		WeatherNotes: "Light layers for changing temperatures",
	}

	warmTemplate = domain.Outfit{
		Title:       "Summer Breeze",
		Description: "Light and breathable for warm days",
		Items: []string{
			"Breathable T-Shirt",
			"Shorts or Light Pants",
			"Sandals or Light Shoes",
			"Sunglasses",
			"Sun Hat",
		},
		Mood:         domain.MoodChill,
		Occasion:     "casual",
		Colors:       []string{"#FFFFFF", "#87CEEB", "#FFD700"},
		WeatherNotes: "Designed for comfort in warm weather",
	}
)

// WeatherFallback selects an outfit template purely from temperature
// thresholds and appends condition-specific items. Deterministic for a
// given Weather value.
func (g *outfitGenerator) WeatherFallback(weather domain.Weather) domain.Outfit {
	var outfit domain.Outfit

	switch {
	case weather.Temperature < 10:
		outfit = coldTemplate.Clone()
	case weather.Temperature < 20:
		outfit = mildTemplate.Clone()
	default:
		outfit = warmTemplate.Clone()
	}

	condition := strings.ToLower(weather.Condition)

	if strings.Contains(condition, "rain") {
		outfit.Items = append(outfit.Items, "Waterproof Jacket", "Umbrella")
		outfit.WeatherNotes += " - Rain ready with waterproof elements"
	}

	if strings.Contains(condition, "sun") || strings.Contains(condition, "clear") {
		outfit.Items = append(outfit.Items, "Sunglasses", "Sun Protection")
		outfit.WeatherNotes += " - Sun protection included"
	}

	if strings.Contains(condition, "wind") {
		outfit.Items = append(outfit.Items, "Wind-Resistant Layer")
		outfit.WeatherNotes += " - Wind-resistant elements"
	}

	return outfit
}
