package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsContactInfo(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		blocked bool
	}{
		{
			name:    "bare phone number",
			text:    "Call me at 9999999999",
			blocked: true,
		},
		{
			name:    "phone with country code",
			text:    "whatsapp +91 98765 43210 anytime",
			blocked: true,
		},
		{
			name:    "phone with separators",
			text:    "my number is 99999-99999",
			blocked: true,
		},
		{
			name:    "phone buried in unrelated text",
			text:    "the best trip ever 9876543210 you will love it",
			blocked: true,
		},
		{
			name:    "phone grouped in digit pairs",
			text:    "reach me on 06 12 34 56 78",
			blocked: true,
		},
		{
			name:    "email address",
			text:    "write to deals@besttrips.example.com for a discount",
			blocked: true,
		},
		{
			name:    "http url",
			text:    "full details at https://besttrips.example/offers",
			blocked: true,
		},
		{
			name:    "www url",
			text:    "see www.besttrips.example for more",
			blocked: true,
		},
		{
			name:    "bare domain",
			text:    "book direct on besttrips.com instead",
			blocked: true,
		},
		{
			name:    "clean value statement",
			text:    "We provide the best curated experience with comprehensive safety.",
			blocked: false,
		},
		{
			name:    "clean itinerary with small numbers",
			text:    "Day 1: arrival and acclimatization. Day 2: trek 12km to base camp.",
			blocked: false,
		},
		{
			name:    "single date",
			text:    "departure on 2026-08-29",
			blocked: false,
		},
		{
			name:    "empty text",
			text:    "",
			blocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, ContainsContactInfo(tt.text))
		})
	}
}

// A phone-shaped digit run blocks even when the surrounding text is clearly
// not a solicitation. The filter prefers false positives over misses.
func TestContainsContactInfoFalsePositiveBias(t *testing.T) {
	assert.True(t, ContainsContactInfo("booking reference 1234567890 confirmed"))
}
