package quality

import (
	"strings"
	"testing"

	"trip_broker/internal/models/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidProposal() request.Proposal {
	return request.Proposal{
		OrganizerId:      "org-1",
		Price:            55000,
		ItinerarySummary: "Luxury Manali Experience",
		QualitySnapshot: request.QualitySnapshot{
			StayType:          "Luxury Resort",
			ComfortLevel:      "Premium",
			TransportType:     "Private SUV",
			MaxGroupSize:      4,
			SafetyPlanPresent: true,
		},
		// 80 chars, no banned phrases
		ValueStatement: strings.Repeat("We provide curated experiences. ", 3)[:80],
	}
}

func budgetRequest(budget float64) request.Request {
	return request.Request{
		Id:                "req-1",
		Destination:       "Manali",
		Budget:            &budget,
		NumberOfTravelers: 4,
	}
}

func TestScorePerfectProposal(t *testing.T) {
	result := Score(solidProposal(), budgetRequest(50000), DefaultConfig())

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.True(t, result.IsApproved)
	assert.Empty(t, result.Reasons)
}

func TestScoreDeductions(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*request.Proposal)
		budget       float64
		wantScore    int
		wantRisk     RiskLevel
		wantApproved bool
		wantReasons  int
	}{
		{
			name: "missing safety plan",
			mutate: func(p *request.Proposal) {
				p.QualitySnapshot.SafetyPlanPresent = false
			},
			budget:       50000,
			wantScore:    80,
			wantRisk:     RiskMedium,
			wantApproved: true,
			wantReasons:  1,
		},
		{
			name: "short value statement",
			mutate: func(p *request.Proposal) {
				p.ValueStatement = "Great trip."
			},
			budget:       50000,
			wantScore:    90,
			wantRisk:     RiskLow,
			wantApproved: true,
			wantReasons:  1,
		},
		{
			name:         "price far above budget",
			mutate:       func(p *request.Proposal) { p.Price = 90000 },
			budget:       50000,
			wantScore:    90,
			wantRisk:     RiskMedium,
			wantApproved: true,
			wantReasons:  1,
		},
		{
			name: "low effort phrase forces high risk",
			mutate: func(p *request.Proposal) {
				p.ItinerarySummary = "Details tbd"
			},
			budget:       50000,
			wantScore:    70,
			wantRisk:     RiskHigh,
			wantApproved: false,
			wantReasons:  1,
		},
		{
			name: "every deduction stacks",
			mutate: func(p *request.Proposal) {
				p.QualitySnapshot.SafetyPlanPresent = false
				p.ValueStatement = "Call me for details"
				p.Price = 90000
			},
			budget:       50000,
			wantScore:    30,
			wantRisk:     RiskHigh,
			wantApproved: false,
			wantReasons:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := solidProposal()
			tt.mutate(&prop)

			result := Score(prop, budgetRequest(tt.budget), DefaultConfig())

			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantRisk, result.RiskLevel)
			assert.Equal(t, tt.wantApproved, result.IsApproved)
			assert.Len(t, result.Reasons, tt.wantReasons)
		})
	}
}

// "tbd" in the itinerary fails approval regardless of the remaining score:
// risk High always blocks, even at exactly the threshold.
func TestScoreHighRiskBlocksAtThreshold(t *testing.T) {
	prop := solidProposal()
	prop.ItinerarySummary = "Itinerary tbd"

	result := Score(prop, budgetRequest(50000), DefaultConfig())

	require.Equal(t, 70, result.Score)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	assert.False(t, result.IsApproved)
}

// Medium risk at the threshold still passes: isApproved only excludes High.
func TestScoreMediumRiskAtThresholdApproved(t *testing.T) {
	prop := solidProposal()
	prop.QualitySnapshot.SafetyPlanPresent = false
	prop.ValueStatement = "Short."

	result := Score(prop, budgetRequest(50000), DefaultConfig())

	require.Equal(t, 70, result.Score)
	assert.Equal(t, RiskMedium, result.RiskLevel)
	assert.True(t, result.IsApproved)
}

func TestScoreMissingBudgetSkipsPriceCheck(t *testing.T) {
	prop := solidProposal()
	prop.Price = 900000

	result := Score(prop, request.Request{Id: "req-1"}, DefaultConfig())

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, RiskLow, result.RiskLevel)
}

func TestScoreRiskNeverDowngrades(t *testing.T) {
	prop := solidProposal()
	// phrase check (High) runs after the budget check (Medium); risk must
	// end at High no matter the evaluation order
	prop.ValueStatement = "contact for details please, we will sort everything out on the way there"
	prop.Price = 90000

	result := Score(prop, budgetRequest(50000), DefaultConfig())

	assert.Equal(t, RiskHigh, result.RiskLevel)
}

func TestScoreDoesNotMutateInputs(t *testing.T) {
	prop := solidProposal()
	req := budgetRequest(50000)
	propCopy := prop
	budget := *req.Budget

	Score(prop, req, DefaultConfig())

	assert.Equal(t, propCopy, prop)
	assert.Equal(t, budget, *req.Budget)
}
