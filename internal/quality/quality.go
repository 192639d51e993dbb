// Package quality scores one proposal against its request. The scorer is a
// pure heuristic: baseline 100, fixed deductions, monotonic risk escalation.
package quality

import (
	"strings"

	"trip_broker/internal/models/request"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

var riskRank = map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}

type Result struct {
	Score      int       `json:"score"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	IsApproved bool      `json:"isApproved"`
	Reasons    []string  `json:"reasons"`
}

type Config struct {
	// ApprovalThreshold is the minimum score for IsApproved.
	ApprovalThreshold int

	// LowEffortPhrases force risk to High when present in the combined
	// lowercase text of itinerary summary and value statement.
	LowEffortPhrases []string

	// MinValueStatementLength below which the vagueness deduction applies.
	MinValueStatementLength int

	// BudgetOverrunFactor: a price above budget×factor draws a deduction.
	BudgetOverrunFactor float64
}

func DefaultConfig() Config {
	return Config{
		ApprovalThreshold:       70,
		LowEffortPhrases:        []string{"call me", "contact for details", "tbd"},
		MinValueStatementLength: 50,
		BudgetOverrunFactor:     1.5,
	}
}

// Score evaluates every deduction independently; none short-circuits another.
// Scores are deliberately not clamped after deductions, so a pile-up can go
// negative and simply fails the approval gate. Inputs are never mutated.
func Score(p request.Proposal, r request.Request, cfg Config) Result {
	reasons := make([]string, 0)
	score := 100
	risk := RiskLow

	if !p.QualitySnapshot.SafetyPlanPresent {
		score -= 20
		risk = escalate(risk, RiskMedium)
		reasons = append(reasons, "Safety plan is not marked as present.")
	}

	if len(p.ValueStatement) < cfg.MinValueStatementLength {
		score -= 10
		reasons = append(reasons, "Value statement is too short/vague.")
	}

	if r.Budget != nil && p.Price > *r.Budget*cfg.BudgetOverrunFactor {
		score -= 10
		risk = escalate(risk, RiskMedium)
		reasons = append(reasons, "Price significantly exceeds budget.")
	}

	content := strings.ToLower(p.ItinerarySummary + " " + p.ValueStatement)
	for _, phrase := range cfg.LowEffortPhrases {
		if strings.Contains(content, phrase) {
			score -= 30
			risk = escalate(risk, RiskHigh)
			reasons = append(reasons, "Proposal contains vague placeholders or solicitation.")
			break
		}
	}

	return Result{
		Score:      score,
		RiskLevel:  risk,
		IsApproved: score >= cfg.ApprovalThreshold && risk != RiskHigh,
		Reasons:    reasons,
	}
}

// escalate raises risk monotonically; it never downgrades.
func escalate(current, candidate RiskLevel) RiskLevel {
	if riskRank[candidate] > riskRank[current] {
		return candidate
	}
	return current
}
