package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable of the brokering core. The numeric thresholds
// are injected into routing, conversion and scoring instead of living as
// literals inside them.
type Config struct {
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresConn string `env:"POSTGRES_CONN"`

	// RoutingMinTrustScore is the bar an organizer must clear to be shown a
	// request at all.
	RoutingMinTrustScore int `env:"ROUTING_MIN_TRUST_SCORE" envDefault:"60"`

	// ConversionMinTrustScore is the strictly higher bar for skipping human
	// review on selection.
	ConversionMinTrustScore int `env:"CONVERSION_MIN_TRUST_SCORE" envDefault:"80"`

	// ApprovalScoreThreshold is the minimum quality score for auto-approval.
	ApprovalScoreThreshold int `env:"APPROVAL_SCORE_THRESHOLD" envDefault:"70"`

	// ProposalValidity is applied when a proposal omits validUntil.
	ProposalValidity time.Duration `env:"PROPOSAL_VALIDITY" envDefault:"48h"`

	// RoutingTimeout bounds the organizer directory lookup at request
	// creation. Expiry counts as zero matches, never as a creation failure.
	RoutingTimeout time.Duration `env:"ROUTING_TIMEOUT" envDefault:"3s"`

	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"INR"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
