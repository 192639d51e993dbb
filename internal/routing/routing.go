// Package routing decides which organizers are shown a freshly created
// request. Eligibility is evaluated once, against the directory as it exists
// at creation time, and the snapshot is never recomputed.
package routing

import (
	"context"
	"log/slog"
	"time"
)

// OrganizerDirectory is the read side of the external profile store.
// Implementations filter on role=organizer, verification approved, trust
// score at or above minTrustScore, and a non-empty company name.
type OrganizerDirectory interface {
	EligibleOrganizerIds(ctx context.Context, minTrustScore int) ([]string, error)
}

type Engine struct {
	log       *slog.Logger
	directory OrganizerDirectory

	minTrustScore int
	timeout       time.Duration
}

func NewEngine(log *slog.Logger, directory OrganizerDirectory, minTrustScore int, timeout time.Duration) *Engine {
	return &Engine{
		log:           log,
		directory:     directory,
		minTrustScore: minTrustScore,
		timeout:       timeout,
	}
}

// FindEligibleOrganizers returns the ids to assign to a request. The lookup
// is fail-open: any directory error, including a timeout, yields an empty
// result so a downstream outage never blocks the primary write. Destination
// and other request attributes are not used; routing is score and
// verification only.
func (e *Engine) FindEligibleOrganizers(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ids, err := e.directory.EligibleOrganizerIds(ctx, e.minTrustScore)
	if err != nil {
		e.log.Error("organizer routing lookup failed, continuing with zero matches",
			slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
		return []string{}
	}

	e.log.Info("routing matched organizers",
		slog.Attr{Key: "count", Value: slog.IntValue(len(ids))},
		slog.Attr{Key: "minTrustScore", Value: slog.IntValue(e.minTrustScore)})

	return ids
}
