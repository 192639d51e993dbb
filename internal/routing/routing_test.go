package routing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDirectory struct {
	ids              []string
	err              error
	gotMinTrust      int
	hadDeadline      bool
	blockUntilCancel bool
}

func (d *fakeDirectory) EligibleOrganizerIds(ctx context.Context, minTrustScore int) ([]string, error) {
	d.gotMinTrust = minTrustScore
	_, d.hadDeadline = ctx.Deadline()
	if d.blockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return d.ids, d.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFindEligibleOrganizersPassesThreshold(t *testing.T) {
	dir := &fakeDirectory{ids: []string{"org-high", "org-mid"}}
	engine := NewEngine(discardLogger(), dir, 60, time.Second)

	ids := engine.FindEligibleOrganizers(context.Background())

	assert.Equal(t, []string{"org-high", "org-mid"}, ids)
	assert.Equal(t, 60, dir.gotMinTrust)
	assert.True(t, dir.hadDeadline)
}

// A directory failure yields zero matches instead of an error; request
// creation must never fail because routing did.
func TestFindEligibleOrganizersFailOpen(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	engine := NewEngine(discardLogger(), dir, 60, time.Second)

	ids := engine.FindEligibleOrganizers(context.Background())

	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

// A lookup that outlives the routing timeout counts as zero matches too.
func TestFindEligibleOrganizersTimeout(t *testing.T) {
	dir := &fakeDirectory{blockUntilCancel: true}
	engine := NewEngine(discardLogger(), dir, 60, 10*time.Millisecond)

	ids := engine.FindEligibleOrganizers(context.Background())

	assert.Empty(t, ids)
}

func TestFindEligibleOrganizersNoMatches(t *testing.T) {
	dir := &fakeDirectory{ids: []string{}}
	engine := NewEngine(discardLogger(), dir, 60, time.Second)

	ids := engine.FindEligibleOrganizers(context.Background())

	assert.Empty(t, ids)
}
