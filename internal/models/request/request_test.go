package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{StatusOpen, StatusAssignedToOrganizers, true},
		{StatusOpen, StatusConverted, true},
		{StatusOpen, StatusNeedsReview, true},
		{StatusOpen, StatusCancelled, true},
		{StatusAssignedToOrganizers, StatusConverted, true},
		{StatusAssignedToOrganizers, StatusNeedsReview, true},
		{StatusAssignedToOrganizers, StatusCancelled, true},
		{StatusAssignedToOrganizers, StatusOpen, false},
		{StatusNeedsReview, StatusConverted, true},
		{StatusNeedsReview, StatusCancelled, true},
		{StatusNeedsReview, StatusOpen, false},
		{StatusNeedsReview, StatusAssignedToOrganizers, false},
		{StatusConverted, StatusCancelled, false},
		{StatusConverted, StatusOpen, false},
		{StatusConverted, StatusNeedsReview, false},
		{StatusCancelled, StatusOpen, false},
		{StatusCancelled, StatusConverted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAcceptsProposals(t *testing.T) {
	assert.True(t, StatusOpen.AcceptsProposals())
	assert.True(t, StatusAssignedToOrganizers.AcceptsProposals())
	assert.False(t, StatusNeedsReview.AcceptsProposals())
	assert.False(t, StatusConverted.AcceptsProposals())
	assert.False(t, StatusCancelled.AcceptsProposals())
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusConverted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusAssignedToOrganizers.Terminal())
	assert.False(t, StatusNeedsReview.Terminal())
}

func TestFindProposal(t *testing.T) {
	req := Request{
		Proposals: []Proposal{
			{Id: "p-1", OrganizerId: "org-1"},
			{Id: "p-2", OrganizerId: "org-2"},
		},
	}

	found := req.FindProposal("p-2")
	assert.NotNil(t, found)
	assert.Equal(t, "org-2", found.OrganizerId)

	assert.Nil(t, req.FindProposal("p-3"))
}

func TestIsAssigned(t *testing.T) {
	req := Request{AssignedOrganizers: []string{"org-1", "org-2"}}

	assert.True(t, req.IsAssigned("org-1"))
	assert.False(t, req.IsAssigned("org-3"))

	empty := Request{}
	assert.False(t, empty.IsAssigned("org-1"))
}
