package request

import "time"

type RequestStatus string

const (
	StatusOpen                 RequestStatus = "open"
	StatusAssignedToOrganizers RequestStatus = "assigned_to_organizers"
	StatusConverted            RequestStatus = "converted"
	StatusNeedsReview          RequestStatus = "needs_review"
	StatusCancelled            RequestStatus = "cancelled"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// transitions is the full edge set of the request state machine. Anything
// not listed here is an invalid transition.
var transitions = map[RequestStatus][]RequestStatus{
	StatusOpen:                 {StatusAssignedToOrganizers, StatusConverted, StatusNeedsReview, StatusCancelled},
	StatusAssignedToOrganizers: {StatusConverted, StatusNeedsReview, StatusCancelled},
	StatusNeedsReview:          {StatusConverted, StatusCancelled},
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// AcceptsProposals reports whether organizers may still submit against a
// request in this status.
func (s RequestStatus) AcceptsProposals() bool {
	return s == StatusOpen || s == StatusAssignedToOrganizers
}

func (s RequestStatus) Terminal() bool {
	return s == StatusConverted || s == StatusCancelled
}

type QualitySnapshot struct {
	StayType          string `json:"stayType" validate:"required"`
	ComfortLevel      string `json:"comfortLevel" validate:"required"`
	TransportType     string `json:"transportType" validate:"required"`
	MaxGroupSize      int    `json:"maxGroupSize" validate:"required,min=1"`
	SafetyPlanPresent bool   `json:"safetyPlanPresent"`
}

type Proposal struct {
	Id                 string          `json:"id"`
	OrganizerId        string          `json:"organizerId"`
	Price              float64         `json:"price"`
	Currency           string          `json:"currency"`
	ItinerarySummary   string          `json:"itinerarySummary"`
	Inclusions         []string        `json:"inclusions"`
	Exclusions         []string        `json:"exclusions"`
	QualitySnapshot    QualitySnapshot `json:"qualitySnapshot"`
	ValueStatement     string          `json:"valueStatement"`
	PriceBreakdown     string          `json:"priceBreakdown,omitempty"`
	CancellationPolicy string          `json:"cancellationPolicy"`
	ValidUntil         time.Time       `json:"validUntil"`
	Status             ProposalStatus  `json:"status"`
	Sealed             bool            `json:"sealed"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type Request struct {
	Id                 string        `json:"id"`
	TravelerId         string        `json:"travelerId"`
	Destination        string        `json:"destination"`
	StartDate          *time.Time    `json:"startDate,omitempty"`
	EndDate            *time.Time    `json:"endDate,omitempty"`
	FlexibleDates      bool          `json:"flexibleDates"`
	Budget             *float64      `json:"budget,omitempty"`
	NumberOfTravelers  int           `json:"numberOfTravelers"`
	TripType           string        `json:"tripType"`
	ExperienceLevel    string        `json:"experienceLevel"`
	AgeGroup           string        `json:"ageGroup"`
	SpecialNeeds       string        `json:"specialNeeds,omitempty"`
	PrivacyLevel       string        `json:"privacyLevel"`
	Preferences        string        `json:"preferences,omitempty"`
	Status             RequestStatus `json:"status"`
	AdminNotes         string        `json:"adminNotes,omitempty"`
	AssignedOrganizers []string      `json:"assignedOrganizers"`
	Proposals          []Proposal    `json:"proposals"`
	ConvertedTripId    string        `json:"convertedTripId,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// FindProposal returns the proposal with the given id, or nil.
func (r *Request) FindProposal(proposalId string) *Proposal {
	for i := range r.Proposals {
		if r.Proposals[i].Id == proposalId {
			return &r.Proposals[i]
		}
	}
	return nil
}

// IsAssigned reports whether the organizer is in the routing snapshot.
func (r *Request) IsAssigned(organizerId string) bool {
	for _, id := range r.AssignedOrganizers {
		if id == organizerId {
			return true
		}
	}
	return false
}

type CreateRequest struct {
	Destination       string   `json:"destination" validate:"required,min=3"`
	StartDate         string   `json:"startDate,omitempty"`
	EndDate           string   `json:"endDate,omitempty"`
	FlexibleDates     bool     `json:"flexibleDates"`
	Budget            *float64 `json:"budget,omitempty" validate:"omitempty,gt=0"`
	NumberOfTravelers int      `json:"numberOfTravelers" validate:"omitempty,min=1"`
	TripType          string   `json:"tripType,omitempty"`
	ExperienceLevel   string   `json:"experienceLevel,omitempty"`
	AgeGroup          string   `json:"ageGroup,omitempty"`
	SpecialNeeds      string   `json:"specialNeeds,omitempty"`
	PrivacyLevel      string   `json:"privacyLevel,omitempty"`
	Preferences       string   `json:"preferences,omitempty"`
}

type ProposalDraft struct {
	Price              float64         `json:"price" validate:"required,gt=0"`
	Currency           string          `json:"currency,omitempty"`
	ItinerarySummary   string          `json:"itinerarySummary" validate:"required"`
	Inclusions         []string        `json:"inclusions"`
	Exclusions         []string        `json:"exclusions"`
	QualitySnapshot    QualitySnapshot `json:"qualitySnapshot" validate:"required"`
	ValueStatement     string          `json:"valueStatement" validate:"required,max=500"`
	PriceBreakdown     string          `json:"priceBreakdown,omitempty"`
	CancellationPolicy string          `json:"cancellationPolicy" validate:"required"`
	ValidUntil         string          `json:"validUntil,omitempty"`
}
