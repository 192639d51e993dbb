// Package ledger governs the request/proposal lifecycle: request creation
// with synchronous routing, gated proposal submission, and delegation of the
// one-shot selection commit to the conversion coordinator.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trip_broker/internal/conversion"
	liberrors "trip_broker/internal/lib/errors"
	"trip_broker/internal/models/request"
	"trip_broker/internal/moderation"
	"trip_broker/internal/routing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Store is the persistence surface the ledger needs. FetchRequest returns
// ErrNotFoundOrAccessDenied for a missing id; AppendProposal re-checks the
// request status transactionally and returns ErrInvalidState if submission
// is no longer allowed.
type Store interface {
	SaveRequest(req request.Request) error
	AssignOrganizers(requestId string, organizerIds []string) error
	FetchRequest(requestId string) (request.Request, error)
	AppendProposal(requestId string, prop request.Proposal) error
	UpdateRequestStatus(requestId string, status request.RequestStatus, adminNote string) error
}

type Config struct {
	ProposalValidity time.Duration
	DefaultCurrency  string
}

type Service struct {
	log         *slog.Logger
	store       Store
	router      *routing.Engine
	coordinator *conversion.Coordinator
	validate    *validator.Validate
	cfg         Config
}

func New(log *slog.Logger, store Store, router *routing.Engine, coordinator *conversion.Coordinator, cfg Config) *Service {
	return &Service{
		log:         log,
		store:       store,
		router:      router,
		coordinator: coordinator,
		validate:    validator.New(),
		cfg:         cfg,
	}
}

// CreateRequest persists a new open request and routes it synchronously.
// Routing is fail-open: a directory outage leaves the request open with an
// empty assignment snapshot, it never fails the creation itself.
func (s *Service) CreateRequest(ctx context.Context, travelerId string, attrs request.CreateRequest) (request.Request, error) {
	if err := s.validate.Struct(attrs); err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", liberrors.ErrValidationFailed, err)
	}

	startDate, err := parseDate(attrs.StartDate)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: startDate: %v", liberrors.ErrValidationFailed, err)
	}
	endDate, err := parseDate(attrs.EndDate)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: endDate: %v", liberrors.ErrValidationFailed, err)
	}

	travelers := attrs.NumberOfTravelers
	if travelers == 0 {
		travelers = 1
	}
	privacy := attrs.PrivacyLevel
	if privacy == "" {
		privacy = "private"
	}

	now := time.Now()
	req := request.Request{
		Id:                 uuid.NewString(),
		TravelerId:         travelerId,
		Destination:        attrs.Destination,
		StartDate:          startDate,
		EndDate:            endDate,
		FlexibleDates:      attrs.FlexibleDates,
		Budget:             attrs.Budget,
		NumberOfTravelers:  travelers,
		TripType:           attrs.TripType,
		ExperienceLevel:    attrs.ExperienceLevel,
		AgeGroup:           attrs.AgeGroup,
		SpecialNeeds:       attrs.SpecialNeeds,
		PrivacyLevel:       privacy,
		Preferences:        attrs.Preferences,
		Status:             request.StatusOpen,
		AssignedOrganizers: []string{},
		Proposals:          []request.Proposal{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.SaveRequest(req); err != nil {
		return request.Request{}, err
	}

	organizerIds := s.router.FindEligibleOrganizers(ctx)
	if len(organizerIds) > 0 {
		if err := s.store.AssignOrganizers(req.Id, organizerIds); err != nil {
			// same fail-open contract as the lookup itself
			s.log.Error("failed to persist organizer assignment, request stays open",
				slog.Attr{Key: "requestId", Value: slog.StringValue(req.Id)},
				slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
		} else {
			req.AssignedOrganizers = organizerIds
			req.Status = request.StatusAssignedToOrganizers
		}
	}

	return req, nil
}

// SubmitProposal appends a draft to a request's proposal collection. The
// organizer must be in the assignment snapshot and the request must still be
// accepting; a missing request and a non-assigned organizer are deliberately
// indistinguishable to the caller.
func (s *Service) SubmitProposal(requestId, organizerId string, draft request.ProposalDraft) (request.Request, error) {
	req, err := s.store.FetchRequest(requestId)
	if err != nil {
		return request.Request{}, err
	}

	if !req.IsAssigned(organizerId) {
		return request.Request{}, liberrors.ErrNotFoundOrAccessDenied
	}

	if !req.Status.AcceptsProposals() {
		return request.Request{}, fmt.Errorf("%w: %s", liberrors.ErrInvalidState, req.Status)
	}

	if err := s.validate.Struct(draft); err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", liberrors.ErrValidationFailed, err)
	}

	if moderation.ContainsContactInfo(draft.ValueStatement) || moderation.ContainsContactInfo(draft.ItinerarySummary) {
		return request.Request{}, liberrors.ErrContentBlocked
	}

	now := time.Now()
	validUntil := now.Add(s.cfg.ProposalValidity)
	if draft.ValidUntil != "" {
		parsed, err := parseDate(draft.ValidUntil)
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: validUntil: %v", liberrors.ErrValidationFailed, err)
		}
		validUntil = *parsed
	}

	currency := draft.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	prop := request.Proposal{
		Id:                 uuid.NewString(),
		OrganizerId:        organizerId,
		Price:              draft.Price,
		Currency:           currency,
		ItinerarySummary:   draft.ItinerarySummary,
		Inclusions:         draft.Inclusions,
		Exclusions:         draft.Exclusions,
		QualitySnapshot:    draft.QualitySnapshot,
		ValueStatement:     draft.ValueStatement,
		PriceBreakdown:     draft.PriceBreakdown,
		CancellationPolicy: draft.CancellationPolicy,
		ValidUntil:         validUntil,
		Status:             request.ProposalPending,
		Sealed:             true,
		CreatedAt:          now,
	}

	if err := s.store.AppendProposal(requestId, prop); err != nil {
		return request.Request{}, err
	}

	return s.store.FetchRequest(requestId)
}

// SelectProposal is the single commit point. It verifies ownership and
// proposal membership, then hands the transition entirely to the conversion
// coordinator. A second call against a finalized request fails with
// InvalidState and has no effect.
func (s *Service) SelectProposal(requestId, travelerId, proposalId string) (conversion.Result, error) {
	req, err := s.store.FetchRequest(requestId)
	if err != nil {
		return conversion.Result{}, err
	}

	if req.TravelerId != travelerId {
		return conversion.Result{}, liberrors.ErrNotFoundOrAccessDenied
	}

	if !req.Status.AcceptsProposals() {
		return conversion.Result{}, fmt.Errorf("%w: %s", liberrors.ErrInvalidState, req.Status)
	}

	prop := req.FindProposal(proposalId)
	if prop == nil {
		return conversion.Result{}, liberrors.ErrProposalNotFound
	}

	return s.coordinator.Convert(req, *prop)
}

// ResolveRequest covers the out-of-core admin edges: needs_review to
// converted or cancelled, and cancellation of any non-terminal request.
// Converting anything still in the accepting phase is the selection
// commit's job, never the admin's.
func (s *Service) ResolveRequest(requestId string, status request.RequestStatus, adminNote string) (request.Request, error) {
	req, err := s.store.FetchRequest(requestId)
	if err != nil {
		return request.Request{}, err
	}

	if status == request.StatusConverted && req.Status != request.StatusNeedsReview {
		return request.Request{}, fmt.Errorf("%w: %s", liberrors.ErrInvalidState, req.Status)
	}

	if !req.Status.CanTransitionTo(status) {
		return request.Request{}, fmt.Errorf("%w: %s", liberrors.ErrInvalidState, req.Status)
	}

	if err := s.store.UpdateRequestStatus(requestId, status, adminNote); err != nil {
		return request.Request{}, err
	}

	return s.store.FetchRequest(requestId)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}
