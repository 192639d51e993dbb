// Package conversion holds the selection commit logic: scoring the chosen
// proposal, checking organizer trust, and deciding between instant
// materialization of a bookable trip and routing to human review.
package conversion

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	liberrors "trip_broker/internal/lib/errors"
	"trip_broker/internal/models/request"
	"trip_broker/internal/models/trip"
	"trip_broker/internal/quality"

	"github.com/google/uuid"
)

// TrustReader resolves an organizer's overall trust score from the external
// profile store. Failures here are fail-closed: conversion is the critical
// path.
type TrustReader interface {
	OrganizerTrustScore(organizerId string) (int, error)
}

// Finalizer commits an outcome as one atomic unit: the selected proposal
// becomes accepted and unsealed, every sibling becomes rejected, the request
// moves to its new status, and in branch A the trip is inserted — all or
// nothing. Implementations must re-check the request status under lock and
// return ErrInvalidState if selection already ran.
type Finalizer interface {
	FinalizeSelection(requestId, proposalId string, out Outcome) error
}

type Outcome struct {
	Status    request.RequestStatus
	AdminNote string

	// Trip is non-nil only when the request auto-converts.
	Trip *trip.Trip
}

type Result struct {
	ConversionStatus string   `json:"conversionStatus"`
	TripId           string   `json:"tripId,omitempty"`
	Reasons          []string `json:"reasons"`
}

type Coordinator struct {
	log       *slog.Logger
	trust     TrustReader
	finalizer Finalizer

	minTrustScore int
	scoring       quality.Config
}

func NewCoordinator(log *slog.Logger, trust TrustReader, finalizer Finalizer, minTrustScore int, scoring quality.Config) *Coordinator {
	return &Coordinator{
		log:           log,
		trust:         trust,
		finalizer:     finalizer,
		minTrustScore: minTrustScore,
		scoring:       scoring,
	}
}

// Convert runs the one-shot selection commit for an already verified
// (request, proposal) pair. The caller has checked ownership and that the
// proposal belongs to the request; status is re-checked inside the
// finalization transaction.
func (c *Coordinator) Convert(req request.Request, prop request.Proposal) (Result, error) {
	if !req.Status.AcceptsProposals() {
		return Result{}, fmt.Errorf("%w: %s", liberrors.ErrInvalidState, req.Status)
	}

	analysis := quality.Score(prop, req, c.scoring)

	trustScore, err := c.trust.OrganizerTrustScore(prop.OrganizerId)
	if err != nil {
		return Result{}, fmt.Errorf("%w: organizer trust lookup: %v", liberrors.ErrDependencyUnavailable, err)
	}
	eligible := trustScore >= c.minTrustScore

	canAutoConvert := eligible && analysis.IsApproved

	var out Outcome
	if canAutoConvert {
		newTrip := buildTrip(req, prop)
		out = Outcome{
			Status:    request.StatusConverted,
			AdminNote: fmt.Sprintf("Auto-converted: AI quality score %d, risk %s.", analysis.Score, analysis.RiskLevel),
			Trip:      &newTrip,
		}
	} else {
		out = Outcome{
			Status: request.StatusNeedsReview,
			AdminNote: fmt.Sprintf("Needs review: trust eligible=%t, AI quality score %d, risk %s. %s",
				eligible, analysis.Score, analysis.RiskLevel, strings.Join(analysis.Reasons, " ")),
		}
	}

	if err := c.finalizer.FinalizeSelection(req.Id, prop.Id, out); err != nil {
		return Result{}, err
	}

	c.log.Info("selection committed",
		slog.Attr{Key: "requestId", Value: slog.StringValue(req.Id)},
		slog.Attr{Key: "status", Value: slog.StringValue(string(out.Status))},
		slog.Attr{Key: "score", Value: slog.IntValue(analysis.Score)})

	if canAutoConvert {
		return Result{ConversionStatus: "auto", TripId: out.Trip.Id, Reasons: analysis.Reasons}, nil
	}
	return Result{ConversionStatus: "manual_review", Reasons: analysis.Reasons}, nil
}

// buildTrip derives the private bookable trip from the request and the
// accepted proposal. Flexible-date requests fall back to the current time.
func buildTrip(req request.Request, prop request.Proposal) trip.Trip {
	now := time.Now()
	start, end := now, now
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}

	return trip.Trip{
		Id:              uuid.NewString(),
		OrganizerId:     prop.OrganizerId,
		Title:           fmt.Sprintf("Private Trip to %s", req.Destination),
		Description:     prop.ItinerarySummary,
		Destination:     req.Destination,
		StartDate:       start,
		EndDate:         end,
		Price:           prop.Price,
		Currency:        prop.Currency,
		Capacity:        req.NumberOfTravelers,
		Status:          "active",
		IsPrivate:       true,
		AllowedUserIds:  []string{req.TravelerId},
		PaymentConfig:   trip.DefaultPaymentConfig(),
		SourceRequestId: req.Id,
		CreatedAt:       now,
	}
}
