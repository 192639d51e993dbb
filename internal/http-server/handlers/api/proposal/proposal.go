package proposal

import (
	"encoding/json"
	serrors "errors"
	"log/slog"
	"net/http"
	"trip_broker/internal/conversion"
	"trip_broker/internal/lib/errors"
	"trip_broker/internal/models/request"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ProposalSubmitter interface {
	SubmitProposal(requestId, organizerId string, draft request.ProposalDraft) (request.Request, error)
}

type ProposalSelector interface {
	SelectProposal(requestId, travelerId, proposalId string) (conversion.Result, error)
}

func NewPostProposal(log *slog.Logger, proposalSubmitter ProposalSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := chi.URLParam(r, "requestId")
		if requestId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The request id is invalid"))
			return
		}
		organizerId := r.URL.Query().Get("organizerId")
		if organizerId == "" {
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("The organizerId is empty"))
			return
		}

		var draft request.ProposalDraft

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&draft)
		if err != nil {
			log.Error("Error decoding request body")
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Error decoding request body"))
			return
		}

		resp, err := proposalSubmitter.SubmitProposal(requestId, organizerId, draft)
		if err != nil {
			switch {
			case serrors.Is(err, errors.ErrValidationFailed):
				render.Status(r, 400)
			case serrors.Is(err, errors.ErrContentBlocked):
				render.Status(r, 400)
			case serrors.Is(err, errors.ErrNotFoundOrAccessDenied):
				render.Status(r, 404)
			case serrors.Is(err, errors.ErrInvalidState):
				render.Status(r, 409)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, resp)
	}
}

func NewSelectProposal(log *slog.Logger, proposalSelector ProposalSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := chi.URLParam(r, "requestId")
		if requestId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The request id is invalid"))
			return
		}
		proposalId := chi.URLParam(r, "proposalId")
		if proposalId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The proposal id is invalid"))
			return
		}
		travelerId := r.URL.Query().Get("travelerId")
		if travelerId == "" {
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("The travelerId is empty"))
			return
		}

		resp, err := proposalSelector.SelectProposal(requestId, travelerId, proposalId)
		if err != nil {
			switch {
			case serrors.Is(err, errors.ErrNotFoundOrAccessDenied):
				render.Status(r, 404)
			case serrors.Is(err, errors.ErrProposalNotFound):
				render.Status(r, 404)
			case serrors.Is(err, errors.ErrInvalidState):
				render.Status(r, 409)
			case serrors.Is(err, errors.ErrTransactionAborted):
				render.Status(r, 503)
			case serrors.Is(err, errors.ErrDependencyUnavailable):
				render.Status(r, 503)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}
