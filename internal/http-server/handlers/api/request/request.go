package request

import (
	"context"
	"encoding/json"
	serrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"trip_broker/internal/lib/errors"
	"trip_broker/internal/models/request"
	"trip_broker/internal/models/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type RequestCreator interface {
	CreateRequest(ctx context.Context, travelerId string, attrs request.CreateRequest) (request.Request, error)
}

type RequestsReader interface {
	ReadRequests(viewerId, role string, limit, offset int) ([]request.Request, error)
}

type RequestFetcher interface {
	FetchRequest(requestId string) (request.Request, error)
}

type RequestResolver interface {
	ResolveRequest(requestId string, status request.RequestStatus, adminNote string) (request.Request, error)
}

func NewPostRequest(log *slog.Logger, requestCreator RequestCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		travelerId := r.URL.Query().Get("travelerId")
		if travelerId == "" {
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("The travelerId is empty"))
			return
		}

		var req request.CreateRequest

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&req)
		if err != nil {
			log.Error("Error decoding request body")
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Error decoding request body"))
			return
		}

		resp, err := requestCreator.CreateRequest(r.Context(), travelerId, req)
		if err != nil {
			switch {
			case serrors.Is(err, errors.ErrValidationFailed):
				render.Status(r, 400)
			case serrors.Is(err, errors.ErrNotFoundOrAccessDenied):
				render.Status(r, 404)
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

func NewGetRequests(log *slog.Logger, requestsReader RequestsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerId := r.URL.Query().Get("viewerId")
		if viewerId == "" {
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("The viewerId is empty"))
			return
		}
		role := r.URL.Query().Get("role")
		if role == "" {
			role = user.RoleTraveler
		}

		var limit, offset int
		var err error
		if r.URL.Query().Get("limit") == "" {
			limit = 5
		} else {
			limit, err = strconv.Atoi(r.URL.Query().Get("limit"))
			if err != nil {
				log.Error("Incorrect limit value")
				render.Status(r, 400)
				render.JSON(w, r, errors.NewHttpError("Incorrect limit value"))
				return
			}
		}
		if r.URL.Query().Get("offset") == "" {
			offset = 0
		} else {
			offset, err = strconv.Atoi(r.URL.Query().Get("offset"))
			if err != nil {
				log.Error("Incorrect offset value")
				render.Status(r, 400)
				render.JSON(w, r, errors.NewHttpError("Incorrect offset value"))
				return
			}
		}

		resp, err := requestsReader.ReadRequests(viewerId, role, limit, offset)
		if err != nil {
			log.Error("Failed to read requests", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewGetRequest(log *slog.Logger, requestFetcher RequestFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := chi.URLParam(r, "requestId")
		if requestId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The request id is invalid"))
			return
		}
		viewerId := r.URL.Query().Get("viewerId")
		if viewerId == "" {
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("The viewerId is empty"))
			return
		}
		role := r.URL.Query().Get("role")

		resp, err := requestFetcher.FetchRequest(requestId)
		if err != nil {
			switch {
			case serrors.Is(err, errors.ErrNotFoundOrAccessDenied):
				render.Status(r, 404)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		// participants only; a non-participant gets the same 404 a missing
		// request would produce
		visible := resp.TravelerId == viewerId ||
			resp.IsAssigned(viewerId) ||
			role == user.RoleAdmin || role == user.RoleAgent
		if !visible {
			render.Status(r, 404)
			render.JSON(w, r, errors.NewHttpError(errors.ErrNotFoundOrAccessDenied.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewPutRequestStatus(log *slog.Logger, requestResolver RequestResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := chi.URLParam(r, "requestId")
		if requestId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The request id is invalid"))
			return
		}
		role := r.URL.Query().Get("role")
		if role != user.RoleAdmin && role != user.RoleAgent {
			render.Status(r, 403)
			render.JSON(w, r, errors.NewHttpError("Admin access required"))
			return
		}
		status := request.RequestStatus(r.URL.Query().Get("status"))
		if status != request.StatusConverted && status != request.StatusCancelled {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The status is wrong"))
			return
		}
		adminNote := r.URL.Query().Get("adminNote")

		resp, err := requestResolver.ResolveRequest(requestId, status, adminNote)
		if err != nil {
			switch {
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

		render.JSON(w, r, resp)
	}
}
