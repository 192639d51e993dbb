package organizer

import (
	serrors "errors"
	"log/slog"
	"net/http"
	"trip_broker/internal/lib/errors"
	"trip_broker/internal/models/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type OrganizerFetcher interface {
	FetchOrganizer(organizerId string) (user.Organizer, error)
}

func NewGetOrganizer(log *slog.Logger, organizerFetcher OrganizerFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		organizerId := chi.URLParam(r, "organizerId")
		if organizerId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The organizer id is invalid"))
			return
		}

		resp, err := organizerFetcher.FetchOrganizer(organizerId)
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

		render.JSON(w, r, resp)
	}
}
