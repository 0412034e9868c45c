package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bremer-sv/camp-registration/camps"
)

type campResponse struct {
	Name       string  `json:"name"`
	Price      *string `json:"price,omitempty"`
	Capacity   *int    `json:"capacity,omitempty"`
	Registered int     `json:"registered"`
	Remaining  *int    `json:"remaining,omitempty"`
	Full       bool    `json:"full"`
	ImageURL   *string `json:"imageUrl,omitempty"`
}

type getCampsResponse struct {
	Data        []campResponse `json:"data"`
	Cursor      *string        `json:"cursor,omitempty"`
	HasNextPage bool           `json:"hasNextPage"`
}

// getCamps powers the sign-up form: camp names for the dropdown, the price
// label, the "Noch N Plätze frei" status and the camp image.
func (a *API) getCamps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.loggerOrBase(ctx)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		userLimit, err := strconv.Atoi(v)
		if err != nil || userLimit < 1 || userLimit > 50 {
			writeError(w, http.StatusBadRequest, LimitOutOfBounds, "Limit must be between 1 and 50")
			return
		}
		limit = userLimit
	}

	var cursor *string
	if v := r.URL.Query().Get("cursor"); v != "" {
		cursor = &v
	}

	result, err := a.db.GetCamps(ctx, int32(limit), cursor)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get camps from the DB", slog.String("error", err.Error()))

		var campErr *camps.Error
		if errors.As(err, &campErr) && campErr.Reason == camps.REASON_INVALID_CURSOR {
			writeError(w, http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid")
			return
		}
		writeError(w, http.StatusInternalServerError, InternalError, "Failed to get camps")
		return
	}

	respCamps := make([]campResponse, 0, len(result.Data))
	for _, camp := range result.Data {
		// Counted per request so the availability the form shows is as
		// fresh as the capacity gate's own view.
		registered, err := a.db.CountRegistrations(ctx, camp.Name)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to count registrations",
				slog.String("camp", camp.Name), slog.String("error", err.Error()))

			writeError(w, http.StatusInternalServerError, InternalError, "Failed to get camps")
			return
		}

		respCamps = append(respCamps, campToResponse(camp, registered))
	}

	writeJSON(w, http.StatusOK, getCampsResponse{
		Data:        respCamps,
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

func campToResponse(camp camps.Camp, registered int) campResponse {
	resp := campResponse{
		Name:       camp.Name,
		Capacity:   camp.Capacity,
		Registered: registered,
		Remaining:  camp.Remaining(registered),
		Full:       camp.Full(registered),
	}

	if camp.BasePrice != nil {
		price := camps.FormatPrice(camp.BasePrice)
		resp.Price = &price
	}

	if camp.ImageRef != nil {
		imageURL := resolveImageRef(*camp.ImageRef)
		resp.ImageURL = &imageURL
	}

	return resp
}

// resolveImageRef turns the admin-entered image reference into a servable
// URL. Google Drive share links become direct-view links, bare file names
// resolve under static/images/.
func resolveImageRef(ref string) string {
	const drivePrefix = "drive.google.com/file/d/"

	if idx := strings.Index(ref, drivePrefix); idx != -1 {
		id, _, _ := strings.Cut(ref[idx+len(drivePrefix):], "/")
		if id != "" {
			return "https://drive.google.com/uc?export=view&id=" + id
		}
	}

	if !strings.HasPrefix(ref, "http") {
		return "static/images/" + ref
	}

	return ref
}

type createCampRequest struct {
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Capacity *int    `json:"capacity,omitempty"`
	ImageRef *string `json:"imageRef,omitempty"`
}

// createCamp is the write path for the reference data the office used to
// maintain by hand in the price sheet. Admin only; the submission workflow
// itself never mutates camps.
func (a *API) createCamp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.loggerOrBase(ctx)

	if !a.authorizeAdmin(r) {
		writeError(w, http.StatusUnauthorized, AuthError, "Missing or invalid admin token")
		return
	}

	var req createCampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, InvalidBody, "Must specify a valid JSON body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, InvalidBody, "Camp name must not be empty")
		return
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		writeError(w, http.StatusBadRequest, InvalidBody, "Capacity must not be negative")
		return
	}

	price, err := camps.ParsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidBody, "Price must be a localized amount like \"120,00€\"")
		return
	}

	camp := camps.Camp{
		Name:      strings.TrimSpace(req.Name),
		BasePrice: price,
		Capacity:  req.Capacity,
		ImageRef:  req.ImageRef,
	}

	err = a.db.CreateCamp(ctx, camp)
	if err != nil {
		var campErr *camps.Error
		if errors.As(err, &campErr) && campErr.Reason == camps.REASON_CAMP_ALREADY_EXISTS {
			writeError(w, http.StatusConflict, AlreadyExists, "Camp with this name already exists")
			return
		}

		logger.ErrorContext(ctx, "Failed to create a camp",
			slog.String("camp", camp.Name), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, InternalError, "Failed to create the camp")
		return
	}

	writeJSON(w, http.StatusOK, campToResponse(camp, 0))
}
