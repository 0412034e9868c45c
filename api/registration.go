package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bremer-sv/camp-registration/registration"
	"github.com/bremer-sv/camp-registration/slices"
)

type submitRegistrationRequest struct {
	CampName       string `json:"campName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Age            string `json:"age"`
	EmergencyPhone string `json:"emergencyPhone"`
	Email          string `json:"email"`
	EarlyCare      string `json:"earlyCare"`
	Allergies      string `json:"allergies,omitempty"`
	Remark         string `json:"remark,omitempty"`
	TermsAccepted  bool   `json:"termsAccepted"`
}

type submitRegistrationResponse struct {
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Field      string   `json:"field,omitempty"`
	Persisted  bool     `json:"persisted"`
	TotalPrice *float64 `json:"totalPrice,omitempty"`
}

func (a *API) submitRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.loggerOrBase(ctx)

	var req submitRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Unreadable registration body", slog.String("error", err.Error()))

		writeError(w, http.StatusBadRequest, InvalidBody, "Must specify a valid JSON body")
		return
	}

	result, err := a.workflow.Submit(ctx, registration.FormInput{
		CampName:       req.CampName,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Age:            req.Age,
		EmergencyPhone: req.EmergencyPhone,
		Email:          req.Email,
		EarlyCare:      req.EarlyCare,
		Allergies:      req.Allergies,
		Remark:         req.Remark,
		TermsAccepted:  req.TermsAccepted,
	})

	switch result.Status {
	case registration.STATUS_REJECTED:
		status := http.StatusBadRequest

		var regErr *registration.Error
		if errors.As(err, &regErr) && regErr.Reason == registration.REASON_CAMP_FULL {
			status = http.StatusConflict
		}

		logger.WarnContext(ctx, "Registration rejected",
			slog.String("camp", req.CampName), slog.String("error", err.Error()))
		writeJSON(w, status, resultToResponse(result, err))

	case registration.STATUS_FAILED:
		status := http.StatusInternalServerError
		if result.Persisted {
			// The row is in the sheet, only a mail went missing. The office
			// follows up by hand, the caller must see the difference.
			status = http.StatusBadGateway
		}

		logger.ErrorContext(ctx, "Registration failed",
			slog.String("camp", req.CampName),
			slog.Bool("persisted", result.Persisted),
			slog.String("error", err.Error()))
		writeJSON(w, status, resultToResponse(result, err))

	default:
		writeJSON(w, http.StatusOK, resultToResponse(result, nil))
	}
}

func resultToResponse(result registration.Result, err error) submitRegistrationResponse {
	resp := submitRegistrationResponse{
		Status:    string(result.Status),
		Reason:    result.Reason,
		Persisted: result.Persisted,
	}

	var regErr *registration.Error
	if errors.As(err, &regErr) {
		resp.Field = regErr.Field
	}

	if result.TotalPrice != nil {
		total := result.TotalPrice.AsMajorUnits()
		resp.TotalPrice = &total
	}

	return resp
}

type listedRegistration struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Age            int    `json:"age"`
	EmergencyPhone string `json:"emergencyPhone"`
	Email          string `json:"email"`
	EarlyCare      string `json:"earlyCare"`
	Allergies      string `json:"allergies"`
	Remark         string `json:"remark"`
	SubmittedAt    string `json:"submittedAt"`
}

type listRegistrationsResponse struct {
	Data        []listedRegistration `json:"data"`
	Cursor      *string              `json:"cursor,omitempty"`
	HasNextPage bool                 `json:"hasNextPage"`
}

func (a *API) listRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.loggerOrBase(ctx)

	if !a.authorizeAdmin(r) {
		writeError(w, http.StatusUnauthorized, AuthError, "Missing or invalid admin token")
		return
	}

	campName := r.PathValue("campName")

	limit := 10
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

	result, err := a.db.GetAllRegistrationsForCamp(ctx, campName, int32(limit), cursor)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get registrations for camp",
			slog.String("camp", campName), slog.String("error", err.Error()))

		var regErr *registration.Error
		if errors.As(err, &regErr) && regErr.Reason == registration.REASON_INVALID_CURSOR {
			writeError(w, http.StatusBadRequest, InvalidCursor, "Cursor is invalid")
			return
		}
		writeError(w, http.StatusInternalServerError, InternalError, "Failed to get registrations")
		return
	}

	writeJSON(w, http.StatusOK, listRegistrationsResponse{
		Data: slices.Map(result.Data, func(reg registration.Registration) listedRegistration {
			return listedRegistration{
				ID:             reg.ID.String(),
				FirstName:      reg.FirstName,
				LastName:       reg.LastName,
				Age:            reg.Age,
				EmergencyPhone: reg.EmergencyPhone,
				Email:          reg.Email,
				EarlyCare:      reg.EarlyCare.Label(),
				Allergies:      reg.Allergies,
				Remark:         reg.Remark,
				SubmittedAt:    reg.SubmittedAt.Format("02.01.2006 15:04:05"),
			}
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

type listSheetsResponse struct {
	Camps []string `json:"camps"`
}

// listSheets names the camps that have at least one registration, i.e. the
// sheets the office can export.
func (a *API) listSheets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !a.authorizeAdmin(r) {
		writeError(w, http.StatusUnauthorized, AuthError, "Missing or invalid admin token")
		return
	}

	names, err := a.db.ListSheets(ctx)
	if err != nil {
		a.loggerOrBase(ctx).ErrorContext(ctx, "Failed to list sheets", slog.String("error", err.Error()))

		writeError(w, http.StatusInternalServerError, InternalError, "Failed to list sheets")
		return
	}

	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, listSheetsResponse{Camps: names})
}

func (a *API) authorizeAdmin(r *http.Request) bool {
	if a.adminToken == "" {
		return false
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) == 1
}
