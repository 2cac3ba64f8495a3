package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/infra/api"
	"class-access/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	var req RedeemRequest
	if !s.decode(w, r, &req) {
		return
	}
	// Codes are opaque and case-sensitive; the token is matched exactly as sent.
	res, err := s.redeem.Redeem(r.Context(), id.UserID, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := RedeemResponse{Status: string(res.Status), ClassID: res.Code.ClassID}
	if res.Enrollment != nil {
		out.EnrollmentID = res.Enrollment.ID
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleEnrollFree(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())
	classID := chi.URLParam(r, "classID")
	ctx := logging.WithClassID(r.Context(), classID)

	class, err := s.access.Class(ctx, classID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !class.IsFree {
		api.WriteJSON(w, http.StatusForbidden, api.ErrorBody{Status: "class_requires_code", Error: "this class requires an access code"})
		return
	}

	res, err := s.enroll.EnrollFree(ctx, id.UserID, classID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := EnrollResponse{Status: string(res.Status), ClassID: classID}
	if res.Enrollment != nil {
		out.EnrollmentID = res.Enrollment.ID
	}
	code := http.StatusOK
	if res.Status == model.EnrollStatusEnrolled {
		code = http.StatusCreated
	}
	api.WriteJSON(w, code, out)
}

func (s *Server) handleHasAccess(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())
	classID := chi.URLParam(r, "classID")
	ctx := logging.WithClassID(r.Context(), classID)

	ok, err := s.access.HasAccess(ctx, id.UserID, classID, id.IsAdmin)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, AccessResponse{ClassID: classID, HasAccess: ok})
}

func (s *Server) handleMyEnrollments(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	list, err := s.enroll.ListMine(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := listResponse[Enrollment]{Items: make([]Enrollment, 0, len(list))}
	for _, e := range list {
		out.Items = append(out.Items, toEnrollment(e))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleIssueCodes(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	ctx := logging.WithClassID(r.Context(), classID)

	var req IssueCodesRequest
	if !s.decode(w, r, &req) {
		return
	}
	batchID, codes, err := s.codes.Issue(ctx, classID, req.Count, req.Price)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := IssueCodesResponse{BatchID: batchID, Codes: make([]AccessCode, 0, len(codes))}
	for _, c := range codes {
		out.Codes = append(out.Codes, toAccessCode(c))
	}
	api.WriteJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	codes, err := s.codes.List(r.Context(), classID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := listResponse[AccessCode]{Items: make([]AccessCode, 0, len(codes))}
	for _, c := range codes {
		out.Items = append(out.Items, toAccessCode(c))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleClassStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.ClassStats(r.Context(), chi.URLParam(r, "classID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		api.WriteJSON(w, http.StatusBadRequest, api.ErrorBody{Status: "bad_request", Error: "missing body"})
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		api.WriteJSON(w, http.StatusBadRequest, api.ErrorBody{Status: "bad_request", Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		api.WriteJSON(w, http.StatusNotFound, api.ErrorBody{Status: "invalid_code", Error: "code does not exist"})
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		api.WriteJSON(w, http.StatusConflict, api.ErrorBody{Status: "code_already_used", Error: "code was redeemed by another user"})
	case errors.Is(err, domain.ErrConflict):
		w.Header().Set("Retry-After", "1")
		api.WriteJSON(w, http.StatusServiceUnavailable, api.ErrorBody{Status: "conflict", Error: "concurrent update, retry"})
	case errors.Is(err, domain.ErrNotFound):
		api.WriteJSON(w, http.StatusNotFound, api.ErrorBody{Status: "not_found", Error: "not found"})
	case errors.Is(err, domain.ErrInvalidArgument):
		api.WriteJSON(w, http.StatusBadRequest, api.ErrorBody{Status: "invalid_argument", Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		api.WriteJSON(w, http.StatusConflict, api.ErrorBody{Status: "already_exists", Error: "already exists"})
	case errors.Is(err, context.DeadlineExceeded):
		api.WriteJSON(w, http.StatusGatewayTimeout, api.ErrorBody{Status: "timeout", Error: "request timed out"})
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads this.
		w.WriteHeader(499)
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		api.WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{Status: "internal_error", Error: "internal error"})
	}
}
