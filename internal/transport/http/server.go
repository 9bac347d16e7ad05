// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses in the envelope format clients expect.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/aegis-campus/aegis/internal/auth"
	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/aegis-campus/aegis/internal/service"
	"github.com/aegis-campus/aegis/internal/validation"
	"github.com/aegis-campus/aegis/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TokenValidator verifies a bearer token and returns the principal it carries.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Principal, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	log      *slog.Logger
	tokens   TokenValidator
	registry service.RegistryService
	workflow service.WorkflowService
	db       *sqlx.DB
}

func NewServer(
	log *slog.Logger,
	tokens TokenValidator,
	registry service.RegistryService,
	workflow service.WorkflowService,
	db *sqlx.DB,
) *Server {
	return &Server{
		log:      log,
		tokens:   tokens,
		registry: registry,
		workflow: workflow,
		db:       db,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", s.healthz)

	mux.Route("/authority", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/domain", s.listDomains)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAuthority, auth.RoleAdmin))
			r.Post("/domain", s.createDomain)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAuthority))

			r.Get("/domain/my", s.getMyDomain)
			r.Post("/domain/repair", s.repairDomainRef)
			r.Put("/domain/{id}", s.updateDomain)
			r.Delete("/domain/{id}", s.deleteDomain)

			r.Get("/complaints", s.listQueue)
			r.Get("/complaints/assigned", s.listAssigned)
			r.Post("/complaints/{id}/accept", s.acceptComplaint)
			r.Post("/complaints/{id}/transfer", s.transferComplaint)
			r.Put("/complaints/{id}/status", s.updateComplaintStatus)

			r.Get("/colleagues", s.listColleagues)
			r.Get("/stats", s.getStats)
		})
	})

	mux.Route("/student", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.requireRole(auth.RoleStudent))

		r.Post("/complaints", s.createComplaint)
		r.Get("/complaints", s.listStudentComplaints)
	})

	return mux
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	s.respond(w, http.StatusOK, "ok", nil)
}

func (s *Server) createDomain(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createDomain"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req createDomainRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	d, err := s.registry.CreateDomain(r.Context(), *caller, req.Name, req.Description)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, "domain created", toDomainResponse(d))
}

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listDomains"

	domains, err := s.registry.ListDomains(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "domains fetched", toDomainListResponse(domains))
}

func (s *Server) getMyDomain(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getMyDomain"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	d, err := s.registry.GetMyDomain(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "domain fetched", toDomainResponse(d))
}

func (s *Server) updateDomain(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.updateDomain"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req updateDomainRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	d, err := s.registry.UpdateDomain(r.Context(), caller.ID, chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "domain updated", toDomainResponse(d))
}

func (s *Server) deleteDomain(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.deleteDomain"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.registry.DeleteDomain(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "domain deleted", nil)
}

func (s *Server) repairDomainRef(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.repairDomainRef"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	a, err := s.registry.RepairDomainRef(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "domain reference repaired", toAuthorityResponse(a))
}

func (s *Server) listColleagues(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listColleagues"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	peers, err := s.registry.ListColleagues(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "colleagues fetched", toAuthorityListResponse(peers))
}

func (s *Server) listQueue(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listQueue"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	complaints, err := s.workflow.ListQueue(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "complaints fetched", toComplaintListResponse(complaints))
}

func (s *Server) listAssigned(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listAssigned"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	complaints, err := s.workflow.ListAssigned(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "assigned complaints fetched", toComplaintListResponse(complaints))
}

func (s *Server) acceptComplaint(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.acceptComplaint"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	c, err := s.workflow.Accept(r.Context(), caller.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "complaint accepted", toComplaintResponse(c))
}

func (s *Server) transferComplaint(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.transferComplaint"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req transferComplaintRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	c, err := s.workflow.Transfer(r.Context(), caller.ID, chi.URLParam(r, "id"), req.TargetAuthorityID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "complaint transferred", toComplaintResponse(c))
}

func (s *Server) updateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.updateComplaintStatus"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req updateStatusRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	c, err := s.workflow.UpdateStatus(r.Context(), caller.ID, chi.URLParam(r, "id"), domain.ComplaintStatus(req.Status), req.Comment)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "complaint status updated", toComplaintResponse(c))
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getStats"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	domainStats, personalStats, err := s.workflow.Stats(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "stats fetched", toStatsResponse(domainStats, personalStats))
}

func (s *Server) createComplaint(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createComplaint"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req createComplaintRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	c, err := s.workflow.CreateComplaint(r.Context(), caller.ID, req.Title, req.Description, req.DomainID, domain.ComplaintPriority(req.Priority))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, "complaint created", toComplaintResponse(c))
}

func (s *Server) listStudentComplaints(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listStudentComplaints"

	caller, err := s.principal(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	complaints, err := s.workflow.ListStudentComplaints(r.Context(), caller.ID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, "complaints fetched", toComplaintListResponse(complaints))
}

func (s *Server) principal(r *http.Request) (*auth.Principal, error) {
	return auth.PrincipalFromContext(r.Context())
}

// respond writes the envelope with the given status code, message, and payload.
func (s *Server) respond(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	resp := envelope{
		Status:  code,
		Message: message,
		Success: code < 400,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, message, nil)
}

// decodeAndValidate deserializes a JSON request body into a struct and runs
// validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to the envelope the client expects.
// Conflict-class failures (duplicate domain name, already-taken complaint)
// surface as 400 to preserve the existing client contract.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var (
		domainExistsErr *apperrors.DomainAlreadyExistsError
		takenErr        *apperrors.ComplaintTakenError
		wrongDomainErr  *apperrors.WrongDomainError
		validationErr   *validation.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", apperrors.ErrValidation.Error(), validationErr.Error()))
	case errors.As(err, &domainExistsErr):
		s.respondError(w, http.StatusBadRequest, domainExistsErr.Error())
	case errors.As(err, &takenErr):
		s.respondError(w, http.StatusBadRequest, takenErr.Error())
	case errors.As(err, &wrongDomainErr):
		s.respondError(w, http.StatusBadRequest, wrongDomainErr.Error())
	case errors.Is(err, apperrors.ErrMissingComment),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrInvalidPriority),
		errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnauthenticated):
		s.respondError(w, http.StatusUnauthorized, "caller is not authenticated")
	case errors.Is(err, apperrors.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "operation not permitted")
	case errors.Is(err, apperrors.ErrNoDomain):
		s.respondError(w, http.StatusNotFound, apperrors.ErrNoDomain.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
