package sharing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-discharge-portal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// VisitClinicLookup evita importar el paquete discharges (rompe ciclos).
type VisitClinicLookup interface {
	ClinicOf(ctx context.Context, visitID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, visitClinics VisitClinicLookup) {
	// Staff actions scoped by discharge
	r.Route("/discharges/{visitID}/shares", func(sr chi.Router) {
		sr.Post("/", createShareHandler(svc, visitClinics))
		sr.Get("/", listSharesByVisitHandler(svc, visitClinics))
	})

	// Grantee/staff actions scoped by share id
	r.Route("/shares/{shareID}", func(sr chi.Router) {
		sr.Post("/accept", acceptShareHandler(svc))
		sr.Post("/revoke", revokeShareHandler(svc))
	})

	// Tutor: ver sus invitaciones / shares
	r.Get("/me/shares", listMySharesHandler(svc))
}

type createShareRequest struct {
	GranteeUserID string  `json:"grantee_user_id"`
	Scopes        []Scope `json:"scopes"`
}

type shareResponse struct {
	ID            string     `json:"id"`
	VisitID       string     `json:"visit_id"`
	ClinicUserID  string     `json:"clinic_user_id"`
	GranteeUserID string     `json:"grantee_user_id"`
	Scopes        []Scope    `json:"scopes"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

// createShareHandler godoc
// @Summary Compartir un alta con el tutor
// @Description Invita al tutor de la mascota a un alta. Sin scopes explícitos se otorga `plan:view`, `doses:log` y `symptoms:log`. Solo staff de la clínica dueña del alta.
// @Tags sharing
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Param payload body createShareRequest true "Tutor y scopes a otorgar"
// @Success 201 {object} shareResponse
// @Failure 400 {string} string "invalid json / scopes inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/shares [post]
func createShareHandler(svc *Service, visitClinics VisitClinicLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		visitID := chi.URLParam(r, "visitID")

		clinicID, err := visitClinics.ClinicOf(r.Context(), visitID)
		if err != nil || strings.TrimSpace(clinicID) == "" {
			http.Error(w, "discharge not found", http.StatusNotFound)
			return
		}
		if clinicID != claims.ClinicID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createShareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.GranteeUserID) == "" {
			http.Error(w, "grantee_user_id required", http.StatusBadRequest)
			return
		}

		sh, err := svc.Share(r.Context(), ShareInput{
			VisitID:       visitID,
			ClinicUserID:  claims.UserID,
			GranteeUserID: strings.TrimSpace(req.GranteeUserID),
			Scopes:        req.Scopes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toShareResponse(sh))
	}
}

// listSharesByVisitHandler godoc
// @Summary Listar shares de un alta
// @Tags sharing
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Success 200 {array} shareResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/shares [get]
func listSharesByVisitHandler(svc *Service, visitClinics VisitClinicLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		visitID := chi.URLParam(r, "visitID")

		clinicID, err := visitClinics.ClinicOf(r.Context(), visitID)
		if err != nil || strings.TrimSpace(clinicID) == "" {
			http.Error(w, "discharge not found", http.StatusNotFound)
			return
		}
		if clinicID != claims.ClinicID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByVisit(r.Context(), visitID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]shareResponse, 0, len(items))
		for _, sh := range items {
			out = append(out, toShareResponse(sh))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listMySharesHandler godoc
// @Summary Listar mis shares
// @Description Devuelve las invitaciones y shares del usuario autenticado como tutor, con filtro opcional por status.
// @Tags sharing
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "Lista CSV de status a incluir (invited,active,revoked)"
// @Success 200 {array} shareResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/shares [get]
func listMySharesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByGrantee(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		allowed := parseStatusFilter(r.URL.Query().Get("status"))

		out := make([]shareResponse, 0, len(items))
		for _, sh := range items {
			if allowed != nil {
				if _, ok := allowed[sh.Status]; !ok {
					continue
				}
			}
			out = append(out, toShareResponse(sh))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// acceptShareHandler godoc
// @Summary Aceptar un share
// @Description Acepta la invitación. Idempotente: aceptar un share ya activo lo devuelve tal cual. Solo el tutor invitado.
// @Tags sharing
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param shareID path string true "ID del share"
// @Success 200 {object} shareResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "share not found"
// @Failure 409 {string} string "share revocado"
// @Router /shares/{shareID}/accept [post]
func acceptShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		shareID := chi.URLParam(r, "shareID")

		sh, err := svc.Accept(r.Context(), shareID, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "share not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrBadState):
				http.Error(w, "share revoked", http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toShareResponse(sh))
	}
}

// revokeShareHandler godoc
// @Summary Revocar un share
// @Description Revoca el acceso del tutor. Idempotente. Solo el staff que compartió.
// @Tags sharing
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param shareID path string true "ID del share"
// @Success 200 {object} shareResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "share not found"
// @Router /shares/{shareID}/revoke [post]
func revokeShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		shareID := chi.URLParam(r, "shareID")

		sh, err := svc.Revoke(r.Context(), shareID, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "share not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toShareResponse(sh))
	}
}

func toShareResponse(sh Share) shareResponse {
	return shareResponse{
		ID:            sh.ID,
		VisitID:       sh.VisitID,
		ClinicUserID:  sh.ClinicUserID,
		GranteeUserID: sh.GranteeUserID,
		Scopes:        sh.Scopes,
		Status:        sh.Status,
		CreatedAt:     sh.CreatedAt,
		UpdatedAt:     sh.UpdatedAt,
		RevokedAt:     sh.RevokedAt,
	}
}

// nil = sin filtro (incluir todos los status).
func parseStatusFilter(raw string) map[Status]struct{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	out := map[Status]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		switch Status(strings.ToLower(strings.TrimSpace(part))) {
		case StatusInvited:
			out[StatusInvited] = struct{}{}
		case StatusActive:
			out[StatusActive] = struct{}{}
		case StatusRevoked:
			out[StatusRevoked] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
