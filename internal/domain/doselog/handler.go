package doselog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/sharing"
	"pet-discharge-portal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, dischargesSvc *discharges.Service, sharesSvc *sharing.Service) {
	r.Route("/discharges/{visitID}/doses", func(dr chi.Router) {
		dr.Post("/", logDoseHandler(svc, dischargesSvc, sharesSvc))
		dr.Get("/", listDosesHandler(svc, dischargesSvc, sharesSvc))
	})

	r.Route("/discharges/{visitID}/symptoms", func(sr chi.Router) {
		sr.Post("/", logSymptomHandler(svc, dischargesSvc, sharesSvc))
		sr.Get("/", listSymptomsHandler(svc, dischargesSvc, sharesSvc))
	})
}

// logDoseRequest es el cuerpo para registrar una dosis contra su instante programado.
type logDoseRequest struct {
	MedicationID string     `json:"medication_id"`
	ScheduledAt  string     `json:"scheduled_at"` // RFC3339, instante programado exacto
	GivenAt      *string    `json:"given_at"`     // RFC3339, solo si status = given
	Status       DoseStatus `json:"status" enums:"given,missed,skipped"`
	Notes        string     `json:"notes"`
}

type doseEventResponse struct {
	ID           string     `json:"id"`
	VisitID      string     `json:"visit_id"`
	MedicationID string     `json:"medication_id"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	GivenAt      *time.Time `json:"given_at,omitempty"`
	Status       DoseStatus `json:"status"`
	LoggedAt     time.Time  `json:"logged_at"`
	Notes        string     `json:"notes"`
}

type logSymptomRequest struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Appetite int    `json:"appetite"` // 1-5
	Energy   int    `json:"energy"`   // 1-5
	Panting  bool   `json:"panting"`
	Note     string `json:"note"`
}

type symptomEntryResponse struct {
	ID       string    `json:"id"`
	VisitID  string    `json:"visit_id"`
	Date     time.Time `json:"date"`
	Appetite int       `json:"appetite"`
	Energy   int       `json:"energy"`
	Panting  bool      `json:"panting"`
	Note     string    `json:"note"`
	LoggedAt time.Time `json:"logged_at"`
}

// authorizeVisit resuelve el alta y decide acceso: staff de la clínica dueña
// siempre; un tutor necesita un share activo con el scope pedido.
func authorizeVisit(w http.ResponseWriter, r *http.Request, dischargesSvc *discharges.Service, sharesSvc *sharing.Service, scope sharing.Scope) (discharges.Visit, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return discharges.Visit{}, false
	}

	visitID := chi.URLParam(r, "visitID")
	v, err := dischargesSvc.GetByID(r.Context(), visitID)
	if err != nil {
		http.Error(w, "discharge not found", http.StatusNotFound)
		return discharges.Visit{}, false
	}

	if v.ClinicID == claims.ClinicID && claims.ClinicID != "" {
		return v, true
	}

	sh, err := sharesSvc.GetActiveShare(r.Context(), visitID, claims.UserID)
	if err != nil || !sharing.HasScope(sh, scope) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return discharges.Visit{}, false
	}
	return v, true
}

// logDoseHandler godoc
// @Summary Registrar una dosis
// @Description Registra una observación de dosis (given/missed/skipped) contra su instante programado exacto. Re-loggear el mismo instante agrega un evento nuevo; el motor de adherencia se queda con el último. Staff de la clínica siempre; un tutor necesita scope `doses:log`.
// @Tags doselog
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Param payload body logDoseRequest true "Observación; scheduled_at y given_at en RFC3339"
// @Success 201 {object} doseEventResponse
// @Failure 400 {string} string "invalid json / status inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/doses [post]
func logDoseHandler(svc *Service, dischargesSvc *discharges.Service, sharesSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := authorizeVisit(w, r, dischargesSvc, sharesSvc, sharing.ScopeDosesLog)
		if !ok {
			return
		}

		var req logDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
		if err != nil {
			http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
			return
		}

		var givenAt *time.Time
		if req.GivenAt != nil && strings.TrimSpace(*req.GivenAt) != "" {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.GivenAt))
			if err != nil {
				http.Error(w, "given_at must be RFC3339", http.StatusBadRequest)
				return
			}
			givenAt = &t
		}

		e, err := svc.LogDose(r.Context(), v.ID, LogDoseInput{
			MedicationID: req.MedicationID,
			ScheduledAt:  scheduledAt,
			GivenAt:      givenAt,
			Status:       req.Status,
			Notes:        req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDoseEventResponse(e))
	}
}

// listDosesHandler godoc
// @Summary Listar dosis registradas de un alta
// @Tags doselog
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Param from query string false "Mínimo scheduled_at (RFC3339)"
// @Param to query string false "Máximo scheduled_at (RFC3339)"
// @Param limit query int false "Máximo de eventos a devolver (1-500)"
// @Success 200 {array} doseEventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/doses [get]
func listDosesHandler(svc *Service, dischargesSvc *discharges.Service, sharesSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := authorizeVisit(w, r, dischargesSvc, sharesSvc, sharing.ScopePlanView)
		if !ok {
			return
		}

		var filter DoseFilter
		q := r.URL.Query()

		if raw := strings.TrimSpace(q.Get("from")); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "from must be RFC3339", http.StatusBadRequest)
				return
			}
			filter.From = &t
		}
		if raw := strings.TrimSpace(q.Get("to")); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "to must be RFC3339", http.StatusBadRequest)
				return
			}
			filter.To = &t
		}
		if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 500 {
				http.Error(w, "limit must be 1-500", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		items, err := svc.ListDoses(r.Context(), v.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseEventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toDoseEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// logSymptomHandler godoc
// @Summary Registrar síntomas diarios
// @Description Registra apetito/energía (1-5) y jadeo de un día. Staff de la clínica siempre; un tutor necesita scope `symptoms:log`.
// @Tags doselog
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Param payload body logSymptomRequest true "Registro diario; date en formato YYYY-MM-DD"
// @Success 201 {object} symptomEntryResponse
// @Failure 400 {string} string "invalid json / valores fuera de 1-5"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/symptoms [post]
func logSymptomHandler(svc *Service, dischargesSvc *discharges.Service, sharesSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := authorizeVisit(w, r, dischargesSvc, sharesSvc, sharing.ScopeSymptomsLog)
		if !ok {
			return
		}

		var req logSymptomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.LogSymptom(r.Context(), v.ID, LogSymptomInput{
			Date:     date,
			Appetite: req.Appetite,
			Energy:   req.Energy,
			Panting:  req.Panting,
			Note:     req.Note,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toSymptomEntryResponse(e))
	}
}

// listSymptomsHandler godoc
// @Summary Listar registros de síntomas de un alta
// @Tags doselog
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Param from query string false "Fecha mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (YYYY-MM-DD)"
// @Success 200 {array} symptomEntryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID}/symptoms [get]
func listSymptomsHandler(svc *Service, dischargesSvc *discharges.Service, sharesSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := authorizeVisit(w, r, dischargesSvc, sharesSvc, sharing.ScopePlanView)
		if !ok {
			return
		}

		var from, to time.Time
		q := r.URL.Query()

		if raw := strings.TrimSpace(q.Get("from")); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			from = t
		}
		if raw := strings.TrimSpace(q.Get("to")); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			to = t
		}

		items, err := svc.ListSymptoms(r.Context(), v.ID, from, to)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]symptomEntryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toSymptomEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toDoseEventResponse(e LoggedDoseEvent) doseEventResponse {
	return doseEventResponse{
		ID:           e.ID,
		VisitID:      e.VisitID,
		MedicationID: e.MedicationID,
		ScheduledAt:  e.ScheduledAt,
		GivenAt:      e.GivenAt,
		Status:       e.Status,
		LoggedAt:     e.LoggedAt,
		Notes:        e.Notes,
	}
}

func toSymptomEntryResponse(e SymptomEntry) symptomEntryResponse {
	return symptomEntryResponse{
		ID:       e.ID,
		VisitID:  e.VisitID,
		Date:     e.Date,
		Appetite: e.Appetite,
		Energy:   e.Energy,
		Panting:  e.Panting,
		Note:     e.Note,
		LoggedAt: e.LoggedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
