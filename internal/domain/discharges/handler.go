package discharges

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-discharge-portal/internal/domain/sharing"
	"pet-discharge-portal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, sharesSvc *sharing.Service) {
	// Altas (staff de clínica)
	r.Post("/discharges", createDischargeHandler(svc))
	r.Get("/clinics/{clinicID}/discharges", listDischargesHandler(svc))

	// Detalle de alta (staff de la clínica o tutor con plan:view)
	r.Get("/discharges/{visitID}", getDischargeHandler(svc, sharesSvc))
}

// stageRequest es una etapa de un plan decreciente (taper).
type stageRequest struct {
	Dosage        string   `json:"dosage"`
	Frequency     int      `json:"frequency"`
	Times         []string `json:"times"`
	StartDate     string   `json:"start_date"` // YYYY-MM-DD
	EndDate       *string  `json:"end_date"`   // YYYY-MM-DD opcional
	EveryOtherDay bool     `json:"every_other_day"`
	MaxDoses      int      `json:"max_doses"`
}

type medicationRequest struct {
	Name          string         `json:"name"`
	Dosage        string         `json:"dosage"`
	Frequency     int            `json:"frequency"` // 0 = a demanda
	Times         []string       `json:"times"`     // "HH:MM"
	StartDate     string         `json:"start_date"`
	EndDate       *string        `json:"end_date"`
	EveryOtherDay bool           `json:"every_other_day"`
	MaxDoses      int            `json:"max_doses"`
	Tapered       bool           `json:"tapered"`
	TaperStages   []stageRequest `json:"taper_stages"`
	Notes         string         `json:"notes"`
}

// createDischargeRequest es el cuerpo para registrar un alta nueva.
type createDischargeRequest struct {
	PatientName    string              `json:"patient_name"`
	PatientSpecies string              `json:"patient_species" enums:"dog,cat,other"`
	WeightKg       float64             `json:"weight_kg"`
	VisitDate      string              `json:"visit_date"` // YYYY-MM-DD
	Diagnosis      string              `json:"diagnosis"`
	Medications    []medicationRequest `json:"medications"`
	Notes          string              `json:"notes"`
}

type stageResponse struct {
	Dosage        string     `json:"dosage"`
	Frequency     int        `json:"frequency"`
	Times         []string   `json:"times"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	EveryOtherDay bool       `json:"every_other_day"`
	MaxDoses      int        `json:"max_doses"`
}

type medicationResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Dosage        string          `json:"dosage"`
	Frequency     int             `json:"frequency"`
	Times         []string        `json:"times"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	EveryOtherDay bool            `json:"every_other_day"`
	MaxDoses      int             `json:"max_doses"`
	Tapered       bool            `json:"tapered"`
	TaperStages   []stageResponse `json:"taper_stages,omitempty"`
	Notes         string          `json:"notes"`
}

// dischargeResponse representa un alta devuelta por la API.
type dischargeResponse struct {
	ID             string               `json:"id"`
	ClinicID       string               `json:"clinic_id"`
	PatientName    string               `json:"patient_name"`
	PatientSpecies string               `json:"patient_species"`
	WeightKg       float64              `json:"weight_kg"`
	VisitDate      time.Time            `json:"visit_date"`
	Diagnosis      string               `json:"diagnosis"`
	Medications    []medicationResponse `json:"medications"`
	Notes          string               `json:"notes"`
	CreatedAt      time.Time            `json:"created_at"`
}

// createDischargeHandler godoc
// @Summary Registrar un alta clínica
// @Description Crea un alta con su plan de medicaciones. Solo staff de clínica (claims con clinic_id). El alta es inmutable: correcciones se hacen con visitas nuevas. Autenticación: `X-Debug-User-ID`/`X-Debug-Clinic-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags discharges
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createDischargeRequest true "Datos del alta; fechas en formato YYYY-MM-DD"
// @Success 201 {object} dischargeResponse
// @Failure 400 {string} string "invalid json / plan contradictorio"
// @Failure 401 {string} string "unauthorized"
// @Router /discharges [post]
func createDischargeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if strings.TrimSpace(claims.ClinicID) == "" {
			http.Error(w, "clinic staff only", http.StatusForbidden)
			return
		}

		var req createDischargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		visitDate, err := parseDate(req.VisitDate)
		if err != nil || visitDate == nil {
			http.Error(w, "visit_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		meds := make([]MedicationInput, 0, len(req.Medications))
		for _, m := range req.Medications {
			in, err := toMedicationInput(m)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			meds = append(meds, in)
		}

		v, err := svc.Create(r.Context(), claims.ClinicID, CreateInput{
			PatientName:    req.PatientName,
			PatientSpecies: req.PatientSpecies,
			WeightKg:       req.WeightKg,
			VisitDate:      *visitDate,
			Diagnosis:      req.Diagnosis,
			Medications:    meds,
			Notes:          req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDischargeResponse(v))
	}
}

// getDischargeHandler godoc
// @Summary Ver un alta
// @Description Devuelve el alta con su plan de medicaciones. Staff de la clínica dueña accede siempre; un tutor necesita un share activo con scope `plan:view`.
// @Tags discharges
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param visitID path string true "ID del alta"
// @Success 200 {object} dischargeResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "discharge not found"
// @Router /discharges/{visitID} [get]
func getDischargeHandler(svc *Service, sharesSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		visitID := chi.URLParam(r, "visitID")
		v, err := svc.GetByID(r.Context(), visitID)
		if err != nil {
			http.Error(w, "discharge not found", http.StatusNotFound)
			return
		}

		// Staff bypass; tutor necesita share activo con plan:view
		if v.ClinicID != claims.ClinicID {
			sh, err := sharesSvc.GetActiveShare(r.Context(), visitID, claims.UserID)
			if err != nil || !sharing.HasScope(sh, sharing.ScopePlanView) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toDischargeResponse(v))
	}
}

// listDischargesHandler godoc
// @Summary Listar altas de una clínica
// @Description Lista altas recientes de la clínica, con búsqueda simple en nombre de paciente y diagnóstico. Solo staff de esa clínica.
// @Tags discharges
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clinicID path string true "ID de la clínica"
// @Param q query string false "Texto de búsqueda en nombre de paciente / diagnóstico"
// @Param limit query int false "Máximo de altas a devolver (1-200). Por defecto 50"
// @Success 200 {array} dischargeResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /clinics/{clinicID}/discharges [get]
func listDischargesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		clinicID := chi.URLParam(r, "clinicID")
		if claims.ClinicID != clinicID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter := ListFilter{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 200 {
				http.Error(w, "limit must be 1-200", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		items, err := svc.ListByClinic(r.Context(), clinicID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dischargeResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toDischargeResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationInput(m medicationRequest) (MedicationInput, error) {
	start, err := parseDate(m.StartDate)
	if err != nil {
		return MedicationInput{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := parseDatePtr(m.EndDate)
	if err != nil {
		return MedicationInput{}, errors.New("end_date must be YYYY-MM-DD")
	}

	in := MedicationInput{
		Name:          m.Name,
		Dosage:        m.Dosage,
		Frequency:     m.Frequency,
		Times:         m.Times,
		EndDate:       end,
		EveryOtherDay: m.EveryOtherDay,
		MaxDoses:      m.MaxDoses,
		Tapered:       m.Tapered,
		Notes:         m.Notes,
	}
	if start != nil {
		in.StartDate = *start
	}

	for _, st := range m.TaperStages {
		sStart, err := parseDate(st.StartDate)
		if err != nil || sStart == nil {
			return MedicationInput{}, errors.New("stage start_date must be YYYY-MM-DD")
		}
		sEnd, err := parseDatePtr(st.EndDate)
		if err != nil {
			return MedicationInput{}, errors.New("stage end_date must be YYYY-MM-DD")
		}
		in.TaperStages = append(in.TaperStages, StageInput{
			Dosage:        st.Dosage,
			Frequency:     st.Frequency,
			Times:         st.Times,
			StartDate:     *sStart,
			EndDate:       sEnd,
			EveryOtherDay: st.EveryOtherDay,
			MaxDoses:      st.MaxDoses,
		})
	}
	return in, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return parseDate(*s)
}

func toDischargeResponse(v Visit) dischargeResponse {
	meds := make([]medicationResponse, 0, len(v.Medications))
	for _, m := range v.Medications {
		stages := make([]stageResponse, 0, len(m.TaperStages))
		for _, st := range m.TaperStages {
			stages = append(stages, stageResponse{
				Dosage:        st.Dosage,
				Frequency:     st.Frequency,
				Times:         st.Times,
				StartDate:     st.StartDate,
				EndDate:       st.EndDate,
				EveryOtherDay: st.EveryOtherDay,
				MaxDoses:      st.MaxDoses,
			})
		}
		meds = append(meds, medicationResponse{
			ID:            m.ID,
			Name:          m.Name,
			Dosage:        m.Dosage,
			Frequency:     m.Frequency,
			Times:         m.Times,
			StartDate:     m.StartDate,
			EndDate:       m.EndDate,
			EveryOtherDay: m.EveryOtherDay,
			MaxDoses:      m.MaxDoses,
			Tapered:       m.Tapered,
			TaperStages:   stages,
			Notes:         m.Notes,
		})
	}

	return dischargeResponse{
		ID:             v.ID,
		ClinicID:       v.ClinicID,
		PatientName:    v.Patient.Name,
		PatientSpecies: v.Patient.Species,
		WeightKg:       v.Patient.WeightKg,
		VisitDate:      v.VisitDate,
		Diagnosis:      v.Diagnosis,
		Medications:    meds,
		Notes:          v.Notes,
		CreatedAt:      v.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
