package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-discharge-portal/internal/domain/adherence"
	"pet-discharge-portal/internal/domain/schedule"
	"pet-discharge-portal/internal/domain/symptoms"
	"pet-discharge-portal/internal/middleware"
	"pet-discharge-portal/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

// MetricsCache es un cache opcional (TTL corto) para respuestas de métricas.
// nil = sin cache. Abstrae rediscache para poder testear sin redis.
type MetricsCache interface {
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, v any) error
}

// featureReportsExport es la feature del plan comercial que habilita exportar
// reportes xlsx. Con resolver nil el export queda abierto (modo dev).
const featureReportsExport = "reports:export"

func RegisterRoutes(r chi.Router, svc *Service, cache MetricsCache, caps capabilities.CapabilitiesResolver) {
	r.Route("/clinics/{clinicID}/patients", func(pr chi.Router) {
		pr.Get("/metrics", patientMetricsHandler(svc, cache))
		pr.Get("/adherence", patientAdherenceHandler(svc, cache))
		pr.Get("/symptoms", patientSymptomsHandler(svc, cache))
		pr.Get("/adherence/export", exportAdherenceHandler(svc, caps))
	})
}

type warningResponse struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Reason         string `json:"reason"`
}

type countsResponse struct {
	Scheduled int `json:"scheduled"`
	Given     int `json:"given"`
	Late      int `json:"late"`
	Missed    int `json:"missed"`
	Skipped   int `json:"skipped"`
	Unlogged  int `json:"unlogged"`
}

type medicationBreakdownResponse struct {
	Name string `json:"name"`
	countsResponse
	Rate     int      `json:"rate"`
	VisitIDs []string `json:"visit_ids"`
}

type dayBucketResponse struct {
	Date      time.Time `json:"date"`
	Scheduled int       `json:"scheduled"`
	Given     int       `json:"given"`
	Missed    int       `json:"missed"`
	Rate      int       `json:"rate"`
}

// adherenceResponse es el reporte de adherencia de un paciente sobre una ventana.
type adherenceResponse struct {
	countsResponse
	Rate int `json:"rate"`

	PerMedication []medicationBreakdownResponse `json:"per_medication"`
	Timeline      []dayBucketResponse           `json:"timeline"`
	Warnings      []warningResponse             `json:"warnings"`
}

type metricTrendResponse struct {
	Current   int            `json:"current"`
	Average7d float64        `json:"average_7d"`
	Trend     symptoms.Trend `json:"trend"`
}

type flagResponse struct {
	Type        symptoms.FlagType `json:"type"`
	Date        time.Time         `json:"date"`
	Severity    symptoms.Severity `json:"severity"`
	Description string            `json:"description"`
}

// symptomAnalysisResponse es el análisis de síntomas de un paciente.
type symptomAnalysisResponse struct {
	Appetite metricTrendResponse `json:"appetite"`
	Energy   metricTrendResponse `json:"energy"`

	PantingCount7d  int  `json:"panting_count_7d"`
	PantingFrequent bool `json:"panting_frequent"`

	Flags []flagResponse `json:"flags"`

	EntryCount int `json:"entry_count"`
	WindowDays int `json:"window_days"`
}

// patientMetricsResponse es el resumen agregado del paciente para el dashboard.
type patientMetricsResponse struct {
	PatientName string `json:"patient_name"`
	Species     string `json:"species"`
	VisitCount  int    `json:"visit_count"`

	OverallRate    int `json:"overall_rate"`
	ActiveOnlyRate int `json:"active_only_rate"`

	ActiveMedications   int `json:"active_medications"`
	ArchivedMedications int `json:"archived_medications"`

	MissedLast30 int `json:"missed_last_30"`
	LateLast30   int `json:"late_last_30"`

	LastDoseAt *time.Time `json:"last_dose_at,omitempty"`

	SymptomFlags14d int `json:"symptom_flags_14d"`

	CurrentStatus ActivityStatus `json:"current_status"`

	Warnings []warningResponse `json:"warnings"`
}

// patientQuery saca clinic/name/species del request y exige staff de la clínica.
func patientQuery(w http.ResponseWriter, r *http.Request) (Query, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Query{}, false
	}

	clinicID := chi.URLParam(r, "clinicID")
	if claims.ClinicID != clinicID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Query{}, false
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return Query{}, false
	}

	return Query{
		ClinicID: clinicID,
		Name:     name,
		Species:  strings.TrimSpace(r.URL.Query().Get("species")),
	}, true
}

func windowDaysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("window_days"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 365 {
		http.Error(w, "window_days must be 0-365", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func cacheKey(kind string, q Query, windowDays int) string {
	return fmt.Sprintf("metrics:%s:%s:%s:%s:%d",
		kind,
		strings.ToLower(q.ClinicID),
		strings.ToLower(q.Name),
		strings.ToLower(q.Species),
		windowDays,
	)
}

// patientMetricsHandler godoc
// @Summary Resumen agregado de un paciente
// @Description Junta todas las visitas que matchean nombre (y especie si viene) de forma case-insensitive y computa el resumen para el dashboard: tasas 90 días, medicaciones activas, dosis perdidas/tardías de los últimos 30 días, flags de síntomas y estado actual. Solo staff de la clínica.
// @Tags patients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clinicID path string true "ID de la clínica"
// @Param name query string true "Nombre del paciente (match case-insensitive)"
// @Param species query string false "Especie para desambiguar (dog/cat/other)"
// @Success 200 {object} patientMetricsResponse
// @Failure 400 {string} string "name required"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /clinics/{clinicID}/patients/metrics [get]
func patientMetricsHandler(svc *Service, cache MetricsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := patientQuery(w, r)
		if !ok {
			return
		}

		key := cacheKey("summary", q, 0)
		if cache != nil {
			var cached patientMetricsResponse
			if err := cache.GetJSON(r.Context(), key, &cached); err == nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}

		m, err := svc.Metrics(r.Context(), q)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := toPatientMetricsResponse(m)
		if cache != nil {
			_ = cache.SetJSON(r.Context(), key, resp)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// patientAdherenceHandler godoc
// @Summary Reporte de adherencia de un paciente
// @Description Expande los planes de medicación a dosis esperadas, las reconcilia contra lo loggeado y devuelve tasas totales, por medicación y línea de tiempo diaria. window_days=0 (default) cubre la historia completa. Solo staff de la clínica.
// @Tags patients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clinicID path string true "ID de la clínica"
// @Param name query string true "Nombre del paciente (match case-insensitive)"
// @Param species query string false "Especie para desambiguar (dog/cat/other)"
// @Param window_days query int false "Ventana en días hacia atrás (0-365). 0 = historia completa"
// @Success 200 {object} adherenceResponse
// @Failure 400 {string} string "name required / window_days inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /clinics/{clinicID}/patients/adherence [get]
func patientAdherenceHandler(svc *Service, cache MetricsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := patientQuery(w, r)
		if !ok {
			return
		}
		windowDays, ok := windowDaysParam(w, r)
		if !ok {
			return
		}

		key := cacheKey("adherence", q, windowDays)
		if cache != nil {
			var cached adherenceResponse
			if err := cache.GetJSON(r.Context(), key, &cached); err == nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}

		m, warnings, err := svc.Adherence(r.Context(), q, windowDays)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := toAdherenceResponse(m, warnings)
		if cache != nil {
			_ = cache.SetJSON(r.Context(), key, resp)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// patientSymptomsHandler godoc
// @Summary Análisis de síntomas de un paciente
// @Description Analiza los registros diarios de síntomas: tendencias de apetito/energía contra el promedio móvil de 7 días, jadeo frecuente y flags con severidad. window_days=0 usa el default de 30 días. Solo staff de la clínica.
// @Tags patients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clinicID path string true "ID de la clínica"
// @Param name query string true "Nombre del paciente (match case-insensitive)"
// @Param species query string false "Especie para desambiguar (dog/cat/other)"
// @Param window_days query int false "Ventana en días (0-365). 0 = default de 30 días"
// @Success 200 {object} symptomAnalysisResponse
// @Failure 400 {string} string "name required / window_days inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /clinics/{clinicID}/patients/symptoms [get]
func patientSymptomsHandler(svc *Service, cache MetricsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := patientQuery(w, r)
		if !ok {
			return
		}
		windowDays, ok := windowDaysParam(w, r)
		if !ok {
			return
		}

		key := cacheKey("symptoms", q, windowDays)
		if cache != nil {
			var cached symptomAnalysisResponse
			if err := cache.GetJSON(r.Context(), key, &cached); err == nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}

		a, err := svc.Symptoms(r.Context(), q, windowDays)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := toSymptomAnalysisResponse(a)
		if cache != nil {
			_ = cache.SetJSON(r.Context(), key, resp)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// exportAdherenceHandler godoc
// @Summary Exportar reporte de adherencia (xlsx)
// @Description Genera el reporte de adherencia como workbook xlsx (desglose por medicación + línea de tiempo). Requiere la feature `reports:export` del plan de la clínica si el resolver está configurado.
// @Tags patients
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Clinic-ID header string false "Solo en modo dev, ID de clínica para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clinicID path string true "ID de la clínica"
// @Param name query string true "Nombre del paciente (match case-insensitive)"
// @Param species query string false "Especie para desambiguar (dog/cat/other)"
// @Param window_days query int false "Ventana en días hacia atrás (0-365). 0 = historia completa"
// @Success 200 {file} file
// @Failure 400 {string} string "name required / window_days inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden / feature no habilitada"
// @Router /clinics/{clinicID}/patients/adherence/export [get]
func exportAdherenceHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := patientQuery(w, r)
		if !ok {
			return
		}
		windowDays, ok := windowDaysParam(w, r)
		if !ok {
			return
		}

		if caps != nil {
			claims, _ := middleware.GetClaims(r.Context())
			allowed, err := caps.HasFeature(r.Context(), capabilities.CapabilityCheck{
				UserID:   claims.UserID,
				ClinicID: q.ClinicID,
				Feature:  featureReportsExport,
			})
			if err != nil || !allowed {
				http.Error(w, "reports export not enabled for this clinic", http.StatusForbidden)
				return
			}
		}

		m, _, err := svc.Adherence(r.Context(), q, windowDays)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		b, err := ExportAdherenceXLSX(q.Name, m)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("adherence-%s.xlsx", strings.ReplaceAll(strings.ToLower(q.Name), " ", "-"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func toWarningResponses(warnings []schedule.Warning) []warningResponse {
	out := make([]warningResponse, 0, len(warnings))
	for _, wn := range warnings {
		out = append(out, warningResponse{
			MedicationID:   wn.MedicationID,
			MedicationName: wn.MedicationName,
			Reason:         wn.Reason,
		})
	}
	return out
}

func toCountsResponse(c adherence.Counts) countsResponse {
	return countsResponse{
		Scheduled: c.Scheduled,
		Given:     c.Given,
		Late:      c.Late,
		Missed:    c.Missed,
		Skipped:   c.Skipped,
		Unlogged:  c.Unlogged,
	}
}

func toAdherenceResponse(m adherence.Metrics, warnings []schedule.Warning) adherenceResponse {
	perMed := make([]medicationBreakdownResponse, 0, len(m.PerMedication))
	for _, med := range m.PerMedication {
		perMed = append(perMed, medicationBreakdownResponse{
			Name:           med.Name,
			countsResponse: toCountsResponse(med.Counts),
			Rate:           med.Rate,
			VisitIDs:       med.VisitIDs,
		})
	}

	timeline := make([]dayBucketResponse, 0, len(m.Timeline))
	for _, day := range m.Timeline {
		timeline = append(timeline, dayBucketResponse{
			Date:      day.Date,
			Scheduled: day.Scheduled,
			Given:     day.Given,
			Missed:    day.Missed,
			Rate:      day.Rate,
		})
	}

	return adherenceResponse{
		countsResponse: toCountsResponse(m.Counts),
		Rate:           m.Rate,
		PerMedication:  perMed,
		Timeline:       timeline,
		Warnings:       toWarningResponses(warnings),
	}
}

func toSymptomAnalysisResponse(a symptoms.Analysis) symptomAnalysisResponse {
	flags := make([]flagResponse, 0, len(a.Flags))
	for _, f := range a.Flags {
		flags = append(flags, flagResponse{
			Type:        f.Type,
			Date:        f.Date,
			Severity:    f.Severity,
			Description: f.Description,
		})
	}

	return symptomAnalysisResponse{
		Appetite: metricTrendResponse{
			Current:   a.Appetite.Current,
			Average7d: a.Appetite.Average7d,
			Trend:     a.Appetite.Trend,
		},
		Energy: metricTrendResponse{
			Current:   a.Energy.Current,
			Average7d: a.Energy.Average7d,
			Trend:     a.Energy.Trend,
		},
		PantingCount7d:  a.PantingCount7d,
		PantingFrequent: a.PantingFrequent,
		Flags:           flags,
		EntryCount:      a.EntryCount,
		WindowDays:      a.WindowDays,
	}
}

func toPatientMetricsResponse(m PatientMetrics) patientMetricsResponse {
	return patientMetricsResponse{
		PatientName:         m.PatientName,
		Species:             m.Species,
		VisitCount:          m.VisitCount,
		OverallRate:         m.OverallRate,
		ActiveOnlyRate:      m.ActiveOnlyRate,
		ActiveMedications:   m.ActiveMedications,
		ArchivedMedications: m.ArchivedMedications,
		MissedLast30:        m.MissedLast30,
		LateLast30:          m.LateLast30,
		LastDoseAt:          m.LastDoseAt,
		SymptomFlags14d:     m.SymptomFlags14d,
		CurrentStatus:       m.CurrentStatus,
		Warnings:            toWarningResponses(m.Warnings),
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
