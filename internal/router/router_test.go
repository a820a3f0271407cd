package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"pet-discharge-portal/internal/domain/sharing"
	"pet-discharge-portal/internal/router"
)

func TestHTTP_EndToEnd_DischargeSharingAndAdherence(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	staffID := "vet-1"
	clinicID := "clinic-1"
	tutorID := "tutor-1"

	start := time.Now().UTC().AddDate(0, 0, -3)

	// 1) Staff crea el alta con un plan simple (1x día, 08:00)
	visitID := createDischarge(t, ts.URL, staffID, clinicID, map[string]any{
		"patient_name":    "Milo",
		"patient_species": "dog",
		"weight_kg":       12.5,
		"visit_date":      start.Format("2006-01-02"),
		"diagnosis":       "post-op",
		"medications": []map[string]any{
			{
				"name":       "Amoxicillin",
				"dosage":     "250 mg",
				"frequency":  1,
				"times":      []string{"08:00"},
				"start_date": start.Format("2006-01-02"),
			},
		},
	})

	// 2) Tutor NO puede ver el alta aún
	{
		st, _ := doReq(t, ts.URL, "GET", "/discharges/"+visitID, tutorID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before share, got %d", st)
		}
	}

	// 3) Staff comparte con scopes default
	shareID := createShare(t, ts.URL, staffID, clinicID, visitID, tutorID)

	// 4) Tutor ve su invitación
	{
		st, body := doReq(t, ts.URL, "GET", "/me/shares", tutorID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my shares, got %d body=%s", st, string(body))
		}
	}

	// 5) Invitado pero no aceptado: sigue sin acceso
	{
		st, _ := doReq(t, ts.URL, "GET", "/discharges/"+visitID, tutorID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 while invited, got %d", st)
		}
	}

	// 6) Tutor acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/shares/"+shareID+"/accept", tutorID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept share, got %d body=%s", st, string(body))
		}
	}

	// 7) Tutor ya puede ver el plan
	var medicationID string
	{
		st, body := doReq(t, ts.URL, "GET", "/discharges/"+visitID, tutorID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get discharge by tutor, got %d body=%s", st, string(body))
		}
		var resp struct {
			Medications []struct {
				ID string `json:"id"`
			} `json:"medications"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Medications) != 1 || resp.Medications[0].ID == "" {
			t.Fatalf("expected 1 medication with id, body=%s", string(body))
		}
		medicationID = resp.Medications[0].ID
	}

	// 8) Tutor loggea la dosis del primer día contra su instante programado
	scheduledAt := time.Date(start.Year(), start.Month(), start.Day(), 8, 0, 0, 0, time.UTC)
	{
		st, body := doReq(t, ts.URL, "POST", "/discharges/"+visitID+"/doses", tutorID, "", map[string]any{
			"medication_id": medicationID,
			"scheduled_at":  scheduledAt.Format(time.RFC3339),
			"given_at":      scheduledAt.Add(10 * time.Minute).Format(time.RFC3339),
			"status":        "given",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 log dose, got %d body=%s", st, string(body))
		}
	}

	// 9) Tutor loggea síntomas del día
	{
		st, body := doReq(t, ts.URL, "POST", "/discharges/"+visitID+"/symptoms", tutorID, "", map[string]any{
			"date":     start.Format("2006-01-02"),
			"appetite": 4,
			"energy":   3,
			"panting":  false,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 log symptom, got %d body=%s", st, string(body))
		}
	}

	// 10) Staff consulta adherencia del paciente: la dosis loggeada cuenta
	{
		path := "/clinics/" + clinicID + "/patients/adherence?name=" + url.QueryEscape("milo")
		st, body := doReq(t, ts.URL, "GET", path, staffID, clinicID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 adherence, got %d body=%s", st, string(body))
		}

		var resp struct {
			Scheduled int `json:"scheduled"`
			Given     int `json:"given"`
			Rate      int `json:"rate"`
		}
		_ = json.Unmarshal(body, &resp)

		if resp.Given != 1 {
			t.Fatalf("expected 1 given dose, got %+v body=%s", resp, string(body))
		}
		if resp.Scheduled < 3 {
			t.Fatalf("expected at least 3 scheduled doses, got %+v", resp)
		}
		// Unlogged no entra al denominador: una sola dosis contable, dada a tiempo.
		if resp.Rate != 100 {
			t.Fatalf("expected rate 100, got %+v", resp)
		}
	}

	// 11) Resumen del paciente (match case-insensitive por nombre)
	{
		path := "/clinics/" + clinicID + "/patients/metrics?name=" + url.QueryEscape("MILO")
		st, body := doReq(t, ts.URL, "GET", path, staffID, clinicID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 metrics, got %d body=%s", st, string(body))
		}

		var resp struct {
			VisitCount        int    `json:"visit_count"`
			ActiveMedications int    `json:"active_medications"`
			CurrentStatus     string `json:"current_status"`
		}
		_ = json.Unmarshal(body, &resp)

		if resp.VisitCount != 1 {
			t.Fatalf("expected 1 visit, got %+v body=%s", resp, string(body))
		}
		if resp.ActiveMedications != 1 {
			t.Fatalf("expected 1 active medication, got %+v", resp)
		}
		if resp.CurrentStatus != "active" {
			t.Fatalf("expected active status, got %+v", resp)
		}
	}

	// 12) Staff revoca el share
	{
		st, body := doReq(t, ts.URL, "POST", "/shares/"+shareID+"/revoke", staffID, clinicID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke share, got %d body=%s", st, string(body))
		}
	}

	// 13) Tutor pierde acceso inmediatamente
	{
		st, _ := doReq(t, ts.URL, "GET", "/discharges/"+visitID, tutorID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/discharges/"+visitID+"/doses", tutorID, "", map[string]any{
			"medication_id": medicationID,
			"scheduled_at":  scheduledAt.Format(time.RFC3339),
			"status":        "missed",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 log dose after revoke, got %d", st)
		}
	}
}

func TestHTTP_CreateDischarge_RejectsContradictoryPlan(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// tapered sin etapas => 400
	st, body := doReq(t, ts.URL, "POST", "/discharges", "vet-1", "clinic-1", map[string]any{
		"patient_name": "Luna",
		"visit_date":   "2026-03-01",
		"medications": []map[string]any{
			{
				"name":    "Prednisone",
				"tapered": true,
			},
		},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for tapered plan without stages, got %d body=%s", st, string(body))
	}
}

func TestHTTP_PatientEndpoints_RequireClinicMatch(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// staff de otra clínica => 403
	st, _ := doReq(t, ts.URL, "GET", "/clinics/clinic-1/patients/metrics?name=Milo", "vet-2", "clinic-2", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for mismatched clinic, got %d", st)
	}

	// sin name => 400
	st, _ = doReq(t, ts.URL, "GET", "/clinics/clinic-1/patients/metrics", "vet-1", "clinic-1", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", st)
	}

	// window_days fuera de rango => 400
	st, _ = doReq(t, ts.URL, "GET", "/clinics/clinic-1/patients/adherence?name=Milo&window_days=9999", "vet-1", "clinic-1", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for window_days out of range, got %d", st)
	}
}

func TestHTTP_Share_DefaultScopes(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	visitID := createDischarge(t, ts.URL, "vet-1", "clinic-1", map[string]any{
		"patient_name": "Rocky",
		"visit_date":   "2026-02-01",
	})

	st, body := doReq(t, ts.URL, "POST", "/discharges/"+visitID+"/shares", "vet-1", "clinic-1", map[string]any{
		"grantee_user_id": "tutor-9",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 share, got %d body=%s", st, string(body))
	}

	var resp struct {
		Scopes []sharing.Scope `json:"scopes"`
		Status sharing.Status  `json:"status"`
	}
	_ = json.Unmarshal(body, &resp)

	if len(resp.Scopes) != 3 {
		t.Fatalf("expected 3 default scopes, got %v", resp.Scopes)
	}
	if resp.Status != sharing.StatusInvited {
		t.Fatalf("expected invited status, got %v", resp.Status)
	}
}

func createDischarge(t *testing.T, baseURL, userID, clinicID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/discharges", userID, clinicID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create discharge, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create discharge: missing id body=%s", string(body))
	}
	return resp.ID
}

func createShare(t *testing.T, baseURL, userID, clinicID, visitID, granteeID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/discharges/"+visitID+"/shares", userID, clinicID, map[string]any{
		"grantee_user_id": granteeID,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create share, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create share: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugClinicID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugClinicID != "" {
		req.Header.Set("X-Debug-Clinic-ID", debugClinicID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
