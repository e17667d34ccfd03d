//go:build api

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against live services: portal-api on :8080 and wizard-api on :8081.
var (
	portalURL = envOr("API_PORTAL_URL", "http://localhost:8080")
	wizardURL = envOr("API_WIZARD_URL", "http://localhost:8081")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type wizardBody struct {
	ID   string `json:"id"`
	View struct {
		Step  int    `json:"step"`
		State string `json:"state"`
	} `json:"view"`
	Record json.RawMessage `json:"record"`
}

func TestAPI_CompetitionThenRegistration(t *testing.T) {
	waitForServices(t)
	deadline := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	eventDay := time.Now().AddDate(0, 2, 0).Format("2006-01-02")

	var competitionID uint
	t.Run("OrganizerCreatesCompetition", func(t *testing.T) {
		w := openWizard(t, "competition", "organizer")

		resp := do(t, http.MethodPost, wizardURL+"/api/v1/wizards/"+w.ID+"/defaults", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = putJSON(t, wizardURL+"/api/v1/wizards/"+w.ID+"/draft", map[string]any{
			"title":                 "API Cup",
			"event_date":            eventDay,
			"registration_deadline": deadline,
			"location":              "Central Arena",
			"city":                  "Almaty",
			"categories":            []string{"juniors"},
			"fees":                  map[string]int{"individual": 500},
			"max_participants":      map[string]int{"individual": 1},
			"payment":               map[string]string{"bank": "First Bank", "account": "KZ000111", "holder": "Federation"},
			"contact":               map[string]string{"name": "Dana", "phone": "+7 700 000 0000", "email": "dana@example.com"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		for step := 1; step < 5; step++ {
			resp = do(t, http.MethodPost, wizardURL+"/api/v1/wizards/"+w.ID+"/advance", nil, "")
			require.Equal(t, http.StatusOK, resp.StatusCode, "step %d", step)
		}

		var submitted wizardBody
		resp = do(t, http.MethodPost, wizardURL+"/api/v1/wizards/"+w.ID+"/submit", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeJSON(t, resp, &submitted)
		assert.Equal(t, "done", submitted.View.State)

		var record struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(submitted.Record, &record))
		require.NotZero(t, record.ID)
		competitionID = record.ID
	})

	t.Run("AthleteRegisters", func(t *testing.T) {
		require.NotZero(t, competitionID)
		register := func(email string) *http.Response {
			w := openWizard(t, "registration", "athlete")
			resp := putJSON(t, wizardURL+"/api/v1/wizards/"+w.ID+"/draft", map[string]any{
				"competition_id": competitionID,
				"first_name":     "Aru",
				"last_name":      "Sak",
				"date_of_birth":  "1990-01-01",
				"email":          email,
				"club":           "Falcons",
				"programs":       []string{"individual"},
			})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			resp = upload(t, wizardURL+"/api/v1/wizards/"+w.ID+"/attachments/medical_certificate", "med.pdf", 2048)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			return do(t, http.MethodPost, wizardURL+"/api/v1/wizards/"+w.ID+"/submit", nil, "")
		}

		resp := register("aru@example.com")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// the only individual place is taken
		resp = register("dana@example.com")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var list []map[string]any
		resp = do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/competitions/%d/registrations", portalURL, competitionID), nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeJSON(t, resp, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "aru@example.com", list[0]["email"])
	})
}

func openWizard(t *testing.T, kind, role string) wizardBody {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, wizardURL+"/api/v1/wizards/"+kind, nil)
	require.NoError(t, err)
	req.Header.Set("X-Portal-Role", role)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var w wizardBody
	decodeJSON(t, resp, &w)
	return w
}

func do(t *testing.T, method, url string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return do(t, http.MethodPut, url, bytes.NewReader(b), "application/json")
}

func upload(t *testing.T, url, name string, size int) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return do(t, http.MethodPost, url, &buf, w.FormDataContentType())
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func waitForServices(t *testing.T) {
	t.Helper()
	for _, base := range []string{portalURL, wizardURL} {
		var lastErr error
		for i := 0; i < 30; i++ {
			resp, err := http.Get(base + "/health")
			if err == nil && resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				lastErr = nil
				break
			}
			lastErr = err
			if resp != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("health returned %d", resp.StatusCode)
			}
			time.Sleep(time.Second)
		}
		require.NoError(t, lastErr, "service %s not ready", base)
	}
}
