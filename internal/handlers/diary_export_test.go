package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-diary-server/internal/models"
)

func TestDiaryExport(t *testing.T) {
	router, db, cfg := newTestServer(t)
	anna := createUser(t, db, "Anna", "anna@example.com", false)
	admin := createUser(t, db, "Root", "admin@example.com", true)
	annaToken := tokenFor(t, cfg, &anna)
	adminToken := tokenFor(t, cfg, &admin)

	recorder := doRequest(t, router, http.MethodPost, "/api/appointments", annaToken,
		bookingBody("ClinicA", "2024-05-01", "09:00"))
	require.Equal(t, http.StatusCreated, recorder.Code)
	var appointment models.Appointment
	decodeData(t, recorder, &appointment)

	// No symptoms recorded yet: the export refuses.
	recorder = doRequest(t, router, http.MethodGet,
		"/api/appointments/"+appointment.ID+"/pdf", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	for i, title := range []string{"Headache", "Nausea", "Fatigue"} {
		recorder = doRequest(t, router, http.MethodPost, "/api/entries", annaToken,
			map[string]interface{}{
				"title":     title,
				"severity":  3 + i,
				"timestamp": time.Date(2024, 4, 1+i, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
			})
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder = doRequest(t, router, http.MethodGet,
		"/api/appointments/"+appointment.ID+"/pdf", adminToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Header().Get("Content-Disposition"),
		`filename="anna@example.com_DiarioSintomi.pdf"`)
	assert.True(t, len(recorder.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF-", recorder.Body.String()[:5])
}

func TestDiaryExportUnknownAppointment(t *testing.T) {
	router, db, cfg := newTestServer(t)
	admin := createUser(t, db, "Root", "admin@example.com", true)

	recorder := doRequest(t, router, http.MethodGet,
		"/api/appointments/no-such-id/pdf", tokenFor(t, cfg, &admin), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
