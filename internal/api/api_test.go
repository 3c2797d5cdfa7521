package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/builder"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/flow"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/pubsub"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schema"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/storage"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const household = "household-1"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()

	hub := ws.NewHub(log)
	go hub.Run()
	bus := pubsub.New(nil, log)
	bus.SetWSHub(hub)

	parser := transfer.NewParser(schema.NewCompilerWithCache(16, time.Minute), nil)
	meds := service.NewMedicationService(store.NewMemoryStore(), bus, parser, log)
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	meds.SetArchive(archive)

	sessions := service.NewSessionService(
		flow.NewEngine(question.Household()), builder.New(), meds, bus, service.SessionConfig{}, log)
	hub.SetCommandHandler(ws.NewCommandHandler(sessions, log))
	hub.SetAuthorizer(ws.SessionAuthorizer(sessions))

	srv := httptest.NewServer(Routes(Dependencies{
		Meds:     meds,
		Sessions: sessions,
		Hub:      hub,
		JWT:      auth.NewJWTConfig("test-secret"),
		Log:      log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set(auth.DevHeader, household)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func advil() map[string]interface{} {
	return map[string]interface{}{
		"patientName":  "Myself",
		"brandName":    "Advil",
		"dosageAmount": "1",
		"dosageUnit":   "tablet",
		"schedule": map[string]interface{}{
			"frequency":      "every day",
			"dailyFrequency": "once",
			"doseTimes":      []map[string]int{{"hour": 9, "minute": 0}},
			"daysOfWeek":     []string{},
		},
		"isActive": true,
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCatalog(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, srv, http.MethodGet, "/v1/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, data)
	assert.Len(t, body["sections"], 6)
	assert.EqualValues(t, 35, body["totalSteps"])
}

func TestMedications_CRUD(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/v1/medications", advil())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	id := decode(t, data)["id"].(string)
	require.NotEmpty(t, id)

	resp, data = do(t, srv, http.MethodGet, "/v1/medications/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Advil", decode(t, data)["brandName"])

	updated := advil()
	updated["brandName"] = "Advil Liqui-Gels"
	resp, data = do(t, srv, http.MethodPut, "/v1/medications/"+id, updated)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, id, decode(t, data)["id"])

	resp, data = do(t, srv, http.MethodGet, "/v1/medications?q=liqui", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, data)["count"])

	resp, data = do(t, srv, http.MethodPost, "/v1/medications/"+id+"/status", map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode(t, data)["isActive"])

	resp, data = do(t, srv, http.MethodGet, "/v1/medications?active=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decode(t, data)["count"])

	resp, data = do(t, srv, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, data)["totalMedications"])

	resp, data = do(t, srv, http.MethodGet, "/v1/patients", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"Myself"}, decode(t, data)["patients"])

	resp, _ = do(t, srv, http.MethodDelete, "/v1/medications/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = do(t, srv, http.MethodGet, "/v1/medications/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, service.CodeNotFound, decode(t, data)["code"])
}

func TestMedications_Invalid(t *testing.T) {
	srv := newTestServer(t)

	missing := advil()
	delete(missing, "brandName")
	resp, data := do(t, srv, http.MethodPost, "/v1/medications", missing)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, service.CodeInvalidInput, decode(t, data)["code"])

	resp, _ = do(t, srv, http.MethodPost, "/v1/medications", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/v1/medications/batch-delete", map[string][]string{"ids": {}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/v1/medications/x/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMedications_BatchDeleteAndClear(t *testing.T) {
	srv := newTestServer(t)

	var ids []string
	for i := 0; i < 3; i++ {
		resp, data := do(t, srv, http.MethodPost, "/v1/medications", advil())
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, decode(t, data)["id"].(string))
	}

	resp, data := do(t, srv, http.MethodPost, "/v1/medications/batch-delete", map[string][]string{"ids": ids[:2]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, decode(t, data)["deleted"])

	resp, _ = do(t, srv, http.MethodDelete, "/v1/medications", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, data = do(t, srv, http.MethodGet, "/v1/medications", nil)
	assert.EqualValues(t, 0, decode(t, data)["count"])
}

func TestMedications_Sweep(t *testing.T) {
	srv := newTestServer(t)

	expired := advil()
	expired["storage"] = map[string]interface{}{"expirationDate": "2001-01-01T00:00:00Z"}
	resp, _ := do(t, srv, http.MethodPost, "/v1/medications", expired)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := do(t, srv, http.MethodPost, "/v1/medications/sweep", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, data)["expired"])

	resp, data = do(t, srv, http.MethodPost, "/v1/medications/sweep?async=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, service.CodeNotConfigured, decode(t, data)["code"])
}

func TestTransfer_ExportImport(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/v1/medications", advil())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, exported := do(t, srv, http.MethodGet, "/v1/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "fmsp_export_")
	envelope := decode(t, exported)
	assert.Equal(t, transfer.Version, envelope["version"])
	assert.EqualValues(t, 1, envelope["medicationCount"])

	resp, data := do(t, srv, http.MethodPost, "/v1/import", string(exported))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.EqualValues(t, 1, decode(t, data)["added"])

	_, data = do(t, srv, http.MethodGet, "/v1/medications", nil)
	assert.EqualValues(t, 2, decode(t, data)["count"])

	resp, data = do(t, srv, http.MethodPost, "/v1/import", `{"version":"1.0","medications":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, service.CodeInvalidImport, decode(t, data)["code"])
}

func TestTransfer_Archive(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/v1/medications", advil())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := do(t, srv, http.MethodPost, "/v1/exports", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	name := decode(t, data)["name"].(string)
	assert.True(t, strings.HasPrefix(name, "fmsp_export_"))

	resp, data = do(t, srv, http.MethodGet, "/v1/exports", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, data)["exports"], 1)

	resp, data = do(t, srv, http.MethodGet, "/v1/exports/"+name, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, data)["medicationCount"])

	resp, _ = do(t, srv, http.MethodGet, "/v1/exports/missing.json", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessions_Flow(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode(t, data)
	id := view["id"].(string)
	assert.NotNil(t, view["instructions"])

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	step := decode(t, data)["step"].(map[string]interface{})
	assert.Equal(t, question.PatientRelationship, step["id"])

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/next?enforce=true", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, service.CodeCannotProceed, decode(t, data)["code"])

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/answers",
		map[string]interface{}{"stepId": question.PatientRelationship, "value": "myself"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, true, decode(t, data)["canProceed"])

	resp, _ = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/answers",
		map[string]interface{}{"stepId": "nope", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/answers", map[string]interface{}{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/jump",
		map[string]int{"sectionIndex": 0, "stepIndex": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, _ = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/jump",
		map[string]int{"sectionIndex": 99, "stepIndex": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/complete", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, service.CodeNotCompleted, decode(t, data)["code"])

	resp, _ = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/previous", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, decode(t, data)["instructions"])

	resp, _ = do(t, srv, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessions_OtherHousehold(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode(t, data)["id"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/sessions/"+id, nil)
	require.NoError(t, err)
	req.Header.Set(auth.DevHeader, "household-2")
	other, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusNotFound, other.StatusCode)
}

func TestAuth_BadToken(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/catalog", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_MedicationEvents(t *testing.T) {
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	header := http.Header{}
	header.Set(auth.DevHeader, household)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "channel": pubsub.MedicationChannel}))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ack map[string]interface{}
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, "subscribed", ack["ack"])

	resp, _ := do(t, srv, http.MethodPost, "/v1/medications", advil())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "event", event["type"])
	data := event["data"].(map[string]interface{})
	assert.Equal(t, service.EventMedicationSaved, data["type"])
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed([]string{"*"}, "http://a.test"))
	assert.True(t, originAllowed([]string{"http://a.test"}, ""))
	assert.True(t, originAllowed([]string{"http://a.test"}, "http://a.test"))
	assert.False(t, originAllowed([]string{"http://a.test"}, "http://b.test"))
}
