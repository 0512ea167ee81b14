package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/aeharding/skewt/internal/database"
	"github.com/aeharding/skewt/pkg/config"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()

	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.HTTP.ListenAddr = "127.0.0.1"
	cfg.HTTP.Port = 0
	cfg.Parcel.DefaultSteps = 40

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, store, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

// unstableLevels is a profile that supports convection for a
// surface-heated parcel.
func unstableLevels() []database.Level {
	var levels []database.Level
	for h := 0.0; h <= 12000; h += 500 {
		levels = append(levels, database.Level{
			Pressure:    1000 * math.Exp(-h/8000),
			Height:      h,
			Temperature: 288.15 - 0.0065*h,
		})
	}
	return levels
}

func doRequest(t *testing.T, ctrl *Controller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestHealthMsgPackFormat(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/health?format=msgpack", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/msgpack" {
		t.Errorf("Content-Type = %q, expected application/msgpack", ct)
	}
}

func TestSoundingLifecycle(t *testing.T) {
	ctrl := newTestController(t)

	create := doRequest(t, ctrl, http.MethodPost, "/soundings", map[string]any{
		"name":   "test sounding",
		"levels": unstableLevels(),
	})
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", create.Code, create.Body.String())
	}

	var created database.Sounding
	if err := json.Unmarshal(create.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created sounding has no ID")
	}

	get := doRequest(t, ctrl, http.MethodGet, "/soundings/"+created.ID, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get status = %d", get.Code)
	}
	var fetched database.Sounding
	if err := json.Unmarshal(get.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if len(fetched.Levels) != len(unstableLevels()) {
		t.Errorf("fetched %d levels, expected %d", len(fetched.Levels), len(unstableLevels()))
	}

	list := doRequest(t, ctrl, http.MethodGet, "/soundings", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var summaries []database.Summary
	if err := json.Unmarshal(list.Body.Bytes(), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Name != "test sounding" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestCreateSoundingRejectsInvalid(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodPost, "/soundings", map[string]any{
		"name": "bad",
		"levels": []database.Level{
			{Pressure: 1000, Height: 100, Temperature: 290},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestGetSoundingNotFound(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/soundings/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestStoredTrajectory(t *testing.T) {
	ctrl := newTestController(t)

	create := doRequest(t, ctrl, http.MethodPost, "/soundings", map[string]any{
		"name":   "unstable",
		"levels": unstableLevels(),
	})
	var created database.Sounding
	if err := json.Unmarshal(create.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	path := fmt.Sprintf("/soundings/%s/trajectory?temperature=293.15&pressure=1000&dewpoint=283.15&steps=50", created.ID)
	rec := doRequest(t, ctrl, http.MethodGet, path, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp trajectoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Convection || resp.Trajectory == nil {
		t.Fatalf("resp = %+v, expected convection with a trajectory", resp)
	}
	if resp.Trajectory.ElevThermalTop <= 0 {
		t.Errorf("ElevThermalTop = %v", resp.Trajectory.ElevThermalTop)
	}
}

func TestStoredTrajectoryMissingParams(t *testing.T) {
	ctrl := newTestController(t)

	create := doRequest(t, ctrl, http.MethodPost, "/soundings", map[string]any{
		"name":   "unstable",
		"levels": unstableLevels(),
	})
	var created database.Sounding
	if err := json.Unmarshal(create.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, ctrl, http.MethodGet, "/soundings/"+created.ID+"/trajectory?temperature=293.15", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestInlineTrajectoryNoConvection(t *testing.T) {
	ctrl := newTestController(t)

	// Environment warmer than the parcel everywhere: the no-convection
	// outcome is a valid 200 response, not an error.
	var levels []database.Level
	for h := 0.0; h <= 10000; h += 500 {
		levels = append(levels, database.Level{
			Pressure:    1000 * math.Exp(-h/8000),
			Height:      h,
			Temperature: 298.15 + 0.005*h,
		})
	}

	rec := doRequest(t, ctrl, http.MethodPost, "/trajectory", map[string]any{
		"levels": levels,
		"surface": map[string]float64{
			"temperature": 293.15,
			"pressure":    1000,
			"dewpoint":    283.15,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp trajectoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Convection {
		t.Error("expected convection = false")
	}
	if resp.Trajectory != nil {
		t.Error("expected no trajectory payload")
	}
}

func TestInlineTrajectoryStepsBounds(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodPost, "/trajectory", map[string]any{
		"levels": unstableLevels(),
		"surface": map[string]float64{
			"temperature": 293.15,
			"pressure":    1000,
			"dewpoint":    283.15,
		},
		"steps": 1000000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}
