package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/WimObiwan/cellarpump/internal/pump"
	"github.com/WimObiwan/cellarpump/internal/sensor"
	"github.com/WimObiwan/cellarpump/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:           10,
		SensorIntervalMs: 2000,
		DisplayMs:        500,
		DebounceMs:       50,
		OverlayMs:        2000,
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func runningState() status.State {
	s := sensor.NewSampler(sensor.NewFakeReader(14.5, 82.0), 2000)
	s.SampleIfDue(0)
	return status.State{
		Pump: pump.Snapshot{
			Running:   true,
			StartedAt: 0,
			Schedule:  pump.Schedule{OnDuration: 60_000, CycleInterval: 30 * 60_000},
		},
		Tick:          15_000,
		Reading:       s.Reading(),
		SensorPresent: true,
		PresetLabel:   "Normal",
		PresetIndex:   0,
		PresetCount:   3,
		Counts:        status.Counts{PumpOn: 5, PumpOff: 4},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(runningState())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Pump != "ON" {
		t.Errorf("pump: got %q, want ON", sj.Status.Pump)
	}
	if sj.Status.RemainingSeconds != 45 {
		t.Errorf("remaining: got %d, want 45", sj.Status.RemainingSeconds)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.PumpOn != 5 {
		t.Errorf("Counts.PumpOn: got %d, want 5", sj.Status.Counts.PumpOn)
	}
	if sj.Status.Preset.Label != "Normal" {
		t.Errorf("preset: got %+v", sj.Status.Preset)
	}
	if sj.Status.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", sj.Status.Config.PollMs)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(runningState())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)

	for _, want := range []string{"Cellar Pump", "ON", "Normal (1/3)", "14.5", "82.0"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
