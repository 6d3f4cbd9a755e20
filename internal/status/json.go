package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string       `json:"event,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	Pump             string       `json:"pump"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	Preset           PresetJSON   `json:"preset"`
	Sensor           *SensorJSON  `json:"sensor,omitempty"`
	UptimeSeconds    int64        `json:"uptime_seconds"`
	StartTime        string       `json:"start_time"`
	Timestamp        string       `json:"timestamp"`
	MQTT             MQTTStatus   `json:"mqtt"`
	Counts           CountsJSON   `json:"event_counts"`
	Config           ConfigJSON   `json:"config"`
}

// PresetJSON is the JSON representation of the active preset.
type PresetJSON struct {
	Label string `json:"label"`
	Index int    `json:"index"`
	Count int    `json:"count"`
}

// SensorJSON is the JSON representation of the last sensor reading.
type SensorJSON struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	PumpOn        int `json:"pump_on"`
	PumpOff       int `json:"pump_off"`
	PumpReset     int `json:"pump_reset"`
	PresetChanges int `json:"preset_changes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	SensorIntervalMs int64  `json:"sensor_interval_ms"`
	DisplayMs        int64  `json:"display_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	OverlayMs        int64  `json:"overlay_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := "OFF"
	if snap.Pump.Running {
		state = "ON"
	}

	inner := StatusInner{
		Pump:             state,
		RemainingSeconds: snap.RemainingSeconds(),
		Preset: PresetJSON{
			Label: snap.PresetLabel,
			Index: snap.PresetIndex,
			Count: snap.PresetCount,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			PumpOn:        snap.Counts.PumpOn,
			PumpOff:       snap.Counts.PumpOff,
			PumpReset:     snap.Counts.PumpReset,
			PresetChanges: snap.Counts.PresetChanges,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			SensorIntervalMs: snap.Config.SensorIntervalMs,
			DisplayMs:        snap.Config.DisplayMs,
			DebounceMs:       snap.Config.DebounceMs,
			OverlayMs:        snap.Config.OverlayMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}

	if snap.SensorPresent && snap.Reading.Valid() {
		inner.Sensor = &SensorJSON{
			Temperature: snap.Reading.Temperature,
			Humidity:    snap.Reading.Humidity,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
