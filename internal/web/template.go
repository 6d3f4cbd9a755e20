package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/WimObiwan/cellarpump/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"countdown": func(secs int64) string {
		if secs >= 3600 {
			return fmt.Sprintf("%dh %dm", secs/3600, secs%3600/60)
		}
		if secs >= 60 {
			return fmt.Sprintf("%dm %ds", secs/60, secs%60)
		}
		return fmt.Sprintf("%ds", secs)
	},
	"temp": func(v float64) string { return fmt.Sprintf("%.1f°C", v) },
	"hum":  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"presetPos": func(index, count int) string {
		return fmt.Sprintf("%d/%d", index+1, count)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cellar Pump</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: red; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Cellar Pump</h1>

<h2>Pump</h2>
<table>
<tr><th>State</th><td class="{{if .Pump.Running}}on{{else}}off{{end}}">{{if .Pump.Running}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>{{if .Pump.Running}}Stops in{{else}}Next run in{{end}}</th><td>{{countdown .RemainingSeconds}}</td></tr>
<tr><th>Preset</th><td>{{.PresetLabel}} ({{presetPos .PresetIndex .PresetCount}})</td></tr>
</table>

<h2>Environment</h2>
<table>
{{if and .SensorPresent .Reading.Valid}}
<tr><th>Temperature</th><td>{{temp .Reading.Temperature}}</td></tr>
<tr><th>Humidity</th><td>{{hum .Reading.Humidity}}</td></tr>
{{else if .SensorPresent}}
<tr><th>Sensor</th><td>no reading yet</td></tr>
{{else}}
<tr><th>Sensor</th><td>not installed</td></tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Pump on</th><td>{{.Counts.PumpOn}}</td></tr>
<tr><th>Pump off</th><td>{{.Counts.PumpOff}}</td></tr>
<tr><th>Preset resets</th><td>{{.Counts.PumpReset}}</td></tr>
<tr><th>Preset changes</th><td>{{.Counts.PresetChanges}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05"}} UTC</td></tr>
<tr><th>Poll interval</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Display refresh</th><td>{{.Config.DisplayMs}}ms</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render: %v", err)
	}
}
