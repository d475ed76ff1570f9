package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/sweeney/tiled/internal/status"
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
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>tiled</title>
<style>
body { font-family: monospace; max-width: 900px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.alert { color: red; font-weight: bold; }
.hidden { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>tiled</h1>

<h2>Tiles</h2>
<table>
<tr><th>Tile</th><th>Kind</th><th>Value</th><th>Scale</th><th>Threshold</th><th>Measured</th><th>Sections</th><th>Queued</th></tr>
{{range .Tiles}}<tr id="tile-{{.Name}}" class="{{if .Alert}}alert{{else if not .Visible}}hidden{{end}}">
<td>{{if .Title}}{{.Title}}{{else}}{{.Name}}{{end}}</td>
<td>{{.Kind}}</td>
<td>{{num .CurrentValue}}{{if .Unit}} {{.Unit}}{{end}}{{if .Animating}} &rarr; {{num .Value}}{{end}}</td>
<td>{{num .MinValue}} .. {{num .MaxValue}}</td>
<td>{{num .Threshold}}</td>
<td>{{if .Measured}}{{num .MinMeasuredValue}} .. {{num .MaxMeasuredValue}}{{else}}-{{end}}</td>
<td>{{range $i, $s := .ActiveSections}}{{if $i}}, {{end}}{{$s}}{{end}}</td>
<td>{{.PendingEvents}}</td>
</tr>
{{else}}<tr><td colspan="8">no tiles</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic prefix</th><td>{{.Config.TopicPrefix}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frame</th><td>{{.Config.FrameMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has an Uptime method but the template wants a field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
