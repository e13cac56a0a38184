package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/inzora-robotics/groundlink/internal/httputil"
)

// riskGrid adapts a heatmap snapshot to plotter.GridXYZ. Row 0 of the
// snapshot is drawn at the top of the image to match grid coordinates.
type riskGrid struct {
	values [][]float64
}

func (g riskGrid) Dims() (int, int) {
	if len(g.values) == 0 {
		return 0, 0
	}
	return len(g.values[0]), len(g.values)
}

func (g riskGrid) Z(c, r int) float64 { return g.values[len(g.values)-1-r][c] }
func (g riskGrid) X(c int) float64    { return float64(c) }
func (g riskGrid) Y(r int) float64    { return float64(r) }

// renderRiskHeatmap draws the current risk field as a PNG. Debugging
// endpoint for checking reinforcement and decay without the dashboard UI.
func (s *Server) renderRiskHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	values := s.heatmap.Snapshot()
	if len(values) == 0 {
		httputil.BadRequest(w, "risk heatmap is empty")
		return
	}

	p := plot.New()
	p.Title.Text = "Risk Heatmap"
	p.X.Label.Text = "col"
	p.Y.Label.Text = "row"

	hm := plotter.NewHeatMap(riskGrid{values: values}, palette.Heat(16, 1))
	hm.Min = 0
	p.Add(hm)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render heatmap: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = wt.WriteTo(w)
}

// renderHistoryChart renders recent telemetry as an ECharts line chart
// (HTML). Debugging endpoint mirroring what the dashboard plots.
func (s *Server) renderHistoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	history := s.poller.History(500)

	xs := make([]string, 0, len(history))
	temp := make([]opts.LineData, 0, len(history))
	gas := make([]opts.LineData, 0, len(history))
	battery := make([]opts.LineData, 0, len(history))
	for _, rec := range history {
		ts := time.Unix(0, int64(rec.Timestamp*1e9))
		xs = append(xs, ts.Format("15:04:05"))
		temp = append(temp, lineValue(rec.Temp))
		gas = append(gas, lineValue(rec.Gas))
		battery = append(battery, lineValue(rec.Battery))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Telemetry History", Theme: "dark", Width: "1200px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Telemetry History", Subtitle: fmt.Sprintf("%d readings", len(history))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xs).
		AddSeries("temp (C)", temp).
		AddSeries("gas (ppm)", gas).
		AddSeries("battery (%)", battery)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: *v}
}
