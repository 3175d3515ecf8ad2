package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"deepwork/report-generator/internal/models"
)

// Chart geometry. A bar at 100% occupies baseHeight units; the canvas grows
// with the data so short bars don't float in empty space.
const (
	chartBaseHeight  = 250
	chartWidth       = 600
	chartPadding     = 40
	chartBarSpacing  = 15
	chartLabelOffset = 5
	chartMinBarWidth = 20

	// scaleFloor prevents degenerate scaling when every value is near zero.
	scaleFloor = 5
)

// NoChartData is returned instead of markup when there is nothing to draw.
const NoChartData = "<p>Görselleştirilecek duygu verisi bulunamadı.</p>"

// ChartRenderer turns emotion records into self-contained SVG bar charts.
// Both renderers are pure: identical input produces byte-identical markup.
type ChartRenderer struct{}

func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

type chartEntry struct {
	key   models.EmotionKey
	value float64
}

// RenderAbsolute draws one bar per emotion present in the record, in
// canonical order, scaled against max(5, max value). Records with no
// emotion data, or with all-zero values, yield the no-data placeholder.
func (cr *ChartRenderer) RenderAbsolute(rec models.EmotionRecord) string {
	var entries []chartEntry
	maxValue := 0.0
	for _, key := range models.EmotionKeys {
		v, ok := rec.Value(key)
		if !ok {
			continue
		}
		entries = append(entries, chartEntry{key: key, value: v})
		if v > maxValue {
			maxValue = v
		}
	}

	if len(entries) == 0 || maxValue == 0 {
		return NoChartData
	}

	if maxValue < scaleFloor {
		maxValue = scaleFloor
	}

	height := int((maxValue/100)*chartBaseHeight) + 2*chartPadding
	plotHeight := float64(height - 2*chartPadding)
	barWidth := barWidthFor(len(entries))

	var sb strings.Builder

	// Title and x axis.
	fmt.Fprintf(&sb,
		`<text x="%s" y="25" font-family="IBMPlexSans" font-size="12" text-anchor="middle" fill="#333" font-weight="400">Aday Duygu Analizi</text>`,
		num(chartWidth/2.0))
	fmt.Fprintf(&sb,
		`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#ccc" stroke-width="1"/>`,
		chartPadding, height-chartPadding, chartWidth-chartPadding, height-chartPadding)

	// Gridline ticks at 0/25/50/75/100, positioned relative to the effective
	// maximum so they stay honest when the canvas is rescaled.
	for i := 0; i < 5; i++ {
		percent := float64(i * 25)
		y := float64(height-chartPadding) - (percent/maxValue)*plotHeight
		fmt.Fprintf(&sb,
			`<text x="%d" y="%s" font-family="IBMPlexSans" font-size="10" text-anchor="end" fill="#555">%d%%</text>`,
			chartPadding-10, num(y+5), i*25)
		fmt.Fprintf(&sb,
			`<line x1="%d" y1="%s" x2="%d" y2="%s" stroke="#ccc" stroke-width="0.5"/>`,
			chartPadding, num(y), chartPadding+5, num(y))
	}

	for i, entry := range entries {
		x := chartPadding + float64(i)*(barWidth+chartBarSpacing)
		barHeight := (entry.value / maxValue) * plotHeight
		y := float64(height-chartPadding) - barHeight

		fmt.Fprintf(&sb,
			`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" rx="3" ry="3"/>`,
			num(x), num(y), num(barWidth), num(barHeight), entry.key.Color())

		// Value label sits above the bar; flip it inside when it would
		// cross the canvas top edge.
		textY := y - chartLabelOffset
		if textY < 15 {
			textY = y + 15
		}
		fmt.Fprintf(&sb,
			`<text x="%s" y="%s" font-family="IBMPlexSans" font-size="12" text-anchor="middle" fill="#333" font-weight="bold">%.1f%%</text>`,
			num(x+barWidth/2), num(textY), entry.value)

		fmt.Fprintf(&sb,
			`<text x="%s" y="%d" font-family="IBMPlexSans" font-size="11" text-anchor="middle" fill="#555">%s</text>`,
			num(x+barWidth/2), height-chartPadding+20, entry.key.Label())
	}

	return wrapSVG(sb.String(), chartWidth, height)
}

// RenderDifferential draws subject-minus-average bars for every canonical
// key, extending above the centered zero baseline for positive differences
// and below it for negative ones.
func (cr *ChartRenderer) RenderDifferential(rec models.EmotionRecord) string {
	var entries []chartEntry
	maxAbs := 0.0
	for _, key := range models.EmotionKeys {
		v, _ := rec.Value(key)
		diff := math.Round((v-rec.Average(key))*100) / 100
		entries = append(entries, chartEntry{key: key, value: diff})
		if math.Abs(diff) > maxAbs {
			maxAbs = math.Abs(diff)
		}
	}

	if len(entries) == 0 {
		return NoChartData
	}

	if maxAbs < scaleFloor {
		maxAbs = scaleFloor
	}

	panel := (maxAbs / 100) * chartBaseHeight
	height := int(panel*2 + chartPadding*2)
	baseline := chartPadding + panel
	barWidth := barWidthFor(len(entries))

	var sb strings.Builder

	fmt.Fprintf(&sb,
		`<text x="%s" y="25" font-family="IBMPlexSans" font-size="12" text-anchor="middle" fill="#333" font-weight="400">Aday Duygularının Ortalamadan Farkı</text>`,
		num(chartWidth/2.0))

	// Zero baseline at the vertical center.
	fmt.Fprintf(&sb,
		`<line x1="%d" y1="%s" x2="%d" y2="%s" stroke="#ccc" stroke-width="1"/>`,
		chartPadding, num(baseline), chartWidth-chartPadding, num(baseline))

	// Three reference ticks only: -max, zero, +max.
	for _, ref := range []float64{-maxAbs, 0, maxAbs} {
		pos := baseline - (ref/maxAbs)*panel
		fmt.Fprintf(&sb,
			`<text x="%d" y="%s" font-family="IBMPlexSans" font-size="10" text-anchor="end" fill="#555">%.0f%%</text>`,
			chartPadding-10, num(pos+4), ref)
		fmt.Fprintf(&sb,
			`<line x1="%d" y1="%s" x2="%d" y2="%s" stroke="#ccc" stroke-width="0.5"/>`,
			chartPadding, num(pos), chartPadding+5, num(pos))
	}

	for i, entry := range entries {
		x := chartPadding + float64(i)*(barWidth+chartBarSpacing)
		barHeight := math.Abs(entry.value) / maxAbs * panel

		y := baseline
		if entry.value >= 0 {
			y = baseline - barHeight
		}
		fmt.Fprintf(&sb,
			`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" rx="3" ry="3"/>`,
			num(x), num(y), num(barWidth), num(barHeight), entry.key.Color())

		textY := y - chartLabelOffset
		if entry.value < 0 {
			textY = y + barHeight + 15
		}
		fmt.Fprintf(&sb,
			`<text x="%s" y="%s" font-family="IBMPlexSans" font-size="12" text-anchor="middle" fill="#333" font-weight="bold">%+.1f%%</text>`,
			num(x+barWidth/2), num(textY), entry.value)

		fmt.Fprintf(&sb,
			`<text x="%s" y="%s" font-family="IBMPlexSans" font-size="11" text-anchor="middle" fill="#555">%s</text>`,
			num(x+barWidth/2), num(baseline+panel+20), entry.key.Label())
	}

	return wrapSVG(sb.String(), chartWidth, height)
}

// barWidthFor divides the drawable width among n bars, clamping to a minimum
// so an oversized bar count can't produce zero or negative widths.
func barWidthFor(n int) float64 {
	w := float64(chartWidth-2*chartPadding-(n-1)*chartBarSpacing) / float64(n)
	if w <= 0 {
		w = chartMinBarWidth
	}
	return w
}

func wrapSVG(elements string, width, height int) string {
	return fmt.Sprintf(
		`<div style="text-align:center;margin:20px auto;opacity:0.6;">`+
			`<svg width="%d" height="%d" viewBox="0 0 %d %d" style="background-color:#fcfcfc;border:1px solid #eee;border-radius:8px;">%s</svg></div>`,
		width, height, width, height, elements)
}

// num formats a coordinate with no trailing zeros and no locale dependence.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
