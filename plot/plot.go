/*
Package plot draws precision-recall curves of WF and WF+WO attacks as PDF.
*/
package plot

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// Series is one curve, with one recall and precision pair per threshold.
type Series struct {
	Label     string
	Recall    []float64
	Precision []float64
}

// Figure is a set of curves with a title.
type Figure struct {
	Title  string
	Series []Series
}

var (
	colors = []string{"#d44f7e", "#ffd03d", "#2fb651", "#fb8134", "#7556a2", "#5bb2e5"}
	// dotted, dashed, dash-dotted and solid lines
	dashes = [][]float64{
		{0.4, 0.8}, {2, 1.2}, {2, 1, 0.4, 1}, nil,
		{2, 1, 0.4, 1}, nil, {0.4, 0.8}, {2, 1.2},
	}
	markers = []byte{'o', 's', 'v', '^', '<', '>', '*', 's', 'p', '*', 'h', 'H', 'D', 'd'}
)

// layout of the figure in mm, about 5x3 inches
const (
	width   = 127.0
	height  = 90.0
	left    = 18.0
	right   = 6.0
	top     = 12.0
	bottom  = 14.0
	marker  = 0.7
	tickLen = 1.2
)

// RankLabel returns a short label for a starting Alexa rank: 1, 10, 100, 1k,
// 10k, 100k, 1m, ...
func RankLabel(rank int) string {
	switch {
	case rank >= 1000*1000 && rank%(1000*1000) == 0:
		return strconv.Itoa(rank/(1000*1000)) + "m"
	case rank >= 1000 && rank%1000 == 0:
		return strconv.Itoa(rank/1000) + "k"
	default:
		return strconv.Itoa(rank)
	}
}

// PrecisionRecall writes fig to path as a PDF with recall on the x-axis and
// precision on the y-axis.
func PrecisionRecall(path string, fig Figure) error {
	for _, s := range fig.Series {
		if len(s.Recall) != len(s.Precision) {
			return fmt.Errorf("series %q has %d recall and %d precision values",
				s.Label, len(s.Recall), len(s.Precision))
		}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	plotW := width - left - right
	plotH := height - top - bottom
	x := func(v float64) float64 { return left + v*plotW }
	y := func(v float64) float64 { return top + (1-v)*plotH }

	// background and grid
	pdf.SetFillColor(0xfb, 0xfb, 0xfb)
	pdf.Rect(left, top, plotW, plotH, "F")
	pdf.SetLineWidth(0.2)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for i := 0; i <= 5; i++ {
		v := float64(i) / 5
		pdf.SetDrawColor(0xe5, 0xe5, 0xe5)
		pdf.Line(x(v), top, x(v), top+plotH)
		pdf.Line(left, y(v), left+plotW, y(v))

		pdf.SetDrawColor(0, 0, 0)
		pdf.Line(x(v), top+plotH, x(v), top+plotH+tickLen)
		pdf.Line(left-tickLen, y(v), left, y(v))
		tick := strconv.FormatFloat(v, 'f', 1, 64)
		pdf.Text(x(v)-pdf.GetStringWidth(tick)/2, top+plotH+tickLen+3, tick)
		pdf.Text(left-tickLen-1-pdf.GetStringWidth(tick), y(v)+1, tick)
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(left, top, plotW, plotH, "D")

	// axis labels and title
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(left+plotW/2-pdf.GetStringWidth("Recall")/2, height-3, "Recall")
	pdf.TransformBegin()
	pdf.TransformRotate(90, 5, top+plotH/2+pdf.GetStringWidth("Precision")/2)
	pdf.Text(5, top+plotH/2+pdf.GetStringWidth("Precision")/2, "Precision")
	pdf.TransformEnd()
	if fig.Title != "" {
		pdf.Text(left+plotW/2-pdf.GetStringWidth(fig.Title)/2, top-4, fig.Title)
	}

	// curves
	pdf.SetLineWidth(0.5)
	for i, s := range fig.Series {
		r, g, b := hexRGB(colors[i%len(colors)])
		pdf.SetDrawColor(r, g, b)
		pdf.SetFillColor(r, g, b)
		pdf.SetDashPattern(dashes[i%len(dashes)], 0)
		for j := 1; j < len(s.Recall); j++ {
			pdf.Line(x(s.Recall[j-1]), y(s.Precision[j-1]),
				x(s.Recall[j]), y(s.Precision[j]))
		}
		pdf.SetDashPattern(nil, 0)
		for j := range s.Recall {
			drawMarker(pdf, markers[i%len(markers)], x(s.Recall[j]), y(s.Precision[j]))
		}
	}

	legend(pdf, fig.Series, left+2, top+2)
	return pdf.OutputFileAndClose(path)
}

// legend draws two columns of series labels from the top-left corner (x, y).
func legend(pdf *fpdf.Fpdf, series []Series, x, y float64) {
	if len(series) == 0 {
		return
	}
	const (
		rowH = 4.0
		colW = 20.0
	)
	rows := (len(series) + 1) / 2
	pdf.SetDashPattern(nil, 0)
	pdf.SetFillColor(0xf7, 0xf7, 0xf7)
	pdf.SetDrawColor(0xcc, 0xcc, 0xcc)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, 2*colW+2, float64(rows)*rowH+2, "FD")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetLineWidth(0.5)
	for i, s := range series {
		cx := x + 1 + float64(i/rows)*colW
		cy := y + 1 + float64(i%rows)*rowH + rowH/2
		r, g, b := hexRGB(colors[i%len(colors)])
		pdf.SetDrawColor(r, g, b)
		pdf.SetDashPattern(dashes[i%len(dashes)], 0)
		pdf.Line(cx, cy, cx+6, cy)
		pdf.SetDashPattern(nil, 0)
		pdf.SetFillColor(r, g, b)
		drawMarker(pdf, markers[i%len(markers)], cx+3, cy)
		pdf.Text(cx+7, cy+1, s.Label)
	}
}

// drawMarker fills a marker of style (matplotlib's o, s, v, ^, <, >, *, p, h,
// H, D and d) centered on (x, y).
func drawMarker(pdf *fpdf.Fpdf, style byte, x, y float64) {
	points := markerPoints(style, x, y, marker)
	if points == nil {
		pdf.Circle(x, y, marker, "F")
		return
	}
	pdf.Polygon(points, "F")
}

// markerPoints returns the corners of a marker with radius r, or nil for a
// circle. Angles are in degrees clockwise from the x-axis, y grows downwards.
func markerPoints(style byte, x, y, r float64) []fpdf.PointType {
	var (
		corners = 0
		start   = -90.0
		inner   = 1.0
		xscale  = 1.0
	)
	switch style {
	case 's':
		corners, start, r = 4, 45, r*1.2
	case 'v':
		corners, start = 3, 90
	case '^':
		corners = 3
	case '<':
		corners, start = 3, 180
	case '>':
		corners, start = 3, 0
	case '*':
		corners, inner, r = 10, 0.45, r*1.4
	case 'p':
		corners = 5
	case 'h':
		corners = 6
	case 'H':
		corners, start = 6, 0
	case 'D':
		corners = 4
	case 'd':
		corners, xscale = 4, 0.6
	default:
		return nil
	}
	if corners == 3 {
		r *= 1.3
	}

	points := make([]fpdf.PointType, corners)
	for i := range points {
		radius := r
		if i%2 == 1 {
			radius *= inner
		}
		a := (start + float64(i)*360/float64(corners)) * math.Pi / 180
		points[i] = fpdf.PointType{
			X: x + xscale*radius*math.Cos(a),
			Y: y + radius*math.Sin(a),
		}
	}
	return points
}

func hexRGB(hex string) (r, g, b int) {
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}
