package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// verifyTolerance bounds |walk - brute force|; both are sums of dyadic terms.
const verifyTolerance = 1e-12

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#9ece6a"))

	badStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7768e"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

type summary struct {
	Source       string
	NumNodes     int
	NumMonomials int
	Out          goamp.BitString
	Opts         goamp.WalkOpts
	Report       *libamp.Report
	Elapsed      time.Duration
	Verified     bool
	BruteForce   float64
}

func (sum *summary) NumQubits() int {
	return goamp.NumColors * sum.NumNodes
}

// projection renders the bits of one color, color-local index 0 first.
func (sum *summary) projection(c goamp.Color) string {
	bits, err := goamp.ToBinary(sum.NumNodes, sum.Out.Project(c))
	if err != nil {
		return err.Error()
	}
	return goamp.BitString(bits).String()
}

func renderSummary(sum *summary) string {
	var b strings.Builder
	row := func(label, format string, args ...interface{}) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	b.WriteString(titleStyle.Render(sum.Source))
	b.WriteByte('\n')
	row("qubits", "%d (%d per color), %d monomials", sum.NumQubits(), sum.NumNodes, sum.NumMonomials)
	row("s", "%v", sum.Out)
	for c := goamp.Red; c <= goamp.Green; c++ {
		row("  "+strings.ToLower(c.String()), "%s", sum.projection(c))
	}
	row("walk", "quick=%v eval=%v parts=%d", sum.Opts.QuickReject, sum.Opts.Evaluator, len(sum.Report.Parts))
	row("slices", "%d evaluated, %d contributing", sum.Report.Evals(), sum.Report.Hits())
	row("elapsed", "%v", sum.Elapsed.Round(time.Microsecond))
	row("amplitude", "%s", titleStyle.Render(fmt.Sprintf("%.17g", sum.Report.Amplitude)))

	if sum.Verified {
		diff := math.Abs(sum.Report.Amplitude - sum.BruteForce)
		verdict := okStyle.Render("agree")
		if diff > verifyTolerance {
			verdict = badStyle.Render(fmt.Sprintf("DISAGREE (|diff| = %g)", diff))
		}
		row("brute force", "%.17g %s", sum.BruteForce, verdict)
	} else {
		row("brute force", "%s", dimStyle.Render("not run"))
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// writeChart renders each partition's unnormalized partial sum as a bar.
func writeChart(pathname string, sum *summary) error {
	labels := make([]string, len(sum.Report.Parts))
	items := make([]opts.BarData, len(sum.Report.Parts))
	for i, part := range sum.Report.Parts {
		labels[i] = fmt.Sprintf("[%d,%d)", part.Start, part.End)
		items[i] = opts.BarData{Value: part.Sum}
	}

	title := fmt.Sprintf("%s: partial sums", sum.Source)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("s=%v amplitude=%g", sum.Out, sum.Report.Amplitude),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("sum", items)

	f, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
