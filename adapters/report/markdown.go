// Package report renders estimation results as markdown and HTML for the
// collaborators that consume the numeric outputs in readable form.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fellingdate/app"
	"fellingdate/domain/dendro"
)

// IntervalMarkdown renders a single-series estimate as a markdown report
func IntervalMarkdown(est *app.IntervalEstimate) string {
	var b strings.Builder
	b.WriteString("# Felling-date estimate\n\n")
	req := est.Request
	if req.HasWaneyEdge {
		fmt.Fprintf(&b, "Waney edge present: the felling year is exactly **%d**.\n", req.LastRingYear)
		return b.String()
	}

	fmt.Fprintf(&b, "Series with %d observed sapwood rings, last preserved ring dated %d.\n\n",
		req.SapwoodCount, req.LastRingYear)

	if est.Model != nil {
		p1, p2 := est.Model.Family.ParamNames()
		b.WriteString("## Reference model\n\n")
		b.WriteString("| dataset | family | " + p1 + " | " + p2 + " | n |\n")
		b.WriteString("|---|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %s | %s | %.4f | %.4f | %d |\n\n",
			req.Dataset, est.Model.Family, est.Model.Param1, est.Model.Param2, est.Model.SampleSize)
	}

	fmt.Fprintf(&b, "## Credible interval\n\nWith %.1f%% probability the felling date lies between **%d** and **%d** (achieved mass %.4f).\n",
		req.CredMass*100, est.Interval.Lower, est.Interval.Upper, est.Interval.AchievedMass)
	return b.String()
}

// SPDMarkdown renders an aggregated batch as a markdown report. Years with
// no probability mass are skipped to keep the table readable.
func SPDMarkdown(table *dendro.SPDTable) string {
	var b strings.Builder
	b.WriteString("# Summed probability distribution\n\n")
	fmt.Fprintf(&b, "%d series pooled", len(table.Series))
	if len(table.Diagnostics) > 0 {
		fmt.Fprintf(&b, ", %d dropped", len(table.Diagnostics))
	}
	b.WriteString(".\n\n")

	for _, d := range table.Diagnostics {
		fmt.Fprintf(&b, "- dropped %s: %s\n", d.SeriesID, d.Reason)
	}
	if len(table.Diagnostics) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("| year | SPD | SPD exact |\n|---|---|---|\n")
	for i, y := range table.Years {
		if table.SPD[i] == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %d | %.6f | %.6f |\n", y, table.SPD[i], table.SPDExact[i])
	}
	return b.String()
}

// ToHTML converts a markdown report into standalone HTML
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
