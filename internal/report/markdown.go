package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/linksleuth/linksleuth/internal/model"
)

// MarkdownWriter outputs assessments in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the assessment in Markdown format.
func (w *MarkdownWriter) Write(ra *model.RiskAssessment) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, ra)
	w.writeAlert(md, ra)
	w.writeSources(md, ra)
	w.writeReasons(md, ra)
	w.writeInfra(md, ra)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the assessment header with the verdict table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, ra *model.RiskAssessment) {
	md.H1("Link Risk Assessment")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + ra.URL + "`"},
		{"Risk Level", levelBadge(ra.Level) + " " + ra.LevelText},
		{"Risk Score", strconv.Itoa(ra.Score) + " / 100"},
	}
	if !ra.ComputedAt.IsZero() {
		rows = append(rows, []string{"Assessed At", ra.ComputedAt.Format("2006-01-02 15:04:05 MST")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// levelBadge returns an emoji badge for the risk level.
func levelBadge(level model.Level) string {
	switch level {
	case model.LevelHigh:
		return "🔴"
	case model.LevelMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// writeAlert writes a GitHub-flavored alert matching the risk level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, ra *model.RiskAssessment) {
	switch ra.Level {
	case model.LevelHigh:
		md.Cautionf("High risk link. %d indicator(s) triggered with a combined score of %d.",
			len(ra.Reasons), ra.Score)
	case model.LevelMedium:
		md.Warningf("Medium risk link. %d indicator(s) triggered; open with caution.",
			len(ra.Reasons))
	default:
		md.Tip("No significant risk indicators detected.")
	}
	md.PlainText("")
}

// writeSources writes the per-source verdict table.
func (w *MarkdownWriter) writeSources(md *markdown.Markdown, ra *model.RiskAssessment) {
	if len(ra.Evidence.Sources) == 0 {
		return
	}

	md.H2("Threat Sources")
	md.PlainText("")

	names := make([]string, 0, len(ra.Evidence.Sources))
	for name := range ra.Evidence.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, sourceStatusText(ra.Evidence.Sources[name])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeReasons writes the triggered findings with their weights, plus a
// score composition chart when anything fired.
func (w *MarkdownWriter) writeReasons(md *markdown.Markdown, ra *model.RiskAssessment) {
	md.H2("Findings")
	md.PlainText("")

	if len(ra.Reasons) == 0 {
		md.PlainText("No risk indicators triggered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(ra.Reasons))
	for i, r := range ra.Reasons {
		rows[i] = []string{r.Finding, "+" + strconv.Itoa(r.Weight), r.Detail}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Finding", "Weight", "Detail"},
		Rows:   rows,
	})

	w.writeScoreChart(md, ra)
}

// writeScoreChart writes a mermaid pie chart of score composition.
func (w *MarkdownWriter) writeScoreChart(md *markdown.Markdown, ra *model.RiskAssessment) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Score Composition"),
		piechart.WithShowData(true),
	)

	for _, r := range ra.Reasons {
		chart.LabelAndIntValue(r.Finding, uint64(r.Weight))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeInfra writes the hosting posture section.
func (w *MarkdownWriter) writeInfra(md *markdown.Markdown, ra *model.RiskAssessment) {
	infra := ra.Evidence.Infra
	if infra.Hostname == "" {
		return
	}

	md.H2("Infrastructure")
	md.PlainText("")

	rows := [][]string{
		{"Hostname", "`" + infra.Hostname + "`"},
		{"HTTPS", strconv.FormatBool(infra.IsHTTPS)},
	}
	if ssl := infra.SSL; ssl != nil {
		if ssl.Valid {
			rows = append(rows, []string{"Certificate", "valid, issued by " + ssl.IssuedBy})
		} else {
			rows = append(rows, []string{"Certificate", "invalid"})
		}
	}
	if ip := infra.IP; ip != nil {
		rows = append(rows, []string{"IP", ip.IP + " (" + ip.Country + ", " + ip.Org + ")"})
	}
	if infra.CDN != "" {
		rows = append(rows, []string{"CDN", infra.CDN})
	}
	if whois := infra.Whois; whois != nil && whois.Err == "" {
		rows = append(rows, []string{"Domain Age", strconv.Itoa(whois.AgeDays) + " days (" + whois.Freshness.String() + ")"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the assessment footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linksleuth](https://github.com/linksleuth/linksleuth)*")
}
