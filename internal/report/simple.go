package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/linksleuth/linksleuth/internal/model"
)

// SimpleWriter outputs human-readable text assessments.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full evidence dump in addition to the summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with full evidence details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the assessment in human-readable format.
func (w *SimpleWriter) Write(ra *model.RiskAssessment) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, ra)
	w.writeVerdict(&sb, ra)
	w.writeSources(&sb, ra)
	w.writeReasons(&sb, ra)
	if w.verbose {
		w.writeInfra(&sb, ra)
		w.writeLinks(&sb, ra)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the assessment header.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, ra *model.RiskAssessment) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     LINK RISK ASSESSMENT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:         %s\n", ra.URL))
	if !ra.ComputedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Assessed At: %s\n", ra.ComputedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString("\n")
}

// writeVerdict writes the level and score line.
func (w *SimpleWriter) writeVerdict(sb *strings.Builder, ra *model.RiskAssessment) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VERDICT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	indicator := levelIndicator(ra.Level)
	sb.WriteString(fmt.Sprintf("  [%s] Risk Level: %s\n", indicator, ra.LevelText))
	sb.WriteString(fmt.Sprintf("       Risk Score: %d / 100\n", ra.Score))
	sb.WriteString("\n")
}

// writeSources writes the per-source verdict section.
func (w *SimpleWriter) writeSources(sb *strings.Builder, ra *model.RiskAssessment) {
	if len(ra.Evidence.Sources) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("THREAT SOURCES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	names := make([]string, 0, len(ra.Evidence.Sources))
	for name := range ra.Evidence.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", name+":", sourceStatusText(ra.Evidence.Sources[name])))
	}
	sb.WriteString("\n")
}

// writeReasons writes the triggered findings as a bulleted list.
func (w *SimpleWriter) writeReasons(sb *strings.Builder, ra *model.RiskAssessment) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(ra.Reasons) == 0 {
		sb.WriteString("  No risk indicators triggered\n\n")
		return
	}

	for _, r := range ra.Reasons {
		sb.WriteString(fmt.Sprintf("  * (+%d) %s\n", r.Weight, r.Detail))
	}
	sb.WriteString("\n")
}

// writeInfra writes the hosting posture section.
func (w *SimpleWriter) writeInfra(sb *strings.Builder, ra *model.RiskAssessment) {
	infra := ra.Evidence.Infra

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("INFRASTRUCTURE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Hostname:    %s\n", infra.Hostname))
	sb.WriteString(fmt.Sprintf("  HTTPS:       %t\n", infra.IsHTTPS))
	if ssl := infra.SSL; ssl != nil {
		if ssl.Valid {
			sb.WriteString(fmt.Sprintf("  Certificate: valid, issued by %s, %d days left\n", ssl.IssuedBy, ssl.DaysLeft))
		} else {
			sb.WriteString(fmt.Sprintf("  Certificate: INVALID (%s)\n", ssl.Err))
		}
	}
	if ip := infra.IP; ip != nil {
		sb.WriteString(fmt.Sprintf("  IP:          %s (%s, %s)\n", ip.IP, ip.Country, ip.Org))
	}
	if infra.CDN != "" {
		sb.WriteString(fmt.Sprintf("  CDN:         %s\n", infra.CDN))
	}
	if whois := infra.Whois; whois != nil && whois.Err == "" {
		sb.WriteString(fmt.Sprintf("  Domain Age:  %d days (%s)\n", whois.AgeDays, whois.Freshness))
		if whois.Registrar != "" {
			sb.WriteString(fmt.Sprintf("  Registrar:   %s\n", whois.Registrar))
		}
	}
	sb.WriteString("\n")
}

// writeLinks writes the link heuristics section.
func (w *SimpleWriter) writeLinks(sb *strings.Builder, ra *model.RiskAssessment) {
	links := ra.Evidence.Links

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("LINK ANALYSIS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if links.FetchErr != "" {
		sb.WriteString(fmt.Sprintf("  Page fetch failed: %s\n", links.FetchErr))
	} else {
		sb.WriteString(fmt.Sprintf("  Redirects:   %d\n", links.RedirectCount))
		sb.WriteString(fmt.Sprintf("  Iframes:     %d\n", links.IframeCount))
		sb.WriteString(fmt.Sprintf("  Links:       %d internal, %d external\n", links.InternalLinks, links.ExternalLinks))
	}
	if len(links.TrackingParams) > 0 {
		sb.WriteString(fmt.Sprintf("  Tracking:    %s\n", strings.Join(links.TrackingParams, ", ")))
	}
	if len(links.RiskFlags) > 0 {
		sb.WriteString(fmt.Sprintf("  Flags:       %s\n", strings.Join(links.RiskFlags, ", ")))
	}
	sb.WriteString("\n")
}

// writeFooter writes the assessment footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by linksleuth\n")
	sb.WriteString("https://github.com/linksleuth/linksleuth\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// levelIndicator returns a visual indicator for the risk level.
func levelIndicator(level model.Level) string {
	switch level {
	case model.LevelHigh:
		return "!!!"
	case model.LevelMedium:
		return "!"
	default:
		return "-"
	}
}
