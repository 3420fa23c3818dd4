package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"marketing-studio/internal/export"
	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/orchestrator"
	"marketing-studio/internal/session"
)

const helpText = "📣 Marketing Studio\n\n" +
	"1. Pick what to create: /types or /templates\n" +
	"2. Fill in the brief: /set key=value (one per line), check it with /inputs\n" +
	"3. /generate\n\n" +
	"Then:\n" +
	"/refine <instruction> - rewrite the current text\n" +
	"/history - list versions\n" +
	"/revert <n> - go back to version n\n" +
	"/clear - drop older versions\n" +
	"/compare [types] - side-by-side of several content types\n" +
	"/export text|document|poster|summary - download files"

type assignment struct {
	field marketing.Field
	value string
}

// parseAssignments reads key=value lines. A line without "=" continues the
// previous value so long fields can span several lines.
func parseAssignments(text string) ([]assignment, []string) {
	var (
		out []assignment
		bad []string
	)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if ok {
			if f, known := resolveField(key); known {
				out = append(out, assignment{field: f, value: strings.TrimSpace(value)})
				continue
			}
		}
		if len(out) > 0 && !ok {
			last := &out[len(out)-1]
			last.value += "\n" + strings.TrimRight(line, " \t")
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			bad = append(bad, fmt.Sprintf("%q", strings.TrimSpace(key)))
		}
	}
	for i := range out {
		out[i].value = strings.TrimSpace(out[i].value)
	}
	return out, bad
}

// resolveField accepts a field key or its label, ignoring case, spaces and
// punctuation: "business_type", "BusinessType" and "Business Type / Industry"
// all name the same field.
func resolveField(key string) (marketing.Field, bool) {
	want := normalizeKey(key)
	if want == "" {
		return "", false
	}
	for _, f := range allFields() {
		if normalizeKey(string(f)) == want || normalizeKey(marketing.FieldLabel(f)) == want {
			return f, true
		}
	}
	return "", false
}

func allFields() []marketing.Field {
	seen := make(map[marketing.Field]bool)
	var out []marketing.Field
	for _, info := range marketing.Catalog() {
		for _, f := range info.Fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func formatInputs(ct marketing.ContentType, in marketing.Inputs) string {
	info, err := marketing.Lookup(ct)
	if err != nil {
		return err.Error()
	}
	required := make(map[marketing.Field]bool, len(info.Required))
	for _, f := range info.Required {
		required[f] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 %s\n\n", info.Label)
	for _, f := range info.Fields {
		value := in.Get(f)
		if value == "" {
			value = "-"
		}
		mark := ""
		if required[f] {
			mark = " *"
		}
		fmt.Fprintf(&b, "%s%s (%s): %s\n", marketing.FieldLabel(f), mark, f, value)
	}
	b.WriteString("\n* required")
	return b.String()
}

func formatHistory(history []marketing.Result) string {
	if len(history) == 0 {
		return "Nothing generated yet. Use /generate."
	}
	var b strings.Builder
	b.WriteString("🕘 Versions\n")
	for i, r := range history {
		current := ""
		if i == len(history)-1 {
			current = " (current)"
		}
		fmt.Fprintf(&b, "%d. %s, %s%s\n", i+1, r.ContentType.Label(), r.CreatedAt.Format("15:04:05"), current)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatConcept(c marketing.Concept) string {
	return fmt.Sprintf("🖼 %s\n%s\n\nVisual: %s\nColors: %s\nTypography: %s\nLayout: %s\nCTA: %s",
		c.Headline, c.Campaign, c.VisualConcept, c.ColorPalette, c.Typography, c.Layout, c.CTA)
}

func formatRow(row orchestrator.ComparisonRow) string {
	return fmt.Sprintf("📊 %s (%d tokens)\n%s\n\n%s", row.ContentType.Label(), row.Tokens, row.Features, string(row.Text))
}

func formatPerformance(p marketing.Performance) string {
	return fmt.Sprintf("⏱ %.2fs · %d tokens", p.ElapsedSeconds, p.TotalTokens)
}

func userMessage(err error) string {
	var (
		verr *marketing.ValidationError
		busy *session.BusyError
		cpe  *marketing.ConceptParseError
		se   *generation.ServiceError
	)
	switch {
	case errors.As(err, &verr):
		lines := make([]string, 0, len(verr.Fields))
		for _, f := range allFields() {
			if msg, ok := verr.Fields[f]; ok {
				lines = append(lines, "• "+msg)
			}
		}
		return "❌ Please fix the brief:\n" + strings.Join(lines, "\n")
	case errors.As(err, &busy):
		return "⏳ Still working on the previous request, please wait."
	case errors.Is(err, session.ErrSuperseded):
		return "The content type changed while generating, so that result was dropped."
	case errors.Is(err, session.ErrNoResult), errors.Is(err, export.ErrNoResult):
		return "Nothing generated yet. Use /generate."
	case errors.Is(err, session.ErrOutOfRange):
		return "❌ No such version. See /history."
	case errors.Is(err, session.ErrUnknownField):
		return "❌ Unknown field. See /inputs for the keys."
	case errors.Is(err, export.ErrNotText):
		return "❌ The current result has no text to export. Try /export poster."
	case errors.Is(err, export.ErrNotPoster):
		return "❌ The current result is not a poster."
	case errors.Is(err, export.ErrNoImage):
		return "❌ The current result has no image."
	case errors.As(err, &cpe):
		return "❌ " + cpe.Error()
	case errors.As(err, &se):
		return "❌ " + se.Error()
	default:
		return "❌ Something went wrong. Please try again."
	}
}
