package marketing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"marketing-studio/internal/generation"
)

// Concept is the seven-field creative brief behind a poster.
type Concept struct {
	Campaign      string `json:"campaign"`
	Headline      string `json:"headline"`
	VisualConcept string `json:"visualConcept"`
	ColorPalette  string `json:"colorPalette"`
	Typography    string `json:"typography"`
	Layout        string `json:"layout"`
	CTA           string `json:"cta"`
}

// ConceptFields are the wire keys of Concept, in schema order.
var ConceptFields = []string{"campaign", "headline", "visualConcept", "colorPalette", "typography", "layout", "cta"}

func PosterSchema() *generation.Schema {
	return &generation.Schema{
		Name:   "poster_concept",
		Fields: append([]string(nil), ConceptFields...),
	}
}

type ConceptParseError struct {
	Raw string
	Err error
}

func (e *ConceptParseError) Error() string {
	return "AI failed to generate a valid concept structure for the poster."
}

func (e *ConceptParseError) Unwrap() error {
	return e.Err
}

// ParseConcept decodes the poster concept wire format. Surrounding code
// fences are stripped; every key must be present and string-typed.
func ParseConcept(raw string) (Concept, error) {
	body := StripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Concept{}, &ConceptParseError{Raw: raw, Err: fmt.Errorf("decode concept: %w", err)}
	}

	values := make(map[string]string, len(ConceptFields))
	for _, key := range ConceptFields {
		msg, ok := fields[key]
		if !ok {
			return Concept{}, &ConceptParseError{Raw: raw, Err: fmt.Errorf("concept key %q missing", key)}
		}
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 || trimmed[0] != '"' {
			return Concept{}, &ConceptParseError{Raw: raw, Err: fmt.Errorf("concept key %q is not a string: %s", key, trimmed)}
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Concept{}, &ConceptParseError{Raw: raw, Err: fmt.Errorf("concept key %q is not a string: %w", key, err)}
		}
		values[key] = s
	}

	return Concept{
		Campaign:      values["campaign"],
		Headline:      values["headline"],
		VisualConcept: values["visualConcept"],
		ColorPalette:  values["colorPalette"],
		Typography:    values["typography"],
		Layout:        values["layout"],
		CTA:           values["cta"],
	}, nil
}

func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Content is either TextContent or PosterContent. The set is closed; consumers
// switch on the concrete type.
type Content interface {
	isContent()
}

// TextContent is markdown copy. Text-only operations (refine, markdown export)
// take this type rather than Content.
type TextContent string

type PosterContent struct {
	Concept Concept
	Image   generation.Image
}

func (TextContent) isContent()   {}
func (PosterContent) isContent() {}

type Performance struct {
	ElapsedSeconds float64 `json:"generationTime"`
	TotalTokens    int     `json:"tokenUsage"`
}

// Result is immutable once produced; refinement yields a new Result.
type Result struct {
	ContentType  ContentType
	Content      Content
	SummaryImage generation.Image
	Performance  Performance
	CreatedAt    time.Time
}

// Text returns the text content and whether the result carries text.
func (r Result) Text() (TextContent, bool) {
	t, ok := r.Content.(TextContent)
	return t, ok
}
