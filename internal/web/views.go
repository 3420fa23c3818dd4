package web

import (
	"time"

	"marketing-studio/internal/marketing"
	"marketing-studio/internal/orchestrator"
	"marketing-studio/internal/session"
)

// contentView carries a kind discriminator so clients never run text
// rendering on a poster.
type contentView struct {
	Kind     string             `json:"kind"`
	Text     string             `json:"text,omitempty"`
	Concept  *marketing.Concept `json:"concept,omitempty"`
	ImageURL string             `json:"imageUrl,omitempty"`
}

type resultView struct {
	ContentType     marketing.ContentType `json:"contentType"`
	Content         contentView           `json:"content"`
	SummaryImageURL string                `json:"summaryImageUrl,omitempty"`
	Performance     marketing.Performance `json:"performance"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type rowView struct {
	ContentType     marketing.ContentType `json:"contentType"`
	Label           string                `json:"label"`
	Features        string                `json:"features"`
	Text            string                `json:"text"`
	Tokens          int                   `json:"tokens"`
	SummaryImageURL string                `json:"summaryImageUrl,omitempty"`
}

type stateView struct {
	ID                string                `json:"id"`
	ContentType       marketing.ContentType `json:"contentType"`
	Inputs            marketing.Inputs      `json:"inputs"`
	Current           *resultView           `json:"current,omitempty"`
	History           []resultView          `json:"history"`
	ComparisonVisible bool                  `json:"comparisonVisible"`
	Matrix            []rowView             `json:"matrix,omitempty"`
	MatrixVisible     bool                  `json:"matrixVisible"`
	Generating        bool                  `json:"generating"`
	Refining          bool                  `json:"refining"`
	Comparing         bool                  `json:"comparing"`
	LastError         *errorView            `json:"lastError,omitempty"`
}

type refineView struct {
	Applied bool `json:"applied"`
	stateView
}

type fieldView struct {
	Key      marketing.Field `json:"key"`
	Label    string          `json:"label"`
	Required bool            `json:"required"`
	Limit    int             `json:"limit,omitempty"`
	Options  []string        `json:"options,omitempty"`
}

type typeView struct {
	Type     marketing.ContentType `json:"type"`
	Label    string                `json:"label"`
	Features string                `json:"features"`
	Output   string                `json:"output"`
	Fields   []fieldView           `json:"fields"`
}

func contentViewOf(c marketing.Content) contentView {
	switch v := c.(type) {
	case marketing.TextContent:
		return contentView{Kind: "text", Text: string(v)}
	case marketing.PosterContent:
		concept := v.Concept
		return contentView{Kind: "poster", Concept: &concept, ImageURL: v.Image.DataURL()}
	default:
		return contentView{Kind: "empty"}
	}
}

func resultViewOf(r marketing.Result) resultView {
	return resultView{
		ContentType:     r.ContentType,
		Content:         contentViewOf(r.Content),
		SummaryImageURL: r.SummaryImage.DataURL(),
		Performance:     r.Performance,
		CreatedAt:       r.CreatedAt,
	}
}

func rowViewOf(row orchestrator.ComparisonRow) rowView {
	return rowView{
		ContentType:     row.ContentType,
		Label:           row.ContentType.Label(),
		Features:        row.Features,
		Text:            string(row.Text),
		Tokens:          row.Tokens,
		SummaryImageURL: row.SummaryImage.DataURL(),
	}
}

func stateViewOf(id string, st session.State) stateView {
	view := stateView{
		ID:                id,
		ContentType:       st.ContentType,
		Inputs:            st.Inputs,
		History:           make([]resultView, 0, len(st.History)),
		ComparisonVisible: st.ComparisonVisible,
		MatrixVisible:     st.MatrixVisible,
		Generating:        st.Generating,
		Refining:          st.Refining,
		Comparing:         st.Comparing,
	}
	for _, r := range st.History {
		view.History = append(view.History, resultViewOf(r))
	}
	if n := len(view.History); n > 0 {
		current := view.History[n-1]
		view.Current = &current
	}
	for _, row := range st.Matrix {
		view.Matrix = append(view.Matrix, rowViewOf(row))
	}
	if st.LastError != nil {
		_, ev := classifyError(st.LastError)
		view.LastError = &ev
	}
	return view
}

func catalogView() []typeView {
	infos := marketing.Catalog()
	out := make([]typeView, 0, len(infos))
	for _, info := range infos {
		required := make(map[marketing.Field]bool, len(info.Required))
		for _, f := range info.Required {
			required[f] = true
		}
		fields := make([]fieldView, 0, len(info.Fields))
		for _, f := range info.Fields {
			fields = append(fields, fieldView{
				Key:      f,
				Label:    marketing.FieldLabel(f),
				Required: required[f],
				Limit:    marketing.CharLimit(f),
				Options:  marketing.Options(f),
			})
		}
		out = append(out, typeView{
			Type:     info.Type,
			Label:    info.Label,
			Features: info.Features,
			Output:   info.Output,
			Fields:   fields,
		})
	}
	return out
}
