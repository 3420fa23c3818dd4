// Package export turns generation results into downloadable files.
package export

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
)

var (
	ErrNotText   = errors.New("result does not contain text content")
	ErrNotPoster = errors.New("result does not contain a poster")
	ErrNoImage   = errors.New("result has no image to export")
	ErrNoResult  = errors.New("nothing to export")
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

//go:embed document.html.tmpl
var documentTemplate string

var documentTmpl = template.Must(template.New("document").Parse(documentTemplate))

type documentData struct {
	Title       string
	Generated   string
	Image       template.URL
	Body        string
	Tokens      int
	ElapsedSecs float64
}

// PlainText is the raw markdown copy as a .txt download.
func PlainText(res marketing.Result) (File, error) {
	text, err := textOf(res)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        res.ContentType.Slug() + "_content.txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(text),
	}, nil
}

// Document renders a printable A4 page: summary image on top, then the text
// with markdown markers removed.
func Document(res marketing.Result) (File, error) {
	text, err := textOf(res)
	if err != nil {
		return File{}, err
	}
	if res.SummaryImage.Empty() {
		return File{}, ErrNoImage
	}

	created := res.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	data := documentData{
		Title:       res.ContentType.Label(),
		Generated:   created.UTC().Format("2006-01-02 15:04 MST"),
		Image:       template.URL(res.SummaryImage.DataURL()),
		Body:        StripMarkdown(string(text)),
		Tokens:      res.Performance.TotalTokens,
		ElapsedSecs: res.Performance.ElapsedSeconds,
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, data); err != nil {
		return File{}, fmt.Errorf("render document: %w", err)
	}
	return File{
		Name:        res.ContentType.Slug() + "_content.html",
		ContentType: "text/html; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func PosterImage(res marketing.Result) (File, error) {
	switch c := res.Content.(type) {
	case marketing.PosterContent:
		return imageFile("advertising_poster", c.Image)
	case marketing.TextContent:
		return File{}, ErrNotPoster
	default:
		return File{}, ErrNoResult
	}
}

func SummaryImage(res marketing.Result) (File, error) {
	if res.Content == nil {
		return File{}, ErrNoResult
	}
	return imageFile(res.ContentType.Slug()+"_summary", res.SummaryImage)
}

func textOf(res marketing.Result) (marketing.TextContent, error) {
	switch c := res.Content.(type) {
	case marketing.TextContent:
		return c, nil
	case marketing.PosterContent:
		return "", ErrNotText
	default:
		return "", ErrNoResult
	}
}

func imageFile(base string, img generation.Image) (File, error) {
	if img.Empty() {
		return File{}, ErrNoImage
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return File{
		Name:        base + "." + img.Extension(),
		ContentType: mimeType,
		Data:        img.Data,
	}, nil
}
