package export

import (
	"errors"
	"strings"
	"testing"

	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
)

func TestStripMarkdown(t *testing.T) {
	in := "# Launch Plan\n\nSome **bold** and *italic* with `code`.\n\n- one\n- two\n\n1. first\n2. second\n"
	want := "Launch Plan\n\nSome bold and italic with code.\n\n• one\n• two\n\n1. first\n2. second"
	if got := StripMarkdown(in); got != want {
		t.Fatalf("StripMarkdown =\n%q\nwant\n%q", got, want)
	}
}

func TestStripMarkdownNestedAndLinks(t *testing.T) {
	got := StripMarkdown("- a\n  - b\n\nVisit [our site](https://example.com) today.")
	want := "• a\n  • b\n\nVisit our site today."
	if got != want {
		t.Fatalf("StripMarkdown =\n%q\nwant\n%q", got, want)
	}
}

func TestStripMarkdownKeepsPlainText(t *testing.T) {
	if got := StripMarkdown("Just words."); got != "Just words." {
		t.Fatalf("got %q", got)
	}
}

func textResult() marketing.Result {
	return marketing.Result{
		ContentType:  marketing.SocialMedia,
		Content:      marketing.TextContent("## Caption\n\n**Cold brew** is back."),
		SummaryImage: generation.Image{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		Performance:  marketing.Performance{ElapsedSeconds: 3.21, TotalTokens: 512},
	}
}

func posterResult() marketing.Result {
	return marketing.Result{
		ContentType:  marketing.AdPoster,
		Content:      marketing.PosterContent{Concept: marketing.Concept{Headline: "Chill"}, Image: generation.Image{MimeType: "image/png", Data: []byte("png")}},
		SummaryImage: generation.Image{MimeType: "image/jpeg", Data: []byte("jpg")},
	}
}

func TestPlainText(t *testing.T) {
	f, err := PlainText(textResult())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "social_media_captions_content.txt" || !strings.HasPrefix(f.ContentType, "text/plain") {
		t.Fatalf("file = %s (%s)", f.Name, f.ContentType)
	}
	if string(f.Data) != "## Caption\n\n**Cold brew** is back." {
		t.Fatalf("data = %q", f.Data)
	}

	if _, err := PlainText(posterResult()); !errors.Is(err, ErrNotText) {
		t.Fatalf("poster text export: %v", err)
	}
	if _, err := PlainText(marketing.Result{}); !errors.Is(err, ErrNoResult) {
		t.Fatalf("empty export: %v", err)
	}
}

func TestDocument(t *testing.T) {
	f, err := Document(textResult())
	if err != nil {
		t.Fatal(err)
	}
	html := string(f.Data)
	for _, want := range []string{"@page", "data:image/jpeg;base64,/9g=", "Cold brew is back.", "Social Media Captions", "512 tokens"} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Contains(html, "**") || strings.Contains(html, "## ") {
		t.Error("markdown markers leaked into the document")
	}

	if _, err := Document(posterResult()); !errors.Is(err, ErrNotText) {
		t.Fatalf("poster document: %v", err)
	}
	noImage := textResult()
	noImage.SummaryImage = generation.Image{}
	if _, err := Document(noImage); !errors.Is(err, ErrNoImage) {
		t.Fatalf("document without image: %v", err)
	}
}

func TestPosterImage(t *testing.T) {
	f, err := PosterImage(posterResult())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "advertising_poster.png" || f.ContentType != "image/png" || string(f.Data) != "png" {
		t.Fatalf("file = %#v", f)
	}
	if _, err := PosterImage(textResult()); !errors.Is(err, ErrNotPoster) {
		t.Fatalf("text poster export: %v", err)
	}
}

func TestSummaryImage(t *testing.T) {
	f, err := SummaryImage(posterResult())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "advertising_poster_summary.jpeg" {
		t.Fatalf("name = %s", f.Name)
	}
	if _, err := SummaryImage(marketing.Result{}); !errors.Is(err, ErrNoResult) {
		t.Fatalf("empty export: %v", err)
	}
}
