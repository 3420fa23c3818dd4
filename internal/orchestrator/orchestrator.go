// Package orchestrator runs the backend call sequence behind each content
// type and measures time and token usage for the result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"marketing-studio/internal/filter"
	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
)

const (
	summaryAspectRatio = "16:9"
	posterAspectRatio  = "9:16"
	imageMimeType      = "image/jpeg"
)

type Options struct {
	Client        generation.Client
	Filter        *filter.Filter
	Logger *slog.Logger
	Now    func() time.Time
}

type Orchestrator struct {
	client generation.Client
	filter *filter.Filter
	logger *slog.Logger
	now    func() time.Time
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Client == nil {
		return nil, errors.New("generation client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f := opts.Filter
	if f == nil {
		f = filter.New(filter.DefaultBannedWords)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		client: opts.Client,
		filter: f,
		logger: logger,
		now:    now,
	}, nil
}

// Generate produces a complete result for ct. Any failing step aborts the
// whole run; no partial result is returned.
func (o *Orchestrator) Generate(ctx context.Context, ct marketing.ContentType, in marketing.Inputs) (marketing.Result, error) {
	prompt, err := marketing.BuildPrompt(ct, in)
	if err != nil {
		return marketing.Result{}, err
	}

	start := o.now()
	var (
		content      marketing.Content
		summaryImage generation.Image
		tokens       int
	)

	if ct == marketing.AdPoster {
		content, summaryImage, tokens, err = o.poster(ctx, prompt, in)
	} else {
		var text marketing.TextContent
		text, summaryImage, tokens, _, err = o.textWithSummary(ctx, ct, prompt)
		content = text
	}
	if err != nil {
		o.logger.Error("generation failed", "content_type", ct, "kind", errorKind(err), "err", err)
		return marketing.Result{}, err
	}

	return marketing.Result{
		ContentType:  ct,
		Content:      content,
		SummaryImage: summaryImage,
		Performance:  o.performance(start, tokens),
		CreatedAt:    o.now(),
	}, nil
}

// Refine rewrites text per instruction. The previous summary image is reused
// and the performance figures cover only the refinement call.
func (o *Orchestrator) Refine(ctx context.Context, prev marketing.Result, text marketing.TextContent, instruction string) (marketing.Result, error) {
	start := o.now()
	prompt := marketing.RefinePrompt(text, instruction)

	res, err := o.generateText(ctx, prev.ContentType, "refine", prompt.Text, prompt.Options())
	if err != nil {
		o.logger.Error("refine failed", "content_type", prev.ContentType, "kind", errorKind(err), "err", err)
		return marketing.Result{}, err
	}

	return marketing.Result{
		ContentType:  prev.ContentType,
		Content:      marketing.TextContent(o.filter.Apply(res.Text)),
		SummaryImage: prev.SummaryImage,
		Performance:  o.performance(start, res.TokenCount),
		CreatedAt:    o.now(),
	}, nil
}

// SummaryImage derives a one-sentence art description from the first 1000
// characters of text and renders it at 16:9. It returns the tokens spent on
// the description.
func (o *Orchestrator) SummaryImage(ctx context.Context, text string) (generation.Image, int, error) {
	desc, err := o.generateText(ctx, "", "summary-description", marketing.SummaryImagePrompt(text), generation.TextOptions{})
	if err != nil {
		return generation.Image{}, 0, fmt.Errorf("summary image description: %w", err)
	}

	img, err := o.generateImage(ctx, "summary-image", desc.Text, generation.ImageOptions{
		Count:       1,
		AspectRatio: summaryAspectRatio,
		MimeType:    imageMimeType,
	})
	if err != nil {
		return generation.Image{}, 0, fmt.Errorf("summary image: %w", err)
	}
	return img, desc.TokenCount, nil
}

func (o *Orchestrator) poster(ctx context.Context, prompt marketing.Prompt, in marketing.Inputs) (marketing.PosterContent, generation.Image, int, error) {
	res, err := o.generateText(ctx, marketing.AdPoster, "concept", prompt.Text, prompt.Options())
	if err != nil {
		return marketing.PosterContent{}, generation.Image{}, 0, fmt.Errorf("poster concept: %w", err)
	}

	concept, err := marketing.ParseConcept(res.Text)
	if err != nil {
		return marketing.PosterContent{}, generation.Image{}, 0, err
	}
	concept = o.filterConcept(concept)

	img, err := o.generateImage(ctx, "poster-image", marketing.PosterImagePrompt(in, concept), generation.ImageOptions{
		Count:       1,
		AspectRatio: posterAspectRatio,
		MimeType:    imageMimeType,
	})
	if err != nil {
		return marketing.PosterContent{}, generation.Image{}, 0, fmt.Errorf("poster image: %w", err)
	}

	summary, summaryTokens, err := o.SummaryImage(ctx, marketing.PosterSummaryText(concept))
	if err != nil {
		return marketing.PosterContent{}, generation.Image{}, 0, err
	}

	return marketing.PosterContent{Concept: concept, Image: img}, summary, res.TokenCount + summaryTokens, nil
}

// textWithSummary is the protocol for every non-poster type. mainTokens is the
// main call's share of tokens.
func (o *Orchestrator) textWithSummary(ctx context.Context, ct marketing.ContentType, prompt marketing.Prompt) (marketing.TextContent, generation.Image, int, int, error) {
	res, err := o.generateText(ctx, ct, "text", prompt.Text, prompt.Options())
	if err != nil {
		return "", generation.Image{}, 0, 0, err
	}
	text := o.filter.Apply(res.Text)

	img, summaryTokens, err := o.SummaryImage(ctx, text)
	if err != nil {
		return "", generation.Image{}, 0, 0, err
	}
	return marketing.TextContent(text), img, res.TokenCount + summaryTokens, res.TokenCount, nil
}

// filterConcept masks the narrative fields. Palette, typography and layout
// are design notes and pass through untouched.
func (o *Orchestrator) filterConcept(c marketing.Concept) marketing.Concept {
	c.Campaign = o.filter.Apply(c.Campaign)
	c.Headline = o.filter.Apply(c.Headline)
	c.VisualConcept = o.filter.Apply(c.VisualConcept)
	c.CTA = o.filter.Apply(c.CTA)
	return c
}

func (o *Orchestrator) generateText(ctx context.Context, ct marketing.ContentType, step, prompt string, opts generation.TextOptions) (generation.TextResult, error) {
	start := time.Now()
	res, err := o.client.GenerateText(ctx, prompt, opts)
	if err != nil {
		return generation.TextResult{}, generation.Classify(0, err)
	}
	o.logger.Debug("text step", "content_type", ct, "step", step, "tokens", res.TokenCount, "dur_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (o *Orchestrator) generateImage(ctx context.Context, step, prompt string, opts generation.ImageOptions) (generation.Image, error) {
	start := time.Now()
	img, err := o.client.GenerateImage(ctx, prompt, opts)
	if err != nil {
		return generation.Image{}, generation.Classify(0, err)
	}
	if img.Empty() {
		return generation.Image{}, generation.Blocked(generation.BlockUnspecified, "Image generation failed to produce an image. This might be due to a safety policy violation. Please adjust your prompt.")
	}
	o.logger.Debug("image step", "step", step, "aspect_ratio", opts.AspectRatio, "bytes", len(img.Data), "dur_ms", time.Since(start).Milliseconds())
	return img, nil
}

func (o *Orchestrator) performance(start time.Time, tokens int) marketing.Performance {
	elapsed := o.now().Sub(start).Seconds()
	return marketing.Performance{
		ElapsedSeconds: math.Round(elapsed*100) / 100,
		TotalTokens:    tokens,
	}
}

func errorKind(err error) string {
	var se *generation.ServiceError
	var cpe *marketing.ConceptParseError
	var cfg *marketing.ConfigError
	switch {
	case errors.As(err, &se):
		return string(se.Kind)
	case errors.As(err, &cpe):
		return "concept_parse"
	case errors.As(err, &cfg):
		return "configuration"
	default:
		return string(generation.KindUnknown)
	}
}
