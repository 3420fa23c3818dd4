package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
)

// DefaultComparisonTypes is the matrix shown when the caller names no types.
var DefaultComparisonTypes = []marketing.ContentType{
	marketing.SocialMedia,
	marketing.EmailCampaign,
	marketing.WebsiteAdvice,
}

type ComparisonRow struct {
	ContentType  marketing.ContentType
	Features     string
	Text         marketing.TextContent
	Tokens       int
	SummaryImage generation.Image
}

// Compare runs the text protocol for every type concurrently. It succeeds only
// if all runs succeed; rows follow the order of types.
func (o *Orchestrator) Compare(ctx context.Context, in marketing.Inputs, types []marketing.ContentType) ([]ComparisonRow, error) {
	if len(types) == 0 {
		types = DefaultComparisonTypes
	}
	prompts := make([]marketing.Prompt, len(types))
	for i, ct := range types {
		if ct == marketing.AdPoster {
			return nil, fmt.Errorf("%s cannot be compared: it does not produce text", ct.Label())
		}
		p, err := marketing.BuildPrompt(ct, in)
		if err != nil {
			return nil, err
		}
		prompts[i] = p
	}

	rows := make([]ComparisonRow, len(types))
	// Every row starts at once; the first failure cancels the rest.
	eg, egCtx := errgroup.WithContext(ctx)
	for i, ct := range types {
		i, ct := i, ct
		eg.Go(func() error {
			text, img, _, mainTokens, err := o.textWithSummary(egCtx, ct, prompts[i])
			if err != nil {
				return err
			}
			info, _ := marketing.Lookup(ct)
			rows[i] = ComparisonRow{
				ContentType:  ct,
				Features:     info.Features,
				Text:         text,
				Tokens:       mainTokens,
				SummaryImage: img,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		o.logger.Error("comparison failed", "types", len(types), "kind", errorKind(err), "err", err)
		return nil, err
	}
	return rows, nil
}
