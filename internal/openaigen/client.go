// Package openaigen backs generation.Client with the OpenAI chat and image APIs.
package openaigen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"marketing-studio/internal/generation"
)

const (
	DefaultTextModel  = "gpt-4o-mini"
	DefaultImageModel = "dall-e-3"
)

type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	client     openai.Client
	textModel  string
	imageModel string
	logger     *slog.Logger
}

var _ generation.Client = (*Client)(nil)

func New(opts Options) *Client {
	// Failures surface to the caller as classified errors; the SDK must not retry.
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey), option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = DefaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		client:     openai.NewClient(reqOpts...),
		textModel:  textModel,
		imageModel: imageModel,
		logger:     logger,
	}
}

func (c *Client) GenerateText(ctx context.Context, prompt string, opts generation.TextOptions) (generation.TextResult, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if sys := strings.TrimSpace(opts.SystemInstruction); sys != "" {
		msgs = append(msgs, openai.SystemMessage(sys))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.textModel),
		Messages: msgs,
	}
	if opts.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   opts.Schema.Name,
					Schema: jsonSchema(opts.Schema),
					Strict: openai.Bool(true),
				},
			},
		}
	}
	if opts.UseSearch {
		// Chat completions have no grounding tool for general models.
		c.logger.Debug("openai search grounding unavailable", "model", c.textModel)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return generation.TextResult{}, classify(err)
	}
	c.logger.Debug("openai text", "model", c.textModel, "tokens", resp.Usage.TotalTokens, "dur_ms", time.Since(start).Milliseconds())

	if len(resp.Choices) == 0 {
		return generation.TextResult{}, generation.EmptyResponse()
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return generation.TextResult{}, generation.FromFinishReason("content_filter")
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		if reason := choice.FinishReason; reason != "" && reason != "stop" {
			return generation.TextResult{}, generation.FromFinishReason(reason)
		}
		return generation.TextResult{}, generation.EmptyResponse()
	}

	return generation.TextResult{Text: text, TokenCount: int(resp.Usage.TotalTokens)}, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, opts generation.ImageOptions) (generation.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return generation.Image{}, &generation.ServiceError{Kind: generation.KindUnknown, Message: "image prompt is empty"}
	}
	opts = opts.WithDefaults()

	params := openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.imageModel),
		N:              openai.Int(1),
		Size:           imageSize(opts.AspectRatio),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}

	start := time.Now()
	res, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return generation.Image{}, classify(err)
	}
	c.logger.Debug("openai image", "model", c.imageModel, "size", params.Size, "dur_ms", time.Since(start).Milliseconds())

	for _, d := range res.Data {
		if d.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return generation.Image{}, &generation.ServiceError{Kind: generation.KindUnknown, Message: "decode image: " + err.Error(), Err: err}
		}
		return generation.Image{MimeType: "image/png", Data: data}, nil
	}
	return generation.Image{}, generation.Blocked(generation.BlockUnspecified, "Image generation failed to produce an image. This might be due to a safety policy violation. Please adjust your prompt.")
}

// imageSize maps an aspect ratio onto the closest size DALL-E 3 accepts.
func imageSize(aspect string) openai.ImageGenerateParamsSize {
	switch aspect {
	case "16:9", "4:3", "3:2":
		return openai.ImageGenerateParamsSize1792x1024
	case "9:16", "3:4", "2:3":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

func jsonSchema(s *generation.Schema) map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             append([]string(nil), s.Fields...),
		"additionalProperties": false,
	}
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == "content_policy_violation" {
			return generation.Blocked(generation.BlockSafety, "The response was blocked due to safety concerns. Please adjust your inputs.")
		}
		return generation.Classify(apiErr.StatusCode, fmt.Errorf("openai API: %w", err))
	}
	return generation.Classify(0, err)
}
