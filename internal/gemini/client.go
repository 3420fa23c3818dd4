package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketing-studio/internal/generation"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Client = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
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

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) GenerateText(ctx context.Context, prompt string, opts generation.TextOptions) (generation.TextResult, error) {
	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if sys := strings.TrimSpace(opts.SystemInstruction); sys != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: sys}}}
	}
	if opts.Schema != nil {
		req.GenerationConfig.ResponseMimeType = "application/json"
		req.GenerationConfig.ResponseSchema = toSchema(opts.Schema)
	}
	if opts.UseSearch {
		req.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	var resp generateContentResponse
	if err := c.post(ctx, c.textModel, "generateContent", req, &resp); err != nil {
		return generation.TextResult{}, err
	}

	text, _, err := extractParts(resp)
	if err != nil {
		return generation.TextResult{}, err
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = resp.UsageMetadata.TotalTokenCount
	}
	c.logger.Debug("gemini text", "model", c.textModel, "tokens", tokens, "search", opts.UseSearch, "schema", opts.Schema != nil)

	return generation.TextResult{Text: strings.TrimSpace(text), TokenCount: tokens}, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, opts generation.ImageOptions) (generation.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return generation.Image{}, &generation.ServiceError{Kind: generation.KindUnknown, Message: "image prompt is empty"}
	}
	opts = opts.WithDefaults()

	if strings.HasPrefix(c.imageModel, "imagen") {
		return c.predictImage(ctx, prompt, opts)
	}
	return c.contentImage(ctx, prompt, opts)
}

func (c *Client) predictImage(ctx context.Context, prompt string, opts generation.ImageOptions) (generation.Image, error) {
	req := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:   opts.Count,
			AspectRatio:   opts.AspectRatio,
			OutputOptions: &outputOptions{MimeType: opts.MimeType},
		},
	}

	var resp predictResponse
	if err := c.post(ctx, c.imageModel, "predict", req, &resp); err != nil {
		return generation.Image{}, err
	}

	filtered := false
	for _, p := range resp.Predictions {
		if p.BytesBase64Encoded == "" {
			filtered = filtered || p.RAIFilteredReason != ""
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return generation.Image{}, &generation.ServiceError{Kind: generation.KindUnknown, Message: "decode image: " + err.Error(), Err: err}
		}
		mimeType := p.MimeType
		if mimeType == "" {
			mimeType = opts.MimeType
		}
		return generation.Image{MimeType: mimeType, Data: data}, nil
	}

	return generation.Image{}, noImage(filtered)
}

func (c *Client) contentImage(ctx context.Context, prompt string, opts generation.ImageOptions) (generation.Image, error) {
	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: fmt.Sprintf("Generate a high quality image: %s", prompt)}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: opts.AspectRatio},
		},
	}

	var resp generateContentResponse
	err := c.post(ctx, c.imageModel, "generateContent", req, &resp)
	if err != nil && isUnknownFieldError(err, "imageConfig") {
		req.GenerationConfig.ImageConfig = nil
		err = c.post(ctx, c.imageModel, "generateContent", req, &resp)
	}
	if err != nil {
		return generation.Image{}, err
	}

	_, images, err := extractParts(resp)
	if err != nil {
		var se *generation.ServiceError
		if errors.As(err, &se) && se.Kind == generation.KindEmpty {
			return generation.Image{}, noImage(false)
		}
		return generation.Image{}, err
	}
	if len(images) == 0 {
		return generation.Image{}, noImage(false)
	}
	return images[0], nil
}

func (c *Client) post(ctx context.Context, model, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &generation.ServiceError{Kind: generation.KindUnknown, Message: "marshal request: " + err.Error(), Err: err}
	}

	url := fmt.Sprintf("%s/%s/models/%s:%s", c.baseURL, c.apiVersion, model, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &generation.ServiceError{Kind: generation.KindUnknown, Message: "create request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return generation.Classify(0, fmt.Errorf("request: %w", err))
		}
		return &generation.ServiceError{
			Kind:    generation.KindUnavailable,
			Message: "The AI service is currently unavailable. Please try again later.",
			Err:     fmt.Errorf("request: %w", err),
		}
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generation.Classify(0, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("gemini call", "model", model, "method", method, "status", httpResp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	if httpResp.StatusCode >= 400 {
		return generation.Classify(httpResp.StatusCode, fmt.Errorf("gemini API %s: %s", httpResp.Status, apiErrorMessage(rawBody)))
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return &generation.ServiceError{Kind: generation.KindUnknown, Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}

// extractParts returns the first candidate's text and inline images, or a
// ContentBlocked/Empty error when the candidate carries neither.
func extractParts(resp generateContentResponse) (string, []generation.Image, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", nil, generation.FromFinishReason(resp.PromptFeedback.BlockReason)
		}
		return "", nil, generation.EmptyResponse()
	}

	cand := resp.Candidates[0]
	var textBuilder strings.Builder
	var images []generation.Image
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				continue
			}
			images = append(images, generation.Image{MimeType: p.InlineData.MimeType, Data: data})
		}
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		if reason := cand.FinishReason; reason != "" && reason != "STOP" {
			return "", nil, generation.FromFinishReason(reason)
		}
		return "", nil, generation.EmptyResponse()
	}
	return text, images, nil
}

func toSchema(s *generation.Schema) *schema {
	props := make(map[string]*schema, len(s.Fields))
	for _, f := range s.Fields {
		props[f] = &schema{Type: "STRING"}
	}
	return &schema{
		Type:             "OBJECT",
		Properties:       props,
		Required:         append([]string(nil), s.Fields...),
		PropertyOrdering: append([]string(nil), s.Fields...),
	}
}

func noImage(filtered bool) *generation.ServiceError {
	reason := generation.BlockUnspecified
	if filtered {
		reason = generation.BlockSafety
	}
	return generation.Blocked(reason, "Image generation failed to produce an image. This might be due to a safety policy violation. Please adjust your prompt.")
}

func apiErrorMessage(raw []byte) string {
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	var se *generation.ServiceError
	if errors.As(err, &se) && se.Err != nil {
		message = se.Err.Error()
	}
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
