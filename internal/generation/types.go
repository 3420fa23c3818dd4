package generation

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Client is the generative backend consumed by the orchestrator. Both calls are
// request/response; a returned error is always a *ServiceError.
type Client interface {
	GenerateText(ctx context.Context, prompt string, opts TextOptions) (TextResult, error)
	GenerateImage(ctx context.Context, prompt string, opts ImageOptions) (Image, error)
}

type TextOptions struct {
	SystemInstruction string
	Schema            *Schema
	UseSearch         bool
}

type TextResult struct {
	Text       string
	TokenCount int
}

// Schema is an object schema whose properties are all required strings.
type Schema struct {
	Name   string
	Fields []string
}

type ImageOptions struct {
	Count       int
	AspectRatio string
	MimeType    string
}

type Image struct {
	MimeType string
	Data     []byte
}

func (img Image) Empty() bool {
	return len(img.Data) == 0
}

func (img Image) DataURL() string {
	if img.Empty() {
		return ""
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(img.Data))
}

// Extension returns the file extension used for downloads.
func (img Image) Extension() string {
	switch img.MimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpeg"
	}
}

func (o ImageOptions) WithDefaults() ImageOptions {
	if o.Count < 1 {
		o.Count = 1
	}
	if o.AspectRatio == "" {
		o.AspectRatio = "1:1"
	}
	if o.MimeType == "" {
		o.MimeType = "image/jpeg"
	}
	return o
}
