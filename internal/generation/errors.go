package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindRateLimited        Kind = "rate_limited"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindUnavailable        Kind = "service_unavailable"
	KindContentBlocked     Kind = "content_blocked"
	KindEmpty              Kind = "empty_response"
	KindUnknown            Kind = "unknown"
)

// BlockReason is only set for KindContentBlocked.
type BlockReason string

const (
	BlockSafety      BlockReason = "safety"
	BlockRecitation  BlockReason = "recitation"
	BlockLength      BlockReason = "length_exceeded"
	BlockUnspecified BlockReason = "unspecified"
)

type ServiceError struct {
	Kind    Kind
	Reason  BlockReason
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func Blocked(reason BlockReason, message string) *ServiceError {
	return &ServiceError{Kind: KindContentBlocked, Reason: reason, Message: message}
}

func EmptyResponse() *ServiceError {
	return &ServiceError{
		Kind:    KindEmpty,
		Message: "The AI returned an empty response. Please try again with a different prompt.",
	}
}

// FromFinishReason maps a backend finish/block reason onto ContentBlocked.
// Gemini reports SAFETY/RECITATION/MAX_TOKENS, OpenAI content_filter/length.
func FromFinishReason(reason string) *ServiceError {
	switch strings.ToUpper(strings.TrimSpace(reason)) {
	case "SAFETY", "CONTENT_FILTER", "PROHIBITED_CONTENT", "BLOCKLIST", "SPII", "IMAGE_SAFETY":
		return Blocked(BlockSafety, "The response was blocked due to safety concerns. Please adjust your inputs.")
	case "RECITATION":
		return Blocked(BlockRecitation, "The response was blocked to prevent recitation of existing content. Please rephrase your request.")
	case "MAX_TOKENS", "LENGTH":
		return Blocked(BlockLength, "The request is too long or the response would exceed the maximum length. Please shorten your input.")
	default:
		return Blocked(BlockUnspecified, fmt.Sprintf("The AI failed to generate a response due to an unhandled reason: %s.", reason))
	}
}

// Classify maps a failed call onto the error taxonomy by status code and
// message substrings. Unmatched failures keep their original message.
func Classify(status int, err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	message := err.Error()
	lower := strings.ToLower(message)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ServiceError{Kind: KindUnavailable, Message: "The AI service did not respond in time. Please try again later.", Err: err}
	case strings.Contains(message, "API key not valid") || strings.Contains(lower, "incorrect api key") ||
		strings.Contains(lower, "invalid api key") || status == http.StatusUnauthorized:
		return &ServiceError{Kind: KindInvalidCredentials, Message: "The provided API Key is invalid. Please check your environment configuration.", Err: err}
	case strings.Contains(lower, "quota") || strings.Contains(lower, "resource has been exhausted"):
		return &ServiceError{Kind: KindQuotaExceeded, Message: "You have exceeded your API usage quota. Please check your provider account.", Err: err}
	case status == http.StatusTooManyRequests || strings.Contains(message, "429") || strings.Contains(lower, "rate limit"):
		return &ServiceError{Kind: KindRateLimited, Message: "You are making too many requests. Please wait a moment and try again.", Err: err}
	case status >= http.StatusInternalServerError || strings.Contains(message, "500") || strings.Contains(message, "503"):
		return &ServiceError{Kind: KindUnavailable, Message: "The AI service is currently unavailable. Please try again later.", Err: err}
	default:
		return &ServiceError{Kind: KindUnknown, Message: message, Err: err}
	}
}
