package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		status int
		err    error
		want   Kind
	}{
		{"bad key", http.StatusBadRequest, errors.New("API key not valid. Please pass a valid API key."), KindInvalidCredentials},
		{"unauthorized", http.StatusUnauthorized, errors.New("nope"), KindInvalidCredentials},
		{"quota", http.StatusTooManyRequests, errors.New("You exceeded your current quota"), KindQuotaExceeded},
		{"exhausted", 0, errors.New("Resource has been exhausted (e.g. check quota)."), KindQuotaExceeded},
		{"rate", http.StatusTooManyRequests, errors.New("slow down"), KindRateLimited},
		{"rate message", 0, errors.New("Rate limit reached for requests"), KindRateLimited},
		{"unavailable", http.StatusServiceUnavailable, errors.New("model overloaded"), KindUnavailable},
		{"deadline", 0, fmt.Errorf("request: %w", context.DeadlineExceeded), KindUnavailable},
		{"other", http.StatusBadRequest, errors.New("something odd"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.status, tc.err)
			if got.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", got.Kind, tc.want)
			}
		})
	}
}

func TestClassifyKeepsUnknownMessage(t *testing.T) {
	got := Classify(0, errors.New("weird backend failure"))
	if got.Error() != "weird backend failure" {
		t.Fatalf("message = %q", got.Error())
	}
}

func TestClassifyPassesServiceErrorThrough(t *testing.T) {
	orig := Blocked(BlockSafety, "blocked")
	got := Classify(http.StatusOK, fmt.Errorf("wrapped: %w", orig))
	if got != orig {
		t.Fatalf("expected original service error, got %#v", got)
	}
}

func TestFromFinishReason(t *testing.T) {
	cases := map[string]BlockReason{
		"SAFETY":         BlockSafety,
		"content_filter": BlockSafety,
		"RECITATION":     BlockRecitation,
		"MAX_TOKENS":     BlockLength,
		"length":         BlockLength,
		"OTHER":          BlockUnspecified,
	}
	for in, want := range cases {
		got := FromFinishReason(in)
		if got.Kind != KindContentBlocked || got.Reason != want {
			t.Errorf("%s: got %s/%s, want content_blocked/%s", in, got.Kind, got.Reason, want)
		}
	}
}

func TestImageDataURL(t *testing.T) {
	img := Image{MimeType: "image/png", Data: []byte("abc")}
	if got := img.DataURL(); got != "data:image/png;base64,YWJj" {
		t.Fatalf("DataURL = %q", got)
	}
	if (Image{}).DataURL() != "" {
		t.Fatal("empty image should have empty data url")
	}
}
