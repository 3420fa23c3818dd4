package openaigen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	openai "github.com/openai/openai-go"

	"marketing-studio/internal/generation"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", HTTPClient: srv.Client()})
}

func TestImageSize(t *testing.T) {
	cases := map[string]openai.ImageGenerateParamsSize{
		"16:9": openai.ImageGenerateParamsSize1792x1024,
		"9:16": openai.ImageGenerateParamsSize1024x1792,
		"1:1":  openai.ImageGenerateParamsSize1024x1024,
		"":     openai.ImageGenerateParamsSize1024x1024,
	}
	for aspect, want := range cases {
		if got := imageSize(aspect); got != want {
			t.Errorf("imageSize(%q) = %s, want %s", aspect, got, want)
		}
	}
}

func TestJSONSchemaRequiresEveryField(t *testing.T) {
	s := jsonSchema(&generation.Schema{Name: "poster_concept", Fields: []string{"headline", "cta"}})
	if s["additionalProperties"] != false {
		t.Fatal("strict schemas must forbid additional properties")
	}
	req, _ := s["required"].([]string)
	if strings.Join(req, ",") != "headline,cta" {
		t.Fatalf("required = %v", s["required"])
	}
}

func TestGenerateText(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Fresh captions "}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	})

	res, err := c.GenerateText(context.Background(), "write", generation.TextOptions{SystemInstruction: "you are a copywriter"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Fresh captions" || res.TokenCount != 15 {
		t.Fatalf("result = %#v", res)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
}

func TestGenerateTextLengthIsBlocked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"length","message":{"role":"assistant","content":""}}],"usage":{"total_tokens":1}}`)
	})

	_, err := c.GenerateText(context.Background(), "write", generation.TextOptions{})
	var se *generation.ServiceError
	if !errors.As(err, &se) || se.Kind != generation.KindContentBlocked || se.Reason != generation.BlockLength {
		t.Fatalf("got %v", err)
	}
}

func TestUnauthorizedIsInvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	})

	_, err := c.GenerateText(context.Background(), "write", generation.TextOptions{})
	var se *generation.ServiceError
	if !errors.As(err, &se) || se.Kind != generation.KindInvalidCredentials {
		t.Fatalf("got %v", err)
	}
}

func TestServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"The server is overloaded","type":"server_error"}}`)
	})

	_, err := c.GenerateText(context.Background(), "write", generation.TextOptions{})
	var se *generation.ServiceError
	if !errors.As(err, &se) || se.Kind != generation.KindUnavailable {
		t.Fatalf("got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("backend called %d times", n)
	}
}

func TestGenerateImage(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[{"b64_json":"`+base64.StdEncoding.EncodeToString([]byte("png"))+`"}]}`)
	})

	img, err := c.GenerateImage(context.Background(), "a poster", generation.ImageOptions{AspectRatio: "9:16"})
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != "png" || img.MimeType != "image/png" {
		t.Fatalf("image = %#v", img)
	}
	if body["size"] != "1024x1792" || body["response_format"] != "b64_json" {
		t.Fatalf("request = %v", body)
	}
}
