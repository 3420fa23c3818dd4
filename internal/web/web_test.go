package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketing-studio/internal/export"
	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/orchestrator"
	"marketing-studio/internal/session"
)

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(_ context.Context, ct marketing.ContentType, in marketing.Inputs) (marketing.Result, error) {
	if g.err != nil {
		return marketing.Result{}, g.err
	}
	return marketing.Result{
		ContentType:  ct,
		Content:      marketing.TextContent("# Captions for " + in.BusinessType),
		SummaryImage: generation.Image{MimeType: "image/jpeg", Data: []byte("jpg")},
		Performance:  marketing.Performance{ElapsedSeconds: 1.5, TotalTokens: 100},
	}, nil
}

func (g *stubGenerator) Refine(_ context.Context, prev marketing.Result, text marketing.TextContent, instruction string) (marketing.Result, error) {
	prev.Content = text + marketing.TextContent("\n"+instruction)
	return prev, nil
}

func (g *stubGenerator) Compare(_ context.Context, _ marketing.Inputs, types []marketing.ContentType) ([]orchestrator.ComparisonRow, error) {
	rows := make([]orchestrator.ComparisonRow, len(types))
	for i, ct := range types {
		rows[i] = orchestrator.ComparisonRow{ContentType: ct, Text: "row", Tokens: i + 1}
	}
	return rows, nil
}

func newTestServer(t *testing.T, gen session.Generator) *httptest.Server {
	t.Helper()
	lib, err := marketing.LoadLibrary("")
	if err != nil {
		t.Fatal(err)
	}
	srv := New(Options{
		Sessions:  session.NewStore(session.StoreOptions{Generator: gen}),
		Templates: lib,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func createSession(t *testing.T, ts *httptest.Server) stateView {
	t.Helper()
	resp, body := do(t, ts, http.MethodPost, "/api/v1/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: %d %s", resp.StatusCode, body)
	}
	var st stateView
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func fillSocialInputs(t *testing.T, ts *httptest.Server, id string) {
	t.Helper()
	resp, body := do(t, ts, http.MethodPatch, "/api/v1/sessions/"+id+"/inputs",
		`{"businessType":"Coffee Shop","targetAudience":"students","campaignObjective":"cold brew launch"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch inputs: %d %s", resp.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	resp, body := do(t, ts, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Fatalf("health: %d %s", resp.StatusCode, body)
	}
}

func TestCatalogAndTemplates(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})

	_, body := do(t, ts, http.MethodGet, "/api/v1/content-types", "")
	var types struct {
		Types []typeView `json:"types"`
	}
	if err := json.Unmarshal(body, &types); err != nil {
		t.Fatal(err)
	}
	if len(types.Types) != 8 || types.Types[0].Type != marketing.SocialMedia {
		t.Fatalf("types = %#v", types.Types)
	}

	_, body = do(t, ts, http.MethodGet, "/api/v1/templates", "")
	var tpls struct {
		Templates []marketing.Template `json:"templates"`
	}
	if err := json.Unmarshal(body, &tpls); err != nil {
		t.Fatal(err)
	}
	if len(tpls.Templates) != 6 {
		t.Fatalf("templates = %d", len(tpls.Templates))
	}
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	for _, id := range []string{"not-a-uuid", "8d6f2a9e-4a51-4c4c-9f3b-3f1f0d0c2b11"} {
		resp, _ := do(t, ts, http.MethodGet, "/api/v1/sessions/"+id, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status %d", id, resp.StatusCode)
		}
	}
}

func TestGenerateValidationError(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)

	resp, body := do(t, ts, http.MethodPost, "/api/v1/sessions/"+st.ID+"/generate", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d %s", resp.StatusCode, body)
	}
	var ev errorView
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "validation" || ev.Fields[marketing.FieldBusinessType] == "" {
		t.Fatalf("error = %#v", ev)
	}
}

func TestGenerateRefineRevertExport(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	base := "/api/v1/sessions/" + st.ID
	fillSocialInputs(t, ts, st.ID)

	resp, body := do(t, ts, http.MethodPost, base+"/generate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.Current == nil || st.Current.Content.Kind != "text" || st.Current.Content.Text != "# Captions for Coffee Shop" {
		t.Fatalf("current = %#v", st.Current)
	}
	if !strings.HasPrefix(st.Current.SummaryImageURL, "data:image/jpeg;base64,") {
		t.Fatalf("summary image url = %q", st.Current.SummaryImageURL)
	}

	resp, body = do(t, ts, http.MethodPost, base+"/refine", `{"instruction":"shorter"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refine: %d %s", resp.StatusCode, body)
	}
	var rv refineView
	if err := json.Unmarshal(body, &rv); err != nil {
		t.Fatal(err)
	}
	if !rv.Applied || len(rv.History) != 2 || !strings.HasSuffix(rv.Current.Content.Text, "shorter") {
		t.Fatalf("refine view = %#v", rv)
	}

	resp, body = do(t, ts, http.MethodPost, base+"/revert", `{"index":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("revert: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if len(st.History) != 1 || !st.ComparisonVisible {
		t.Fatalf("after revert: %#v", st)
	}

	resp, body = do(t, ts, http.MethodPost, base+"/revert", `{"index":5}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of range revert: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, ts, http.MethodGet, base+"/export/text", "")
	if resp.StatusCode != http.StatusOK || string(body) != "# Captions for Coffee Shop" {
		t.Fatalf("export text: %d %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="social_media_captions_content.txt"` {
		t.Fatalf("content-disposition = %q", got)
	}

	resp, _ = do(t, ts, http.MethodGet, base+"/export/poster", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("poster export of text result: %d", resp.StatusCode)
	}
}

func TestSelectTypeAndTemplate(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	base := "/api/v1/sessions/" + st.ID

	resp, _ := do(t, ts, http.MethodPut, base+"/type", `{"contentType":"billboard"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type: %d", resp.StatusCode)
	}

	resp, body := do(t, ts, http.MethodPut, base+"/type", `{"contentType":"email_campaign"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select type: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.ContentType != marketing.EmailCampaign {
		t.Fatalf("content type = %s", st.ContentType)
	}

	resp, body = do(t, ts, http.MethodPost, base+"/template", `{"name":"B2B SaaS Market Entry"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("template: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.ContentType != marketing.MarketingStrategy || st.Inputs.StrategyTimeline != "6 Months" {
		t.Fatalf("template state = %#v", st)
	}

	resp, _ = do(t, ts, http.MethodPost, base+"/template", `{"name":"nope"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing template: %d", resp.StatusCode)
	}
}

func TestPatchUnknownField(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	resp, _ := do(t, ts, http.MethodPatch, "/api/v1/sessions/"+st.ID+"/inputs", `{"shoeSize":"42"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestPatchInputsIsAllOrNothing(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	base := "/api/v1/sessions/" + st.ID

	resp, _ := do(t, ts, http.MethodPatch, base+"/inputs", `{"businessType":"Changed","bogusField":"x","targetAudience":"also changed"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}

	_, body := do(t, ts, http.MethodGet, base, "")
	var after stateView
	if err := json.Unmarshal(body, &after); err != nil {
		t.Fatal(err)
	}
	if after.Inputs != st.Inputs {
		t.Fatalf("inputs changed by a rejected patch: %#v", after.Inputs)
	}
}

func TestCompareAndClose(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	base := "/api/v1/sessions/" + st.ID
	fillSocialInputs(t, ts, st.ID)

	resp, body := do(t, ts, http.MethodPost, base+"/compare", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("compare: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if !st.MatrixVisible || len(st.Matrix) != 3 || st.Matrix[0].ContentType != marketing.SocialMedia {
		t.Fatalf("matrix = %#v", st.Matrix)
	}

	resp, _ = do(t, ts, http.MethodPost, base+"/compare", `{"types":["ad_poster"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("poster compare: %d", resp.StatusCode)
	}

	resp, body = do(t, ts, http.MethodDelete, base+"/compare", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close: %d", resp.StatusCode)
	}
	st = stateView{}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.MatrixVisible || len(st.Matrix) != 0 {
		t.Fatalf("matrix still open: %#v", st)
	}
}

func TestServiceErrorStatus(t *testing.T) {
	gen := &stubGenerator{err: &generation.ServiceError{Kind: generation.KindRateLimited, Message: "slow down"}}
	ts := newTestServer(t, gen)
	st := createSession(t, ts)
	fillSocialInputs(t, ts, st.ID)

	resp, body := do(t, ts, http.MethodPost, "/api/v1/sessions/"+st.ID+"/generate", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status %d %s", resp.StatusCode, body)
	}

	_, body = do(t, ts, http.MethodGet, "/api/v1/sessions/"+st.ID, "")
	if !strings.Contains(string(body), `"lastError":{"error":"slow down","kind":"rate_limited"`) {
		t.Fatalf("last error not kept: %s", body)
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	st := createSession(t, ts)
	resp, _ := do(t, ts, http.MethodDelete, "/api/v1/sessions/"+st.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp, _ = do(t, ts, http.MethodGet, "/api/v1/sessions/"+st.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: %d", resp.StatusCode)
	}
}

func TestStaticIndex(t *testing.T) {
	ts := newTestServer(t, &stubGenerator{})
	resp, body := do(t, ts, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Marketing Studio") {
		t.Fatalf("index: %d", resp.StatusCode)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{&marketing.ValidationError{Fields: map[marketing.Field]string{marketing.FieldBusinessType: "required"}}, http.StatusBadRequest, "validation"},
		{session.ErrNotFound, http.StatusNotFound, "not_found"},
		{&session.BusyError{Action: session.ActionGenerate, Pending: session.ActionRefine}, http.StatusConflict, "busy"},
		{session.ErrSuperseded, http.StatusConflict, "superseded"},
		{fmt.Errorf("wrap: %w", session.ErrNoResult), http.StatusBadRequest, "bad_request"},
		{export.ErrNotPoster, http.StatusNotFound, "not_found"},
		{&marketing.ConfigError{ContentType: "x"}, http.StatusInternalServerError, "configuration"},
		{&marketing.ConceptParseError{Raw: "oops"}, http.StatusBadGateway, "concept_parse"},
		{generation.Blocked(generation.BlockSafety, "blocked"), http.StatusUnprocessableEntity, string(generation.KindContentBlocked)},
		{&generation.ServiceError{Kind: generation.KindQuotaExceeded}, http.StatusTooManyRequests, string(generation.KindQuotaExceeded)},
		{&generation.ServiceError{Kind: generation.KindUnavailable}, http.StatusServiceUnavailable, string(generation.KindUnavailable)},
		{&generation.ServiceError{Kind: generation.KindInvalidCredentials}, http.StatusBadGateway, string(generation.KindInvalidCredentials)},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, view := classifyError(tc.err)
		if status != tc.status || view.Kind != tc.kind {
			t.Errorf("%v: got %d/%s, want %d/%s", tc.err, status, view.Kind, tc.status, tc.kind)
		}
	}
}
