package handlers

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/session"
)

func TestParseAssignments(t *testing.T) {
	got, bad := parseAssignments("businessType = Coffee Shop\nTarget Audience=students\nexistingContent=First line\nsecond line\n\nthird line")
	if len(bad) != 0 {
		t.Fatalf("bad = %v", bad)
	}
	want := []assignment{
		{marketing.FieldBusinessType, "Coffee Shop"},
		{marketing.FieldTargetAudience, "students"},
		{marketing.FieldExistingContent, "First line\nsecond line\n\nthird line"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignment %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestParseAssignmentsRejectsUnknownKeys(t *testing.T) {
	_, bad := parseAssignments("shoeSize=42\nno equals sign here")
	if len(bad) != 2 || bad[0] != `"shoeSize"` {
		t.Fatalf("bad = %v", bad)
	}
}

func TestResolveField(t *testing.T) {
	cases := map[string]marketing.Field{
		"businessType":             marketing.FieldBusinessType,
		"business_type":            marketing.FieldBusinessType,
		"Business Type / Industry": marketing.FieldBusinessType,
		"TARGETREGION":             marketing.FieldTargetRegion,
	}
	for key, want := range cases {
		got, ok := resolveField(key)
		if !ok || got != want {
			t.Errorf("resolveField(%q) = %q, %v", key, got, ok)
		}
	}
	if _, ok := resolveField("  "); ok {
		t.Error("blank key resolved")
	}
}

func TestFormatInputsMarksRequired(t *testing.T) {
	in := marketing.DefaultInputs()
	in.BusinessType = "Bakery"
	out := formatInputs(marketing.TrendAnalysis, in)
	if !strings.Contains(out, "(businessType): Bakery") {
		t.Fatalf("missing business type:\n%s", out)
	}
	if !strings.Contains(out, marketing.FieldLabel(marketing.FieldTargetRegion)+" * (targetRegion)") {
		t.Fatalf("target region should be marked required:\n%s", out)
	}
}

func TestFormatHistory(t *testing.T) {
	if got := formatHistory(nil); !strings.Contains(got, "/generate") {
		t.Fatalf("empty history = %q", got)
	}
	out := formatHistory([]marketing.Result{{ContentType: marketing.SocialMedia}, {ContentType: marketing.SocialMedia}})
	if !strings.Contains(out, "1. Social Media Captions") || !strings.HasSuffix(out, "(current)") {
		t.Fatalf("history:\n%s", out)
	}
}

func TestUserMessage(t *testing.T) {
	verr := &marketing.ValidationError{Fields: map[marketing.Field]string{
		marketing.FieldTargetAudience: "Target audience is required.",
		marketing.FieldBusinessType:   "Business type is required.",
	}}
	msg := userMessage(fmt.Errorf("generate: %w", verr))
	if strings.Index(msg, "Business type") > strings.Index(msg, "Target audience") {
		t.Fatalf("validation messages out of form order:\n%s", msg)
	}

	blocked := generation.Blocked(generation.BlockSafety, "Blocked for safety.")
	if got := userMessage(blocked); got != "❌ Blocked for safety." {
		t.Fatalf("blocked = %q", got)
	}
	if got := userMessage(&session.BusyError{Action: session.ActionGenerate, Pending: session.ActionGenerate}); !strings.HasPrefix(got, "⏳") {
		t.Fatalf("busy = %q", got)
	}
	if got := userMessage(errors.New("secret internals")); strings.Contains(got, "secret") {
		t.Fatalf("internal error leaked: %q", got)
	}
}

func TestTypesKeyboardCoversEveryType(t *testing.T) {
	kb := typesKeyboard()
	n := 0
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil || !strings.HasPrefix(*btn.CallbackData, callbackType+":") {
				t.Fatalf("button %q has bad callback data", btn.Text)
			}
			n++
		}
	}
	if n != len(marketing.Types()) {
		t.Fatalf("keyboard has %d buttons", n)
	}
}
