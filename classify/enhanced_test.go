package classify

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultResolution_TotalOverCategories(t *testing.T) {
	for _, c := range Categories() {
		if DefaultResolution(c) == "" {
			t.Fatalf("category %s has no resolution", c)
		}
	}
	if DefaultResolution(Category("bogus")) != DefaultResolution(CategoryUnknown) {
		t.Fatal("invalid category should map to the unknown resolution")
	}
}

func TestNew_InvalidCategoryDegradesToUnknown(t *testing.T) {
	e := New(Category("bogus"), "boom", nil)
	if e.Category != CategoryUnknown {
		t.Fatalf("category=%s, want unknown", e.Category)
	}
	if e.Resolution == "" {
		t.Fatal("resolution must always be present")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err  *EnhancedError
		want Category
	}{
		{NewAuthError("authentication failed"), CategoryAuth},
		{NewNetworkError("connection refused"), CategoryNetwork},
		{NewTimeoutError("timed out"), CategoryTimeout},
		{NewValidationError("bad input"), CategoryValidation},
		{NewParsingError("bad json"), CategoryParsing},
		{NewPermissionError("denied"), CategoryPermission},
		{NewConfigurationError("missing key"), CategoryConfiguration},
	}
	for _, tc := range cases {
		if tc.err.Category != tc.want {
			t.Fatalf("category=%s, want %s", tc.err.Category, tc.want)
		}
		if tc.err.Resolution != DefaultResolution(tc.want) {
			t.Fatalf("%s: resolution not the category default", tc.want)
		}
	}
}

func TestNewSubprocessError_ExitCodeResolutions(t *testing.T) {
	notFound := NewSubprocessError("spawn claude failed", 127)
	if !strings.Contains(notFound.Resolution, "not found") {
		t.Fatalf("exit 127 resolution=%q, want command-not-found guidance", notFound.Resolution)
	}

	notExec := NewSubprocessError("spawn claude failed", 126)
	if !strings.Contains(notExec.Resolution, "not executable") {
		t.Fatalf("exit 126 resolution=%q, want permission guidance", notExec.Resolution)
	}

	generic := NewSubprocessError("claude crashed", 1)
	if !strings.Contains(generic.Resolution, "code 1") {
		t.Fatalf("exit 1 resolution=%q, want generic exit-code guidance", generic.Resolution)
	}
	if generic.Resolution == notFound.Resolution {
		t.Fatal("exit 1 and exit 127 should yield distinct resolutions")
	}

	noCode := New(CategorySubprocess, "crashed", nil)
	if noCode.Resolution != DefaultResolution(CategorySubprocess) {
		t.Fatalf("missing exit code should use the default resolution, got %q", noCode.Resolution)
	}
}

func TestEnhance_PreservesCause(t *testing.T) {
	orig := errors.New("connection reset by peer")
	e := Enhance(orig)

	if e.Category != CategoryNetwork {
		t.Fatalf("category=%s, want network", e.Category)
	}
	if !errors.Is(e, orig) {
		t.Fatal("enhanced error must unwrap to the original")
	}
	if e.Resolution == "" {
		t.Fatal("resolution must be present")
	}
}

func TestEnhance_ReEnhanceKeepsChain(t *testing.T) {
	orig := errors.New("request timed out")
	once := Enhance(orig)
	twice := Enhance(once)

	if twice.Category != CategoryTimeout {
		t.Fatalf("category=%s, want timeout", twice.Category)
	}
	if !errors.Is(twice, orig) {
		t.Fatal("re-enhancing must not lose the original cause chain")
	}

	// Pure: same input, same classification.
	if Enhance(orig).Category != once.Category {
		t.Fatal("enhance is not deterministic")
	}
}

func TestEnhance_Nil(t *testing.T) {
	if Enhance(nil) != nil {
		t.Fatal("Enhance(nil) should be nil")
	}
}

func TestEnhancedError_ErrorString(t *testing.T) {
	e := NewAuthError("authentication failed")
	got := e.Error()
	if !strings.Contains(got, "auth") || !strings.Contains(got, "authentication failed") {
		t.Fatalf("Error()=%q, want category and message", got)
	}
}

func TestWithStatusCode(t *testing.T) {
	e := NewNetworkError("server error").WithStatusCode(503)
	if e.StatusCode != 503 {
		t.Fatalf("StatusCode=%d, want 503", e.StatusCode)
	}

	// The receiver is untouched.
	base := NewNetworkError("server error")
	_ = base.WithStatusCode(500)
	if base.StatusCode != 0 {
		t.Fatal("WithStatusCode mutated the receiver")
	}
}
