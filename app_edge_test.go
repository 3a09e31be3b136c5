package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	result := newTestApp().Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax and runtime errors in the script.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := newTestApp().Evaluate("(+ 1 2)\n(output \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EUndefinedVariable(t *testing.T) {
	result := newTestApp().Evaluate(`(output "x" (curvature dome))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an undefined variable")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EBuiltinArgumentError(t *testing.T) {
	result := newTestApp().Evaluate(`(output "x" (grid :n "ten"))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a non-numeric grid size")
	}
	if !strings.Contains(result.Errors[0].Message, "grid") {
		t.Errorf("error should name the builtin, got %q", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// 3. Graphs that fail validation never reach the pipeline.
// ---------------------------------------------------------------------------

func TestE2EValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"zero radius", `(output "s" (sphere :radius 0))`, "radius"},
		{"tiny grid", `(output "g" (grid :n 1 :m 1))`, "2×2"},
		{"band gains", `(output "b" (band-frequencies (grid :n 4) :configs (list (smoothing-config) (smoothing-config))))`, "gains"},
		{"translate a grid", `(output "t" (translate (grid :n 4) :by (vec3 1 0 0)))`, "must be a solid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestApp().Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(result.Errors[0].Message, tt.substr) {
				t.Errorf("error %q does not mention %q", result.Errors[0].Message, tt.substr)
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 4. Errors raised while processing.
// ---------------------------------------------------------------------------

func TestE2EProcessingErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"closed mesh has no boundary", `(output "u" (harmonic-maps (sphere :radius 1)))`, "no boundary"},
		{"circle remeshing", `(output "r" (remeshing (grid :n 5) :n 4 :shape :circle))`, "circle"},
		{"vertex out of range", `(output "i" (iterate (grid :n 3) :vertex 99))`, "out of range"},
		{"global smoothing operator", `(output "g" (global-smoothing (grid :n 4) :operator :taubin))`, "operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestApp().Evaluate(tt.source)
			if len(result.Errors) != 1 {
				t.Fatalf("expected 1 error, got %v", result.Errors)
			}
			msg := result.Errors[0].Message
			if !strings.HasPrefix(msg, "processing failed: ") {
				t.Errorf("error %q should come from the pipeline", msg)
			}
			if !strings.Contains(msg, tt.substr) {
				t.Errorf("error %q does not mention %q", msg, tt.substr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 5. Warnings do not block evaluation.
// ---------------------------------------------------------------------------

func TestE2EOrphanWarning(t *testing.T) {
	result := newTestApp().Evaluate(`
(def unused (sphere :radius 1))
(output "g" (grid :n 3))
`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "orphan") {
		t.Errorf("warnings = %v, want one orphan warning", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 6. Rapid sequential evaluation on the same App.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// Sequential calls, because zygomys has internal global state that is
	// not safe for concurrent sandbox creation.
	app := newTestApp()

	sources := []string{
		`(output "a" (grid :n 3))`,
		`(output "b" (curvature (grid :n 4 :dome-height 0.1)))`,
		`(+ 1 2)`,
		``,
		`(output "c" (grid :n 1))`,
		`(output "d" (inspect (grid :n 5)))`,
		`(output "e"`,
		`(output "f" (boundaries (grid :n 3 :m 7)))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	// The last evaluation is current, so its result is returned in full.
	result := app.Evaluate(`(output "last" (grid :n 3))`)
	if len(result.Errors) > 0 || len(result.Meshes) != 1 {
		t.Errorf("final evaluation: errors %v, %d meshes", result.Errors, len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 7. Comments and plain Lisp.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	result := newTestApp().Evaluate(";; just a comment\n; another one\n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for comments only, got %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EArithmeticInArguments(t *testing.T) {
	result := newTestApp().Evaluate(`
(def n 4)
(def h (/ 1.0 4))
(output "g" (inspect (grid :n (* n 2) :m (+ n 1) :dome-height h)))
`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	st := result.Meshes[0].Stats
	if st == nil || st.Vertices != 8*5 {
		t.Errorf("stats = %+v, want 40 vertices", st)
	}
}

// ---------------------------------------------------------------------------
// 8. Output metadata.
// ---------------------------------------------------------------------------

func TestE2EIterateRing(t *testing.T) {
	result := newTestApp().Evaluate(`(output "ring" (iterate (grid :n 3) :vertex 4))`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	r := result.Meshes[0].Ring
	if r == nil || r.Vertex != 4 || len(r.Neighbours) != 6 || len(r.Faces) != 6 {
		t.Errorf("ring = %+v", r)
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var src strings.Builder
	for i := 0; i < 10; i++ {
		src.WriteString(`(output "g` + string(rune('0'+i)) + `" (grid :n 2))` + "\n")
	}
	result := newTestApp().Evaluate(src.String())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 10 {
		t.Fatalf("expected 10 meshes, got %d", len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if m.Name != "g"+string(rune('0'+i)) {
			t.Errorf("mesh %d is %q, outputs should keep script order", i, m.Name)
		}
		if m.Color != colorPalette[i%len(colorPalette)] {
			t.Errorf("mesh %q color = %s", m.Name, m.Color)
		}
	}
}
