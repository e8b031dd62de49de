package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"assistd/internal/catalog"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

func TestErrorPredicates(t *testing.T) {
	if !IsLoadFailed(ErrLoadFailed("x")) {
		t.Fatalf("IsLoadFailed should match ErrLoadFailed")
	}
	if !IsGenerationFailed(ErrGenerationFailed("x")) {
		t.Fatalf("IsGenerationFailed should match ErrGenerationFailed")
	}
	if !IsRemoteUnavailable(ErrRemoteUnavailable("x")) {
		t.Fatalf("IsRemoteUnavailable should match ErrRemoteUnavailable")
	}
	// Remote unavailability counts as a generation failure upstream.
	if !IsGenerationFailed(ErrRemoteUnavailable("x")) {
		t.Fatalf("remote unavailable should read as generation failure")
	}
	if IsLoadFailed(errors.New("plain")) || IsGenerationFailed(errors.New("plain")) {
		t.Fatalf("predicates must not match foreign errors")
	}
}

func TestTrackerDegradesAfterThreshold(t *testing.T) {
	tr := newTracker(3)
	tr.setReady()
	fail := ErrGenerationFailed("boom")

	tr.recordFailure(fail)
	tr.recordFailure(fail)
	if state, _, fails := tr.snapshot(); state != StateReady || fails != 2 {
		t.Fatalf("after 2 failures: state=%s fails=%d, want ready/2", state, fails)
	}
	tr.recordFailure(fail)
	if state, _, _ := tr.snapshot(); state != StateDegraded {
		t.Fatalf("after 3 failures: state=%s, want degraded", state)
	}
	// A degraded driver remains usable and recovers on success.
	if !tr.usable() {
		t.Fatalf("degraded driver should remain usable")
	}
	tr.recordSuccess()
	if state, _, fails := tr.snapshot(); state != StateReady || fails != 0 {
		t.Fatalf("after success: state=%s fails=%d, want ready/0", state, fails)
	}
}

func TestTrackerSuccessResetsCounter(t *testing.T) {
	tr := newTracker(3)
	tr.setReady()
	fail := ErrGenerationFailed("boom")
	tr.recordFailure(fail)
	tr.recordFailure(fail)
	tr.recordSuccess()
	tr.recordFailure(fail)
	tr.recordFailure(fail)
	if state, _, _ := tr.snapshot(); state != StateReady {
		t.Fatalf("interleaved success must reset the consecutive count, got %s", state)
	}
}

func TestNativeLoadMissingFile(t *testing.T) {
	desc := catalog.Descriptor{ID: "m1", ModelPath: "nope.gguf", LoadHint: "native"}
	d := New("", desc, Options{ModelsDir: t.TempDir()})
	err := d.Load(context.Background())
	if err == nil {
		t.Fatalf("expected load failure for missing model file")
	}
	if !IsLoadFailed(err) {
		t.Fatalf("expected load-failed error, got %v", err)
	}
	st := d.Status()
	if st.State != StateFailed {
		t.Fatalf("state = %s, want failed", st.State)
	}
	if st.Backend != "native" {
		t.Fatalf("backend = %q, want native", st.Backend)
	}
}

func TestGenerateRefusesUnloaded(t *testing.T) {
	desc := catalog.Descriptor{ID: "m1", ModelPath: "nope.gguf"}
	d := newNativeDriver(desc, Options{ModelsDir: t.TempDir()})
	_, err := d.Generate(context.Background(), prompt.Bundle{Text: "hi"}, types.DecodingConfig{})
	if !IsGenerationFailed(err) {
		t.Fatalf("expected generation-failed on unloaded driver, got %v", err)
	}
}

func TestNewModeDispatch(t *testing.T) {
	desc := catalog.Descriptor{ID: "m1"}
	cases := []struct {
		mode string
		want string
	}{
		{"native", "native"},
		{"pipeline", "pipeline"},
		{"hybrid", "hybrid"},
		{"remote", "remote"},
		{"", "native"}, // empty mode follows the (empty) load hint, then defaults
	}
	for _, c := range cases {
		g := New(c.mode, desc, Options{})
		if got := g.Status().Backend; got != c.want {
			t.Fatalf("mode %q: backend = %q, want %q", c.mode, got, c.want)
		}
	}
	// Empty mode defers to the descriptor's load hint.
	g := New("", catalog.Descriptor{ID: "m2", LoadHint: "remote"}, Options{})
	if got := g.Status().Backend; got != "remote" {
		t.Fatalf("load hint dispatch: backend = %q, want remote", got)
	}
}

func TestRenderChat(t *testing.T) {
	bundle := prompt.Bundle{
		Style: prompt.StyleChat,
		Messages: []prompt.Message{
			{Role: "system", Parts: []prompt.Part{{Kind: prompt.PartText, Text: "Seja util."}}},
			{Role: "user", Parts: []prompt.Part{
				{Kind: prompt.PartText, Text: "O que ve na foto?"},
				{Kind: prompt.PartImage, Media: &types.MediaRef{Path: "x.jpg"}},
			}},
		},
	}
	out := renderChat(bundle)
	for _, want := range []string{"system: Seja util.", "user: O que ve na foto?", "[image]", "assistant: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered chat missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "assistant: ") {
		t.Fatalf("rendered chat must end with the assistant cue:\n%s", out)
	}

	plain := prompt.Bundle{Style: prompt.StylePlain, Text: "already flat"}
	if got := renderChat(plain); got != "already flat" {
		t.Fatalf("plain bundles pass through, got %q", got)
	}
}

func TestPoolSharesAliasedWeights(t *testing.T) {
	descs := catalog.Default()
	var base, alias catalog.Descriptor
	for _, d := range descs {
		switch d.ID {
		case "gemma3n-e4b":
			base = d
		case "gemma3n-e4b-mm":
			alias = d
		}
	}
	if alias.WeightsAlias != base.ID {
		t.Fatalf("catalog fixture changed: alias=%q base=%q", alias.WeightsAlias, base.ID)
	}
	p := NewPool("native", Options{ModelsDir: t.TempDir()})
	g1 := p.For(base)
	g2 := p.For(alias)
	if g1 != g2 {
		t.Fatalf("aliased descriptor must reuse the base driver instance")
	}
	if len(p.Statuses()) != 1 {
		t.Fatalf("pool should hold exactly one driver for shared weights, got %d", len(p.Statuses()))
	}

	if g, ok := p.Loaded("gemma3n-e4b-mm", descs); !ok || g != g1 {
		t.Fatalf("Loaded must resolve the alias to the shared driver")
	}
	if _, ok := p.Loaded("gemma3n-lite", descs); ok {
		t.Fatalf("Loaded must not invent drivers for never-requested models")
	}
}

func TestPoolStatusesSorted(t *testing.T) {
	p := NewPool("native", Options{})
	p.For(catalog.Descriptor{ID: "zz"})
	p.For(catalog.Descriptor{ID: "aa"})
	sts := p.Statuses()
	if len(sts) != 2 || sts[0].ModelID != "aa" || sts[1].ModelID != "zz" {
		t.Fatalf("statuses not sorted by model id: %+v", sts)
	}
}
