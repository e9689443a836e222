package app

import (
	"context"
	"errors"
	"testing"

	"promptforge/internal/provider"
	"promptforge/internal/session"
	"promptforge/pkg/ai"
)

// fakeCompleter records every request and returns a canned response.
type fakeCompleter struct {
	requests []ai.CompletionRequest
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestApp(t *testing.T, fakes map[provider.ID]*fakeCompleter, creds map[provider.ID]string) *App {
	t.Helper()
	completers := make(map[provider.ID]ai.Completer, len(fakes))
	for id, f := range fakes {
		completers[id] = f
	}
	a, err := New(Config{Credentials: creds, Completers: completers})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestEnhanceWithMissingCredentialMakesNoCall(t *testing.T) {
	fake := &fakeCompleter{response: "should not be used"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{},
	)

	sess := session.New()
	_, err := a.Enhance(context.Background(), sess, "groq", "idea")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected MissingCredential, got: %v", err)
	}
	var mc *MissingCredentialError
	if !errors.As(err, &mc) || mc.EnvVar != "GROQ_API_KEY" {
		t.Fatalf("expected error naming GROQ_API_KEY, got: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(fake.requests))
	}
}

func TestGenerateWithMissingCredentialMakesNoCall(t *testing.T) {
	fake := &fakeCompleter{response: "should not be used"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.OpenRouter: fake},
		map[provider.ID]string{},
	)

	sess := session.New()
	sess.EnhancedPrompt = "Write a haiku about rain"
	_, err := a.Generate(context.Background(), sess, "openrouter", 0.5)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected MissingCredential, got: %v", err)
	}
	var mc *MissingCredentialError
	if !errors.As(err, &mc) || mc.EnvVar != "OPENROUTER_API_KEY" {
		t.Fatalf("expected error naming OPENROUTER_API_KEY, got: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(fake.requests))
	}
}

func TestEnhanceEmptyIdeaIsNoOp(t *testing.T) {
	fake := &fakeCompleter{response: "nope"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{provider.Groq: "key"},
	)

	sess := session.New()
	sess.EnhancedPrompt = "prior"
	got, err := a.Enhance(context.Background(), sess, "groq", "   ")
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected no call, got %d", len(fake.requests))
	}
	if got != sess {
		t.Fatalf("session changed on no-op: %+v", got)
	}
}

func TestGenerateUnreachableWithoutEnhancedPrompt(t *testing.T) {
	fake := &fakeCompleter{response: "nope"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{provider.Groq: "key"},
	)

	_, err := a.Generate(context.Background(), session.New(), "groq", 0.7)
	if !errors.Is(err, ErrNoEnhancedPrompt) {
		t.Fatalf("expected ErrNoEnhancedPrompt, got: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected no call, got %d", len(fake.requests))
	}
}

func TestEnhanceGroqScenario(t *testing.T) {
	const reply = "Hello friend, here is a better prompt for you: ..."
	fake := &fakeCompleter{response: reply}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{provider.Groq: "key"},
	)

	sess := session.New()
	sess.EnhancedPrompt = "old enhanced prompt"
	got, err := a.Enhance(context.Background(), sess, "Groq", "summarize a report")
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if got.EnhancedPrompt != reply {
		t.Fatalf("enhanced prompt = %q, want the literal completion content", got.EnhancedPrompt)
	}
	if got.UserPrompt != "summarize a report" {
		t.Fatalf("user prompt = %q", got.UserPrompt)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("expected one call, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", req.Model)
	}
	if req.Temperature != 0.7 {
		t.Fatalf("enhancement temperature = %v, want 0.7", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != ai.RoleSystem || req.Messages[1].Role != ai.RoleUser {
		t.Fatalf("unexpected roles: %+v", req.Messages)
	}
	if req.Messages[1].Content != "summarize a report" {
		t.Fatalf("user message = %q", req.Messages[1].Content)
	}
}

func TestEnhanceFailureLeavesPriorPrompt(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream 429")}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.GoogleGemini: fake},
		map[provider.ID]string{provider.GoogleGemini: "key"},
	)

	sess := session.New()
	sess.EnhancedPrompt = "prior enhanced prompt"
	got, err := a.Enhance(context.Background(), sess, "google-gemini", "new idea")
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected CompletionFailed, got: %v", err)
	}
	if got.EnhancedPrompt != "prior enhanced prompt" {
		t.Fatalf("prior enhanced prompt lost: %q", got.EnhancedPrompt)
	}
}

func TestGenerateOpenRouterScenario(t *testing.T) {
	fake := &fakeCompleter{response: "a haiku"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.OpenRouter: fake},
		map[provider.ID]string{provider.OpenRouter: "key"},
	)

	sess := session.New()
	sess.EnhancedPrompt = "Write a haiku about rain"
	text, err := a.Generate(context.Background(), sess, "OpenRouter", 0.2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "a haiku" {
		t.Fatalf("result = %q", text)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("expected one call, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Model != "meta-llama/llama-3.1-8b-instruct:free" {
		t.Fatalf("model = %q", req.Model)
	}
	if req.Temperature != 0.2 {
		t.Fatalf("temperature = %v, want 0.2", req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != ai.RoleUser || req.Messages[0].Content != "Write a haiku about rain" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}

func TestGenerateNeverMutatesSession(t *testing.T) {
	fake := &fakeCompleter{response: "out"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{provider.Groq: "key"},
	)

	sess := session.New()
	sess.EnhancedPrompt = "stable prompt"
	before := sess

	if _, err := a.Generate(context.Background(), sess, "groq", 0.1); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := a.Generate(context.Background(), sess, "groq", 0.9); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if sess != before {
		t.Fatalf("session mutated: %+v", sess)
	}
	if len(fake.requests) != 2 {
		t.Fatalf("expected two independent calls, got %d", len(fake.requests))
	}
	for _, req := range fake.requests {
		if req.Messages[0].Content != "stable prompt" {
			t.Fatalf("enhanced prompt changed between calls: %q", req.Messages[0].Content)
		}
	}
}

func TestGenerateRejectsTemperatureOutOfRange(t *testing.T) {
	fake := &fakeCompleter{response: "out"}
	a := newTestApp(t,
		map[provider.ID]*fakeCompleter{provider.Groq: fake},
		map[provider.ID]string{provider.Groq: "key"},
	)
	sess := session.New()
	sess.EnhancedPrompt = "p"

	for _, temp := range []float64{-0.1, 1.1, 2.0} {
		if _, err := a.Generate(context.Background(), sess, "groq", temp); !errors.Is(err, ErrInvalidTemperature) {
			t.Fatalf("temperature %v: expected ErrInvalidTemperature, got %v", temp, err)
		}
	}
	if len(fake.requests) != 0 {
		t.Fatalf("expected no call for invalid temperature, got %d", len(fake.requests))
	}
}

func TestUnknownProviderIsRejected(t *testing.T) {
	a := newTestApp(t, nil, nil)
	sess := session.New()
	sess.EnhancedPrompt = "p"

	if _, err := a.Enhance(context.Background(), sess, "claude", "idea"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("enhance: expected ErrUnknownProvider, got %v", err)
	}
	if _, err := a.Generate(context.Background(), sess, "claude", 0.7); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("generate: expected ErrUnknownProvider, got %v", err)
	}
}

func TestResetClearsSession(t *testing.T) {
	a := newTestApp(t, nil, nil)
	sess := session.New()
	sess.UserPrompt = "idea"
	sess.EnhancedPrompt = "enhanced"

	got := a.Reset(sess)
	if got.UserPrompt != "" || got.EnhancedPrompt != "" {
		t.Fatalf("reset left state behind: %+v", got)
	}
	if got.ID != sess.ID {
		t.Fatalf("reset must keep the session identity, got %q", got.ID)
	}
}

func TestAvailableFollowsCredentials(t *testing.T) {
	a := newTestApp(t, nil, map[provider.ID]string{provider.Groq: "key", provider.OpenRouter: "  "})
	if !a.Available(provider.Groq) {
		t.Fatal("groq should be available")
	}
	if a.Available(provider.OpenRouter) {
		t.Fatal("blank credential should not count as available")
	}
	if a.Available(provider.GoogleGemini) {
		t.Fatal("gemini should be unavailable without a key")
	}
}
