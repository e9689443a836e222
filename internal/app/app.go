// Package app implements the two-stage prompt pipeline: enhance an idea into
// a stronger prompt, then generate a final answer from the enhanced prompt.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"promptforge/internal/history"
	"promptforge/internal/provider"
	"promptforge/internal/session"
	"promptforge/pkg/ai"
)

// enhanceSystemPrompt is the fixed instruction for the enhancement stage.
const enhanceSystemPrompt = `As an expert prompt engineering assistant, your task is to refine a user's simple prompt into a concise yet powerful one.
Your goal is to be brief but effective. Enhance the user's request by adding only the most essential context, a clear persona, and a specific desired output format.
Avoid verbosity and filler words. The final prompt should be direct and to the point.

Your response should begin with a friendly greeting: "Hello friend, here is a better prompt for you:" `

// enhanceTemperature is fixed; only the generation temperature is
// user-controlled.
const enhanceTemperature = 0.7

// DefaultTemperature is the generation default when the user has not moved
// the slider.
const DefaultTemperature = 0.7

// Config wires credentials and collaborators into the core application.
type Config struct {
	// Credentials maps provider to API key; empty means the provider is
	// unusable and calls fail with MissingCredential before any I/O.
	Credentials map[provider.ID]string
	// Completers overrides the per-provider completion clients, used in
	// tests. When nil, real clients are built for providers that have a
	// credential.
	Completers map[provider.ID]ai.Completer
	// History is optional; nil disables the audit trail.
	History history.Store
}

// App holds the stage logic. Stages are pure with respect to session state:
// they take a session value and return the updated one.
type App struct {
	credentials map[provider.ID]string
	completers  map[provider.ID]ai.Completer
	history     history.Store
}

// New constructs the application and its completion clients.
func New(cfg Config) (*App, error) {
	credentials := make(map[provider.ID]string, len(cfg.Credentials))
	for id, key := range cfg.Credentials {
		credentials[id] = strings.TrimSpace(key)
	}
	completers := make(map[provider.ID]ai.Completer)
	for _, info := range provider.All() {
		if c, ok := cfg.Completers[info.ID]; ok {
			completers[info.ID] = c
			continue
		}
		key := credentials[info.ID]
		if key == "" {
			continue
		}
		if info.BaseURL == "" {
			client, err := ai.NewGeminiClient(key)
			if err != nil {
				return nil, fmt.Errorf("init %s client: %w", info.Label, err)
			}
			completers[info.ID] = client
			continue
		}
		completers[info.ID] = ai.NewOpenAICompatClient(info.BaseURL, key)
	}
	return &App{
		credentials: credentials,
		completers:  completers,
		history:     cfg.History,
	}, nil
}

// Available reports whether the provider's credential is present.
func (a *App) Available(id provider.ID) bool {
	return a.credentials[id] != ""
}

// Enhance rewrites the user's idea into a stronger prompt and stores it on
// the session. On failure the session is returned unchanged, so a previous
// enhanced prompt survives a failed attempt.
func (a *App) Enhance(ctx context.Context, sess session.Session, providerKey, idea string) (session.Session, error) {
	if strings.TrimSpace(idea) == "" {
		return sess, ErrEmptyPrompt
	}
	info, ok := provider.Resolve(providerKey)
	if !ok {
		return sess, fmt.Errorf("%w: %q", ErrUnknownProvider, providerKey)
	}
	completer, err := a.completerFor(info)
	if err != nil {
		return sess, err
	}

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: enhanceSystemPrompt},
		{Role: ai.RoleUser, Content: idea},
	}
	text, err := completer.Complete(ctx, ai.CompletionRequest{
		Model:       info.Model,
		Messages:    messages,
		Temperature: enhanceTemperature,
	})
	a.record(ctx, history.Record{
		SessionID:   sess.ID,
		Stage:       history.StageEnhance,
		Provider:    string(info.ID),
		Model:       info.Model,
		Temperature: enhanceTemperature,
		Messages:    messages,
		Response:    text,
		ErrorDetail: errDetail(err),
	})
	if err != nil {
		return sess, &CompletionError{Provider: info.Label, Err: err}
	}

	sess.UserPrompt = idea
	sess.EnhancedPrompt = text
	return sess, nil
}

// Generate sends the enhanced prompt as a single user message. It never
// mutates the session, so it can be repeated with different providers and
// temperatures.
func (a *App) Generate(ctx context.Context, sess session.Session, providerKey string, temperature float64) (string, error) {
	if strings.TrimSpace(sess.EnhancedPrompt) == "" {
		return "", ErrNoEnhancedPrompt
	}
	if temperature < 0.0 || temperature > 1.0 {
		return "", fmt.Errorf("%w: got %v", ErrInvalidTemperature, temperature)
	}
	info, ok := provider.Resolve(providerKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerKey)
	}
	completer, err := a.completerFor(info)
	if err != nil {
		return "", err
	}

	messages := []ai.Message{{Role: ai.RoleUser, Content: sess.EnhancedPrompt}}
	text, err := completer.Complete(ctx, ai.CompletionRequest{
		Model:       info.Model,
		Messages:    messages,
		Temperature: temperature,
	})
	a.record(ctx, history.Record{
		SessionID:   sess.ID,
		Stage:       history.StageGenerate,
		Provider:    string(info.ID),
		Model:       info.Model,
		Temperature: temperature,
		Messages:    messages,
		Response:    text,
		ErrorDetail: errDetail(err),
	})
	if err != nil {
		return "", &CompletionError{Provider: info.Label, Err: err}
	}
	return text, nil
}

// Reset returns the session to its initial state. No network effect.
func (a *App) Reset(sess session.Session) session.Session {
	sess.UserPrompt = ""
	sess.EnhancedPrompt = ""
	return sess
}

// History returns recent completion records for a session. A nil history
// store yields an empty list.
func (a *App) History(sessionID string, limit int) ([]history.Record, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListBySession(sessionID, limit)
}

// completerFor enforces the credential gate: no client is consulted for a
// provider whose key is absent.
func (a *App) completerFor(info provider.Info) (ai.Completer, error) {
	if a.credentials[info.ID] == "" {
		return nil, &MissingCredentialError{Provider: info.Label, EnvVar: info.CredentialEnv}
	}
	completer, ok := a.completers[info.ID]
	if !ok {
		return nil, &MissingCredentialError{Provider: info.Label, EnvVar: info.CredentialEnv}
	}
	return completer, nil
}

func (a *App) record(ctx context.Context, rec history.Record) {
	if a.history == nil {
		return
	}
	if err := a.history.Append(rec); err != nil {
		slog.ErrorContext(ctx, "record completion history", "stage", rec.Stage, "err", err)
	}
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
