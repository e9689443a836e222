// Package provider holds the fixed table of selectable LLM backends.
package provider

// ID is an explicit provider tag. Dispatch happens on this tag, never by
// inspecting model identifier strings.
type ID string

const (
	GoogleGemini ID = "google-gemini"
	Groq         ID = "groq"
	OpenRouter   ID = "openrouter"
)

// Info describes one selectable provider: how it is shown to the user, the
// model called on the wire, where its credential comes from, and which API
// surface it speaks.
type Info struct {
	ID            ID
	Label         string
	Model         string
	CredentialEnv string
	// BaseURL is the OpenAI-compatible endpoint root; empty means the
	// provider uses the Gemini native API instead.
	BaseURL string
}

// The table is fixed: no discovery, no fallback.
var table = []Info{
	{
		ID:            GoogleGemini,
		Label:         "Google Gemini",
		Model:         "gemini-2.5-flash",
		CredentialEnv: "GOOGLE_API_KEY",
	},
	{
		ID:            Groq,
		Label:         "Groq",
		Model:         "llama-3.1-8b-instant",
		CredentialEnv: "GROQ_API_KEY",
		BaseURL:       "https://api.groq.com/openai/v1",
	},
	{
		ID:            OpenRouter,
		Label:         "OpenRouter",
		Model:         "meta-llama/llama-3.1-8b-instruct:free",
		CredentialEnv: "OPENROUTER_API_KEY",
		BaseURL:       "https://openrouter.ai/api/v1",
	},
}

// All returns the providers in selection order.
func All() []Info {
	out := make([]Info, len(table))
	copy(out, table)
	return out
}

// Resolve looks a provider up by ID or human-readable label.
func Resolve(s string) (Info, bool) {
	for _, info := range table {
		if s == string(info.ID) || s == info.Label {
			return info, true
		}
	}
	return Info{}, false
}
