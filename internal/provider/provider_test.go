package provider

import "testing"

func TestResolveByIDAndLabel(t *testing.T) {
	cases := []struct {
		in      string
		want    ID
		model   string
		credEnv string
	}{
		{"google-gemini", GoogleGemini, "gemini-2.5-flash", "GOOGLE_API_KEY"},
		{"Google Gemini", GoogleGemini, "gemini-2.5-flash", "GOOGLE_API_KEY"},
		{"groq", Groq, "llama-3.1-8b-instant", "GROQ_API_KEY"},
		{"Groq", Groq, "llama-3.1-8b-instant", "GROQ_API_KEY"},
		{"openrouter", OpenRouter, "meta-llama/llama-3.1-8b-instruct:free", "OPENROUTER_API_KEY"},
		{"OpenRouter", OpenRouter, "meta-llama/llama-3.1-8b-instruct:free", "OPENROUTER_API_KEY"},
	}
	for _, tc := range cases {
		info, ok := Resolve(tc.in)
		if !ok {
			t.Fatalf("Resolve(%q) failed", tc.in)
		}
		if info.ID != tc.want {
			t.Fatalf("Resolve(%q) id = %q, want %q", tc.in, info.ID, tc.want)
		}
		if info.Model != tc.model {
			t.Fatalf("Resolve(%q) model = %q, want %q", tc.in, info.Model, tc.model)
		}
		if info.CredentialEnv != tc.credEnv {
			t.Fatalf("Resolve(%q) credential env = %q, want %q", tc.in, info.CredentialEnv, tc.credEnv)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, ok := Resolve("gpt-4"); ok {
		t.Fatal("expected unknown provider to fail resolution")
	}
	if _, ok := Resolve(""); ok {
		t.Fatal("expected empty provider to fail resolution")
	}
}

func TestAllCoversEveryProviderOnce(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(all))
	}
	seen := map[ID]bool{}
	for _, info := range all {
		if seen[info.ID] {
			t.Fatalf("duplicate provider %q", info.ID)
		}
		seen[info.ID] = true
		if info.Label == "" || info.Model == "" || info.CredentialEnv == "" {
			t.Fatalf("incomplete provider entry: %+v", info)
		}
	}
	// Only Gemini speaks its native API; the others are OpenAI-compatible.
	for _, info := range all {
		if (info.ID == GoogleGemini) != (info.BaseURL == "") {
			t.Fatalf("unexpected base URL wiring for %q", info.ID)
		}
	}
}
