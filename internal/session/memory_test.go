package session

import "testing"

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("expected miss for unknown id, got ok=%v err=%v", ok, err)
	}

	sess := New()
	sess.UserPrompt = "summarize a report"
	sess.EnhancedPrompt = "Hello friend, here is a better prompt for you: ..."
	if err := store.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Get(sess.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.UserPrompt != sess.UserPrompt || got.EnhancedPrompt != sess.EnhancedPrompt {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(sess.ID); ok {
		t.Fatal("expected session gone after delete")
	}
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	store := NewMemoryStore()
	sess := New()
	sess.EnhancedPrompt = "first"
	if err := store.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	sess.EnhancedPrompt = "second"
	if err := store.Save(sess); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, _, _ := store.Get(sess.ID)
	if got.EnhancedPrompt != "second" {
		t.Fatalf("expected overwrite, got %q", got.EnhancedPrompt)
	}
}
