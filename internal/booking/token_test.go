package booking

import "testing"

func TestNewLookupToken(t *testing.T) {
    seen := make(map[string]bool)
    for i := 0; i < 100; i++ {
        tok, err := NewLookupToken()
        if err != nil {
            t.Fatalf("NewLookupToken() error: %v", err)
        }
        if len(tok) != 64 {
            t.Fatalf("token length = %d, want 64", len(tok))
        }
        if seen[tok] {
            t.Fatal("duplicate token generated")
        }
        seen[tok] = true
    }
}
