package tavily

import "testing"

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	c, err := NewClient("tvly-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatalf("expected client")
	}
}
