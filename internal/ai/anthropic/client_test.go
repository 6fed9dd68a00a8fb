package anthropic

import "testing"

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		model   string
		wantErr bool
	}{
		{name: "valid", apiKey: "sk-test", model: "claude-sonnet-4-20250514", wantErr: false},
		{name: "missing key", apiKey: "  ", model: "claude-sonnet-4-20250514", wantErr: true},
		{name: "missing model", apiKey: "sk-test", model: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.apiKey, tt.model)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c == nil {
				t.Fatalf("expected client")
			}
		})
	}
}
