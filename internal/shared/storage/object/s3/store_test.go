package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "tender-001/file.pdf", want: "tender-001/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "tender-001/file.pdf", want: "root/tender-001/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "tender-001/file.pdf", want: "root/tender-001/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/tender-001/file.pdf", want: "root/tender-001/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "tender-001/reports/report_en.md", want: "root/sub/tender-001/reports/report_en.md"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
