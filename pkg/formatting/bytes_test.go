package formatting_test

import (
	"testing"

	"github.com/pyqvault/pyqvault/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"1KB", 1024, false},
		{"512MB", 512 << 20, false},
		{"2GB", 2 << 30, false},
		{"1TB", 1 << 40, false},
		{"1.5KB", 1536, false},
		{"2 GB", 2 << 30, false},
		{" 10 mb ", 10 << 20, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-1KB", 0, true},
		{"10XB", 0, true},
	}

	for _, tc := range tests {
		got, err := formatting.ParseBytes(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBytes(%q) = %d, want error", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBytes(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1KB"},
		{1536, "1.5KB"},
		{512 << 20, "512MB"},
		{2 << 30, "2GB"},
		{1 << 40, "1TB"},
	}

	for _, tc := range tests {
		if got := formatting.FormatBytes(tc.input); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, size := range []string{"1KB", "512MB", "2GB"} {
		parsed, err := formatting.ParseBytes(size)
		if err != nil {
			t.Fatalf("ParseBytes(%q): %v", size, err)
		}
		if got := formatting.FormatBytes(parsed); got != size {
			t.Errorf("round trip %q = %q", size, got)
		}
	}
}
