package recognize

import (
	"testing"

	"github.com/otiai10/gosseract/v2"
)

func TestParseModesOrderPreserved(t *testing.T) {
	names := []string{"single_block", "single_line", "single_word"}

	modes, err := ParseModes(names, "abc123")
	if err != nil {
		t.Fatalf("ParseModes() error = %v", err)
	}
	if len(modes) != 3 {
		t.Fatalf("len(modes) = %d, want 3", len(modes))
	}

	for i, name := range names {
		if modes[i].Name != name {
			t.Errorf("modes[%d].Name = %q, want %q (order must be preserved)", i, modes[i].Name, name)
		}
	}
}

func TestParseModesMapping(t *testing.T) {
	tests := []struct {
		name       string
		wantPSM    gosseract.PageSegMode
		wantSource Source
		wantList   string
	}{
		{name: "single_line", wantPSM: gosseract.PSM_SINGLE_LINE, wantSource: SourceAdvanced, wantList: "xyz"},
		{name: "single_word", wantPSM: gosseract.PSM_SINGLE_WORD, wantSource: SourceAdvanced},
		{name: "single_block", wantPSM: gosseract.PSM_SINGLE_BLOCK, wantSource: SourceAdvanced},
		{name: "sparse_text", wantPSM: gosseract.PSM_SPARSE_TEXT, wantSource: SourceAdvanced},
		{name: "simple_line", wantPSM: gosseract.PSM_SINGLE_LINE, wantSource: SourceSimple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modes, err := ParseModes([]string{tt.name}, "xyz")
			if err != nil {
				t.Fatalf("ParseModes() error = %v", err)
			}

			m := modes[0]
			if m.PageSegMode != tt.wantPSM {
				t.Errorf("PageSegMode = %v, want %v", m.PageSegMode, tt.wantPSM)
			}
			if m.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", m.Source, tt.wantSource)
			}
			if m.Whitelist != tt.wantList {
				t.Errorf("Whitelist = %q, want %q", m.Whitelist, tt.wantList)
			}
		})
	}
}

func TestParseModesErrors(t *testing.T) {
	tests := []struct {
		name  string
		modes []string
	}{
		{name: "empty", modes: nil},
		{name: "unknown mode", modes: []string{"psm_99"}},
		{name: "duplicate", modes: []string{"single_line", "single_line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseModes(tt.modes, ""); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
