package recognize

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Source selects which preprocessed image a mode reads
type Source string

const (
	// SourceAdvanced is the full CLAHE + adaptive threshold pipeline output
	SourceAdvanced Source = "advanced"
	// SourceSimple is the fallback global-threshold image
	SourceSimple Source = "simple"
)

// Mode describes one recognition attempt: how Tesseract should segment the
// page, which characters it may emit, and which preprocessed image it reads.
// The set of modes for a request is fixed at configuration time.
type Mode struct {
	Name        string
	PageSegMode gosseract.PageSegMode
	Whitelist   string
	Source      Source
}

// SimpleLineMode is the supplementary pass over the global-threshold image
const SimpleLineMode = "simple_line"

// ParseModes resolves configured mode names into recognition modes,
// preserving order. whitelist is applied to the modes that constrain the
// character set.
func ParseModes(names []string, whitelist string) ([]Mode, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one recognition mode is required")
	}

	modes := make([]Mode, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("duplicate recognition mode: %q", name)
		}
		seen[name] = true

		mode, err := modeByName(name, whitelist)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}

	return modes, nil
}

func modeByName(name, whitelist string) (Mode, error) {
	switch name {
	case "single_line":
		// Treat the image as a single text line, constrained to the
		// allowed character set
		return Mode{Name: name, PageSegMode: gosseract.PSM_SINGLE_LINE, Whitelist: whitelist, Source: SourceAdvanced}, nil
	case "single_word":
		return Mode{Name: name, PageSegMode: gosseract.PSM_SINGLE_WORD, Source: SourceAdvanced}, nil
	case "single_block":
		return Mode{Name: name, PageSegMode: gosseract.PSM_SINGLE_BLOCK, Source: SourceAdvanced}, nil
	case "sparse_text":
		return Mode{Name: name, PageSegMode: gosseract.PSM_SPARSE_TEXT, Source: SourceAdvanced}, nil
	case SimpleLineMode:
		return Mode{Name: name, PageSegMode: gosseract.PSM_SINGLE_LINE, Source: SourceSimple}, nil
	default:
		return Mode{}, fmt.Errorf("unknown recognition mode: %q", name)
	}
}
