/**
 * Tesseract Recognizer Adapter
 *
 * Invokes Tesseract via gosseract, one synchronous call per recognition
 * mode. The adapter has no retry logic of its own; retries across modes are
 * an emergent property of the multi-strategy voting design.
 */

package recognize

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract performs OCR using the system Tesseract installation
type Tesseract struct {
	lang string
}

// NewTesseract creates a Tesseract adapter for the given language
// (e.g., "eng"; multiple languages as "eng+fra")
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{lang: lang}
}

// Recognize runs one OCR attempt over PNG-encoded image data with the given
// mode and returns the raw engine output, possibly empty.
//
// gosseract calls cannot be interrupted, so cancellation abandons the
// in-flight call: the goroutine finishes on its own and releases the client.
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte, mode Mode) (string, error) {
	type outcome struct {
		text string
		err  error
	}

	done := make(chan outcome, 1)

	go func() {
		text, err := t.recognize(imageData, mode)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("recognition aborted for mode %s: %w", mode.Name, ctx.Err())
	case o := <-done:
		return o.text, o.err
	}
}

func (t *Tesseract) recognize(imageData []byte, mode Mode) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	client.Trim = true
	client.DisableOutput()

	if err := client.SetLanguage(t.lang); err != nil {
		return "", fmt.Errorf("failed to set language %q: %w", t.lang, err)
	}

	if err := client.SetPageSegMode(mode.PageSegMode); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if mode.Whitelist != "" {
		if err := client.SetWhitelist(mode.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set character whitelist: %w", err)
		}
	}

	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}

	return text, nil
}
