// Package lang provides language identification and translation for the
// cross-lingual context selection path.
package lang

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Code is a lowercase ISO 639-1 language code, e.g. "en", "id".
type Code string

// ErrDetection marks text whose language could not be determined, such as
// empty or purely non-linguistic input. Callers in the selection scan skip
// the candidate and continue.
var ErrDetection = errors.New("language detection failed")

// Detector identifies the language of a piece of text.
// Detection is deterministic for a given text.
type Detector interface {
	Detect(text string) (Code, error)
}

type linguaDetector struct {
	detector lingua.LanguageDetector
}

var (
	buildOnce sync.Once
	shared    lingua.LanguageDetector
)

// NewDetector returns a Detector backed by an offline statistical model.
// The underlying model is built once per process: it loads language profiles
// and is expensive to construct.
func NewDetector() Detector {
	buildOnce.Do(func() {
		shared = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return &linguaDetector{detector: shared}
}

func (d *linguaDetector) Detect(text string) (Code, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrDetection)
	}

	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", fmt.Errorf("%w: undeterminable text", ErrDetection)
	}

	return Code(strings.ToLower(language.IsoCode639_1().String())), nil
}
