// Package contextsel chooses which past conversation turns are relevant
// enough to inject into the next LLM call. Relevance comes from a pairwise
// cross-encoder score between the new query and each stored turn, with
// per-candidate translation when languages differ and a deterministic
// fallback to the most recent turn.
package contextsel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reyharighy/cba/ai/core/scorer"
	"github.com/reyharighy/cba/ai/lang"
	"github.com/reyharighy/cba/ai/metrics"
	"github.com/reyharighy/cba/ai/textnorm"
	"github.com/reyharighy/cba/store"
)

// Scorer is the pairwise relevance model the selector consumes.
type Scorer interface {
	Score(ctx context.Context, query, candidate string) (float64, error)
}

// Config represents selector configuration.
type Config struct {
	// Threshold is the probability above which a candidate turn is selected.
	// A strict value (~0.9) keeps injected context rare; a looser one (~0.75)
	// favors conversational continuity.
	Threshold float64
}

// CandidateError records a per-candidate failure during a selection scan.
// Candidate failures never abort the scan; the turn simply contributes
// nothing to the selection.
type CandidateError struct {
	Seq   int32
	Stage string
	Err   error
}

func (e CandidateError) Error() string {
	return fmt.Sprintf("candidate seq %d: %s: %v", e.Seq, e.Stage, e.Err)
}

func (e CandidateError) Unwrap() error {
	return e.Err
}

// Selector scans a turn history and returns the turns to present as chat
// history to the LLM. A scan is stateless: every call runs fresh over the
// given history.
type Selector struct {
	detector   lang.Detector
	translator lang.Translator
	scorer     Scorer
	threshold  float64
}

// NewSelector creates a Selector.
func NewSelector(detector lang.Detector, translator lang.Translator, sc Scorer, cfg *Config) *Selector {
	return &Selector{
		detector:   detector,
		translator: translator,
		scorer:     sc,
		threshold:  cfg.Threshold,
	}
}

// Select returns the subset of turns relevant to query, in chronological
// order. The result is non-empty whenever turns is non-empty: a single-turn
// history short-circuits without scoring, and when nothing clears the
// threshold the most recent turn is returned.
//
// Per-candidate failures are returned alongside the selection for
// observability; only context cancellation aborts the scan.
func (s *Selector) Select(ctx context.Context, query string, turns []*store.Turn) ([]*store.Turn, []CandidateError, error) {
	if len(turns) == 0 {
		return nil, nil, nil
	}
	if len(turns) == 1 {
		return []*store.Turn{turns[0]}, nil, nil
	}

	metrics.SelectionScans.Inc()

	queryLang, err := s.detector.Detect(query)
	if err != nil {
		// The query language being undeterminable disables the cross-lingual
		// branch for the whole scan; candidates are still scored as-is.
		slog.Warn("query language undetected, scoring without translation", "error", err)
	}

	var (
		selected []*store.Turn
		errs     []CandidateError
	)

	for _, turn := range turns {
		if cerr := ctx.Err(); cerr != nil {
			return nil, errs, cerr
		}

		candidate := textnorm.MarkdownToPlainText(turn.Query + " " + turn.Summary)

		candidateLang, derr := s.detector.Detect(candidate)
		if derr != nil {
			errs = append(errs, CandidateError{Seq: turn.Seq, Stage: "detect", Err: derr})
			metrics.CandidatesSkipped.WithLabelValues("detect").Inc()
			continue
		}

		var (
			prob float64
			serr error
		)
		if err != nil || queryLang == candidateLang {
			prob, serr = s.scoreSameLanguage(ctx, query, candidate)
		} else {
			prob, serr = s.scoreCrossLanguage(ctx, query, queryLang, candidate, candidateLang)
		}

		if serr != nil {
			stage := "score"
			if errors.Is(serr, lang.ErrTranslation) {
				stage = "translate"
			}
			errs = append(errs, CandidateError{Seq: turn.Seq, Stage: stage, Err: serr})
			metrics.CandidatesSkipped.WithLabelValues(stage).Inc()
			continue
		}

		metrics.SelectionScore.Observe(prob)
		if prob > s.threshold {
			selected = append(selected, turn)
		}
	}

	if len(selected) > 0 {
		return selected, errs, nil
	}
	return []*store.Turn{turns[len(turns)-1]}, errs, nil
}

// scoreSameLanguage scores a (query, candidate) pair sharing one language.
func (s *Selector) scoreSameLanguage(ctx context.Context, query, candidate string) (float64, error) {
	query = textnorm.RemoveStopwords(query)
	candidate = textnorm.RemoveStopwords(candidate)

	raw, err := s.scorer.Score(ctx, query, candidate)
	if err != nil {
		return 0, err
	}
	return scorer.Sigmoid(raw), nil
}

// scoreCrossLanguage brings the query into the candidate's language before
// scoring. The scorer is not guaranteed to be robust across language pairs,
// so the pair is always presented in the candidate's language.
func (s *Selector) scoreCrossLanguage(ctx context.Context, query string, queryLang lang.Code, candidate string, candidateLang lang.Code) (float64, error) {
	translated, err := s.translator.Translate(ctx, query, queryLang, candidateLang)
	if err != nil {
		return 0, err
	}
	return s.scoreSameLanguage(ctx, translated, candidate)
}
