package contextsel

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyharighy/cba/ai/lang"
	"github.com/reyharighy/cba/store"
)

type fakeDetector struct {
	fn func(text string) (lang.Code, error)
}

func (d *fakeDetector) Detect(text string) (lang.Code, error) {
	return d.fn(text)
}

type fakeTranslator struct {
	calls []struct{ From, To lang.Code }
	fn    func(text string, from, to lang.Code) (string, error)
}

func (t *fakeTranslator) Translate(_ context.Context, text string, from, to lang.Code) (string, error) {
	t.calls = append(t.calls, struct{ From, To lang.Code }{from, to})
	if t.fn != nil {
		return t.fn(text, from, to)
	}
	return text, nil
}

type fakeScorer struct {
	fn func(query, candidate string) (float64, error)
}

func (s *fakeScorer) Score(_ context.Context, query, candidate string) (float64, error) {
	return s.fn(query, candidate)
}

func englishDetector() *fakeDetector {
	return &fakeDetector{fn: func(string) (lang.Code, error) { return "en", nil }}
}

// logit inverts the sigmoid so tests can pin exact probabilities.
func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func turnHistory(summaries ...string) []*store.Turn {
	turns := make([]*store.Turn, len(summaries))
	for i, s := range summaries {
		turns[i] = &store.Turn{Seq: int32(i + 1), Query: "q", Summary: s}
	}
	return turns
}

func TestSelectEmptyHistory(t *testing.T) {
	sel := NewSelector(englishDetector(), &fakeTranslator{}, &fakeScorer{}, &Config{Threshold: 0.9})

	selected, errs, err := sel.Select(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, selected)
	assert.Empty(t, errs)
}

func TestSelectSingleTurnShortCircuit(t *testing.T) {
	// Scorer and detector must never run: a failing scorer proves it.
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		t.Fatal("scorer called on single-turn history")
		return 0, nil
	}}
	det := &fakeDetector{fn: func(string) (lang.Code, error) {
		t.Fatal("detector called on single-turn history")
		return "", nil
	}}
	sel := NewSelector(det, &fakeTranslator{}, sc, &Config{Threshold: 0.9})

	turn := &store.Turn{
		Seq:     1,
		Query:   "What were total sales in March?",
		Summary: "March sales were $10,000.",
	}
	selected, errs, err := sel.Select(context.Background(), "How about April?", []*store.Turn{turn})
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, selected, 1)
	assert.Same(t, turn, selected[0])
}

func TestSelectThresholdAndOrder(t *testing.T) {
	// Three English turns scoring 0.95, 0.3, 0.82 with threshold 0.75:
	// the first and third are selected, in chronological order.
	turns := turnHistory("first topic", "second topic", "third topic")
	probs := map[string]float64{
		"first":  0.95,
		"second": 0.3,
		"third":  0.82,
	}
	sc := &fakeScorer{fn: func(_, candidate string) (float64, error) {
		for key, p := range probs {
			if strings.Contains(candidate, key) {
				return logit(p), nil
			}
		}
		t.Fatalf("unexpected candidate %q", candidate)
		return 0, nil
	}}
	sel := NewSelector(englishDetector(), &fakeTranslator{}, sc, &Config{Threshold: 0.75})

	selected, errs, err := sel.Select(context.Background(), "query about topics", turns)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, selected, 2)
	assert.Equal(t, int32(1), selected[0].Seq)
	assert.Equal(t, int32(3), selected[1].Seq)
}

func TestSelectFallbackToLastTurn(t *testing.T) {
	turns := turnHistory("alpha", "beta")
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		return logit(0.1), nil
	}}
	sel := NewSelector(englishDetector(), &fakeTranslator{}, sc, &Config{Threshold: 0.9})

	selected, errs, err := sel.Select(context.Background(), "unrelated", turns)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, selected, 1)
	assert.Same(t, turns[1], selected[0])
}

func TestSelectThresholdMonotonicity(t *testing.T) {
	turns := turnHistory("first topic", "second topic", "third topic", "fourth topic")
	sc := &fakeScorer{fn: func(_, candidate string) (float64, error) {
		switch {
		case strings.Contains(candidate, "first"):
			return logit(0.95), nil
		case strings.Contains(candidate, "second"):
			return logit(0.85), nil
		case strings.Contains(candidate, "third"):
			return logit(0.78), nil
		default:
			return logit(0.2), nil
		}
	}}

	selectedAt := func(threshold float64) []int32 {
		sel := NewSelector(englishDetector(), &fakeTranslator{}, sc, &Config{Threshold: threshold})
		selected, _, err := sel.Select(context.Background(), "query", turns)
		require.NoError(t, err)
		seqs := make([]int32, 0, len(selected))
		for _, turn := range selected {
			seqs = append(seqs, turn.Seq)
		}
		return seqs
	}

	assert.Equal(t, []int32{1, 2, 3}, selectedAt(0.75))
	assert.Equal(t, []int32{1, 2}, selectedAt(0.8))
	assert.Equal(t, []int32{1}, selectedAt(0.9))
	// Nothing clears 0.99: fallback, not an empty result.
	assert.Equal(t, []int32{4}, selectedAt(0.99))
}

func TestSelectCrossLanguageTranslatesOncePerMismatch(t *testing.T) {
	// Query in English; second turn in Indonesian. Translation runs exactly
	// once, with (from=query language, to=candidate language).
	det := &fakeDetector{fn: func(text string) (lang.Code, error) {
		if strings.Contains(text, "penjualan") {
			return "id", nil
		}
		return "en", nil
	}}
	tr := &fakeTranslator{fn: func(string, lang.Code, lang.Code) (string, error) {
		return "total penjualan", nil
	}}
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		return logit(0.95), nil
	}}
	sel := NewSelector(det, tr, sc, &Config{Threshold: 0.75})

	turns := []*store.Turn{
		{Seq: 1, Query: "total sales", Summary: "sales were high"},
		{Seq: 2, Query: "berapa total penjualan", Summary: "penjualan naik"},
	}
	selected, errs, err := sel.Select(context.Background(), "what were total sales", turns)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, selected, 2)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, lang.Code("en"), tr.calls[0].From)
	assert.Equal(t, lang.Code("id"), tr.calls[0].To)
}

func TestSelectTranslationFailureSkipsCandidate(t *testing.T) {
	det := &fakeDetector{fn: func(text string) (lang.Code, error) {
		if strings.Contains(text, "penjualan") {
			return "id", nil
		}
		return "en", nil
	}}
	tr := &fakeTranslator{fn: func(string, lang.Code, lang.Code) (string, error) {
		return "", lang.ErrTranslation
	}}
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		return logit(0.95), nil
	}}
	sel := NewSelector(det, tr, sc, &Config{Threshold: 0.75})

	turns := []*store.Turn{
		{Seq: 1, Query: "total sales", Summary: "sales were high"},
		{Seq: 2, Query: "berapa total penjualan", Summary: "penjualan naik"},
	}
	selected, errs, err := sel.Select(context.Background(), "what were total sales", turns)
	require.NoError(t, err)

	require.Len(t, selected, 1)
	assert.Equal(t, int32(1), selected[0].Seq)

	require.Len(t, errs, 1)
	assert.Equal(t, int32(2), errs[0].Seq)
	assert.Equal(t, "translate", errs[0].Stage)
	assert.ErrorIs(t, errs[0], lang.ErrTranslation)
}

func TestSelectScoringFailureIsBelowThreshold(t *testing.T) {
	turns := turnHistory("alpha", "beta", "gamma")
	sc := &fakeScorer{fn: func(_, candidate string) (float64, error) {
		if strings.Contains(candidate, "beta") {
			return 0, errors.New("model unavailable")
		}
		return logit(0.95), nil
	}}
	sel := NewSelector(englishDetector(), &fakeTranslator{}, sc, &Config{Threshold: 0.75})

	selected, errs, err := sel.Select(context.Background(), "query", turns)
	require.NoError(t, err)

	require.Len(t, selected, 2)
	assert.Equal(t, int32(1), selected[0].Seq)
	assert.Equal(t, int32(3), selected[1].Seq)

	require.Len(t, errs, 1)
	assert.Equal(t, "score", errs[0].Stage)
}

func TestSelectDetectionFailureSkipsCandidate(t *testing.T) {
	det := &fakeDetector{fn: func(text string) (lang.Code, error) {
		if strings.Contains(text, "12345") {
			return "", lang.ErrDetection
		}
		return "en", nil
	}}
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		return logit(0.95), nil
	}}
	sel := NewSelector(det, &fakeTranslator{}, sc, &Config{Threshold: 0.75})

	turns := []*store.Turn{
		{Seq: 1, Query: "12345", Summary: "67890"},
		{Seq: 2, Query: "real question", Summary: "real summary"},
	}
	selected, errs, err := sel.Select(context.Background(), "query text", turns)
	require.NoError(t, err)

	require.Len(t, selected, 1)
	assert.Equal(t, int32(2), selected[0].Seq)

	require.Len(t, errs, 1)
	assert.Equal(t, "detect", errs[0].Stage)
}

func TestSelectContextCancelled(t *testing.T) {
	sc := &fakeScorer{fn: func(string, string) (float64, error) {
		return logit(0.95), nil
	}}
	sel := NewSelector(englishDetector(), &fakeTranslator{}, sc, &Config{Threshold: 0.75})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := sel.Select(ctx, "query", turnHistory("alpha", "beta"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatContext(t *testing.T) {
	turns := []*store.Turn{
		{Seq: 1, Query: "What were total sales in March?", Summary: "March sales were $10,000."},
		{Seq: 3, Query: "And April?", Summary: "April sales were $12,000."},
	}

	got := FormatContext(turns)
	assert.True(t, strings.HasPrefix(got, "You have relevant contexts to answer the current question:\n"))
	assert.Contains(t, got, "Question No. 1: What were total sales in March?")
	assert.Contains(t, got, "Response Context No. 1: March sales were $10,000.")
	assert.Contains(t, got, "Question No. 2: And April?")
	assert.Contains(t, got, "Response Context No. 2: April sales were $12,000.")

	assert.Equal(t, "", FormatContext(nil))
}
