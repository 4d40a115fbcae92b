// Package textnorm prepares text for relevance scoring. Stored responses and
// summaries carry markdown; the cross-encoder scores plain prose, so markup
// and filler tokens are stripped first.
package textnorm

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

var (
	// Runs of anything outside the kept character classes collapse to a
	// single space. Basic punctuation survives so sentence structure stays
	// readable to the scorer.
	nonKept = regexp.MustCompile(`[^A-Za-z0-9()?.,:]+`)

	multiSpace = regexp.MustCompile(` {2,}`)
)

// MarkdownToPlainText renders markdown and strips the resulting markup,
// leaving whitespace-normalized prose. Plain input passes through with only
// whitespace and symbol normalization, so the function is idempotent.
func MarkdownToPlainText(text string) string {
	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(text), &rendered); err != nil {
		// Rendering markdown to HTML is total over text input; fall back to
		// normalizing the raw text if it ever fails.
		rendered.Reset()
		rendered.WriteString(text)
	}

	plain := extractText(rendered.String())
	plain = nonKept.ReplaceAllString(plain, " ")
	plain = multiSpace.ReplaceAllString(plain, " ")

	return strings.TrimSpace(plain)
}

// extractText walks an HTML fragment and concatenates its text nodes.
// Rendered markdown separates blocks with newlines, so block boundaries
// already carry whitespace; inline tags must not introduce any, or words
// would split away from their punctuation.
func extractText(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tokenizer.Text())
		}
	}
}

// RemoveStopwords drops question marks and common filler tokens before
// scoring, keeping the informative terms of both sides of the pair.
// Matching is case-insensitive; surviving tokens keep their original case.
func RemoveStopwords(text string) string {
	text = strings.ReplaceAll(text, "?", "")

	var kept []string
	for _, token := range strings.Split(text, " ") {
		if token == "" {
			continue
		}
		if _, ok := stopwords[strings.ToLower(token)]; ok {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(kept, " ")
}
