package match

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/pkg/types"
)

// Config tunes the matcher. Zero values fall back to the defaults below;
// thresholds are deliberately tunable, not contracts.
type Config struct {
	// ScoreFloor is the minimum score a candidate span must reach.
	ScoreFloor float64
	// StepFraction sets the sliding-window step for the token and fuzzy
	// stages as a fraction of the field value's token/rune length.
	StepFraction float64
	// MaxCandidates bounds how many spans a single stage may return.
	MaxCandidates int
}

// Defaults for Config.
const (
	DefaultScoreFloor    = 0.6
	DefaultStepFraction  = 0.5
	DefaultMaxCandidates = 16

	// fuzzySizeTolerance widens fuzzy windows around the value length.
	fuzzySizeTolerance = 0.3
)

func (c Config) withDefaults() Config {
	if c.ScoreFloor <= 0 {
		c.ScoreFloor = DefaultScoreFloor
	}
	if c.StepFraction <= 0 {
		c.StepFraction = DefaultStepFraction
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	return c
}

// Matcher finds evidence spans for field values in one document. It is
// read-only after construction and safe for concurrent Match calls.
type Matcher struct {
	doc        *document.Text
	cfg        Config
	index      *Index
	runeStarts []int
	levParams  *levenshtein.Params
}

// NewMatcher builds the token posting index for the document once so every
// field match reuses it.
func NewMatcher(doc *document.Text, cfg Config) *Matcher {
	normText := doc.Normalized().Text()

	runeStarts := make([]int, 0, len(normText)+1)
	for i := range normText {
		runeStarts = append(runeStarts, i)
	}
	runeStarts = append(runeStarts, len(normText))

	return &Matcher{
		doc:        doc,
		cfg:        cfg.withDefaults(),
		index:      NewIndex(normText),
		runeStarts: runeStarts,
		levParams:  levenshtein.NewParams(),
	}
}

// Match returns candidate evidence spans for one field value, best score
// first and earlier start first among ties. Offsets address the document's
// raw text; pages are left for the linker to fill in. Stages run in priority
// order and stop at the first one that clears the score floor. An empty
// value yields no spans and no error.
func (m *Matcher) Match(value string) []types.EvidenceSpan {
	normValue := document.NormalizeValue(value)
	if normValue == "" {
		return nil
	}

	if spans := m.exactStage(normValue); len(spans) > 0 {
		return spans
	}
	if spans := m.tokenStage(normValue); len(spans) > 0 {
		return spans
	}
	return m.fuzzyStage(normValue)
}

// exactStage finds all non-overlapping whole-word occurrences of the
// normalized value. Occurrences butting into a longer word ("corp" inside
// "corporation") are left for the token stage to score below 1.0.
func (m *Matcher) exactStage(normValue string) []types.EvidenceSpan {
	norm := m.doc.Normalized()
	text := norm.Text()

	var spans []types.EvidenceSpan
	from := 0
	for from <= len(text)-len(normValue) {
		idx := strings.Index(text[from:], normValue)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(normValue)
		if !wordBounded(text, start, end) {
			from = start + 1
			continue
		}
		rs, re := norm.RawSpan(start, end)
		spans = append(spans, types.EvidenceSpan{Start: rs, End: re, Score: 1.0})
		from = end
		if len(spans) >= m.cfg.MaxCandidates {
			break
		}
	}
	return spans
}

// wordBounded reports whether text[start:end] does not cut a word in half on
// either side.
func wordBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tokenStage scores sliding token windows by Jaccard similarity of token
// sets. The posting index prunes windows that share no token with the value.
func (m *Matcher) tokenStage(normValue string) []types.EvidenceSpan {
	valueTokens := Tokenize(normValue)
	if len(valueTokens) == 0 {
		return nil
	}
	docTokens := m.index.Tokens()
	window := len(valueTokens)
	if window > len(docTokens) {
		window = len(docTokens)
	}
	if window == 0 {
		return nil
	}

	valueSet := tokenSet(valueTokens)
	candidates := m.index.CandidatePositions(valueTokens)
	if candidates.IsEmpty() {
		return nil
	}
	positions := candidates.ToArray()

	step := stepSize(len(valueTokens), m.cfg.StepFraction)
	maxIters := len(docTokens)/step + 1

	var spans []types.EvidenceSpan
	norm := m.doc.Normalized()
	pi := 0
	for start, iters := 0, 0; start+window <= len(docTokens) && iters < maxIters; start, iters = start+step, iters+1 {
		// Advance to the first candidate position inside this window.
		for pi < len(positions) && int(positions[pi]) < start {
			pi++
		}
		if pi >= len(positions) || int(positions[pi]) >= start+window {
			continue
		}

		windowSet := tokenSet(docTokens[start : start+window])
		score := jaccard(valueSet, windowSet)
		if score < m.cfg.ScoreFloor {
			continue
		}
		rs, re := norm.RawSpan(docTokens[start].Start, docTokens[start+window-1].End)
		spans = append(spans, types.EvidenceSpan{Start: rs, End: re, Score: score})
	}

	return m.rank(spans)
}

// fuzzyStage scores character windows by normalized edit-distance
// similarity, trying window sizes within the configured tolerance of the
// value length.
func (m *Matcher) fuzzyStage(normValue string) []types.EvidenceSpan {
	valueLen := len([]rune(normValue))
	textRunes := len(m.runeStarts) - 1
	if valueLen == 0 || textRunes == 0 {
		return nil
	}

	sizes := windowSizes(valueLen, textRunes)
	step := stepSize(valueLen, m.cfg.StepFraction)
	// Hard cap on total windows so pathological inputs stay bounded.
	maxIters := (textRunes/step + 1) * len(sizes)

	var spans []types.EvidenceSpan
	norm := m.doc.Normalized()
	text := norm.Text()
	iters := 0
	for _, size := range sizes {
		for start := 0; start+size <= textRunes; start += step {
			if iters >= maxIters {
				break
			}
			iters++
			windowText := text[m.runeStarts[start]:m.runeStarts[start+size]]
			score := levenshtein.Similarity(normValue, windowText, m.levParams)
			if score < m.cfg.ScoreFloor {
				continue
			}
			rs, re := norm.RawSpan(m.runeStarts[start], m.runeStarts[start+size])
			spans = append(spans, types.EvidenceSpan{Start: rs, End: re, Score: score})
		}
	}

	return m.rank(spans)
}

// rank orders spans by score descending then start ascending and truncates
// to the candidate cap.
func (m *Matcher) rank(spans []types.EvidenceSpan) []types.EvidenceSpan {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Score != spans[j].Score {
			return spans[i].Score > spans[j].Score
		}
		return spans[i].Start < spans[j].Start
	})
	if len(spans) > m.cfg.MaxCandidates {
		spans = spans[:m.cfg.MaxCandidates]
	}
	return spans
}

// stepSize derives the sliding-window step from the value length, never
// below one.
func stepSize(length int, fraction float64) int {
	step := int(math.Round(float64(length) * fraction))
	if step < 1 {
		step = 1
	}
	return step
}

// windowSizes returns the distinct fuzzy window sizes for a value length,
// clamped to the text length.
func windowSizes(valueLen, textLen int) []int {
	low := int(math.Round(float64(valueLen) * (1 - fuzzySizeTolerance)))
	high := int(math.Round(float64(valueLen) * (1 + fuzzySizeTolerance)))
	if low < 1 {
		low = 1
	}

	var sizes []int
	for _, s := range []int{low, valueLen, high} {
		if s > textLen {
			s = textLen
		}
		dup := false
		for _, seen := range sizes {
			if seen == s {
				dup = true
				break
			}
		}
		if !dup {
			sizes = append(sizes, s)
		}
	}
	return sizes
}
