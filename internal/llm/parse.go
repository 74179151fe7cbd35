package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// LabelUnknown is the sentinel stored when a model label cannot be mapped
// onto the fixed vocabulary. Nodes are never rejected over a bad label.
const LabelUnknown = "Unknown"

// ElisionMarker replaces the middle of an over-budget summary.
const ElisionMarker = " […] "

var (
	riskVocab   = []string{"Low", "Medium", "High"}
	growthVocab = []string{"Low", "Medium", "High", "Transformative"}
)

// ParseBranches extracts a flat JSON array of strings from model output,
// tolerating markdown fences and surrounding prose.
func ParseBranches(content string) ([]string, error) {
	raw := extractJSON(content, '[', ']')
	if raw == "" {
		return nil, fmt.Errorf("llm: no JSON array in response")
	}

	var branches []string
	if err := json.Unmarshal([]byte(raw), &branches); err != nil {
		return nil, fmt.Errorf("llm: parse branches: %w", err)
	}

	out := branches[:0]
	for _, b := range branches {
		if s := strings.TrimSpace(b); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseAnnotation extracts the risk/growth/emotion object from model output
// and normalizes each label onto its vocabulary.
func ParseAnnotation(content string) (risk, growth, emotion string, err error) {
	raw := extractJSON(content, '{', '}')
	if raw == "" {
		return "", "", "", fmt.Errorf("llm: no JSON object in response")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", "", "", fmt.Errorf("llm: parse annotation: %w", err)
	}

	risk = NormalizeLabel(stringField(fields, "risk"), riskVocab)
	growth = NormalizeLabel(stringField(fields, "growth"), growthVocab)
	emotion = NormalizeEmotion(stringField(fields, "emotion"))
	return risk, growth, emotion, nil
}

// NormalizeLabel maps a model label onto a fixed vocabulary by nearest
// match: exact (case-insensitive) first, then substring containment either
// way. Anything else becomes Unknown — e.g. a risk of "Severe".
func NormalizeLabel(value string, vocab []string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return LabelUnknown
	}
	for _, entry := range vocab {
		if v == strings.ToLower(entry) {
			return entry
		}
	}
	for _, entry := range vocab {
		e := strings.ToLower(entry)
		if strings.Contains(v, e) || strings.Contains(e, v) {
			return entry
		}
	}
	return LabelUnknown
}

// NormalizeEmotion reduces free-form emotion output to a single capitalized
// word, or Unknown when there is nothing usable.
func NormalizeEmotion(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	if len(fields) == 0 {
		return LabelUnknown
	}
	w := strings.ToLower(fields[0])
	return strings.ToUpper(w[:1]) + w[1:]
}

// TruncateSummary applies the storage truncation policy: a summary over
// budget keeps its first and last sentence around the elision marker. It
// runs before any write, so stored and exported text are always identical.
func TruncateSummary(s string, budget int) string {
	s = strings.TrimSpace(s)
	if budget <= 0 || len(s) <= budget {
		return s
	}

	sentences := splitSentences(s)
	if len(sentences) >= 2 {
		short := sentences[0] + ElisionMarker + sentences[len(sentences)-1]
		if len(short) <= budget {
			return short
		}
		s = short
	}

	// A single over-budget sentence gets a hard cut at a rune boundary.
	runes := []rune(s)
	marker := []rune("…")
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget-len(marker)]) + string(marker)
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '\n' {
			continue
		}
		if sentence := strings.TrimSpace(s[start : i+1]); sentence != "" {
			out = append(out, sentence)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// extractJSON returns the outermost open..close span of the content after
// stripping markdown fences, or "" when no span exists.
func extractJSON(content string, open, close byte) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j <= i {
		return ""
	}
	return s[i : j+1]
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
