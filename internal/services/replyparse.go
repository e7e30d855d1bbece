package services

import (
	"strings"
)

// Reply parsing for the semi-structured text the generation service
// returns. Each recognized marker is captured independently of the
// surrounding lines; a missing marker degrades to an empty field, never a
// parse failure.

// ParsedIdea is one idea/keywords/rationale triple extracted from a
// generation or expansion reply.
type ParsedIdea struct {
	Title     string
	Keywords  []string
	Rationale string
}

const (
	markerStrategy  = "STRATEGY:"
	markerIdea      = "IDEA:"
	markerKeywords  = "KEYWORDS:"
	markerRationale = "RATIONALE:"
	markerSuggest   = "SUGGESTION:"
	markerKeyword   = "KEYWORD:"
)

// markerValue returns the content after a marker prefix, matched
// case-insensitively after trimming list bullets.
func markerValue(line, marker string) (string, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*0123456789. \t")
	if len(line) < len(marker) {
		return "", false
	}
	if !strings.EqualFold(line[:len(marker)], marker) {
		return "", false
	}
	return strings.TrimSpace(line[len(marker):]), true
}

// ParseIdeaReply extracts a strategy note and idea records. An IDEA line
// begins a record; KEYWORDS and RATIONALE lines attach to the most recent
// record wherever they appear.
func ParseIdeaReply(text string) (string, []ParsedIdea) {
	var (
		strategy string
		ideas    []ParsedIdea
	)
	for _, line := range strings.Split(text, "\n") {
		if v, ok := markerValue(line, markerStrategy); ok {
			if strategy == "" {
				strategy = v
			}
			continue
		}
		if v, ok := markerValue(line, markerIdea); ok {
			ideas = append(ideas, ParsedIdea{Title: v})
			continue
		}
		if len(ideas) == 0 {
			continue
		}
		current := &ideas[len(ideas)-1]
		if v, ok := markerValue(line, markerKeywords); ok {
			current.Keywords = splitCSV(v)
			continue
		}
		if v, ok := markerValue(line, markerRationale); ok {
			current.Rationale = v
			continue
		}
	}

	accepted := ideas[:0]
	for _, idea := range ideas {
		if !titleLengthOK(idea.Title, 5) {
			continue
		}
		accepted = append(accepted, idea)
	}
	return strategy, accepted
}

// ParsedSuggestion is one optimized-title candidate.
type ParsedSuggestion struct {
	Title     string
	Rationale string
}

// ParseTitleReply extracts SUGGESTION lines. The rationale follows the
// title on the same line after a fixed "|" delimiter; a missing rationale
// yields an empty field.
func ParseTitleReply(text string) []ParsedSuggestion {
	var suggestions []ParsedSuggestion
	for _, line := range strings.Split(text, "\n") {
		v, ok := markerValue(line, markerSuggest)
		if !ok {
			continue
		}
		title := v
		rationale := ""
		if idx := strings.Index(v, "|"); idx >= 0 {
			title = strings.TrimSpace(v[:idx])
			rest := strings.TrimSpace(v[idx+1:])
			if r, ok := markerValue(rest, markerRationale); ok {
				rationale = r
			} else {
				rationale = rest
			}
		}
		if !titleLengthOK(title, 10) {
			continue
		}
		suggestions = append(suggestions, ParsedSuggestion{Title: title, Rationale: rationale})
	}
	return suggestions
}

// ParsedScript is the three delimited blocks of a script reply.
type ParsedScript struct {
	Script          string
	ProductionNotes string
	Resources       []string
}

const (
	blockScript    = "=== SCRIPT ==="
	blockNotes     = "=== PRODUCTION NOTES ==="
	blockResources = "=== RESOURCES ==="
)

// ParseScriptReply splits the reply at its block delimiters. Blocks may
// appear in any order; absent blocks come back empty.
func ParseScriptReply(text string) ParsedScript {
	var (
		out     ParsedScript
		section string
		script  strings.Builder
		notes   strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.ToUpper(strings.TrimSpace(line))
		switch trimmed {
		case blockScript:
			section = "script"
			continue
		case blockNotes:
			section = "notes"
			continue
		case blockResources:
			section = "resources"
			continue
		}

		switch section {
		case "script":
			script.WriteString(line)
			script.WriteString("\n")
		case "notes":
			notes.WriteString(line)
			notes.WriteString("\n")
		case "resources":
			if v := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-* \t")); v != "" {
				out.Resources = append(out.Resources, v)
			}
		}
	}
	out.Script = strings.TrimSpace(script.String())
	out.ProductionNotes = strings.TrimSpace(notes.String())
	return out
}

// ParseKeywordReply extracts KEYWORD lines from a research reply.
func ParseKeywordReply(text string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		v, ok := markerValue(line, markerKeyword)
		if !ok {
			// A KEYWORDS line with a comma list is accepted too.
			if list, listOK := markerValue(line, markerKeywords); listOK {
				for _, kw := range splitCSV(list) {
					if !seen[strings.ToLower(kw)] {
						seen[strings.ToLower(kw)] = true
						keywords = append(keywords, kw)
					}
				}
			}
			continue
		}
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		keywords = append(keywords, v)
	}
	return keywords
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// titleLengthOK enforces the exclusive (min, 200) rune bound parsed
// records must satisfy.
func titleLengthOK(title string, min int) bool {
	n := len([]rune(strings.TrimSpace(title)))
	return n > min && n < 200
}
