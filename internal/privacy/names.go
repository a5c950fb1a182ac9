package privacy

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseNames splits a comma separated name list, dropping blanks and duplicates.
func ParseNames(list string) []string {
	return normalizeNames(strings.Split(list, ","))
}

func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// customNameCategory compiles a literal alternation of names, longest first.
func customNameCategory(names []string) Category {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	quoted := make([]string, len(sorted))
	for i, name := range sorted {
		quoted[i] = regexp.QuoteMeta(name)
	}

	return Category{
		ID:      CategoryCustomName,
		Name:    "姓名",
		Pattern: regexp.MustCompile(strings.Join(quoted, "|")),
		Mask:    stars,
		accept:  nameBounded,
	}
}

// nameBounded applies word boundaries only at edges that are word runes.
// Han and other unsegmented scripts have no delimiters, so their edges always pass.
func nameBounded(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	if isWordRune(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) {
			return false
		}
	}

	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWordRune(last) && end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	if unicode.IsDigit(r) || r == '_' {
		return true
	}
	if !unicode.IsLetter(r) {
		return false
	}
	return !unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
