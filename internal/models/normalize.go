package models

import "strings"

// umlautReplacer folds the transliterations that appear in the source data,
// so "Jürgen" and "Juergen" produce the same key.
var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
)

// nameAliases maps known alternate spellings onto the canonical name.
var nameAliases = map[string]string{
	"thommy grueneberg": "thomas grueneberg",
}

// NormalizeName canonicalizes a player name for matching and joining:
// trimmed, whitespace collapsed, case folded, umlauts transliterated,
// known aliases resolved.
func NormalizeName(name string) string {
	key := strings.ToLower(umlautReplacer.Replace(strings.TrimSpace(name)))
	key = strings.Join(strings.Fields(key), " ")
	if canonical, ok := nameAliases[key]; ok {
		return canonical
	}
	return key
}

// SplitPlayers parses a comma separated player list, dropping empties.
func SplitPlayers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
