package scoring

import (
	"sort"
	"strings"
)

// IdentifySectors returns the sorted sector tags with at least one keyword
// present in text.
func IdentifySectors(text string, sectors map[string][]string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var out []string
	for sector, keywords := range sectors {
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if kw != "" && strings.Contains(lowered, kw) {
				out = append(out, sector)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// ProfileSectors merges the tags already on p with the sectors detected in
// its description, problem and solution.
func ProfileSectors(p CompanyProfile, sectors map[string][]string) []string {
	detected := IdentifySectors(p.Text(FieldDescription, FieldProblem, FieldSolution), sectors)
	return normalizeSectors(append(append([]string(nil), p.Sectors...), detected...))
}

// SectorFlags reports every configured sector with a present/absent flag.
func SectorFlags(text string, sectors map[string][]string) map[string]bool {
	flags := make(map[string]bool, len(sectors))
	for sector := range sectors {
		flags[sector] = false
	}
	for _, s := range IdentifySectors(text, sectors) {
		flags[s] = true
	}
	return flags
}
