package dealflow

import (
	"regexp"
	"strings"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// TeamInfo is what an email says about the founding team.
type TeamInfo struct {
	Founders          []string `json:"founders"`
	Background        []string `json:"background"`
	PreviousCompanies []string `json:"previous_companies"`
}

// Size is the number of founders named in the email.
func (t TeamInfo) Size() int {
	return len(t.Founders)
}

const personName = `([A-Z][a-z]+(?: [A-Z][a-z]+)?)`

var (
	// "founder Jane Doe", "CEO: Jane Doe", "co-founders Jane Doe and John Roe"
	founderAfterRole = regexp.MustCompile(`(?:[Cc]o-?[Ff]ounders?|[Ff]ounders?|CEO|CTO)(?:\s+is|:|,)?\s+` + personName + `(?:\s+and\s+` + personName + `)?`)
	// "Jane Doe, co-founder", "Jane Doe (CEO)"
	founderBeforeRole = regexp.MustCompile(personName + `,?\s+\(?(?:the\s+)?(?:[Cc]o-?[Ff]ounder|[Ff]ounder|CEO|CTO)`)
	previousCompany   = regexp.MustCompile(`(?:[Ff]ormer(?:ly at)?|[Ee]x-|[Pp]reviously at|[Ww]orked at)\s*([A-Z][A-Za-z0-9&]+)`)

	skipWords = map[string]struct{}{
		"The": {}, "Our": {}, "Their": {}, "Its": {}, "His": {}, "Her": {}, "And": {}, "Is": {},
	}
)

func (e *Extractor) teamInfo(body string) TeamInfo {
	info := TeamInfo{
		Founders:          []string{},
		Background:        []string{},
		PreviousCompanies: []string{},
	}

	var founders []string
	for _, m := range founderAfterRole.FindAllStringSubmatch(body, -1) {
		founders = append(founders, m[1], m[2])
	}
	for _, m := range founderBeforeRole.FindAllStringSubmatch(body, -1) {
		founders = append(founders, m[1])
	}
	info.Founders = appendUnique(info.Founders, founders...)

	for _, m := range previousCompany.FindAllStringSubmatch(body, -1) {
		info.PreviousCompanies = appendUnique(info.PreviousCompanies, m[1])
	}

	if team, ok := e.catalog.Criterion(scoring.CriterionTeam); ok {
		for _, dim := range team.Dimensions {
			info.Background = appendUnique(info.Background, scoring.Matched(body, dim)...)
		}
	}
	return info
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, skip := skipWords[strings.Fields(item)[0]]; skip {
			continue
		}
		dup := false
		for _, have := range dst {
			if have == item {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, item)
		}
	}
	return dst
}
