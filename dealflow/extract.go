// Package dealflow turns inbound emails into prioritized deals.
package dealflow

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

const StageUnknown = "unknown"

var (
	startupIndicators = []string{
		"startup", "company", "venture", "founding", "raised",
		"seed", "series", "pre-seed", "angel",
	}

	// checked in order, so "pre-seed" wins over "seed"
	fundingStages = []string{
		"pre-seed", "seed", "series a", "series b", "series c",
		"growth", "late stage",
	}

	warmIntroPhrases = []string{
		"introducing you to",
		"wanted to connect you with",
		"thought you might be interested in",
		"recommended i reach out",
		"mutual connection",
	}

	companyNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)introducing\s+(?:you\s+to\s+)?([A-Z][A-Za-z0-9]+)`),
		regexp.MustCompile(`(?i)company:\s+([A-Z][A-Za-z0-9]+)`),
		regexp.MustCompile(`(?i)startup:\s+([A-Z][A-Za-z0-9]+)`),
		regexp.MustCompile(`(?i)([A-Z][A-Za-z0-9]+)\s+is raising`),
	}

	// words the name patterns pick up from ordinary prose
	notCompanyNames = map[string]struct{}{
		"you": {}, "your": {}, "the": {}, "a": {}, "an": {}, "our": {},
		"my": {}, "this": {}, "that": {}, "we": {}, "it": {}, "who": {},
		"which": {}, "me": {}, "us": {}, "them": {}, "he": {}, "she": {},
	}
)

// Deal is the structured content of a deal-flow email.
type Deal struct {
	MessageID    string    `json:"message_id,omitempty"`
	CompanyName  string    `json:"company_name"`
	Sender       string    `json:"sender"`
	Subject      string    `json:"subject"`
	ReceivedAt   time.Time `json:"date_received"`
	FundingStage string    `json:"funding_stage"`
	Sectors      []string  `json:"sectors"`
	Team         TeamInfo  `json:"team_info"`
	WarmIntro    bool      `json:"warm_intro"`
	RawContent   string    `json:"raw_content"`
}

// Profile maps the deal onto the scoring input. The email body stands in for
// the description; founder names go into the founders field.
func (d Deal) Profile() scoring.CompanyProfile {
	return scoring.CompanyProfile{
		Name:        d.CompanyName,
		Description: d.RawContent,
		Founders:    strings.Join(d.Team.Founders, ", "),
		Sectors:     d.Sectors,
	}
}

// Extractor pulls deals out of raw RFC 5322 messages.
type Extractor struct {
	catalog *scoring.Catalog
}

// NewExtractor uses catalog for sector keywords and team background
// indicators, or the default catalog when nil.
func NewExtractor(catalog *scoring.Catalog) *Extractor {
	if catalog == nil {
		catalog = scoring.DefaultCatalog()
	}
	return &Extractor{catalog: catalog}
}

// Extract parses one message. ok is false when the message is not about a
// startup or names no company; err is set only when the message cannot be read.
func (e *Extractor) Extract(r io.Reader) (deal Deal, ok bool, err error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return Deal{}, false, fmt.Errorf("reading message: %w", err)
	}
	defer mr.Close()

	h := mr.Header
	deal.Subject, _ = h.Subject()
	deal.MessageID, _ = h.MessageID()
	deal.ReceivedAt, _ = h.Date()
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		deal.Sender = from[0].Address
	}

	body, err := plainTextBody(mr)
	if err != nil {
		return Deal{}, false, err
	}

	d, ok := e.FromText(deal.Subject, body)
	if !ok {
		return Deal{}, false, nil
	}
	d.MessageID = deal.MessageID
	d.Sender = deal.Sender
	d.ReceivedAt = deal.ReceivedAt
	return d, true, nil
}

// FromText applies the extraction rules to an already decoded subject and body.
func (e *Extractor) FromText(subject, body string) (Deal, bool) {
	lowered := strings.ToLower(body)
	if !containsAny(lowered, startupIndicators) {
		return Deal{}, false
	}

	name := companyName(subject + " " + body)
	if name == "" {
		return Deal{}, false
	}

	return Deal{
		CompanyName:  name,
		Subject:      subject,
		FundingStage: fundingStage(lowered),
		Sectors:      scoring.IdentifySectors(body, e.catalog.Sectors),
		Team:         e.teamInfo(body),
		WarmIntro:    containsAny(lowered, warmIntroPhrases),
		RawContent:   body,
	}, true
}

// plainTextBody returns the first text/plain part, or the first inline part
// of any type when no plain text part exists.
func plainTextBody(mr *mail.Reader) (string, error) {
	var fallback string
	haveFallback := false
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (p == nil || !message.IsUnknownCharset(err)) {
			return "", fmt.Errorf("reading message part: %w", err)
		}

		h, inline := p.Header.(*mail.InlineHeader)
		if !inline {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("reading message body: %w", err)
		}

		ct, _, _ := h.ContentType()
		if ct == "" || ct == "text/plain" {
			return string(b), nil
		}
		if !haveFallback {
			fallback, haveFallback = string(b), true
		}
	}
	return fallback, nil
}

func companyName(text string) string {
	for _, re := range companyNamePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if _, skip := notCompanyNames[strings.ToLower(m[1])]; !skip {
				return m[1]
			}
		}
	}
	return ""
}

func fundingStage(lowered string) string {
	for _, stage := range fundingStages {
		if strings.Contains(lowered, stage) {
			return stage
		}
	}
	return StageUnknown
}

func containsAny(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}
