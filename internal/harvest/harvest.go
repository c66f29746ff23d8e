// Package harvest extracts candidate job URLs from email bodies. Links are
// matched by keyword substrings, either a fixed default set or a set the LLM
// derives for the specific email.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/prompts"
)

// DefaultKeywords is the static keyword set for job-related link matching.
var DefaultKeywords = []string{"job", "career", "recruiting", "hiring", "apply"}

// bareURLRe matches URLs in plain-text bodies that carry no anchor tags.
var bareURLRe = regexp.MustCompile(`https?://[^\s<>"']+`)

// Harvester extracts job-related URLs from one email body. With a nil client
// it uses the static keyword strategy; with a client it asks the model for
// email-specific keywords first.
type Harvester struct {
	client   llm.Client
	keywords []string
}

// NewStatic returns a harvester using fixed keyword matching. An empty
// keyword list means DefaultKeywords.
func NewStatic(keywords []string) *Harvester {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Harvester{keywords: keywords}
}

// NewLLMAssisted returns a harvester that derives keywords per email via the
// LLM, then matches links with them.
func NewLLMAssisted(client llm.Client) *Harvester {
	return &Harvester{client: client, keywords: DefaultKeywords}
}

// Harvest returns the job-related URLs found in the email body, in document
// order, deduplicated. Oracle failures yield an empty result, never an error.
func (h *Harvester) Harvest(ctx context.Context, emailBody string) []string {
	keywords := h.keywords

	if h.client != nil {
		derived, err := h.deriveKeywords(ctx, emailBody)
		if err != nil {
			log.Printf("[HARVEST] keyword derivation failed: %v", err)
			return nil
		}
		if len(derived) > 0 {
			keywords = derived
		}
	}

	return MatchLinks(emailBody, keywords)
}

// MatchLinks scans anchor targets and bare URLs in the body, keeping any that
// contain one of the keywords (case-insensitive substring).
func MatchLinks(emailBody string, keywords []string) []string {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	seen := make(map[string]bool)
	var links []string
	add := func(href string) {
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		target := strings.ToLower(href)
		for _, kw := range lowered {
			if strings.Contains(target, kw) {
				seen[href] = true
				links = append(links, href)
				return
			}
		}
	}

	// Anchor tags first, in document order.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(emailBody)); err == nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href, exists := s.Attr("href"); exists {
				add(href)
			}
		})
	}

	// Bare URLs in plain-text bodies.
	for _, href := range bareURLRe.FindAllString(emailBody, -1) {
		add(href)
	}

	return links
}

// deriveKeywords asks the model which URL substrings mark job links in this
// email.
func (h *Harvester) deriveKeywords(ctx context.Context, emailBody string) ([]string, error) {
	template := prompts.MustGet("harvest.json", "derive-keywords")
	prompt := prompts.Format(template, map[string]string{
		"EmailBody": llm.Truncate(emailBody, 4000),
	})

	responseText, err := h.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	var keywords []string
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &keywords); err != nil {
		return nil, fmt.Errorf("failed to parse keyword list: %w", err)
	}

	cleaned := keywords[:0]
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return cleaned, nil
}
