package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentCreatorInfo is the profile the research crew fills in.
// A nil field means the information was not found.
type ContentCreatorInfo struct {
	FirstName         *string  `json:"first_name"`
	LastName          *string  `json:"last_name"`
	MainTopicsCovered []string `json:"main_topics_covered"`
	Bio               *string  `json:"bio"`
	EmailAddress      *string  `json:"email_address"`
	LinkedInURL       *string  `json:"linkedin_url"`
	HasLinkedIn       *bool    `json:"has_linked_in"`
	XURL              *string  `json:"x_url"`
	HasTwitter        *bool    `json:"has_twitter"`
	HasSkool          *bool    `json:"has_skool"`
}

// ParseContentCreatorInfo decodes the crew's final answer, tolerating
// markdown code fences around the JSON.
func ParseContentCreatorInfo(raw string) (ContentCreatorInfo, error) {
	var info ContentCreatorInfo

	cleaned := StripCodeFences(raw)
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	if err := json.Unmarshal([]byte(cleaned), &info); err != nil {
		return ContentCreatorInfo{}, fmt.Errorf("error while decoding content creator info: %w", err)
	}

	return info, nil
}

// Missing lists the json names of the fields still unknown.
func (c ContentCreatorInfo) Missing() []string {
	var missing []string
	check := func(name string, empty bool) {
		if empty {
			missing = append(missing, name)
		}
	}

	check("first_name", c.FirstName == nil)
	check("last_name", c.LastName == nil)
	check("main_topics_covered", len(c.MainTopicsCovered) == 0)
	check("bio", c.Bio == nil)
	check("email_address", c.EmailAddress == nil)
	check("linkedin_url", c.LinkedInURL == nil)
	check("has_linked_in", c.HasLinkedIn == nil)
	check("x_url", c.XURL == nil)
	check("has_twitter", c.HasTwitter == nil)
	check("has_skool", c.HasSkool == nil)

	return missing
}

func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
