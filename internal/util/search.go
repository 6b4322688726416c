package util

import (
	"regexp"
	"strconv"
	"strings"
)

// SearchQuery represents the parsed components of a board search string.
// Responsible holds profile IDs in their original case; a zero Limit means
// no cap.
type SearchQuery struct {
	Tags        []string
	Status      []string
	Priority    []string
	Origin      []string
	Responsible []string
	Limit       int
	Text        []string
}

var (
	tagRegex         = regexp.MustCompile(`tag:(\w+)`)
	statusRegex      = regexp.MustCompile(`status:(\w+)`)
	priorityRegex    = regexp.MustCompile(`priority:(\w+)`)
	originRegex      = regexp.MustCompile(`origin:(\w+)`)
	responsibleRegex = regexp.MustCompile(`responsible:([\w-]+)`)
	limitRegex       = regexp.MustCompile(`limit:(\d+)`)
)

// ParseSearchQuery breaks down a raw query string into its structured components.
func ParseSearchQuery(query string) SearchQuery {
	sq := SearchQuery{}

	extractRaw := func(re *regexp.Regexp) []string {
		matches := re.FindAllStringSubmatch(query, -1)
		if matches == nil {
			return nil
		}
		var values []string
		for _, match := range matches {
			if len(match) > 1 {
				values = append(values, match[1])
			}
		}
		query = re.ReplaceAllString(query, "")
		return values
	}
	extract := func(re *regexp.Regexp) []string {
		values := extractRaw(re)
		for i, v := range values {
			values[i] = strings.ToLower(v)
		}
		return values
	}

	sq.Tags = extract(tagRegex)
	sq.Status = extract(statusRegex)
	sq.Priority = extract(priorityRegex)
	sq.Origin = extract(originRegex)
	sq.Responsible = extractRaw(responsibleRegex)
	if limits := extractRaw(limitRegex); len(limits) > 0 {
		sq.Limit, _ = strconv.Atoi(limits[len(limits)-1])
	}
	sq.Text = strings.Fields(query)

	return sq
}

// Empty reports whether the query carries no criteria.
func (q SearchQuery) Empty() bool {
	return len(q.Tags) == 0 && len(q.Status) == 0 && len(q.Priority) == 0 &&
		len(q.Origin) == 0 && len(q.Responsible) == 0 && q.Limit == 0 && len(q.Text) == 0
}
