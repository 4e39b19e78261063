package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Rubric is the fixed instruction sent to the ranking oracle ahead of the
// JSON payload.
const Rubric = `You rank schools for a youth athlete family. Use ONLY the JSON payload that follows.
Return the ids of exactly 3 schools from "candidates", best match first.
Ranking rules, in priority order:
1. Safety: prefer schools and teams compatible with constraints you can infer from "family.children".
   For example, avoid ice hockey teams for a child sensitive to cold, and avoid swimming for a child allergic to chlorine.
2. Proximity: when both the family and a school carry comparable location fields (city, state, zip), prefer the closer school.
3. Ties: prefer the school offering more distinct sports, then order alphabetically by school name.
4. If the data is insufficient to distinguish schools, return the first 3 candidates in the order given.
Respond with a JSON array of exactly 3 school_id strings, for example ["id1","id2","id3"].
Do not include any other text, keys, explanation or formatting.`

// FamilyPayload is the part of a family the oracle is allowed to see.
type FamilyPayload struct {
	Location json.RawMessage `json:"location"`
	Children json.RawMessage `json:"children"`
}

// Request is the input of one ranking call.
type Request struct {
	Family     FamilyPayload `json:"family"`
	Candidates []Candidate   `json:"candidates"`
}

// Ranker proposes an ordering of candidate school ids. Implementations talk
// to an external service; callers must treat the result as untrusted and
// pass it through Sanitize.
type Ranker interface {
	Rank(ctx context.Context, req Request) ([]string, error)
}

// NewRequest builds the oracle payload for a family and its candidates.
func NewRequest(location, children json.RawMessage, candidates []Candidate) Request {
	return Request{
		Family: FamilyPayload{
			Location: nullIfEmpty(location),
			Children: nullIfEmpty(children),
		},
		Candidates: candidates,
	}
}

// BuildPrompt returns the rubric and the JSON payload as separate parts.
func BuildPrompt(req Request) (instruction string, payload string, err error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}
	return Rubric, string(b), nil
}

// ParseRanking decodes the oracle text into school ids. The text must be a
// JSON array with nothing after it; string and numeric elements are
// accepted, others are skipped. A surrounding markdown code fence is
// tolerated.
func ParseRanking(text string) ([]string, error) {
	body := stripFence(strings.TrimSpace(text))
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedRanking)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRanking, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: not an array", ErrMalformedRanking)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedRanking)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, v.String())
		}
	}
	return ids, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
