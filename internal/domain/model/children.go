package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ChildrenKind tags which shape a family's children payload arrived in.
type ChildrenKind int

const (
	// ChildrenUnknown covers null, scalars and anything we cannot read.
	ChildrenUnknown ChildrenKind = iota
	// ChildrenSingle is one JSON object describing the child (or children).
	ChildrenSingle
	// ChildrenList is a JSON array with one object per child.
	ChildrenList
)

func (k ChildrenKind) String() string {
	switch k {
	case ChildrenSingle:
		return "single"
	case ChildrenList:
		return "list"
	default:
		return "unknown"
	}
}

// Children holds the raw children payload together with the interest
// tokens resolved from it at decode time.
type Children struct {
	raw       json.RawMessage
	kind      ChildrenKind
	interests []string
}

// ParseChildren resolves a raw children payload. It never fails: shapes it
// does not recognize yield ChildrenUnknown with no interests.
func ParseChildren(raw json.RawMessage) Children {
	c := Children{raw: raw}
	var v any
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &v) != nil {
		return c
	}
	// Text columns hand us the document as a JSON string.
	if s, ok := v.(string); ok {
		var inner any
		if json.Unmarshal([]byte(s), &inner) != nil {
			return c
		}
		v = inner
	}

	var tokens interestSet
	switch t := v.(type) {
	case []any:
		c.kind = ChildrenList
		for _, item := range t {
			child, ok := item.(map[string]any)
			if !ok {
				continue
			}
			tokens.add(child["sport"])
			tokens.add(child["childSport"])
		}
	case map[string]any:
		c.kind = ChildrenSingle
		tokens.add(t["sport"])
		tokens.add(t["childSport"])
		if list, ok := t["interests"].([]any); ok {
			for _, item := range list {
				tokens.add(item)
			}
		}
	}
	c.interests = tokens.items
	return c
}

// Kind reports the decoded shape.
func (c Children) Kind() ChildrenKind { return c.kind }

// Interests returns lowercase sport-interest tokens in first-seen order.
func (c Children) Interests() []string {
	out := make([]string, len(c.interests))
	copy(out, c.interests)
	return out
}

// Raw returns the payload exactly as stored.
func (c Children) Raw() json.RawMessage { return c.raw }

// MarshalJSON re-emits the stored payload so downstream consumers see what
// the family submitted, not our interpretation of it.
func (c Children) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(c.raw)) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Children) UnmarshalJSON(b []byte) error {
	raw := make(json.RawMessage, len(b))
	copy(raw, b)
	*c = ParseChildren(raw)
	return nil
}

// interestSet is an insertion-ordered set of normalized tokens.
type interestSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *interestSet) add(v any) {
	str, ok := v.(string)
	if !ok {
		return
	}
	tok := strings.ToLower(strings.TrimSpace(str))
	if tok == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, dup := s.seen[tok]; dup {
		return
	}
	s.seen[tok] = struct{}{}
	s.items = append(s.items, tok)
}
