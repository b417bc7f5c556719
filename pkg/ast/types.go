package ast

import (
	"strings"

	"csresolve/pkg/token"
)

// TypeReference is a textual reference to a type: a field type, a base clause
// entry, a type argument, a cast target and so on. A reference is either a
// predefined type keyword or a dotted name, optionally qualified with an
// alias (`Alias::N.T`).
type TypeReference struct {
	Alias      string
	AliasToken token.Token
	Segments   []*NameSegment
	Keyword    string
	ArrayRanks []int
	Nullable   bool
	Pointer    int
	Token      token.Token
}

func (r *TypeReference) Pos() token.Position { return r.Token.Pos }

// NameSegment is one dotted component of a type name with its type arguments.
type NameSegment struct {
	Name  string
	Args  []*TypeReference
	Token token.Token
}

// Arity returns the number of type arguments.
func (s *NameSegment) Arity() int { return len(s.Args) }

// IsPredefined reports whether the reference is a predefined type keyword.
func (r *TypeReference) IsPredefined() bool { return r.Keyword != "" }

// IsSimple reports whether the reference is a single unqualified identifier.
func (r *TypeReference) IsSimple() bool {
	return r.Alias == "" && r.Keyword == "" && len(r.Segments) == 1
}

// Last returns the final name segment, or nil for predefined types.
func (r *TypeReference) Last() *NameSegment {
	if len(r.Segments) == 0 {
		return nil
	}
	return r.Segments[len(r.Segments)-1]
}

// Name renders the reference without type arguments or modifiers, e.g. `global::N.T`.
func (r *TypeReference) Name() string {
	if r.Keyword != "" {
		return r.Keyword
	}
	var b strings.Builder
	if r.Alias != "" {
		b.WriteString(r.Alias)
		b.WriteString("::")
	}
	for i, seg := range r.Segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
	}
	return b.String()
}

func (r *TypeReference) String() string {
	var b strings.Builder
	if r.Keyword != "" {
		b.WriteString(r.Keyword)
	} else {
		if r.Alias != "" {
			b.WriteString(r.Alias)
			b.WriteString("::")
		}
		for i, seg := range r.Segments {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Name)
			if len(seg.Args) > 0 {
				b.WriteByte('<')
				for j, arg := range seg.Args {
					if j > 0 {
						b.WriteString(", ")
					}
					b.WriteString(arg.String())
				}
				b.WriteByte('>')
			}
		}
	}
	if r.Nullable {
		b.WriteByte('?')
	}
	b.WriteString(strings.Repeat("*", r.Pointer))
	for _, rank := range r.ArrayRanks {
		b.WriteByte('[')
		b.WriteString(strings.Repeat(",", rank-1))
		b.WriteByte(']')
	}
	return b.String()
}
