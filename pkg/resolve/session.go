package resolve

import (
	"sync"

	"github.com/google/uuid"

	"csresolve/pkg/ast"
)

// Counters aggregates the outcome of a resolution pass.
type Counters struct {
	ResolutionCounter        int
	Locations                int
	ResolvedToSystemType     int
	ResolvedToSourceType     int
	ResolvedToReferencedType int
	ResolvedToNamespace      int
	ResolvedToHierarchy      int
	ResolvedToName           int
	ResolvedToTypeParameter  int
	Unresolved               int
	Ambiguous                int
}

// Session owns the write-once resolution slots of one compilation. Every
// reference location is registered before resolution starts; each slot is
// filled at most once.
type Session struct {
	ID string

	mu         sync.Mutex
	locations  []ast.Node
	registered map[ast.Node]bool
	slots      map[ast.Node]*Info
	counters   Counters
	// OnResolve, when set, is called once for every stored slot.
	OnResolve func(node ast.Node, info *Info)
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		ID:         uuid.New().String(),
		registered: make(map[ast.Node]bool),
		slots:      make(map[ast.Node]*Info),
	}
}

// Register records every reference found under node as a location.
func (s *Session) Register(node ast.Node) int {
	refs := ast.References(node)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		if s.registered[ref] {
			continue
		}
		s.registered[ref] = true
		s.locations = append(s.locations, ref)
	}
	return len(refs)
}

// Locations returns the registered reference locations in registration order.
func (s *Session) Locations() []ast.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ast.Node(nil), s.locations...)
}

// Info returns the stored resolution of node.
func (s *Session) Info(node ast.Node) (*Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.slots[node]
	return info, ok
}

// store fills the slot of node unless it is already set, and returns the
// stored value.
func (s *Session) store(node ast.Node, info *Info, qualified bool) *Info {
	s.mu.Lock()
	if existing, ok := s.slots[node]; ok {
		s.mu.Unlock()
		return existing
	}
	s.slots[node] = info
	if s.registered[node] {
		s.count(info, qualified)
	}
	s.mu.Unlock()
	if s.OnResolve != nil {
		s.OnResolve(node, info)
	}
	return info
}

func (s *Session) count(info *Info, qualified bool) {
	c := &s.counters
	c.ResolutionCounter++
	switch {
	case info.IsAmbiguous():
		c.Ambiguous++
		return
	case !info.IsResolved():
		c.Unresolved++
		return
	}
	item := info.items[0]
	if qualified {
		c.ResolvedToHierarchy++
	}
	switch item.Target {
	case TargetNamespace:
		c.ResolvedToNamespace++
	case TargetTypeParameter:
		c.ResolvedToTypeParameter++
	case TargetValue:
		c.ResolvedToName++
	case TargetType:
		switch item.Mode {
		case ModePlatformType:
			c.ResolvedToSystemType++
		case ModeReferencedUnit:
			c.ResolvedToReferencedType++
		default:
			c.ResolvedToSourceType++
		}
	}
}

// Counters returns a snapshot of the tallies.
func (s *Session) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters
	c.Locations = len(s.locations)
	return c
}

// Unresolved returns the registered locations whose resolution failed, in
// registration order.
func (s *Session) Unresolved() []ast.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []ast.Node
	for _, node := range s.locations {
		if info, ok := s.slots[node]; ok && !info.SuccessfullyResolved() {
			result = append(result, node)
		}
	}
	return result
}

// Pending returns the registered locations that have not been resolved.
func (s *Session) Pending() []ast.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []ast.Node
	for _, node := range s.locations {
		if _, ok := s.slots[node]; !ok {
			result = append(result, node)
		}
	}
	return result
}
