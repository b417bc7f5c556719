package scope

// Lookup returns the types declared in n under key. More than one type is
// returned only when several units contribute the same name.
func (n *Namespace) Lookup(key Key) []*Type {
	return n.Types[key]
}

// Named returns every type declared in n with the given name, any arity.
func (n *Namespace) Named(name string) []*Type {
	var result []*Type
	for key, types := range n.Types {
		if key.Name == name {
			result = append(result, types...)
		}
	}
	return result
}

// Enclosing returns ns followed by each enclosing namespace up to the root.
func (n *Namespace) Enclosing() []*Namespace {
	var result []*Namespace
	for cur := n; cur != nil; cur = cur.Parent {
		result = append(result, cur)
	}
	return result
}

// Chain returns t followed by its base classes, stopping at cycles.
func (t *Type) Chain() []*Type {
	var result []*Type
	seen := make(map[*Type]bool)
	for cur := t; cur != nil && !seen[cur]; cur = cur.Base {
		seen[cur] = true
		result = append(result, cur)
	}
	return result
}

// NestedNamed returns the nested types of t with the given name, any arity.
func (t *Type) NestedNamed(name string) []*Type {
	var result []*Type
	for key, nested := range t.Nested {
		if key.Name == name {
			result = append(result, nested)
		}
	}
	return result
}

// Supertypes returns the base class and interfaces of t, transitively, each
// once. Interfaces inherit their base interfaces this way too.
func (t *Type) Supertypes() []*Type {
	var result []*Type
	seen := map[*Type]bool{t: true}
	queue := []*Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := cur.Interfaces
		if cur.Base != nil {
			next = append([]*Type{cur.Base}, next...)
		}
		for _, item := range next {
			if !seen[item] {
				seen[item] = true
				result = append(result, item)
				queue = append(queue, item)
			}
		}
	}
	return result
}
