package resolve

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
)

// constraintSource is the clause declaring the constraints of one type
// parameter and the context its types are resolved in.
type constraintSource struct {
	clause *ast.ConstraintClause
	ctx    Context
}

// ensureTypeConstraints binds the constraint clauses of t and of its generic
// methods.
func (e *Engine) ensureTypeConstraints(t *scope.Type) {
	for i, part := range t.Parts {
		ctx := e.partContext(t, i).expecting(ExpectType)
		e.collectClauses(t.TypeParams, part.Constraints, ctx)
		for _, item := range part.Members {
			decl, ok := item.(*ast.MethodDecl)
			if !ok || len(decl.Constraints) == 0 {
				continue
			}
			m := e.space.MemberOf(decl)
			if m == nil {
				continue
			}
			inner := ctx
			inner.Type = t
			inner.TypeParams = scope.NewTypeParamScope(m.TypeParams, typeParamScope(t))
			e.collectClauses(m.TypeParams, decl.Constraints, inner)
			for _, p := range m.TypeParams {
				e.ensureConstraints(p)
			}
		}
	}
	for _, p := range t.TypeParams {
		e.ensureConstraints(p)
	}
}

// collectClauses attaches each clause to the type parameter it names. The
// types of a rejected clause are still resolved.
func (e *Engine) collectClauses(params []*scope.TypeParam, clauses []*ast.ConstraintClause, ctx Context) {
	local := make(map[*scope.TypeParam]bool)
	for _, clause := range clauses {
		var param *scope.TypeParam
		for _, p := range params {
			if p.Name == clause.Name {
				param = p
				break
			}
		}
		switch {
		case param == nil:
			e.errorf(diag.CodeUndeclaredTypeParameter, clause.Token.Pos,
				"'%s' does not define type parameter '%s'", ownerName(params, ctx), clause.Name)
			e.bindClauseTypes(clause, ctx)
		case local[param]:
			e.errorf(diag.CodeDuplicateConstraint, clause.Token.Pos,
				"A constraint clause has already been specified for type parameter '%s'. All of the constraints for a type parameter must be specified in a single where clause", clause.Name)
			e.bindClauseTypes(clause, ctx)
		default:
			local[param] = true
			e.mu.Lock()
			_, taken := e.clauses[param]
			if !taken {
				e.clauses[param] = constraintSource{clause: clause, ctx: ctx}
			}
			e.mu.Unlock()
			// another part already constrained param
			if taken {
				e.bindClauseTypes(clause, ctx)
			}
		}
	}
}

func (e *Engine) bindClauseTypes(clause *ast.ConstraintClause, ctx Context) {
	for _, c := range clause.Constraints {
		if c.Type != nil {
			e.resolveType(c.Type, ctx)
		}
	}
}

func ownerName(params []*scope.TypeParam, ctx Context) string {
	if len(params) > 0 && params[0].Owner != nil {
		return params[0].Owner.FullName()
	}
	if ctx.Type != nil {
		return ctx.Type.FullName()
	}
	return "<unknown>"
}

// ensureConstraints binds the clause of p once. A type parameter reached
// again while its own clause is being bound closes a cycle.
func (e *Engine) ensureConstraints(p *scope.TypeParam) {
	if p.State != scope.StatePending {
		return
	}
	p.State = scope.StateRunning
	defer func() { p.State = scope.StateDone }()

	e.mu.Lock()
	src, ok := e.clauses[p]
	e.mu.Unlock()
	if !ok {
		return
	}
	for k, c := range src.clause.Constraints {
		switch c.Kind {
		case ast.ConstraintClass:
			p.ReferenceType = true
		case ast.ConstraintStruct:
			p.ValueType = true
		case ast.ConstraintNew:
			if p.ValueType {
				e.errorf(diag.CodeStructWithNew, c.Token.Pos, "The 'new()' constraint cannot be used with the 'struct' constraint")
				continue
			}
			p.Constructor = true
		case ast.ConstraintType:
			e.bindConstraintType(p, c, k, src.ctx)
		}
	}
	e.checkConflicts(p, src.clause)
}

func (e *Engine) bindConstraintType(p *scope.TypeParam, c *ast.Constraint, index int, ctx Context) {
	info := e.resolveType(c.Type, ctx)
	if !info.SuccessfullyResolved() {
		return
	}
	pos := c.Type.Token.Pos
	switch target := info.Resolver().(type) {
	case *scope.TypeParam:
		e.ensureConstraints(target)
		if target == p || target.State == scope.StateRunning || dependsOn(target, p) {
			e.errorf(diag.CodeCircularConstraint, pos,
				"Circular constraint dependency involving '%s' and '%s'", p.Name, target.Name)
			return
		}
		p.TypeParams = append(p.TypeParams, target)
	case *scope.Type:
		switch {
		case target.IsInterface():
			p.Interfaces = append(p.Interfaces, target)
		case e.specialClass(target):
			e.errorf(diag.CodeSpecialClassConstraint, pos, "Constraint cannot be special class '%s'", target.FullName())
		case target.IsSealed():
			e.errorf(diag.CodeInvalidConstraint, pos,
				"'%s' is not a valid constraint. A type used as a constraint must be an interface, a non-sealed class or a type parameter.", target.FullName())
		case p.ReferenceType || p.ValueType:
			e.errorf(diag.CodeClassStructWithType, pos,
				"'%s': cannot specify both a constraint class and the 'class' or 'struct' constraint", target.FullName())
		case index > 0:
			e.errorf(diag.CodeClassConstraintNotFirst, pos,
				"The class type constraint '%s' must come before any other constraints", target.FullName())
		default:
			p.ClassType = target
		}
	}
}

func (e *Engine) specialClass(t *scope.Type) bool {
	for _, name := range []string{"Object", "ValueType", "Array"} {
		if t == e.space.System(name) {
			return true
		}
	}
	return false
}

// checkConflicts reports class constraints of p that are not on one
// derivation chain.
func (e *Engine) checkConflicts(p *scope.TypeParam, clause *ast.ConstraintClause) {
	c := Constraints{Space: e.space}
	var bases []*scope.Type
	if p.ClassType != nil {
		bases = append(bases, p.ClassType)
	}
	for _, q := range p.TypeParams {
		if b := c.EffectiveBaseClass(q); b != nil && !c.isRoot(b) {
			bases = append(bases, b)
		}
	}
	for i := 0; i < len(bases); i++ {
		for j := i + 1; j < len(bases); j++ {
			if !bases[i].DerivesFrom(bases[j]) && !bases[j].DerivesFrom(bases[i]) {
				e.errorf(diag.CodeConflictingConstraints, clause.Token.Pos,
					"Type parameter '%s' inherits conflicting constraints '%s' and '%s'", p.Name, bases[j].FullName(), bases[i].FullName())
				return
			}
		}
	}
}

// dependsOn reports whether q reaches p through type parameter constraints.
func dependsOn(q, p *scope.TypeParam) bool {
	seen := make(map[*scope.TypeParam]bool)
	var visit func(cur *scope.TypeParam) bool
	visit = func(cur *scope.TypeParam) bool {
		if cur == p {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, next := range cur.TypeParams {
			if visit(next) {
				return true
			}
		}
		return false
	}
	return visit(q)
}

// Constraints answers questions about bound type parameter constraints.
type Constraints struct {
	Space *scope.Space
}

func (c Constraints) isRoot(t *scope.Type) bool {
	return t == c.Space.System("Object") || t == c.Space.System("ValueType")
}

// EffectiveBaseClass returns ValueType for a struct constraint, the class
// type constraint when there are no type parameter constraints, and
// otherwise the most derived among the class type and the effective base
// classes of the type parameter constraints, ValueType included. It returns
// Object when nothing narrows it.
func (c Constraints) EffectiveBaseClass(p *scope.TypeParam) *scope.Type {
	return c.effectiveBase(p, make(map[*scope.TypeParam]bool))
}

func (c Constraints) effectiveBase(p *scope.TypeParam, seen map[*scope.TypeParam]bool) *scope.Type {
	object := c.Space.System("Object")
	if seen[p] {
		return object
	}
	seen[p] = true
	if p.ValueType {
		return c.Space.System("ValueType")
	}
	if len(p.TypeParams) == 0 {
		if p.ClassType != nil {
			return p.ClassType
		}
		return object
	}
	valueType := c.Space.System("ValueType")
	var best *scope.Type
	if p.ClassType != nil {
		best = p.ClassType
	}
	for _, q := range p.TypeParams {
		b := c.effectiveBase(q, seen)
		if b == nil || b == object {
			continue
		}
		// ValueType only narrows when no class type is known.
		if best == nil || best == valueType && b != valueType || b.DerivesFrom(best) {
			best = b
		}
	}
	if best == nil {
		return object
	}
	return best
}

// EffectiveInterfaces returns the declared interface constraints of p and of
// every type parameter it is constrained by, each once.
func (c Constraints) EffectiveInterfaces(p *scope.TypeParam) []*scope.Type {
	var result []*scope.Type
	seenType := make(map[*scope.Type]bool)
	seenParam := make(map[*scope.TypeParam]bool)
	var visit func(cur *scope.TypeParam)
	visit = func(cur *scope.TypeParam) {
		if seenParam[cur] {
			return
		}
		seenParam[cur] = true
		for _, iface := range cur.Interfaces {
			if !seenType[iface] {
				seenType[iface] = true
				result = append(result, iface)
			}
		}
		for _, q := range cur.TypeParams {
			visit(q)
		}
	}
	visit(p)
	return result
}

// IsKnownReferenceType reports whether p has the class constraint or an
// effective base class other than Object and ValueType.
func (c Constraints) IsKnownReferenceType(p *scope.TypeParam) bool {
	if p.ReferenceType {
		return true
	}
	b := c.EffectiveBaseClass(p)
	return b != nil && !c.isRoot(b)
}
