package resolve

import (
	"strconv"
	"strings"

	"csresolve/pkg/access"
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
	"csresolve/pkg/token"
)

// Validate runs the checks that need resolved signatures: duplicate method
// signatures, inconsistent accessibility and access changes in overrides.
// Call it after every file has been resolved.
func (e *Engine) Validate() {
	for _, t := range e.space.Types {
		if t.Detached {
			continue
		}
		e.checkSignatures(t)
		e.checkBaseAccessibility(t)
		e.checkMemberAccessibility(t)
		e.checkOverrides(t)
	}
}

// checkSignatures reports methods, constructors and operators of t sharing
// a name, a type parameter count and parameter types. ref, out and in
// parameters count as one kind.
func (e *Engine) checkSignatures(t *scope.Type) {
	seen := make(map[string]bool)
	for _, m := range t.Order {
		var params []*ast.Parameter
		var pos token.Position
		switch decl := m.Decl.(type) {
		case *ast.MethodDecl:
			if decl.ExplicitInterface != nil {
				continue
			}
			params, pos = decl.Parameters, decl.NameToken.Pos
		case *ast.ConstructorDecl:
			params, pos = decl.Parameters, decl.Token.Pos
		default:
			continue
		}
		key, ok := e.signature(m, params)
		if !ok {
			continue
		}
		if seen[key] {
			name := m.Name
			if m.Kind == scope.MemberConstructor {
				name = t.Name
			}
			e.errorf(diag.CodeDuplicateMethod, pos,
				"Type '%s' already defines a member called '%s' with the same parameter types", t.FullName(), name)
			continue
		}
		seen[key] = true
	}
}

// signature renders the identity of a member signature. It fails when a
// parameter type did not resolve.
func (e *Engine) signature(m *scope.Member, params []*ast.Parameter) (string, bool) {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('`')
	b.WriteString(strconv.Itoa(len(m.TypeParams)))
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		switch p.Modifier {
		case "ref", "out", "in":
			b.WriteString("&")
		}
		if !e.typeKey(&b, p.Type, m) {
			return "", false
		}
	}
	b.WriteByte(')')
	return b.String(), true
}

func (e *Engine) typeKey(b *strings.Builder, ref *ast.TypeReference, m *scope.Member) bool {
	if ref == nil {
		return false
	}
	info, ok := e.session.Info(ref)
	if !ok || !info.SuccessfullyResolved() {
		return false
	}
	switch target := info.Resolver().(type) {
	case *scope.TypeParam:
		if target.Owner == scope.Symbol(m) {
			b.WriteString("!!")
			b.WriteString(strconv.Itoa(target.Ordinal))
		} else {
			b.WriteString("!")
			b.WriteString(target.Name)
		}
	case *scope.Type:
		b.WriteString(target.Unit.Name)
		b.WriteByte(':')
		b.WriteString(target.FullName())
	default:
		return false
	}
	var args []*ast.TypeReference
	for _, seg := range ref.Segments {
		args = append(args, seg.Args...)
	}
	if len(args) > 0 {
		b.WriteByte('<')
		for i, arg := range args {
			if i > 0 {
				b.WriteByte(',')
			}
			if !e.typeKey(b, arg, m) {
				return false
			}
		}
		b.WriteByte('>')
	}
	for _, rank := range ref.ArrayRanks {
		b.WriteString("[" + strings.Repeat(",", rank-1) + "]")
	}
	if ref.Nullable {
		b.WriteByte('?')
	}
	b.WriteString(strings.Repeat("*", ref.Pointer))
	return true
}

// refDomain intersects the domains of every type a resolved reference
// mentions, type arguments included. Unresolved parts place no restriction.
func (e *Engine) refDomain(ref *ast.TypeReference) access.Domain {
	if ref == nil {
		return nil
	}
	var result access.Domain
	if info, ok := e.session.Info(ref); ok {
		result = access.TypeDomain(info.Type())
	}
	for _, seg := range ref.Segments {
		for _, arg := range seg.Args {
			result = result.Intersect(e.refDomain(arg))
		}
	}
	return result
}

func (e *Engine) checkBaseAccessibility(t *scope.Type) {
	own := access.TypeDomain(t)
	for _, part := range t.Parts {
		for _, ref := range part.Bases {
			info, ok := e.session.Info(ref)
			if !ok {
				continue
			}
			b := info.Type()
			if b == scope.ErrorType || own.Subset(e.refDomain(ref)) {
				continue
			}
			switch {
			case b == t.Base && t.IsClass():
				e.errorf(diag.CodeInconsistentBaseClass, ref.Token.Pos,
					"Inconsistent accessibility: base class '%s' is less accessible than class '%s'", b.FullName(), t.FullName())
			case b.IsInterface() && t.IsInterface():
				e.errorf(diag.CodeInconsistentBaseInterface, ref.Token.Pos,
					"Inconsistent accessibility: base interface '%s' is less accessible than interface '%s'", b.FullName(), t.FullName())
			}
		}
	}
	if t.Kind == ast.KindDelegate {
		decl := t.Decl()
		e.checkSignatureAccess(own, t.FullName(), decl.ReturnType, decl.Parameters, true)
	}
}

func (e *Engine) checkMemberAccessibility(t *scope.Type) {
	for _, m := range t.Order {
		if m.Decl == nil {
			continue
		}
		own := access.MemberDomain(m)
		switch decl := m.Decl.(type) {
		case *ast.FieldDecl:
			if m.Var != decl.Vars[0] {
				continue
			}
			if !own.Subset(e.refDomain(decl.Type)) {
				if decl.Event {
					e.errorf(diag.CodeInconsistentPropertyType, decl.Type.Token.Pos,
						"Inconsistent accessibility: event type '%s' is less accessible than event '%s'", decl.Type, m.FullName())
					continue
				}
				e.errorf(diag.CodeInconsistentFieldType, decl.Type.Token.Pos,
					"Inconsistent accessibility: field type '%s' is less accessible than field '%s'", decl.Type, m.FullName())
			}
		case *ast.PropertyDecl:
			if decl.ExplicitInterface != nil {
				continue
			}
			if !own.Subset(e.refDomain(decl.Type)) {
				e.errorf(diag.CodeInconsistentPropertyType, decl.Type.Token.Pos,
					"Inconsistent accessibility: property type '%s' is less accessible than property '%s'", decl.Type, m.FullName())
			}
			e.checkSignatureAccess(own, m.FullName(), nil, decl.Parameters, false)
		case *ast.MethodDecl:
			if decl.ExplicitInterface != nil {
				continue
			}
			e.checkSignatureAccess(own, m.FullName(), decl.ReturnType, decl.Parameters, true)
		case *ast.ConstructorDecl:
			e.checkSignatureAccess(own, m.FullName(), nil, decl.Parameters, false)
		}
	}
}

// checkSignatureAccess reports a return type or parameter type less
// accessible than the declaration owning the signature.
func (e *Engine) checkSignatureAccess(own access.Domain, name string, ret *ast.TypeReference, params []*ast.Parameter, hasReturn bool) {
	if hasReturn && ret != nil && !own.Subset(e.refDomain(ret)) {
		e.errorf(diag.CodeInconsistentReturnType, ret.Token.Pos,
			"Inconsistent accessibility: return type '%s' is less accessible than method '%s'", ret, name)
	}
	for _, p := range params {
		if p.Type != nil && !own.Subset(e.refDomain(p.Type)) {
			e.errorf(diag.CodeInconsistentParameterType, p.Type.Token.Pos,
				"Inconsistent accessibility: parameter type '%s' is less accessible than method '%s'", p.Type, name)
		}
	}
}

// checkOverrides reports override members whose accessibility differs from
// the member they override. Overriding a protected internal member of
// another compilation as protected is allowed.
func (e *Engine) checkOverrides(t *scope.Type) {
	for _, m := range t.Order {
		if m.Decl == nil || !m.Modifiers.Has(ast.ModOverride) {
			continue
		}
		base := e.overridden(t, m)
		if base == nil || base.Access == m.Access {
			continue
		}
		if base.Access == scope.AccessProtectedInternal && m.Access == scope.AccessProtected && base.Owner.Unit != t.Unit {
			continue
		}
		e.errorf(diag.CodeOverrideChangesAccess, scope.MemberPos(m),
			"'%s': cannot change access modifiers when overriding '%s' inherited member '%s'", m.FullName(), base.Access, base.FullName())
	}
}

// overridden finds the nearest member of a base class with the name, kind
// and parameter count of m.
func (e *Engine) overridden(t *scope.Type, m *scope.Member) *scope.Member {
	count := paramCount(m)
	for _, level := range t.Chain()[1:] {
		for _, candidate := range level.Members[m.Name] {
			if candidate.Kind != m.Kind || candidate.Access == scope.AccessPrivate {
				continue
			}
			if candidate.Decl != nil && paramCount(candidate) != count {
				continue
			}
			return candidate
		}
	}
	return nil
}

func paramCount(m *scope.Member) int {
	switch decl := m.Decl.(type) {
	case *ast.MethodDecl:
		return len(decl.Parameters)
	case *ast.PropertyDecl:
		return len(decl.Parameters)
	}
	return 0
}
