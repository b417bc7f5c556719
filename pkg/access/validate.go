package access

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
	"csresolve/pkg/token"
)

// Checker validates declared accessibility modifiers. The rules that depend
// on resolved types (inconsistent accessibility, overrides) run in the
// resolver, which owns the resolved signatures.
type Checker struct {
	sink diag.Sink
}

// NewChecker creates a checker reporting to sink.
func NewChecker(sink diag.Sink) *Checker {
	return &Checker{sink: sink}
}

// CheckSpace validates every source type of space and its members.
func (c *Checker) CheckSpace(space *scope.Space) {
	for _, t := range space.Types {
		c.CheckType(t)
	}
}

// CheckType validates the modifiers written on each part of t and on the
// members it declares.
func (c *Checker) CheckType(t *scope.Type) {
	for _, part := range t.Parts {
		pos := modifierPos(part.ModToken, part.NameToken.Pos)
		if !c.checkProtection(part.Modifiers, pos) {
			continue
		}
		if t.Outer == nil {
			if access := part.Modifiers.Access(); access != 0 && !access.Has(ast.ModPublic) && access != ast.ModInternal {
				c.sink.Report(diag.Errorf(diag.CodeNamespaceMemberAccess, pos,
					"Elements defined in a namespace cannot be explicitly declared as private, protected, protected internal, or private protected"))
			}
			continue
		}
		c.checkContainer(t.Outer, t.FullName(), part.Modifiers, pos)
	}
	for _, m := range t.Order {
		if m.Decl == nil || (m.Var != nil && m.Var != firstVar(m.Decl)) {
			continue
		}
		mods, modTok := memberModifiers(m.Decl)
		pos := modifierPos(modTok, scope.MemberPos(m))
		if !c.checkProtection(mods, pos) {
			continue
		}
		if explicitImplementation(m.Decl) || isDestructor(m.Decl) {
			if access := mods.Access(); access != 0 {
				c.sink.Report(diag.Errorf(diag.CodeModifierNotValid, pos,
					"The modifier '%s' is not valid for this item", access))
			}
			continue
		}
		c.checkContainer(t, m.FullName(), mods, pos)
	}
}

// checkProtection reports more than one protection modifier. It returns
// false when it reported.
func (c *Checker) checkProtection(mods ast.Modifiers, pos token.Position) bool {
	switch access := mods.Access(); access {
	case 0, ast.ModPublic, ast.ModPrivate, ast.ModProtected, ast.ModInternal,
		ast.ModProtected | ast.ModInternal, ast.ModPrivate | ast.ModProtected:
		return true
	}
	c.sink.Report(diag.Errorf(diag.CodeMultipleProtection, pos, "More than one protection modifier"))
	return false
}

// checkContainer reports protected members declared where no derived type
// can reach them.
func (c *Checker) checkContainer(container *scope.Type, name string, mods ast.Modifiers, pos token.Position) {
	if !mods.Has(ast.ModProtected) || mods.Has(ast.ModOverride) {
		return
	}
	switch {
	case container.Kind == ast.KindStruct:
		c.sink.Report(diag.Errorf(diag.CodeProtectedInStruct, pos, "'%s': new protected member declared in struct", name))
	case container.IsClass() && container.IsStatic():
		c.sink.Report(diag.Errorf(diag.CodeProtectedInStatic, pos, "'%s': static classes cannot contain protected members", name))
	case container.IsClass() && container.Modifiers.Has(ast.ModSealed):
		c.sink.Report(diag.Warningf(diag.CodeProtectedInSealed, pos, "'%s': new protected member declared in sealed type", name))
	}
}

func modifierPos(modTok token.Token, fallback token.Position) token.Position {
	if modTok.Text != "" {
		return modTok.Pos
	}
	return fallback
}

func memberModifiers(decl ast.Member) (ast.Modifiers, token.Token) {
	switch d := decl.(type) {
	case *ast.FieldDecl:
		return d.Modifiers, d.ModToken
	case *ast.PropertyDecl:
		return d.Modifiers, d.ModToken
	case *ast.MethodDecl:
		return d.Modifiers, d.ModToken
	case *ast.ConstructorDecl:
		return d.Modifiers, d.ModToken
	}
	return 0, token.Token{}
}

// firstVar returns the first declarator of a multi-variable field so that its
// modifiers are checked once.
func firstVar(decl ast.Member) *ast.VariableDeclarator {
	if field, ok := decl.(*ast.FieldDecl); ok && len(field.Vars) > 0 {
		return field.Vars[0]
	}
	return nil
}

func explicitImplementation(decl ast.Member) bool {
	switch d := decl.(type) {
	case *ast.PropertyDecl:
		return d.ExplicitInterface != nil
	case *ast.MethodDecl:
		return d.ExplicitInterface != nil
	}
	return false
}

func isDestructor(decl ast.Member) bool {
	ctor, ok := decl.(*ast.ConstructorDecl)
	return ok && ctor.Destructor
}
