package scope

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

// Builder populates a Space from parsed compilation units. Add the platform
// library and references first, then the source, then call Build. Only the
// source unit reports diagnostics; referenced compilations are taken as is.
type Builder struct {
	space *Space
	sink  diag.Sink
}

// NewBuilder creates a builder reporting source declaration errors to sink.
func NewBuilder(sink diag.Sink) *Builder {
	if sink == nil {
		sink = &diag.Collector{}
	}
	return &Builder{space: newSpace(), sink: sink}
}

// AddPlatform declares the built-in platform library in the global hierarchy.
func (b *Builder) AddPlatform() *Unit {
	unit := &Unit{Name: PlatformName, Origin: OriginPlatform}
	b.space.Units = append(b.space.Units, unit)
	declarePlatform(b.space, unit)
	return unit
}

// AddReference declares a referenced compilation under each of its aliases;
// no alias means the global hierarchy.
func (b *Builder) AddReference(name string, aliases []string, files []*ast.CompilationUnit) *Unit {
	unit := &Unit{Name: name, Origin: OriginReferenced, Aliases: aliases}
	b.space.Units = append(b.space.Units, unit)
	if len(aliases) == 0 {
		aliases = []string{GlobalAlias}
	}
	for _, alias := range aliases {
		h := b.space.hierarchy(alias)
		for _, file := range files {
			b.declareMembers(unit, h.Root, nil, file.Members, Site{File: file})
		}
	}
	return unit
}

// AddSource declares the files of the compilation itself.
func (b *Builder) AddSource(name string, files []*ast.CompilationUnit) *Unit {
	unit := &Unit{Name: name, Origin: OriginSource}
	b.space.Source = unit
	b.space.Units = append(b.space.Units, unit)
	b.space.Files = append(b.space.Files, files...)
	for _, file := range files {
		b.declareMembers(unit, b.space.Global.Root, nil, file.Members, Site{File: file})
	}
	return unit
}

// Build runs the checks that need the whole declaration space and returns it.
func (b *Builder) Build() *Space {
	for _, t := range b.space.Types {
		b.checkMembers(t)
	}
	for _, file := range b.space.Files {
		b.checkExterns(file.Externs)
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.NamespaceDecl:
				b.checkExterns(n.Externs)
				return true
			case *ast.CompilationUnit:
				return true
			}
			return false
		})
	}
	b.space.indexWellKnown()
	return b.space
}

func (b *Builder) report(unit *Unit, d *diag.Diagnostic) {
	if unit.Origin == OriginSource {
		b.sink.Report(d)
	}
}

func (b *Builder) declareMembers(unit *Unit, ns *Namespace, outer *Type, members []ast.Decl, site Site) {
	for _, member := range members {
		switch decl := member.(type) {
		case *ast.NamespaceDecl:
			target := ns
			for _, name := range decl.Name {
				target = b.namespace(unit, target, name, decl.NameToken.Pos)
			}
			if unit.Origin == OriginSource {
				target.Fragments = append(target.Fragments, decl)
			}
			inner := site
			inner.Enclosing = append(append([]*ast.NamespaceDecl{}, site.Enclosing...), decl)
			b.declareMembers(unit, target, nil, decl.Members, inner)
		case *ast.TypeDecl:
			b.declareType(unit, ns, outer, decl, site)
		}
	}
}

func (b *Builder) namespace(unit *Unit, parent *Namespace, name string, pos token.Position) *Namespace {
	child, ok := parent.Namespaces[name]
	if !ok {
		child = NewNamespace(name, parent, parent.Hierarchy)
	}
	if unit.Origin == OriginSource {
		for _, t := range parent.Types[Key{Name: name}] {
			if t.Unit == unit {
				b.report(unit, diag.Errorf(diag.CodeDuplicateInNamespace, pos,
					"The namespace '%s' already contains a definition for '%s'", displayName(parent), name))
				break
			}
		}
	}
	return child
}

func (b *Builder) declareType(unit *Unit, ns *Namespace, outer *Type, decl *ast.TypeDecl, site Site) {
	key := Key{Name: decl.Name, Arity: decl.Arity()}
	existing := b.existing(unit, ns, outer, key)
	if existing != nil && b.merge(unit, existing, decl, site) {
		b.declareBody(unit, existing, decl, site)
		return
	}

	t := NewType(decl.Name, key.Arity, decl.Kind, unit, ns, outer)
	def := AccessInternal
	if outer != nil {
		def = AccessPrivate
		if outer.IsInterface() {
			def = AccessPublic
		}
	}
	t.Access = AccessibilityOf(decl.Modifiers, def)
	t.Modifiers = decl.Modifiers
	t.Parts = []*ast.TypeDecl{decl}
	t.TypeParams = b.typeParams(unit, t, decl.TypeParams, decl.Name)
	b.space.sites[t] = []Site{site}
	if unit.Origin == OriginSource {
		b.space.Types = append(b.space.Types, t)
		b.space.types[decl] = t
	}

	switch {
	case existing != nil:
		t.Detached = true
		if outer != nil {
			b.report(unit, diag.Errorf(diag.CodeDuplicateInType, decl.NameToken.Pos,
				"The type '%s' already contains a definition for '%s'", outer.FullName(), decl.Name))
		} else {
			b.report(unit, diag.Errorf(diag.CodeDuplicateInNamespace, decl.NameToken.Pos,
				"The namespace '%s' already contains a definition for '%s'", displayName(ns), decl.Name))
		}
	case outer != nil:
		outer.Nested[key] = t
	default:
		if _, clash := ns.Namespaces[decl.Name]; clash && key.Arity == 0 && unit.Origin == OriginSource && b.sourceNamespace(ns.Namespaces[decl.Name]) {
			b.report(unit, diag.Errorf(diag.CodeDuplicateInNamespace, decl.NameToken.Pos,
				"The namespace '%s' already contains a definition for '%s'", displayName(ns), decl.Name))
		}
		ns.Types[key] = append(ns.Types[key], t)
	}
	b.declareBody(unit, t, decl, site)
}

// existing returns the type already registered by unit under key.
func (b *Builder) existing(unit *Unit, ns *Namespace, outer *Type, key Key) *Type {
	if outer != nil {
		return outer.Nested[key]
	}
	for _, t := range ns.Types[key] {
		if t.Unit == unit {
			return t
		}
	}
	return nil
}

// sourceNamespace reports whether the source declares ns or a namespace inside it.
func (b *Builder) sourceNamespace(ns *Namespace) bool {
	if len(ns.Fragments) > 0 {
		return true
	}
	for _, child := range ns.Namespaces {
		if b.sourceNamespace(child) {
			return true
		}
	}
	return false
}

// merge adds decl as another part of t. It returns false when the two
// declarations are a plain duplicate.
func (b *Builder) merge(unit *Unit, t *Type, decl *ast.TypeDecl, site Site) bool {
	first := t.Decl()
	partial := decl.Modifiers.Has(ast.ModPartial)
	firstPartial := first.Modifiers.Has(ast.ModPartial)
	if !partial && !firstPartial {
		return false
	}
	if partial != firstPartial {
		missing := decl
		if partial {
			missing = first
		}
		b.report(unit, diag.Errorf(diag.CodeMissingPartial, missing.NameToken.Pos,
			"Missing partial modifier on declaration of type '%s'; another partial declaration of this type exists", t.FullName()))
	}
	if decl.Kind != t.Kind {
		b.report(unit, diag.Errorf(diag.CodePartialKindMismatch, decl.NameToken.Pos,
			"Partial declarations of '%s' must be all classes, all structs, or all interfaces", t.FullName()))
	}
	if access := decl.Modifiers.Access(); access != 0 {
		if declared := t.explicitAccess(); declared != 0 && AccessibilityOf(declared, t.Access) != AccessibilityOf(access, t.Access) {
			b.report(unit, diag.Errorf(diag.CodePartialAccessConflict, decl.NameToken.Pos,
				"Partial declarations of '%s' have conflicting accessibility modifiers", t.FullName()))
		} else if declared == 0 {
			t.Access = AccessibilityOf(access, t.Access)
			t.Modifiers |= access
		}
	}
	for i, param := range decl.TypeParams {
		if i < len(t.TypeParams) && t.TypeParams[i].Name != param.Name {
			b.report(unit, diag.Errorf(diag.CodePartialTypeParamNames, decl.NameToken.Pos,
				"Partial declarations of '%s' must have the same type parameter names in the same order", t.FullName()))
			break
		}
	}
	t.Modifiers |= decl.Modifiers &^ ast.AccessMask
	t.Parts = append(t.Parts, decl)
	b.space.sites[t] = append(b.space.sites[t], site)
	if unit.Origin == OriginSource {
		b.space.types[decl] = t
	}
	return true
}

// explicitAccess returns the access modifiers written on the parts so far.
func (t *Type) explicitAccess() ast.Modifiers {
	for _, part := range t.Parts {
		if access := part.Modifiers.Access(); access != 0 {
			return access
		}
	}
	return 0
}

func (b *Builder) typeParams(unit *Unit, owner Symbol, decls []*ast.TypeParameter, ownerName string) []*TypeParam {
	var params []*TypeParam
	seen := make(map[string]bool)
	for i, decl := range decls {
		if seen[decl.Name] {
			b.report(unit, diag.Errorf(diag.CodeDuplicateTypeParameter, decl.Token.Pos,
				"Duplicate type parameter '%s'", decl.Name))
		}
		seen[decl.Name] = true
		if decl.Name == ownerName {
			b.report(unit, diag.Errorf(diag.CodeTypeParamSameAsType, decl.Token.Pos,
				"Type parameter '%s' has the same name as the containing type, or method", decl.Name))
		}
		params = append(params, &TypeParam{Name: decl.Name, Ordinal: i, Owner: owner, Decl: decl, Variance: decl.Variance})
	}
	return params
}

// declareBody registers the nested types and members of one part of t.
func (b *Builder) declareBody(unit *Unit, t *Type, decl *ast.TypeDecl, site Site) {
	def := AccessPrivate
	if t.Kind == ast.KindInterface || t.Kind == ast.KindEnum {
		def = AccessPublic
	}
	for _, item := range decl.Members {
		switch m := item.(type) {
		case *ast.TypeDecl:
			b.declareType(unit, t.Namespace, t, m, site)
		case *ast.FieldDecl:
			kind := MemberField
			if m.Event {
				kind = MemberEvent
			}
			for _, v := range m.Vars {
				b.addMember(t, m, v, &Member{Name: v.Name, Kind: kind, Access: AccessibilityOf(m.Modifiers, def), Modifiers: m.Modifiers, Decl: m, Var: v})
			}
		case *ast.PropertyDecl:
			member := &Member{Name: m.Name, Kind: MemberProperty, Access: AccessibilityOf(m.Modifiers, def), Modifiers: m.Modifiers, Decl: m}
			switch {
			case m.Indexer:
				member.Kind = MemberIndexer
			case m.Event:
				member.Kind = MemberEvent
			}
			if m.ExplicitInterface != nil {
				member.Access = AccessPrivate
			}
			b.addMember(t, m, nil, member)
		case *ast.MethodDecl:
			member := &Member{Name: m.Name, Kind: MemberMethod, Access: AccessibilityOf(m.Modifiers, def), Modifiers: m.Modifiers, Decl: m}
			if m.Operator {
				member.Kind = MemberOperator
			}
			if m.ExplicitInterface != nil {
				member.Access = AccessPrivate
			}
			member.TypeParams = b.typeParams(unit, member, m.TypeParams, m.Name)
			b.addMember(t, m, nil, member)
		case *ast.ConstructorDecl:
			name := ".ctor"
			if m.Destructor {
				name = "Finalize"
			} else if m.Modifiers.Has(ast.ModStatic) {
				name = ".cctor"
			}
			b.addMember(t, m, nil, &Member{Name: name, Kind: MemberConstructor, Access: AccessibilityOf(m.Modifiers, def), Modifiers: m.Modifiers, Decl: m})
		case *ast.EnumMemberDecl:
			b.addMember(t, m, nil, &Member{Name: m.Name, Kind: MemberEnumValue, Access: AccessPublic, Modifiers: ast.ModPublic | ast.ModStatic, Decl: m})
		}
	}
}

func (b *Builder) addMember(t *Type, decl ast.Member, v *ast.VariableDeclarator, m *Member) {
	t.AddMember(m)
	if t.Unit.Origin != OriginSource {
		return
	}
	if v != nil {
		b.space.members[v] = m
		return
	}
	b.space.members[decl] = m
}

// checkMembers reports members of t whose names clash with another member or
// a nested type. Methods may overload each other; the signature check runs
// once parameter types are resolved.
func (b *Builder) checkMembers(t *Type) {
	if t.Detached {
		return
	}
	methods := make(map[string]bool)
	others := make(map[string]bool)
	for key := range t.Nested {
		others[key.Name] = true
	}
	for _, m := range t.Order {
		switch m.Kind {
		case MemberConstructor, MemberOperator, MemberIndexer:
			continue
		case MemberMethod:
			if decl, ok := m.Decl.(*ast.MethodDecl); ok && decl.ExplicitInterface != nil {
				continue
			}
			if others[m.Name] {
				b.reportMember(t, m)
			}
			methods[m.Name] = true
		default:
			if decl, ok := m.Decl.(*ast.PropertyDecl); ok && decl.ExplicitInterface != nil {
				continue
			}
			if others[m.Name] || methods[m.Name] {
				b.reportMember(t, m)
			}
			others[m.Name] = true
		}
	}
}

func (b *Builder) reportMember(t *Type, m *Member) {
	b.report(t.Unit, diag.Errorf(diag.CodeDuplicateInType, MemberPos(m),
		"The type '%s' already contains a definition for '%s'", t.FullName(), m.Name))
}

func (b *Builder) checkExterns(externs []*ast.ExternAlias) {
	for _, extern := range externs {
		if _, ok := b.space.Hierarchies[extern.Name]; !ok {
			b.sink.Report(diag.Errorf(diag.CodeUnknownExternAlias, extern.Token.Pos,
				"The extern alias '%s' was not specified in a /reference option", extern.Name))
		}
	}
}

// MemberPos returns the position of the name of m.
func MemberPos(m *Member) token.Position {
	if m.Var != nil {
		return m.Var.Token.Pos
	}
	switch decl := m.Decl.(type) {
	case *ast.PropertyDecl:
		return decl.NameToken.Pos
	case *ast.MethodDecl:
		return decl.NameToken.Pos
	case *ast.EnumMemberDecl:
		return decl.Token.Pos
	case nil:
		return token.Position{}
	}
	return m.Decl.Pos()
}

func displayName(ns *Namespace) string {
	if ns.IsGlobal() {
		return "<global namespace>"
	}
	return ns.FullName()
}
