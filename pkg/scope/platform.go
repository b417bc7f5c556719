package scope

import (
	"strings"

	"csresolve/pkg/ast"
)

// PlatformName is the unit name of the built-in platform library.
const PlatformName = "mscorlib"

// libraryType describes one platform type. Members are written as
// "kind:Name" with kind one of M (method), P (property), F (field), E (event).
type libraryType struct {
	name    string
	params  []string
	kind    ast.TypeKind
	mods    ast.Modifiers
	base    string
	ifaces  []string
	members []string
}

var objectMembers = []string{"M:ToString", "M:Equals", "M:GetHashCode", "M:GetType", "M:ReferenceEquals"}

var library = []libraryType{
	{name: "System.Object", members: objectMembers},
	{name: "System.ValueType", mods: ast.ModAbstract, base: "System.Object"},
	{name: "System.Enum", mods: ast.ModAbstract, base: "System.ValueType", members: []string{"M:Parse", "M:GetValues", "M:HasFlag"}},
	{name: "System.Void", kind: ast.KindStruct},
	{name: "System.Boolean", kind: ast.KindStruct, members: []string{"M:Parse"}},
	{name: "System.Char", kind: ast.KindStruct, members: []string{"M:IsDigit", "M:IsLetter"}},
	{name: "System.SByte", kind: ast.KindStruct},
	{name: "System.Byte", kind: ast.KindStruct},
	{name: "System.Int16", kind: ast.KindStruct},
	{name: "System.UInt16", kind: ast.KindStruct},
	{name: "System.Int32", kind: ast.KindStruct, ifaces: []string{"System.IComparable`1"}, members: []string{"F:MaxValue", "F:MinValue", "M:Parse", "M:TryParse"}},
	{name: "System.UInt32", kind: ast.KindStruct},
	{name: "System.Int64", kind: ast.KindStruct, members: []string{"F:MaxValue", "F:MinValue", "M:Parse"}},
	{name: "System.UInt64", kind: ast.KindStruct},
	{name: "System.Single", kind: ast.KindStruct},
	{name: "System.Double", kind: ast.KindStruct, members: []string{"F:NaN", "M:Parse"}},
	{name: "System.Decimal", kind: ast.KindStruct},
	{name: "System.IntPtr", kind: ast.KindStruct},
	{name: "System.String", mods: ast.ModSealed, base: "System.Object", ifaces: []string{"System.IComparable`1", "System.Collections.Generic.IEnumerable`1"},
		members: []string{"F:Empty", "P:Length", "M:Format", "M:Concat", "M:Join", "M:IsNullOrEmpty", "M:Substring", "M:Split", "M:Trim", "M:Contains", "M:StartsWith", "M:Replace"}},
	{name: "System.Array", mods: ast.ModAbstract, base: "System.Object", ifaces: []string{"System.Collections.IEnumerable"}, members: []string{"P:Length", "M:Empty", "M:Sort", "M:IndexOf"}},
	{name: "System.Delegate", mods: ast.ModAbstract, base: "System.Object", members: []string{"M:Invoke", "M:Combine"}},
	{name: "System.MulticastDelegate", mods: ast.ModAbstract, base: "System.Delegate"},
	{name: "System.Attribute", mods: ast.ModAbstract, base: "System.Object"},
	{name: "System.Exception", base: "System.Object", members: []string{"P:Message", "P:InnerException", "P:StackTrace"}},
	{name: "System.SystemException", base: "System.Exception"},
	{name: "System.ArgumentException", base: "System.SystemException", members: []string{"P:ParamName"}},
	{name: "System.ArgumentNullException", base: "System.ArgumentException"},
	{name: "System.InvalidOperationException", base: "System.SystemException"},
	{name: "System.NotImplementedException", base: "System.SystemException"},
	{name: "System.NotSupportedException", base: "System.SystemException"},
	{name: "System.EventArgs", base: "System.Object", members: []string{"F:Empty"}},
	{name: "System.EventHandler", kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.EventHandler", params: []string{"TEventArgs"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Action", kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Action", params: []string{"T"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Action", params: []string{"T1", "T2"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Func", params: []string{"TResult"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Func", params: []string{"T", "TResult"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Func", params: []string{"T1", "T2", "TResult"}, kind: ast.KindDelegate, mods: ast.ModSealed, base: "System.MulticastDelegate"},
	{name: "System.Nullable", params: []string{"T"}, kind: ast.KindStruct, members: []string{"P:HasValue", "P:Value", "M:GetValueOrDefault"}},
	{name: "System.IDisposable", kind: ast.KindInterface, members: []string{"M:Dispose"}},
	{name: "System.IComparable", params: []string{"T"}, kind: ast.KindInterface, members: []string{"M:CompareTo"}},
	{name: "System.IEquatable", params: []string{"T"}, kind: ast.KindInterface, members: []string{"M:Equals"}},
	{name: "System.ICloneable", kind: ast.KindInterface, members: []string{"M:Clone"}},
	{name: "System.Type", mods: ast.ModAbstract, base: "System.Object", members: []string{"P:Name", "P:FullName", "M:GetType"}},
	{name: "System.Console", mods: ast.ModStatic, base: "System.Object", members: []string{"M:WriteLine", "M:Write", "M:ReadLine", "P:Out"}},
	{name: "System.Math", mods: ast.ModStatic, base: "System.Object", members: []string{"F:PI", "M:Abs", "M:Max", "M:Min", "M:Sqrt", "M:Pow", "M:Round"}},
	{name: "System.Convert", mods: ast.ModStatic, base: "System.Object", members: []string{"M:ToInt32", "M:ToString"}},
	{name: "System.GC", mods: ast.ModStatic, base: "System.Object", members: []string{"M:Collect", "M:SuppressFinalize"}},
	{name: "System.Random", base: "System.Object", members: []string{"M:Next"}},
	{name: "System.DateTime", kind: ast.KindStruct, members: []string{"P:Now", "P:UtcNow"}},
	{name: "System.TimeSpan", kind: ast.KindStruct},
	{name: "System.Guid", kind: ast.KindStruct, members: []string{"M:NewGuid"}},
	{name: "System.SerializableAttribute", mods: ast.ModSealed, base: "System.Attribute"},
	{name: "System.ObsoleteAttribute", mods: ast.ModSealed, base: "System.Attribute"},
	{name: "System.FlagsAttribute", base: "System.Attribute"},
	{name: "System.AttributeUsageAttribute", mods: ast.ModSealed, base: "System.Attribute"},

	{name: "System.Collections.IEnumerable", kind: ast.KindInterface, members: []string{"M:GetEnumerator"}},
	{name: "System.Collections.IEnumerator", kind: ast.KindInterface, members: []string{"M:MoveNext", "P:Current", "M:Reset"}},
	{name: "System.Collections.ArrayList", base: "System.Object", ifaces: []string{"System.Collections.IEnumerable"}, members: []string{"M:Add", "P:Count"}},
	{name: "System.Collections.Hashtable", base: "System.Object", ifaces: []string{"System.Collections.IEnumerable"}, members: []string{"M:Add", "P:Count"}},
	{name: "System.Collections.Generic.IEnumerable", params: []string{"T"}, kind: ast.KindInterface, ifaces: []string{"System.Collections.IEnumerable"}, members: []string{"M:GetEnumerator"}},
	{name: "System.Collections.Generic.IEnumerator", params: []string{"T"}, kind: ast.KindInterface, ifaces: []string{"System.IDisposable", "System.Collections.IEnumerator"}, members: []string{"P:Current"}},
	{name: "System.Collections.Generic.ICollection", params: []string{"T"}, kind: ast.KindInterface, ifaces: []string{"System.Collections.Generic.IEnumerable`1"}, members: []string{"P:Count", "M:Add", "M:Clear", "M:Contains", "M:Remove"}},
	{name: "System.Collections.Generic.IList", params: []string{"T"}, kind: ast.KindInterface, ifaces: []string{"System.Collections.Generic.ICollection`1"}, members: []string{"M:IndexOf", "M:Insert", "M:RemoveAt"}},
	{name: "System.Collections.Generic.IDictionary", params: []string{"TKey", "TValue"}, kind: ast.KindInterface, members: []string{"M:Add", "M:ContainsKey", "M:TryGetValue", "P:Keys", "P:Values"}},
	{name: "System.Collections.Generic.IComparer", params: []string{"T"}, kind: ast.KindInterface, members: []string{"M:Compare"}},
	{name: "System.Collections.Generic.List", params: []string{"T"}, base: "System.Object", ifaces: []string{"System.Collections.Generic.IList`1"},
		members: []string{"M:Add", "M:AddRange", "M:Clear", "M:Contains", "M:Remove", "M:Sort", "M:ToArray", "P:Count"}},
	{name: "System.Collections.Generic.Dictionary", params: []string{"TKey", "TValue"}, base: "System.Object", ifaces: []string{"System.Collections.Generic.IDictionary`2"},
		members: []string{"M:Add", "M:ContainsKey", "M:Remove", "M:TryGetValue", "P:Count", "P:Keys", "P:Values"}},
	{name: "System.Collections.Generic.HashSet", params: []string{"T"}, base: "System.Object", ifaces: []string{"System.Collections.Generic.ICollection`1"}, members: []string{"M:Add", "M:Contains", "P:Count"}},
	{name: "System.Collections.Generic.Queue", params: []string{"T"}, base: "System.Object", ifaces: []string{"System.Collections.Generic.IEnumerable`1"}, members: []string{"M:Enqueue", "M:Dequeue", "P:Count"}},
	{name: "System.Collections.Generic.Stack", params: []string{"T"}, base: "System.Object", ifaces: []string{"System.Collections.Generic.IEnumerable`1"}, members: []string{"M:Push", "M:Pop", "P:Count"}},
	{name: "System.Collections.Generic.KeyValuePair", params: []string{"TKey", "TValue"}, kind: ast.KindStruct, members: []string{"P:Key", "P:Value"}},
	{name: "System.Text.StringBuilder", mods: ast.ModSealed, base: "System.Object", members: []string{"M:Append", "M:AppendLine", "M:Clear", "P:Length"}},
	{name: "System.IO.TextWriter", mods: ast.ModAbstract, base: "System.Object", ifaces: []string{"System.IDisposable"}, members: []string{"M:Write", "M:WriteLine"}},
	{name: "System.IO.Stream", mods: ast.ModAbstract, base: "System.Object", ifaces: []string{"System.IDisposable"}, members: []string{"M:Read", "M:Write", "M:Close"}},
	{name: "System.IO.File", mods: ast.ModStatic, base: "System.Object", members: []string{"M:ReadAllText", "M:WriteAllText", "M:Exists", "M:Open"}},
	{name: "System.Threading.Tasks.Task", base: "System.Object", members: []string{"M:Run", "M:Wait", "M:Delay", "P:CompletedTask"}},
	{name: "System.Threading.Tasks.Task", params: []string{"TResult"}, base: "System.Threading.Tasks.Task`0", members: []string{"P:Result"}},
	{name: "System.Linq.Enumerable", mods: ast.ModStatic, base: "System.Object", members: []string{"M:Where", "M:Select", "M:First", "M:Any", "M:ToList", "M:Count"}},
}

// declarePlatform builds the library types in the global hierarchy. Base
// types are wired directly, so the resolver never resolves clauses for them.
func declarePlatform(space *Space, unit *Unit) {
	declared := make(map[string]*Type, len(library))
	for _, entry := range library {
		nsName, name := splitName(entry.name)
		ns := space.Global.Root
		for _, part := range strings.Split(nsName, ".") {
			ns = ns.Child(part)
		}
		t := NewType(name, len(entry.params), entry.kind, unit, ns, nil)
		t.Access = AccessPublic
		t.Modifiers = ast.ModPublic | entry.mods
		for i, param := range entry.params {
			t.TypeParams = append(t.TypeParams, &TypeParam{Name: param, Ordinal: i, Owner: t, State: StateDone})
		}
		for _, member := range entry.members {
			code, memberName, _ := strings.Cut(member, ":")
			m := &Member{Name: memberName, Kind: memberKinds[code], Access: AccessPublic, Modifiers: ast.ModPublic}
			if t.IsStatic() {
				m.Modifiers |= ast.ModStatic
			}
			t.AddMember(m)
		}
		t.BaseState = StateDone
		ns.Types[t.Key()] = append(ns.Types[t.Key()], t)
		declared[libraryKey(entry.name, len(entry.params))] = t
	}
	for _, entry := range library {
		t := declared[libraryKey(entry.name, len(entry.params))]
		switch {
		case entry.base != "":
			t.Base = declared[libraryRef(entry.base)]
		case t.Kind == ast.KindStruct:
			t.Base = declared["System.ValueType`0"]
		}
		for _, iface := range entry.ifaces {
			if resolved := declared[libraryRef(iface)]; resolved != nil {
				t.Interfaces = append(t.Interfaces, resolved)
			}
		}
	}
}

var memberKinds = map[string]MemberKind{
	"M": MemberMethod,
	"P": MemberProperty,
	"F": MemberField,
	"E": MemberEvent,
}

func splitName(fullName string) (string, string) {
	i := strings.LastIndexByte(fullName, '.')
	return fullName[:i], fullName[i+1:]
}

func libraryKey(name string, arity int) string {
	return name + "`" + string(rune('0'+arity))
}

// libraryRef normalises a base or interface reference to a libraryKey.
func libraryRef(ref string) string {
	if strings.Contains(ref, "`") {
		return ref
	}
	return ref + "`0"
}
