package token

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true, "default": true,
	"delegate": true, "do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true, "finally": true,
	"fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true, "out": true,
	"override": true, "params": true, "private": true, "protected": true, "public": true,
	"readonly": true, "ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// predefined maps the predefined type keywords to their System type names.
var predefined = map[string]string{
	"bool":    "Boolean",
	"byte":    "Byte",
	"sbyte":   "SByte",
	"char":    "Char",
	"decimal": "Decimal",
	"double":  "Double",
	"float":   "Single",
	"int":     "Int32",
	"uint":    "UInt32",
	"long":    "Int64",
	"ulong":   "UInt64",
	"short":   "Int16",
	"ushort":  "UInt16",
	"object":  "Object",
	"string":  "String",
	"void":    "Void",
}

// IsKeyword reports whether text is a reserved C# keyword.
func IsKeyword(text string) bool {
	return keywords[text]
}

// PredefinedType returns the System type name behind a predefined type keyword.
func PredefinedType(keyword string) (string, bool) {
	name, ok := predefined[keyword]
	return name, ok
}

// IsModifier reports whether text is a declaration modifier keyword.
func IsModifier(text string) bool {
	switch text {
	case "public", "private", "protected", "internal", "static", "sealed",
		"abstract", "virtual", "override", "readonly", "const", "extern",
		"unsafe", "volatile", "new", "partial", "async":
		return true
	}
	return false
}
