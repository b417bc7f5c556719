package diag

// Lexer and preprocessor.
const (
	CodeUnexpectedCharacter  = "CS1056"
	CodeNewlineInConstant    = "CS1010"
	CodeUnterminatedComment  = "CS1035"
	CodeTooManyCharsInChar   = "CS1012"
	CodeEndifExpected        = "CS1027"
	CodeUnexpectedDirective  = "CS1028"
	CodeInvalidPreprocessor  = "CS1517"
	CodeUserError            = "CS1029"
	CodeUserWarning          = "CS1030"
	CodeIdentifierExpected   = "CS1001"
	CodeSemicolonExpected    = "CS1002"
	CodeSyntaxError          = "CS1003"
	CodeCloseBraceExpected   = "CS1513"
	CodeOpenBraceExpected    = "CS1514"
	CodeInvalidExpression    = "CS1525"
	CodeInvalidMemberToken   = "CS1519"
	CodeTypeExpected         = "CS1031"
	CodeNamespaceMemberError = "CS0116"
)

// Declaration space.
const (
	CodeDuplicateInNamespace   = "CS0101"
	CodeDuplicateInType        = "CS0102"
	CodeMissingPartial         = "CS0260"
	CodePartialKindMismatch    = "CS0261"
	CodePartialAccessConflict  = "CS0262"
	CodePartialTypeParamNames  = "CS0264"
	CodeDuplicateTypeParameter = "CS0692"
	CodeTypeParamSameAsType    = "CS0694"
	CodeUnknownExternAlias     = "CS0430"
	CodeDuplicateMethod        = "CS0111"
)

// Resolution.
const (
	CodeTypeNotFound            = "CS0246"
	CodeNameNotFound            = "CS0103"
	CodeNamespaceMemberNotFound = "CS0234"
	CodeNestedTypeNotFound      = "CS0426"
	CodeInaccessible            = "CS0122"
	CodeAmbiguous               = "CS0104"
	CodeWrongKind               = "CS0118"
	CodeUsingOnType             = "CS0138"
	CodeWrongArity              = "CS0305"
	CodeTypeParamMemberLookup   = "CS0704"
	CodeAliasNotFound           = "CS0432"
	CodeAliasIsType             = "CS0431"
	CodeCircularBase            = "CS0146"
	CodeSealedBase              = "CS0509"
	CodeStaticBase              = "CS0709"
	CodeBaseNotInterface        = "CS0527"
	CodeMultipleBaseClasses     = "CS1721"
	CodeBaseClassNotFirst       = "CS1722"
	CodeTypeInBoth              = "CS0433"
)

// Accessibility.
const (
	CodeMultipleProtection        = "CS0107"
	CodeNamespaceMemberAccess     = "CS1527"
	CodeProtectedInStruct         = "CS0666"
	CodeProtectedInSealed         = "CS0628"
	CodeProtectedInStatic         = "CS1057"
	CodeModifierNotValid          = "CS0106"
	CodeInconsistentBaseClass     = "CS0060"
	CodeInconsistentBaseInterface = "CS0061"
	CodeInconsistentFieldType     = "CS0052"
	CodeInconsistentReturnType    = "CS0050"
	CodeInconsistentParameterType = "CS0051"
	CodeInconsistentPropertyType  = "CS0053"
	CodeOverrideChangesAccess     = "CS0507"
)

// Generic constraints.
const (
	CodeCircularConstraint      = "CS0454"
	CodeInvalidConstraint       = "CS0701"
	CodeSpecialClassConstraint  = "CS0702"
	CodeClassStructWithType     = "CS0450"
	CodeClassConstraintNotFirst = "CS0406"
	CodeStructWithNew           = "CS0451"
	CodeUndeclaredTypeParameter = "CS0699"
	CodeDuplicateConstraint     = "CS0409"
	CodeConflictingConstraints  = "CS0455"
)
