package ast

import "kerml.dev/sysml/kerml/token"

// DefinitionKind discriminates the ~23 definition productions, which all
// share one grammar shape. A closed enum replaces a string `$type` tag with
// a single-byte discriminant, cheaper to compare and switch on.
type DefinitionKind uint8

const (
	PartDefinition DefinitionKind = iota
	ItemDefinition
	AttributeDefinition
	EnumerationDefinition
	ActionDefinition
	StateDefinition
	ConstraintDefinition
	RequirementDefinition
	PortDefinition
	ConnectionDefinition
	InterfaceDefinition
	FlowConnectionDefinition
	AllocationDefinition
	CalculationDefinition
	CaseDefinition
	AnalysisCaseDefinition
	VerificationCaseDefinition
	UseCaseDefinition
	ViewDefinition
	ViewpointDefinition
	RenderingDefinition
	MetadataDefinition
	OccurrenceDefinition
	ConcernDefinition
)

// String returns the keyword that introduces this definition kind.
func (k DefinitionKind) String() string {
	switch k {
	case PartDefinition:
		return "part"
	case ItemDefinition:
		return "item"
	case AttributeDefinition:
		return "attribute"
	case EnumerationDefinition:
		return "enum"
	case ActionDefinition:
		return "action"
	case StateDefinition:
		return "state"
	case ConstraintDefinition:
		return "constraint"
	case RequirementDefinition:
		return "requirement"
	case PortDefinition:
		return "port"
	case ConnectionDefinition:
		return "connection"
	case InterfaceDefinition:
		return "interface"
	case FlowConnectionDefinition:
		return "flow"
	case AllocationDefinition:
		return "allocation"
	case CalculationDefinition:
		return "calc"
	case CaseDefinition:
		return "case"
	case AnalysisCaseDefinition:
		return "analysis"
	case VerificationCaseDefinition:
		return "verification"
	case UseCaseDefinition:
		return "use case"
	case ViewDefinition:
		return "view"
	case ViewpointDefinition:
		return "viewpoint"
	case RenderingDefinition:
		return "rendering"
	case MetadataDefinition:
		return "metadata"
	case OccurrenceDefinition:
		return "occurrence"
	case ConcernDefinition:
		return "concern"
	default:
		return "def"
	}
}

// Definition is the shared node shape for every `<kind> def ...` production.
type Definition struct {
	base
	Kind            DefinitionKind
	Name            *Ident // nil for an anonymous definition
	IsAbstract      bool
	IsVariation     bool
	IsParallel      bool // StateDefinition only
	Specializations []*QualifiedName
	DisjointTypes   []*QualifiedName
	Body            *TypeBody // nil when terminated by ';'
}

func (*Definition) declNode()   {}
func (*Definition) elementNode() {}

// UsageKind discriminates the usage productions, which mirror DefinitionKind
// one for one.
type UsageKind = DefinitionKind

// Direction is the optional parameter direction on a usage.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionIn
	DirectionOut
	DirectionInout
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionInout:
		return "inout"
	default:
		return ""
	}
}

// RelationKind discriminates the optional feature-refinement relation on a
// usage: `:>`, `:>>`, `subsets`, `redefines`, or `references`.
type RelationKind int

const (
	RelationNone RelationKind = iota
	RelationSubsets           // :>
	RelationRedefines         // :>>
	RelationSubsetsKeyword    // subsets
	RelationRedefinesKeyword  // redefines
	RelationReferences        // references
)

// ValueKind discriminates the optional value-binding operator on a usage:
// `=`, `:=`, or `::=`.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueAssign         // =
	ValueBind           // :=
	ValueComputed       // ::=
)

// Usage is the shared node shape for every `<kind> <name>? ...` usage
// production.
type Usage struct {
	base
	Kind          UsageKind
	Name          *Ident // nil for an anonymous usage
	Direction     Direction
	IsReadonly    bool
	IsDerived     bool
	IsAbstract    bool
	IsEnd         bool
	IsRef         bool
	IsComposite   bool
	IsPortion     bool
	FeatureTypes  []*QualifiedName
	Multiplicity  *MultiplicityBounds
	Relation      RelationKind
	RelationTarget *QualifiedName
	ValueKind     ValueKind
	Value         Expr
	Body          *FeatureBody // nil when terminated by ';'
}

func (*Usage) declNode()   {}
func (*Usage) elementNode() {}

// MultiplicityBounds is `[L..U]` or `[N]`; bounds are kept as the literal
// lexeme so that `0xFF`/`*` notation survives unparsed.
type MultiplicityBounds struct {
	base
	LowerBound string // "" if absent; the single-bound form reuses UpperBound
	UpperBound string
}

func (*MultiplicityBounds) elementNode() {}

// NewDefinition constructs a Definition with its span already set, for use by
// the parser once a production completes.
func NewDefinition(kind DefinitionKind, start, end token.Pos) *Definition {
	d := &Definition{Kind: kind}
	d.startPos, d.endPos = start, end
	return d
}

// NewUsage constructs a Usage with its span already set.
func NewUsage(kind UsageKind, start, end token.Pos) *Usage {
	u := &Usage{Kind: kind}
	u.startPos, u.endPos = start, end
	return u
}
