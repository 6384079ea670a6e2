package ast

// Transition is `transition [name] first <state-ref> [accept <event>]
// [if <guard>] [do action <effect>] then <state-ref> ';'`.
//
// `first` always opens the statement and `then` always closes it; the three
// optional segments between them (accept/if/do) are accepted in any relative
// order, and a repeated segment replaces the earlier one. The grammar does
// not fix their relative semantic precedence.
type Transition struct {
	base
	Name   *Ident
	First  *QualifiedName
	Accept *QualifiedName
	Guard  Expr
	Effect *QualifiedName
	Then   *QualifiedName
}

func (*Transition) declNode()   {}
func (*Transition) elementNode() {}

// Succession is `succession [name] first <step> ('then' <step>)+ ';'`.
type Succession struct {
	base
	Name  *Ident
	Steps []*QualifiedName
}

func (*Succession) declNode()   {}
func (*Succession) elementNode() {}

// Connector is a structural connection between two usages.
type Connector struct {
	base
	Name *Ident
	From *QualifiedName
	To   *QualifiedName
}

func (*Connector) declNode()   {}
func (*Connector) elementNode() {}

// Binding binds two features to the same value.
type Binding struct {
	base
	Name *Ident
	X    *QualifiedName
	Y    *QualifiedName
}

func (*Binding) declNode()   {}
func (*Binding) elementNode() {}

// Flow is an item flow between two usages.
type Flow struct {
	base
	Name *Ident
	From *QualifiedName
	To   *QualifiedName
}

func (*Flow) declNode()   {}
func (*Flow) elementNode() {}

// EntryAction, ExitAction, and DoAction name the behavior invoked when a
// state is entered, exited, or while active.
type EntryAction struct {
	base
	Behavior *QualifiedName
}

func (*EntryAction) declNode()   {}
func (*EntryAction) elementNode() {}

type ExitAction struct {
	base
	Behavior *QualifiedName
}

func (*ExitAction) declNode()   {}
func (*ExitAction) elementNode() {}

type DoAction struct {
	base
	Behavior *QualifiedName
}

func (*DoAction) declNode()   {}
func (*DoAction) elementNode() {}

// IfAction is `if <guard> <then-body> [else <else-body>]`.
type IfAction struct {
	base
	Guard    Expr
	Then     *FeatureBody
	Else     *FeatureBody
}

func (*IfAction) declNode()   {}
func (*IfAction) elementNode() {}

// WhileAction is `while <guard> [until <stop>] <body>`.
type WhileAction struct {
	base
	Guard Expr
	Until Expr
	Body  *FeatureBody
}

func (*WhileAction) declNode()   {}
func (*WhileAction) elementNode() {}

// ForAction is `for <var> in <source> <body>`.
type ForAction struct {
	base
	Variable *Ident
	Source   Expr
	Body     *FeatureBody
}

func (*ForAction) declNode()   {}
func (*ForAction) elementNode() {}

// AssignAction is `assign <target> := <value>`.
type AssignAction struct {
	base
	Target *QualifiedName
	Value  Expr
}

func (*AssignAction) declNode()   {}
func (*AssignAction) elementNode() {}

// SendAction is `send <payload> [to <target>] [via <port>]`.
type SendAction struct {
	base
	Payload Expr
	To      *QualifiedName
	Via     *QualifiedName
}

func (*SendAction) declNode()   {}
func (*SendAction) elementNode() {}

// AcceptAction is `accept <payload-type> [via <port>]`.
type AcceptAction struct {
	base
	PayloadType *QualifiedName
	Via         *QualifiedName
}

func (*AcceptAction) declNode()   {}
func (*AcceptAction) elementNode() {}

// PerformAction invokes a behavior usage.
type PerformAction struct {
	base
	Behavior *QualifiedName
}

func (*PerformAction) declNode()   {}
func (*PerformAction) elementNode() {}

// AssertAction is `assert <constraint-expr>`.
type AssertAction struct {
	base
	IsNegated bool
	Constraint Expr
}

func (*AssertAction) declNode()   {}
func (*AssertAction) elementNode() {}
