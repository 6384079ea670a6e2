package ast

import "kerml.dev/sysml/kerml/token"

// BasicLit is a literal atom: an integer, real, string, or the keyword
// literals true/false/null.
type BasicLit struct {
	base
	Kind  token.Token // INT, FLOAT, STRING, TRUE, FALSE, or NULL
	Value string      // the literal's lexeme, unescaped for STRING
}

func (*BasicLit) exprNode() {}

// UnaryExpr is a prefix operator applied to X: `+ - ! not ~` (level 13).
type UnaryExpr struct {
	base
	Op token.Token
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryExpr is an infix operator applied to X and Y, per the fifteen-level
// precedence table.
type BinaryExpr struct {
	base
	X  Expr
	Op token.Token
	Y  Expr
}

func (*BinaryExpr) exprNode() {}

// RangeExpr is `Low .. High` (level 9, non-associative).
type RangeExpr struct {
	base
	Low  Expr
	High Expr
}

func (*RangeExpr) exprNode() {}

// ConditionalExpr is `Cond ? Then : Else` (level 1, right-associative).
type ConditionalExpr struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func (*ConditionalExpr) exprNode() {}

// ClassificationExpr is one of `X hastype T`, `X istype T`, `X as T`,
// `X @ T`, or `X meta T` (level 6).
type ClassificationExpr struct {
	base
	X    Expr
	Op   token.Token
	Type *QualifiedName
}

func (*ClassificationExpr) exprNode() {}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	base
	X Expr
}

func (*ParenExpr) exprNode() {}

// FeatureChainExpr is `X.Sel`, a feature-chain postfix step (level 14).
type FeatureChainExpr struct {
	base
	X   Expr
	Sel *Ident
}

func (*FeatureChainExpr) exprNode() {}

// InvocationExpr is `Fun(Args...)`, a call postfix step (level 14).
type InvocationExpr struct {
	base
	Fun  Expr
	Args []Expr
}

func (*InvocationExpr) exprNode() {}

// ExtentExpr is `all T`, the extent-of-type atom (level 15).
type ExtentExpr struct {
	base
	Type *QualifiedName
}

func (*ExtentExpr) exprNode() {}
