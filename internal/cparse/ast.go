// Package cparse - abstract syntax tree for the supported C subset.
//
// The node set is deliberately closed: every expression carries a Kind tag
// from a fixed enumeration and downstream switches are exhaustive, so a new
// node kind is a deliberate, visible change rather than something an open
// type hierarchy absorbs silently.
//
// Every node records its exact byte span in the original source. Spans are
// the contract with the rewrite buffer: Text(unit, node) must return the
// verbatim source of the node.
package cparse

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the byte offset of the first character of the node.
	Pos() int
	// End returns the byte offset one past the last character of the node.
	End() int
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	// Kind returns the structural kind tag.
	Kind() ExprKind
	// Type returns the static type of the expression.
	Type() *Type
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ExprKind is the closed set of expression kind tags.
type ExprKind int

const (
	KindParen ExprKind = iota
	KindCast
	KindSubscript
	KindBinary
	KindCompoundAssign
	KindUnary
	KindCall
	KindNameRef
	KindMember
	KindIntLit
	KindFloatLit
	KindCharLit
	KindStringLit
	KindSizeof
	KindConditional
)

// ObjKind classifies declared objects.
type ObjKind int

const (
	ObjVar ObjKind = iota
	ObjParam
	ObjFunc
)

// Object is a declared entity. Name references resolve to Objects, and two
// references denote the same declaration exactly when they share an Object
// pointer. Identifiers used without a declaration get an implicit file-scope
// int Object, keeping pointer identity stable across all their uses.
type Object struct {
	Name     string
	Kind     ObjKind
	Type     *Type
	Off      int  // byte offset of the declaring occurrence
	Implicit bool // true for undeclared identifiers
}

// span is the embedded position pair shared by all nodes.
type span struct {
	pos, end int
}

func (s span) Pos() int { return s.pos }
func (s span) End() int { return s.end }

// --- expressions ---

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	span
	X Expr
}

// CastExpr is an explicit C-style cast with its written target type.
type CastExpr struct {
	span
	To *Type
	X  Expr
}

// SubscriptExpr is an array subscript, base[index].
type SubscriptExpr struct {
	span
	Base  Expr
	Index Expr
}

// BinaryOp enumerates binary operator codes, including the assignment
// forms. Plain assignment keeps the binary kind tag; the op= forms carry
// KindCompoundAssign, mirroring how a type checker separates the two.
type BinaryOp int

const (
	OpMul BinaryOp = iota
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLAnd
	OpLOr
	OpAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpAddAssign
	OpSubAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpXorAssign
	OpOrAssign
	OpComma
)

// IsAssign reports whether the operator stores to its left operand.
func (op BinaryOp) IsAssign() bool {
	return op >= OpAssign && op <= OpOrAssign
}

// IsCompoundAssign reports whether the operator is one of the op= forms.
func (op BinaryOp) IsCompoundAssign() bool {
	return op > OpAssign && op <= OpOrAssign
}

// IsComparison reports whether the operator yields an int truth value.
func (op BinaryOp) IsComparison() bool {
	return (op >= OpLt && op <= OpNe) || op == OpLAnd || op == OpLOr
}

// BinaryExpr is a binary or assignment expression.
type BinaryExpr struct {
	span
	Op   BinaryOp
	L, R Expr
	typ  *Type
}

// UnaryOp enumerates unary operator codes. Prefix and postfix
// increment/decrement are distinct codes, so a++ never compares identical
// to ++a.
type UnaryOp int

const (
	UnPostInc UnaryOp = iota
	UnPostDec
	UnPreInc
	UnPreDec
	UnAddrOf
	UnDeref
	UnPlus
	UnMinus
	UnBitNot
	UnLNot
)

// IsIncDec reports whether the operator mutates its operand.
func (op UnaryOp) IsIncDec() bool {
	return op <= UnPreDec
}

// UnaryExpr is a unary expression.
type UnaryExpr struct {
	span
	Op  UnaryOp
	X   Expr
	typ *Type
}

// CallExpr is a function call. The callee is an ordinary child expression,
// so structural identity of two calls compares callees the same way it
// compares arguments.
type CallExpr struct {
	span
	Callee Expr
	Args   []Expr
	typ    *Type
}

// NameRef is a reference to a declared object.
type NameRef struct {
	span
	Name string
	Obj  *Object
}

// MemberExpr is a struct/union member access, base.name or base->name.
type MemberExpr struct {
	span
	Base  Expr
	Name  string
	Arrow bool
	typ   *Type
}

// IntLit is an integer literal. Value holds the parsed value and the
// literal's type fixes its bit width; Text is the verbatim source spelling.
type IntLit struct {
	span
	Text  string
	Value uint64
	typ   *Type
}

// FloatLit is a floating literal. Bits is the IEEE-754 bit pattern of the
// parsed value, compared bitwise so negative zero stays distinct.
type FloatLit struct {
	span
	Text string
	Bits uint64
	typ  *Type
}

// CharLit is a character literal with its decoded value.
type CharLit struct {
	span
	Text  string
	Value int64
}

// StringLit is a string literal with its decoded bytes.
type StringLit struct {
	span
	Text  string
	Bytes string
}

// SizeofExpr is sizeof applied to an expression or a parenthesized type.
type SizeofExpr struct {
	span
	X  Expr  // nil for sizeof(type)
	Ty *Type // nil for sizeof expr
}

// CondExpr is the ternary conditional operator.
type CondExpr struct {
	span
	Cond, Then, Else Expr
	typ              *Type
}

func (*ParenExpr) exprNode()     {}
func (*CastExpr) exprNode()      {}
func (*SubscriptExpr) exprNode() {}
func (*BinaryExpr) exprNode()    {}
func (*UnaryExpr) exprNode()     {}
func (*CallExpr) exprNode()      {}
func (*NameRef) exprNode()       {}
func (*MemberExpr) exprNode()    {}
func (*IntLit) exprNode()        {}
func (*FloatLit) exprNode()      {}
func (*CharLit) exprNode()       {}
func (*StringLit) exprNode()     {}
func (*SizeofExpr) exprNode()    {}
func (*CondExpr) exprNode()      {}

func (e *ParenExpr) Kind() ExprKind     { return KindParen }
func (e *CastExpr) Kind() ExprKind      { return KindCast }
func (e *SubscriptExpr) Kind() ExprKind { return KindSubscript }
func (e *BinaryExpr) Kind() ExprKind {
	if e.Op.IsCompoundAssign() {
		return KindCompoundAssign
	}
	return KindBinary
}
func (e *UnaryExpr) Kind() ExprKind  { return KindUnary }
func (e *CallExpr) Kind() ExprKind   { return KindCall }
func (e *NameRef) Kind() ExprKind    { return KindNameRef }
func (e *MemberExpr) Kind() ExprKind { return KindMember }
func (e *IntLit) Kind() ExprKind     { return KindIntLit }
func (e *FloatLit) Kind() ExprKind   { return KindFloatLit }
func (e *CharLit) Kind() ExprKind    { return KindCharLit }
func (e *StringLit) Kind() ExprKind  { return KindStringLit }
func (e *SizeofExpr) Kind() ExprKind { return KindSizeof }
func (e *CondExpr) Kind() ExprKind   { return KindConditional }

func (e *ParenExpr) Type() *Type { return e.X.Type() }
func (e *CastExpr) Type() *Type  { return e.To }
func (e *SubscriptExpr) Type() *Type {
	if bt := e.Base.Type(); bt != nil && (bt.Form == FormPointer || bt.Form == FormArray) {
		return bt.Elem
	}
	if it := e.Index.Type(); it != nil && (it.Form == FormPointer || it.Form == FormArray) {
		return it.Elem
	}
	return TypeVoid
}
func (e *BinaryExpr) Type() *Type { return e.typ }
func (e *UnaryExpr) Type() *Type  { return e.typ }
func (e *CallExpr) Type() *Type   { return e.typ }
func (e *NameRef) Type() *Type {
	if e.Obj == nil {
		return TypeInt
	}
	return e.Obj.Type
}
func (e *MemberExpr) Type() *Type { return e.typ }
func (e *IntLit) Type() *Type     { return e.typ }
func (e *FloatLit) Type() *Type   { return e.typ }
func (e *CharLit) Type() *Type    { return TypeInt }
func (e *StringLit) Type() *Type  { return PointerTo(TypeChar) }
func (e *SizeofExpr) Type() *Type { return TypeULong }
func (e *CondExpr) Type() *Type   { return e.typ }

// --- statements ---

// CompoundStmt is a brace-enclosed statement block.
type CompoundStmt struct {
	span
	Stmts []Stmt
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	span
	X Expr
}

// IfStmt is an if statement with optional else branch.
type IfStmt struct {
	span
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

// WhileStmt is a while loop.
type WhileStmt struct {
	span
	Cond Expr
	Body Stmt
}

// DoStmt is a do/while loop.
type DoStmt struct {
	span
	Body Stmt
	Cond Expr
}

// ForStmt is a for loop. Init is a DeclStmt, ExprStmt or nil; Cond and Post
// may be nil.
type ForStmt struct {
	span
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
}

// ReturnStmt is a return statement with optional value.
type ReturnStmt struct {
	span
	X Expr // nil for bare return
}

// VarDecl is one declarator in a declaration statement.
type VarDecl struct {
	span
	Obj  *Object
	Init Expr // nil when absent
}

// DeclStmt is a declaration statement. Multiple declarators share one
// statement, which matters to the eligibility filter.
type DeclStmt struct {
	span
	Decls []*VarDecl
}

// BreakStmt is a break statement.
type BreakStmt struct{ span }

// ContinueStmt is a continue statement.
type ContinueStmt struct{ span }

// NullStmt is a lone semicolon.
type NullStmt struct{ span }

func (*CompoundStmt) stmtNode() {}
func (*ExprStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*DeclStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*NullStmt) stmtNode()     {}

// --- top level ---

// FuncDecl is a function declaration or definition.
type FuncDecl struct {
	span
	Name   string
	Obj    *Object
	Params []*Object
	Body   *CompoundStmt // nil for a prototype
}

// IsDefinition reports whether the declaration carries a body.
func (f *FuncDecl) IsDefinition() bool { return f.Body != nil }

// RecordDecl is a standalone struct/union definition.
type RecordDecl struct {
	span
	Record *Record
}

// Include records one #include directive in the main file.
type Include struct {
	Name string // header name without the <> or "" delimiters
	Off  int    // byte offset of the '#'
}

// TranslationUnit is the parsed form of one source file. The declaration
// list preserves source order; Includes preserves directive order.
type TranslationUnit struct {
	FileName string
	Src      string
	Decls    []Node // *FuncDecl, *DeclStmt (globals) or *RecordDecl
	Includes []Include
}

// Pos returns 0; the unit spans the whole file.
func (u *TranslationUnit) Pos() int { return 0 }

// End returns the offset one past the last character of the file.
func (u *TranslationUnit) End() int { return len(u.Src) }

// FirstInclude returns the first inclusion of the named header, if any.
func (u *TranslationUnit) FirstInclude(name string) (Include, bool) {
	for _, inc := range u.Includes {
		if inc.Name == name {
			return inc, true
		}
	}
	return Include{}, false
}

// Text returns the exact source text of a node.
func (u *TranslationUnit) Text(n Node) string {
	return u.Src[n.Pos():n.End()]
}

// StripParens removes parenthesization wrappers. The frontend materializes
// no implicit casts, so this is the de-wrapping the identity comparator and
// the exclusion scanners operate through.
func StripParens(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// StripParenCasts removes parenthesization and explicit cast wrappers.
func StripParenCasts(e Expr) Expr {
	for {
		switch n := e.(type) {
		case *ParenExpr:
			e = n.X
		case *CastExpr:
			e = n.X
		default:
			return e
		}
	}
}

// Children returns the child expressions of an expression in source order.
// For calls the callee comes first, so comparing children pairwise visits
// the callee before the arguments.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *ParenExpr:
		return []Expr{n.X}
	case *CastExpr:
		return []Expr{n.X}
	case *SubscriptExpr:
		return []Expr{n.Base, n.Index}
	case *BinaryExpr:
		return []Expr{n.L, n.R}
	case *UnaryExpr:
		return []Expr{n.X}
	case *CallExpr:
		kids := make([]Expr, 0, len(n.Args)+1)
		kids = append(kids, n.Callee)
		kids = append(kids, n.Args...)
		return kids
	case *MemberExpr:
		return []Expr{n.Base}
	case *SizeofExpr:
		if n.X != nil {
			return []Expr{n.X}
		}
		return nil
	case *CondExpr:
		return []Expr{n.Cond, n.Then, n.Else}
	}
	return nil
}

// Inspect walks the tree rooted at n in pre-order, calling f for every
// node. If f returns false the node's children are skipped. The traversal
// covers statements, expressions and declarators.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch x := n.(type) {
	case *TranslationUnit:
		for _, d := range x.Decls {
			Inspect(d, f)
		}
	case *FuncDecl:
		if x.Body != nil {
			Inspect(x.Body, f)
		}
	case *RecordDecl:
		// no children
	case *CompoundStmt:
		for _, s := range x.Stmts {
			Inspect(s, f)
		}
	case *ExprStmt:
		Inspect(x.X, f)
	case *IfStmt:
		Inspect(x.Cond, f)
		Inspect(x.Then, f)
		if x.Else != nil {
			Inspect(x.Else, f)
		}
	case *WhileStmt:
		Inspect(x.Cond, f)
		Inspect(x.Body, f)
	case *DoStmt:
		Inspect(x.Body, f)
		Inspect(x.Cond, f)
	case *ForStmt:
		if x.Init != nil {
			Inspect(x.Init, f)
		}
		if x.Cond != nil {
			Inspect(x.Cond, f)
		}
		if x.Post != nil {
			Inspect(x.Post, f)
		}
		Inspect(x.Body, f)
	case *ReturnStmt:
		if x.X != nil {
			Inspect(x.X, f)
		}
	case *DeclStmt:
		for _, d := range x.Decls {
			Inspect(d, f)
		}
	case *VarDecl:
		if x.Init != nil {
			Inspect(x.Init, f)
		}
	case Expr:
		for _, c := range Children(x) {
			Inspect(c, f)
		}
	}
}
