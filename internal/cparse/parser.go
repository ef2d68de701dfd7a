// Package cparse - recursive descent parser for the supported C subset.
//
// The parser covers the constructs that reduced C test cases are made of:
// global and local declarations, struct/union definitions with typed
// fields, function prototypes and definitions (including variadic
// prototypes such as printf's), the statement forms, and the full
// expression grammar with C precedence. It resolves every identifier to a
// declaration object and types every expression as it builds it.
//
// It is not a conforming C parser. Typedefs, enums, bitfields, K&R
// parameter lists and a few other constructs are parse errors; the caller
// surfaces those to the user rather than guessing.
package cparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError is a positioned syntax error.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface in file:line:column form.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Parser parses one translation unit.
type Parser struct {
	file string
	lex  *Lexer
	tok  Token // current token
	peek Token // one token of lookahead

	unit      *TranslationUnit
	fileScope *scope
	cur       *scope
	records   map[string]*Record
	errs      []*ParseError
}

// scope is a block-scoped symbol table.
type scope struct {
	parent *scope
	objs   map[string]*Object
}

func (s *scope) lookup(name string) *Object {
	for sc := s; sc != nil; sc = sc.parent {
		if obj, ok := sc.objs[name]; ok {
			return obj
		}
	}
	return nil
}

func (s *scope) declare(obj *Object) {
	s.objs[obj.Name] = obj
}

// Parse parses the given source text into a translation unit. On a syntax
// error the first error is returned; the unit may be partially populated
// and must not be used.
func Parse(filename, src string) (*TranslationUnit, error) {
	p := &Parser{
		file:    filename,
		lex:     NewLexer(src),
		records: map[string]*Record{},
		unit:    &TranslationUnit{FileName: filename, Src: src},
	}
	p.fileScope = &scope{objs: map[string]*Object{}}
	p.cur = p.fileScope

	// Prime the token pair. next() filters preprocessor directives out of
	// the token stream, recording include directives on the unit.
	p.tok = p.rawNext()
	p.peek = p.rawNext()

	for p.tok.Type != TokEOF {
		before := p.tok
		p.parseTopLevel()
		if p.tok == before {
			// No progress on an unrecognized construct; skip it.
			p.errorf("unexpected %s %q", p.tok.Type, p.tok.Lit)
			p.next()
		}
		if len(p.errs) > 0 {
			return p.unit, p.errs[0]
		}
	}
	return p.unit, nil
}

// rawNext fetches the next grammar token, consuming directive tokens on
// the way. Include directives are recorded in order of appearance.
func (p *Parser) rawNext() Token {
	for {
		t := p.lex.Next()
		if t.Type != TokDirective {
			return t
		}
		p.recordDirective(t)
	}
}

func (p *Parser) recordDirective(t Token) {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t.Lit), "#"))
	if !strings.HasPrefix(body, "include") {
		return
	}
	rest := strings.TrimSpace(strings.TrimPrefix(body, "include"))
	var name string
	switch {
	case strings.HasPrefix(rest, "<"):
		if i := strings.IndexByte(rest, '>'); i > 0 {
			name = rest[1:i]
		}
	case strings.HasPrefix(rest, "\""):
		if i := strings.IndexByte(rest[1:], '"'); i >= 0 {
			name = rest[1 : 1+i]
		}
	}
	if name != "" {
		p.unit.Includes = append(p.unit.Includes, Include{Name: name, Off: t.Off})
	}
}

func (p *Parser) next() {
	p.tok = p.peek
	p.peek = p.rawNext()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, &ParseError{
		File:    p.file,
		Line:    p.tok.Line,
		Column:  p.tok.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

// at reports whether the current token is the given punctuation or keyword.
func (p *Parser) at(lit string) bool {
	return (p.tok.Type == TokPunct || p.tok.Type == TokKeyword) && p.tok.Lit == lit
}

// accept consumes the current token when it matches.
func (p *Parser) accept(lit string) bool {
	if p.at(lit) {
		p.next()
		return true
	}
	return false
}

// expect consumes the current token when it matches and reports an error
// otherwise. It never consumes a non-matching token.
func (p *Parser) expect(lit string) {
	if !p.accept(lit) {
		p.errorf("expected %q, got %q", lit, p.tok.Lit)
	}
}

// typeStarters are the keywords that can begin a declaration.
var typeStarters = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "struct": true, "union": true,
	"const": true, "volatile": true, "static": true, "extern": true,
}

func (p *Parser) atTypeStart() bool {
	return p.tok.Type == TokKeyword && typeStarters[p.tok.Lit]
}

func (p *Parser) peekAtTypeStart() bool {
	return p.peek.Type == TokKeyword && typeStarters[p.peek.Lit]
}

// --- declarations ---

// parseTopLevel parses one external declaration: a function prototype or
// definition, a global variable declaration, or a standalone struct/union
// definition.
func (p *Parser) parseTopLevel() {
	if !p.atTypeStart() {
		p.errorf("expected declaration, got %q", p.tok.Lit)
		p.next()
		return
	}
	start := p.tok.Off
	base := p.parseDeclSpecifiers()

	// struct Foo { ... };  with no declarator.
	if p.at(";") {
		end := p.tok.End()
		p.next()
		if base.Form == FormRecord {
			p.unit.Decls = append(p.unit.Decls, &RecordDecl{span: span{start, end}, Record: base.Record})
		}
		return
	}

	ty, name, nameTok := p.parseDeclarator(base)
	if name == "" {
		p.errorf("expected declarator name")
		return
	}

	if p.at("(") {
		p.parseFunction(start, ty, name, nameTok)
		return
	}

	// Global variable declaration, possibly a comma list.
	ds := p.parseDeclRest(start, ty, name, nameTok, base)
	if ds != nil {
		p.unit.Decls = append(p.unit.Decls, ds)
	}
}

// parseDeclSpecifiers consumes declaration specifiers and builds the base
// type. Storage classes and qualifiers are accepted and discarded; the
// engine does not need them.
func (p *Parser) parseDeclSpecifiers() *Type {
	var (
		unsigned, signed bool
		longs            int
		short            bool
		char, float, dbl bool
		void, boolean    bool
		record           *Record
	)
	for p.atTypeStart() {
		switch p.tok.Lit {
		case "static", "extern", "const", "volatile":
			// discarded
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "long":
			longs++
		case "short":
			short = true
		case "int":
			// absorbed into the default
		case "char":
			char = true
		case "float":
			float = true
		case "double":
			dbl = true
		case "void":
			void = true
		case "_Bool":
			boolean = true
		case "struct", "union":
			record = p.parseRecordSpecifier(p.tok.Lit == "union")
			continue // parseRecordSpecifier consumed its tokens
		}
		p.next()
	}

	switch {
	case record != nil:
		return &Type{Form: FormRecord, Record: record}
	case void:
		return TypeVoid
	case boolean:
		return TypeBool
	case dbl && longs > 0:
		return TypeLongDouble
	case dbl:
		return TypeDouble
	case float:
		return TypeFloat
	case char && unsigned:
		return TypeUChar
	case char && signed:
		return TypeSChar
	case char:
		return TypeChar
	case short && unsigned:
		return TypeUShort
	case short:
		return TypeShort
	case longs >= 2 && unsigned:
		return TypeULongLong
	case longs >= 2:
		return TypeLongLong
	case longs == 1 && unsigned:
		return TypeULong
	case longs == 1:
		return TypeLong
	case unsigned:
		return TypeUInt
	default:
		return TypeInt
	}
}

// parseRecordSpecifier parses "struct Tag", "struct Tag { fields }" or an
// anonymous "struct { fields }". Tagged records are shared by tag so later
// references resolve to the same *Record.
func (p *Parser) parseRecordSpecifier(union bool) *Record {
	p.next() // struct / union
	tag := ""
	if p.tok.Type == TokIdent {
		tag = p.tok.Lit
		p.next()
	}
	var rec *Record
	if tag != "" {
		if existing, ok := p.records[tag]; ok {
			rec = existing
		} else {
			rec = &Record{Tag: tag, Union: union}
			p.records[tag] = rec
		}
	} else {
		rec = &Record{Union: union}
	}
	if p.accept("{") {
		for !p.at("}") && p.tok.Type != TokEOF {
			if !p.atTypeStart() {
				p.errorf("expected field declaration, got %q", p.tok.Lit)
				p.next()
				continue
			}
			base := p.parseDeclSpecifiers()
			for {
				ty, name, _ := p.parseDeclarator(base)
				if name == "" {
					p.errorf("expected field name")
					break
				}
				rec.Fields = append(rec.Fields, &Field{Name: name, Type: ty})
				if !p.accept(",") {
					break
				}
			}
			p.expect(";")
		}
		p.expect("}")
	}
	return rec
}

// parseDeclarator parses "* ... name [array]..." around a base type and
// returns the final type, the declared name and its token. An abstract
// declarator (no name) returns an empty name.
func (p *Parser) parseDeclarator(base *Type) (*Type, string, Token) {
	ty := base
	for p.accept("*") {
		ty = PointerTo(ty)
		for p.at("const") || p.at("volatile") {
			p.next()
		}
	}
	var name string
	var nameTok Token
	if p.tok.Type == TokIdent {
		name = p.tok.Lit
		nameTok = p.tok
		p.next()
	}
	for p.accept("[") {
		// Array length expressions are accepted and ignored.
		if !p.at("]") {
			p.parseAssignExpr()
		}
		p.expect("]")
		ty = ArrayOf(ty)
	}
	return ty, name, nameTok
}

// parseFunction parses a prototype or definition after its declarator name.
// The first declaration of each name wins the file-scope object, so pointer
// identity is stable when a prototype precedes the definition.
func (p *Parser) parseFunction(start int, ret *Type, name string, nameTok Token) {
	p.expect("(")
	fnScope := &scope{parent: p.fileScope, objs: map[string]*Object{}}
	var params []*Object
	if !p.at(")") {
		for {
			if p.accept("...") {
				break
			}
			if !p.atTypeStart() {
				p.errorf("expected parameter declaration, got %q", p.tok.Lit)
				break
			}
			pbase := p.parseDeclSpecifiers()
			pty, pname, ptok := p.parseDeclarator(pbase)
			if pty == TypeVoid && pname == "" {
				break // (void)
			}
			if pty.Form == FormArray {
				pty = PointerTo(pty.Elem) // arrays decay in parameters
			}
			if pname != "" {
				obj := &Object{Name: pname, Kind: ObjParam, Type: pty, Off: ptok.Off}
				params = append(params, obj)
				fnScope.declare(obj)
			}
			if !p.accept(",") {
				break
			}
		}
	}
	p.expect(")")

	obj := p.fileScope.lookup(name)
	if obj == nil || obj.Kind != ObjFunc {
		obj = &Object{Name: name, Kind: ObjFunc, Type: FuncReturning(ret), Off: nameTok.Off}
		p.fileScope.declare(obj)
	}

	fd := &FuncDecl{span: span{start, 0}, Name: name, Obj: obj, Params: params}
	if p.at("{") {
		prev := p.cur
		p.cur = fnScope
		fd.Body = p.parseCompound()
		p.cur = prev
		fd.end = fd.Body.End()
	} else {
		end := p.tok.End()
		p.expect(";")
		fd.end = end
	}
	p.unit.Decls = append(p.unit.Decls, fd)
}

// parseDeclRest finishes a variable declaration statement after the first
// declarator has been parsed. Used for globals and for local declarations.
func (p *Parser) parseDeclRest(start int, ty *Type, name string, nameTok Token, base *Type) *DeclStmt {
	ds := &DeclStmt{span: span{start, 0}}
	for {
		obj := &Object{Name: name, Kind: ObjVar, Type: ty, Off: nameTok.Off}
		p.cur.declare(obj)
		vd := &VarDecl{span: span{nameTok.Off, nameTok.End()}, Obj: obj}
		if p.accept("=") {
			vd.Init = p.parseAssignExpr()
			vd.end = vd.Init.End()
		}
		ds.Decls = append(ds.Decls, vd)
		if !p.accept(",") {
			break
		}
		ty, name, nameTok = p.parseDeclarator(base)
		if name == "" {
			p.errorf("expected declarator name")
			break
		}
	}
	ds.end = p.tok.End()
	p.expect(";")
	return ds
}

// --- statements ---

// parseCompound parses a braced block. Each block opens its own scope, so
// an inner declaration shadows rather than replaces an outer one.
func (p *Parser) parseCompound() *CompoundStmt {
	cs := &CompoundStmt{span: span{p.tok.Off, 0}}
	p.expect("{")
	prev := p.cur
	p.cur = &scope{parent: prev, objs: map[string]*Object{}}
	defer func() { p.cur = prev }()
	for !p.at("}") && p.tok.Type != TokEOF {
		before := p.tok
		s := p.parseStmt()
		if s != nil {
			cs.Stmts = append(cs.Stmts, s)
		}
		if p.tok == before {
			p.errorf("unexpected %q in block", p.tok.Lit)
			p.next()
		}
		if len(p.errs) > 0 {
			break
		}
	}
	cs.end = p.tok.End()
	p.expect("}")
	return cs
}

func (p *Parser) parseStmt() Stmt {
	start := p.tok.Off
	switch {
	case p.at("{"):
		return p.parseCompound()

	case p.at(";"):
		end := p.tok.End()
		p.next()
		return &NullStmt{span{start, end}}

	case p.at("if"):
		p.next()
		p.expect("(")
		cond := p.parseExpr()
		p.expect(")")
		then := p.parseStmt()
		var els Stmt
		if p.accept("else") {
			els = p.parseStmt()
		}
		end := stmtEnd(then)
		if els != nil {
			end = stmtEnd(els)
		}
		return &IfStmt{span{start, end}, cond, then, els}

	case p.at("while"):
		p.next()
		p.expect("(")
		cond := p.parseExpr()
		p.expect(")")
		body := p.parseStmt()
		return &WhileStmt{span{start, stmtEnd(body)}, cond, body}

	case p.at("do"):
		p.next()
		body := p.parseStmt()
		p.expect("while")
		p.expect("(")
		cond := p.parseExpr()
		p.expect(")")
		end := p.tok.End()
		p.expect(";")
		return &DoStmt{span{start, end}, body, cond}

	case p.at("for"):
		return p.parseFor(start)

	case p.at("return"):
		p.next()
		var x Expr
		if !p.at(";") {
			x = p.parseExpr()
		}
		end := p.tok.End()
		p.expect(";")
		return &ReturnStmt{span{start, end}, x}

	case p.at("break"):
		p.next()
		end := p.tok.End()
		p.expect(";")
		return &BreakStmt{span{start, end}}

	case p.at("continue"):
		p.next()
		end := p.tok.End()
		p.expect(";")
		return &ContinueStmt{span{start, end}}

	case p.atTypeStart():
		base := p.parseDeclSpecifiers()
		if p.at(";") {
			// Local struct definition; keep the statement slot empty.
			end := p.tok.End()
			p.next()
			return &NullStmt{span{start, end}}
		}
		ty, name, nameTok := p.parseDeclarator(base)
		if name == "" {
			p.errorf("expected declarator name")
			return nil
		}
		return p.parseDeclRest(start, ty, name, nameTok, base)

	default:
		x := p.parseExpr()
		if x == nil {
			return nil
		}
		end := p.tok.End()
		p.expect(";")
		return &ExprStmt{span{start, end}, x}
	}
}

// parseFor parses a for statement. The init clause may be a declaration,
// an expression or empty; a block scope wraps the whole loop so an init
// declaration is visible to the condition, post and body.
func (p *Parser) parseFor(start int) Stmt {
	p.next()
	p.expect("(")
	prev := p.cur
	p.cur = &scope{parent: prev, objs: map[string]*Object{}}
	defer func() { p.cur = prev }()

	var init Stmt
	switch {
	case p.at(";"):
		p.next()
	case p.atTypeStart():
		istart := p.tok.Off
		base := p.parseDeclSpecifiers()
		ty, name, nameTok := p.parseDeclarator(base)
		if name == "" {
			p.errorf("expected declarator name")
			return nil
		}
		init = p.parseDeclRest(istart, ty, name, nameTok, base)
	default:
		istart := p.tok.Off
		x := p.parseExpr()
		iend := p.tok.End()
		p.expect(";")
		init = &ExprStmt{span{istart, iend}, x}
	}

	var cond Expr
	if !p.at(";") {
		cond = p.parseExpr()
	}
	p.expect(";")

	var post Expr
	if !p.at(")") {
		post = p.parseExpr()
	}
	p.expect(")")

	body := p.parseStmt()
	return &ForStmt{span{start, stmtEnd(body)}, init, cond, post, body}
}

func stmtEnd(s Stmt) int {
	if s == nil {
		return 0
	}
	return s.End()
}

// --- expressions ---

// parseExpr parses a full expression including the comma operator.
func (p *Parser) parseExpr() Expr {
	x := p.parseAssignExpr()
	for p.at(",") && x != nil {
		p.next()
		r := p.parseAssignExpr()
		if r == nil {
			break
		}
		x = &BinaryExpr{span{x.Pos(), r.End()}, OpComma, x, r, r.Type()}
	}
	return x
}

// assignOps maps assignment operator spellings to their codes.
var assignOps = map[string]BinaryOp{
	"=": OpAssign, "*=": OpMulAssign, "/=": OpDivAssign, "%=": OpRemAssign,
	"+=": OpAddAssign, "-=": OpSubAssign, "<<=": OpShlAssign,
	">>=": OpShrAssign, "&=": OpAndAssign, "^=": OpXorAssign, "|=": OpOrAssign,
}

func (p *Parser) parseAssignExpr() Expr {
	l := p.parseConditional()
	if l == nil {
		return nil
	}
	if p.tok.Type == TokPunct {
		if op, ok := assignOps[p.tok.Lit]; ok {
			p.next()
			r := p.parseAssignExpr()
			if r == nil {
				return l
			}
			return &BinaryExpr{span{l.Pos(), r.End()}, op, l, r, l.Type()}
		}
	}
	return l
}

func (p *Parser) parseConditional() Expr {
	cond := p.parseBinary(0)
	if cond == nil || !p.at("?") {
		return cond
	}
	p.next()
	then := p.parseExpr()
	p.expect(":")
	els := p.parseConditional()
	if then == nil || els == nil {
		return cond
	}
	ty := UsualArithmetic(then.Type(), els.Type())
	return &CondExpr{span{cond.Pos(), els.End()}, cond, then, els, ty}
}

// binLevels orders binary operators from lowest to highest precedence.
var binLevels = []map[string]BinaryOp{
	{"||": OpLOr},
	{"&&": OpLAnd},
	{"|": OpBitOr},
	{"^": OpBitXor},
	{"&": OpBitAnd},
	{"==": OpEq, "!=": OpNe},
	{"<": OpLt, ">": OpGt, "<=": OpLe, ">=": OpGe},
	{"<<": OpShl, ">>": OpShr},
	{"+": OpAdd, "-": OpSub},
	{"*": OpMul, "/": OpDiv, "%": OpRem},
}

func (p *Parser) parseBinary(level int) Expr {
	if level >= len(binLevels) {
		return p.parseCastExpr()
	}
	l := p.parseBinary(level + 1)
	for l != nil && p.tok.Type == TokPunct {
		op, ok := binLevels[level][p.tok.Lit]
		if !ok {
			break
		}
		p.next()
		r := p.parseBinary(level + 1)
		if r == nil {
			return l
		}
		l = &BinaryExpr{span{l.Pos(), r.End()}, op, l, r, binaryType(op, l, r)}
	}
	return l
}

func binaryType(op BinaryOp, l, r Expr) *Type {
	switch {
	case op.IsComparison():
		return TypeInt
	case op == OpShl || op == OpShr:
		return promote(l.Type())
	default:
		return UsualArithmetic(l.Type(), r.Type())
	}
}

// atCastParen reports whether the current "(" opens a type name. With no
// typedef support a type name always starts with a keyword, which makes
// the cast/parenthesization ambiguity trivial to resolve.
func (p *Parser) atCastParen() bool {
	return p.at("(") && p.peekAtTypeStart()
}

func (p *Parser) parseCastExpr() Expr {
	if p.atCastParen() {
		start := p.tok.Off
		p.next() // (
		base := p.parseDeclSpecifiers()
		ty, name, _ := p.parseDeclarator(base)
		if name != "" {
			p.errorf("unexpected name %q in type cast", name)
		}
		p.expect(")")
		x := p.parseCastExpr()
		if x == nil {
			return nil
		}
		return &CastExpr{span{start, x.End()}, ty, x}
	}
	return p.parseUnary()
}

// unaryPrefix maps prefix operator spellings to their codes.
var unaryPrefix = map[string]UnaryOp{
	"++": UnPreInc, "--": UnPreDec, "&": UnAddrOf, "*": UnDeref,
	"+": UnPlus, "-": UnMinus, "~": UnBitNot, "!": UnLNot,
}

func (p *Parser) parseUnary() Expr {
	if p.at("sizeof") {
		start := p.tok.Off
		p.next()
		if p.atCastParen() {
			p.next() // (
			base := p.parseDeclSpecifiers()
			ty, _, _ := p.parseDeclarator(base)
			end := p.tok.End()
			p.expect(")")
			return &SizeofExpr{span: span{start, end}, Ty: ty}
		}
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &SizeofExpr{span: span{start, x.End()}, X: x}
	}
	if p.tok.Type == TokPunct {
		if op, ok := unaryPrefix[p.tok.Lit]; ok {
			start := p.tok.Off
			p.next()
			var x Expr
			if op == UnAddrOf || op == UnDeref || op == UnPlus || op == UnMinus || op == UnBitNot || op == UnLNot {
				x = p.parseCastExpr()
			} else {
				x = p.parseUnary()
			}
			if x == nil {
				return nil
			}
			return &UnaryExpr{span{start, x.End()}, op, x, unaryType(op, x)}
		}
	}
	return p.parsePostfix()
}

func unaryType(op UnaryOp, x Expr) *Type {
	switch op {
	case UnLNot:
		return TypeInt
	case UnAddrOf:
		return PointerTo(x.Type())
	case UnDeref:
		if t := x.Type(); t != nil && (t.Form == FormPointer || t.Form == FormArray) {
			return t.Elem
		}
		return TypeVoid
	case UnBitNot, UnPlus, UnMinus:
		if x.Type().IsInteger() {
			return promote(x.Type())
		}
		return x.Type()
	default: // inc/dec
		return x.Type()
	}
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for x != nil {
		switch {
		case p.at("("):
			p.next()
			call := &CallExpr{span: span{x.Pos(), 0}, Callee: x}
			if !p.at(")") {
				for {
					arg := p.parseAssignExpr()
					if arg == nil {
						break
					}
					call.Args = append(call.Args, arg)
					if !p.accept(",") {
						break
					}
				}
			}
			call.end = p.tok.End()
			p.expect(")")
			call.typ = callType(x)
			x = call

		case p.at("["):
			p.next()
			idx := p.parseExpr()
			end := p.tok.End()
			p.expect("]")
			if idx == nil {
				return x
			}
			x = &SubscriptExpr{span{x.Pos(), end}, x, idx}

		case p.at(".") || p.at("->"):
			arrow := p.at("->")
			p.next()
			if p.tok.Type != TokIdent {
				p.errorf("expected member name, got %q", p.tok.Lit)
				return x
			}
			name := p.tok.Lit
			end := p.tok.End()
			p.next()
			x = &MemberExpr{span{x.Pos(), end}, x, name, arrow, memberType(x, name, arrow)}

		case p.at("++"):
			end := p.tok.End()
			p.next()
			x = &UnaryExpr{span{x.Pos(), end}, UnPostInc, x, x.Type()}

		case p.at("--"):
			end := p.tok.End()
			p.next()
			x = &UnaryExpr{span{x.Pos(), end}, UnPostDec, x, x.Type()}

		default:
			return x
		}
	}
	return x
}

func callType(callee Expr) *Type {
	if nr, ok := StripParenCasts(callee).(*NameRef); ok {
		if nr.Obj != nil && nr.Obj.Type != nil && nr.Obj.Type.Form == FormFunc {
			return nr.Obj.Type.Ret
		}
	}
	if d, ok := StripParenCasts(callee).(*UnaryExpr); ok && d.Op == UnDeref {
		return callType(d.X)
	}
	return TypeInt
}

func memberType(base Expr, name string, arrow bool) *Type {
	bt := base.Type()
	if arrow {
		if bt == nil || bt.Form != FormPointer {
			return TypeVoid
		}
		bt = bt.Elem
	}
	if bt == nil || bt.Form != FormRecord {
		return TypeVoid
	}
	if f := bt.Record.FindField(name); f != nil {
		return f.Type
	}
	return TypeVoid
}

func (p *Parser) parsePrimary() Expr {
	t := p.tok
	switch t.Type {
	case TokIdent:
		p.next()
		obj := p.cur.lookup(t.Lit)
		if obj == nil {
			// Implicit declaration, pre-C99 style. A following "(" makes
			// it a function returning int; otherwise an int variable.
			ty := TypeInt
			kind := ObjVar
			if p.at("(") {
				ty = FuncReturning(TypeInt)
				kind = ObjFunc
			}
			obj = &Object{Name: t.Lit, Kind: kind, Type: ty, Off: t.Off, Implicit: true}
			p.fileScope.declare(obj)
		}
		return &NameRef{span{t.Off, t.End()}, t.Lit, obj}

	case TokIntLit:
		p.next()
		return p.intLit(t)

	case TokFloatLit:
		p.next()
		return p.floatLit(t)

	case TokCharLit:
		p.next()
		return &CharLit{span{t.Off, t.End()}, t.Lit, decodeCharLit(t.Lit)}

	case TokStringLit:
		p.next()
		return &StringLit{span{t.Off, t.End()}, t.Lit, decodeStringLit(t.Lit)}
	}

	if p.at("(") {
		start := t.Off
		p.next()
		x := p.parseExpr()
		end := p.tok.End()
		p.expect(")")
		if x == nil {
			return nil
		}
		return &ParenExpr{span{start, end}, x}
	}

	p.errorf("expected expression, got %q", p.tok.Lit)
	return nil
}

// intLit parses an integer literal token, splitting off the u/l suffixes
// and picking the type. A decimal literal that does not fit in int widens
// to long, which is close enough to C's rules for test-case inputs.
func (p *Parser) intLit(t Token) *IntLit {
	text := t.Lit
	body := strings.TrimRight(text, "uUlL")
	suffix := strings.ToLower(text[len(body):])

	base := 10
	digits := body
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base = 16
		digits = body[2:]
	case len(body) > 1 && body[0] == '0':
		base = 8
		digits = body[1:]
	}
	val, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		p.errorf("bad integer literal %q", text)
	}
	ty := suffixedIntType(suffix)
	if suffix == "" && val > math.MaxInt32 {
		ty = TypeLong
	}
	return &IntLit{span{t.Off, t.End()}, text, val, ty}
}

func (p *Parser) floatLit(t Token) *FloatLit {
	text := t.Lit
	body := strings.TrimRight(text, "fFlL")
	suffix := strings.ToLower(text[len(body):])
	val, err := strconv.ParseFloat(body, 64)
	if err != nil {
		p.errorf("bad floating literal %q", text)
	}
	return &FloatLit{span{t.Off, t.End()}, text, math.Float64bits(val), suffixedFloatType(suffix)}
}

// decodeCharLit returns the numeric value of a character literal.
func decodeCharLit(text string) int64 {
	s := strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
	if s == "" {
		return 0
	}
	if s[0] != '\\' {
		return int64(s[0])
	}
	v, _, _, err := strconv.UnquoteChar(goEscapes(s), '\'')
	if err != nil {
		return 0
	}
	return int64(v)
}

// decodeStringLit returns the byte content of a string literal.
func decodeStringLit(text string) string {
	s := strings.TrimSuffix(strings.TrimPrefix(text, "\""), "\"")
	var out strings.Builder
	for len(s) > 0 {
		if s[0] != '\\' {
			out.WriteByte(s[0])
			s = s[1:]
			continue
		}
		v, _, rest, err := strconv.UnquoteChar(goEscapes(s), '"')
		if err != nil {
			out.WriteString(s)
			break
		}
		out.WriteRune(v)
		s = rest
	}
	return out.String()
}

// goEscapes rewrites the C-only escapes Go's unquoting rejects.
func goEscapes(s string) string {
	if strings.HasPrefix(s, `\0`) && (len(s) == 2 || s[2] < '0' || s[2] > '7') {
		return `\x00` + s[2:]
	}
	if strings.HasPrefix(s, `\?`) {
		return "?" + s[2:]
	}
	return s
}
