// Package parser implements the recursive-descent statement parser and
// shunting-yard expression parser of spec.md §4.2. Its error-recovery
// discipline (a sticky panicMode flag, synchronize-at-keyword-or-`;`) is
// grounded on gmofishsauce/wut4/lang/parse/parser.go; the teacher parses
// expressions by precedence-climbing recursive descent (parseLogicalOr →
// parseLogicalAnd → ... → parseUnary), which this package replaces with
// an explicit two-stack shunting-yard algorithm per spec.md §4.2 and §9's
// glossary entry, using the precedence table yasm/expr.go's Pratt parser
// independently arrives at for the same kind of language.
package parser

import (
	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/diag"
	"github.com/vrn-lang/varunac/internal/token"
)

// Parser consumes a flat token slice (the lexer's full output, spec.md
// §4.2: "Input: the lexer's token vector") and produces an AST.
type Parser struct {
	toks      []token.Token
	pos       int
	bag       *diag.Bag
	panicMode bool
}

// New creates a Parser over toks.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, bag: diag.NewBag()}
}

func (p *Parser) peek() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) atEOF() bool { return p.peek().Kind == token.EOF }
func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}
func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }
func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorHere("expected %s, got %s %q", k, p.peek().Kind, p.peek().Lexeme)
	return token.Token{}, false
}

func (p *Parser) errorHere(format string, args ...interface{}) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.bag.Errorf(p.peek().Loc, format, args...)
}

func (p *Parser) warnHere(format string, args ...interface{}) {
	p.bag.Warnf(p.peek().Loc, format, args...)
}

// Parse runs the full top-level recursive-descent parse and the
// post-parse parent-solver pass, returning the collected diagnostics.
func (p *Parser) Parse() (*ast.Program, *diag.Bag) {
	global := &ast.Block{Base: ast.Base{K: ast.KBlock}}
	for !p.atEOF() {
		stmt := p.parseTopLevel()
		if stmt != nil {
			global.Stmts = append(global.Stmts, stmt)
		}
	}
	prog := &ast.Program{Global: global}
	ast.SolveParents(global)
	return prog, p.bag
}

var topLevelSyncKeywords = map[token.Kind]bool{
	token.KwImport: true, token.KwModule: true, token.KwUse: true,
	token.KwLet: true, token.KwDef: true, token.KwExport: true,
	token.KwConst: true, token.KwStruct: true,
}

func (p *Parser) synchronizeTopLevel() {
	p.panicMode = false
	for !p.atEOF() {
		if topLevelSyncKeywords[p.peek().Kind] {
			return
		}
		if _, ok := p.match(token.Semicolon); ok {
			return
		}
		p.advance()
	}
}

func (p *Parser) synchronizeStmt() {
	p.panicMode = false
	for !p.atEOF() {
		switch p.peek().Kind {
		case token.KwIf, token.KwWhile, token.KwFor, token.KwReturn, token.KwLet, token.KwGoto, token.KwConst:
			return
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			return
		}
		p.advance()
	}
}

func loc(t token.Token) ast.Base { return ast.Base{L: t.Loc} }

// parseTopLevel dispatches the top-level forms of spec.md §4.2 plus
// SPEC_FULL.md §4's const/struct additions: import, module, use, let,
// def, const, struct, export [nomangle] (let|def|const), `;`.
func (p *Parser) parseTopLevel() ast.Node {
	switch p.peek().Kind {
	case token.Semicolon:
		t := p.advance()
		p.warnHere("empty statement")
		return &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: t.Loc}}
	case token.KwImport:
		return p.parseImport()
	case token.KwModule:
		return p.parseModule()
	case token.KwUse:
		return p.parseAlias()
	case token.KwLet:
		return p.parseGlobalLet(false, true)
	case token.KwDef:
		return p.parseFuncDeclOrDef(false, true)
	case token.KwExport:
		return p.parseExport()
	case token.KwConst:
		return p.parseConstDecl(false)
	case token.KwStruct:
		return p.parseStructDecl()
	default:
		p.errorHere("unexpected token %q at top level", p.peek().Lexeme)
		p.synchronizeTopLevel()
		return nil
	}
}

func (p *Parser) parseExport() ast.Node {
	p.advance() // export
	mangle := true
	if p.check(token.KwNomangle) {
		p.advance()
		mangle = false
	}
	switch p.peek().Kind {
	case token.KwLet:
		return p.parseGlobalLet(true, mangle)
	case token.KwDef:
		return p.parseFuncDeclOrDef(true, mangle)
	case token.KwConst:
		return p.parseConstDecl(true)
	default:
		p.errorHere("expected 'let', 'def', or 'const' after 'export'")
		p.synchronizeTopLevel()
		return nil
	}
}

func (p *Parser) parseImport() ast.Node {
	start := p.advance() // import
	var name string
	isPath := false
	if p.check(token.StringLiteral) {
		t := p.advance()
		name = t.Lexeme
		isPath = true
	} else {
		t, ok := p.expect(token.Identifier)
		if !ok {
			p.synchronizeTopLevel()
			return nil
		}
		name = t.Lexeme
		for p.check(token.OpDot) {
			p.advance()
			t2, ok := p.expect(token.Identifier)
			if !ok {
				break
			}
			name += "." + t2.Lexeme
		}
	}
	p.expect(token.Semicolon)
	return &ast.Import{Base: loc(start), Name: name, IsPath: isPath, Kind: ast.ImportUnspecified}
}

func (p *Parser) parseModule() ast.Node {
	start := p.advance() // module
	t, ok := p.expect(token.Identifier)
	name := ""
	if ok {
		name = t.Lexeme
	}
	p.expect(token.Semicolon)
	return &ast.Module{Base: loc(start), Name: name}
}

func (p *Parser) parseAlias() ast.Node {
	start := p.advance() // use
	newName, _ := p.expect(token.Identifier)
	p.expect(token.OpAssign)
	existing, _ := p.expect(token.Identifier)
	p.expect(token.Semicolon)
	return &ast.Alias{Base: loc(start), NewName: newName.Lexeme, ExistingName: existing.Lexeme}
}

// parseGlobalLet parses a top-level `let` into a GlobalVarDef.
func (p *Parser) parseGlobalLet(exported, mangle bool) ast.Node {
	def := p.parseVarDefBody()
	p.expect(token.Semicolon)
	g := &ast.GlobalVarDef{ExportBase: ast.ExportBase{Base: def.Base}, Def: def}
	g.K = ast.KGlobalVarDef
	g.Exported = exported
	_ = mangle
	return g
}

// parseVarDefBody parses `let [mut] name [: type] = init` without the
// trailing `;`, shared by global lets, local `let` statements, and the
// for-loop init clause.
func (p *Parser) parseVarDefBody() *ast.VarDef {
	start := p.advance() // let
	mutable := false
	if p.check(token.KwMut) {
		p.advance()
		mutable = true
	}
	name, _ := p.expect(token.Identifier)
	var typeRef *ast.TypeRef
	if p.check(token.Colon) {
		p.advance()
		tn, _ := p.expect(token.Identifier)
		typeRef = &ast.TypeRef{Name: tn.Lexeme}
	}
	var init ast.Node = &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: start.Loc}}
	if _, ok := p.match(token.OpAssign); ok {
		init = p.parseExpression()
	}
	return &ast.VarDef{
		Base:    ast.Base{K: ast.KVarDef, L: start.Loc},
		Name:    name.Lexeme,
		Type:    typeRef,
		Mutable: mutable,
		Init:    init,
	}
}

// parseConstDecl parses `const name: type = value;`, SPEC_FULL.md §4's
// addition sibling to global-variable-definition (grounded on
// gmofishsauce/wut4/lang/parse/parser.go's parseConstDecl, adapted from
// that teacher's prefix-type `const TypeSpecifier name = value` order to
// this language's postfix-colon type annotation used everywhere else in
// this grammar).
func (p *Parser) parseConstDecl(exported bool) ast.Node {
	start := p.advance() // const
	name, _ := p.expect(token.Identifier)
	p.expect(token.Colon)
	tn, _ := p.expect(token.Identifier)
	p.expect(token.OpAssign)
	value := p.parseExpression()
	p.expect(token.Semicolon)
	cd := &ast.ConstDecl{
		ExportBase: ast.ExportBase{Base: ast.Base{K: ast.KConstDecl, L: start.Loc}},
		Name:       name.Lexeme,
		Type:       &ast.TypeRef{Name: tn.Lexeme},
		Value:      value,
	}
	cd.Exported = exported
	return cd
}

// parseStructDecl parses `struct name { field: type; ... }`, SPEC_FULL.md
// §4's struct-declaration addition (grounded on
// gmofishsauce/wut4/lang/parse/parser.go's parseStructDecl/
// parseStructField, adapted to this grammar's postfix-colon field
// syntax).
func (p *Parser) parseStructDecl() ast.Node {
	start := p.advance() // struct
	name, _ := p.expect(token.Identifier)
	p.expect(token.LBrace)
	var fields []*ast.StructField
	for !p.check(token.RBrace) && !p.atEOF() {
		fields = append(fields, p.parseStructField())
		if p.panicMode {
			p.synchronizeStmt()
		}
	}
	p.expect(token.RBrace)
	return &ast.StructDecl{
		ExportBase: ast.ExportBase{Base: ast.Base{K: ast.KStructDecl, L: start.Loc}},
		Name:       name.Lexeme,
		Fields:     fields,
	}
}

func (p *Parser) parseStructField() *ast.StructField {
	name, _ := p.expect(token.Identifier)
	p.expect(token.Colon)
	tn, _ := p.expect(token.Identifier)
	p.expect(token.Semicolon)
	return &ast.StructField{Name: name.Lexeme, Type: &ast.TypeRef{Name: tn.Lexeme}}
}

// parseFuncDeclOrDef parses `def name(params) [-> type] (';' | block)`.
func (p *Parser) parseFuncDeclOrDef(exported, mangle bool) ast.Node {
	start := p.advance() // def
	nameTok, _ := p.expect(token.Identifier)
	p.expect(token.LParen)
	var params []*ast.FuncParam
	pos := 1
	for !p.check(token.RParen) && !p.atEOF() {
		pname, _ := p.expect(token.Identifier)
		p.expect(token.Colon)
		ptype, _ := p.expect(token.Identifier)
		fp := &ast.FuncParam{
			Base: ast.Base{K: ast.KFuncParam, L: pname.Loc},
			Def: &ast.VarDef{
				Base: ast.Base{K: ast.KVarDef, L: pname.Loc},
				Name: pname.Lexeme,
				Type: &ast.TypeRef{Name: ptype.Lexeme},
			},
			Position: pos,
		}
		params = append(params, fp)
		pos++
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)

	retType := &ast.TypeRef{Name: "void"}
	if _, ok := p.match(token.Arrow); ok {
		rt, _ := p.expect(token.Identifier)
		retType = &ast.TypeRef{Name: rt.Lexeme}
	}

	proto := &ast.FuncPrototype{
		Base:       ast.Base{K: ast.KFuncPrototype, L: start.Loc},
		Name:       nameTok.Lexeme,
		ReturnType: retType,
		Params:     params,
		IsMain:     nameTok.Lexeme == "main",
		Mangle:     mangle,
	}

	fd := &ast.FuncDef{
		ExportBase: ast.ExportBase{Base: ast.Base{K: ast.KFuncDef, L: start.Loc}, Exported: exported},
		Prototype:  proto,
	}

	if _, ok := p.match(token.Semicolon); ok {
		fd.IsDeclaration = true
		fd.Body = &ast.Block{Base: ast.Base{K: ast.KBlock, L: start.Loc}}
		return fd
	}

	fd.Body = p.parseBlock()
	return fd
}

// parseStatement dispatches on the leading token per spec.md §4.2.
func (p *Parser) parseStatement() ast.Node {
	switch p.peek().Kind {
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwLet:
		return p.parseLocalLet()
	case token.KwConst:
		return p.parseConstDecl(false)
	case token.KwStruct:
		return p.parseStructDecl()
	case token.KwGoto:
		return p.parseGoto()
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		t := p.advance()
		p.warnHere("empty statement")
		return &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: t.Loc}}
	case token.Identifier:
		if p.peekN(1).Kind == token.Colon {
			return p.parseLabel()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLabel() ast.Node {
	name := p.advance()
	p.advance() // :
	return &ast.LabelStmt{Base: ast.Base{K: ast.KLabelStmt, L: name.Loc}, Name: name.Lexeme}
}

func (p *Parser) parseGoto() ast.Node {
	start := p.advance() // goto
	name, _ := p.expect(token.Identifier)
	p.expect(token.Semicolon)
	return &ast.GotoStmt{Base: ast.Base{K: ast.KGotoStmt, L: start.Loc}, Label: name.Lexeme}
}

func (p *Parser) parseLocalLet() ast.Node {
	def := p.parseVarDefBody()
	p.expect(token.Semicolon)
	return def
}

func (p *Parser) parseExprStmt() ast.Node {
	start := p.peek()
	e := p.parseExpression()
	if !p.panicMode {
		p.expect(token.Semicolon)
	}
	return &ast.ExprStmt{Base: ast.Base{K: ast.KExprStmt, L: start.Loc}, X: e}
}

func (p *Parser) parseBlock() *ast.Block {
	start, _ := p.expect(token.LBrace)
	b := &ast.Block{Base: ast.Base{K: ast.KBlock, L: start.Loc}}
	for !p.check(token.RBrace) && !p.atEOF() {
		s := p.parseStatement()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.panicMode {
			p.synchronizeStmt()
		}
	}
	p.expect(token.RBrace)
	return b
}

func (p *Parser) parseIf() ast.Node {
	start := p.advance() // if
	p.expect(token.LParen)
	cond := p.parseExpression()
	p.expect(token.RParen)
	then := p.parseStatement()
	var els ast.Node = &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: start.Loc}}
	if _, ok := p.match(token.KwElse); ok {
		els = p.parseStatement()
	}
	return &ast.If{Base: ast.Base{K: ast.KIf, L: start.Loc}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Node {
	start := p.advance() // while
	p.expect(token.LParen)
	cond := p.parseExpression()
	p.expect(token.RParen)
	body := p.parseStatement()
	return &ast.While{Base: ast.Base{K: ast.KWhile, L: start.Loc}, Cond: cond, Body: body}
}

// parseFor parses `for (init , end , step) body`, per spec.md §4.2:
// init must be empty or a variable definition; omitted end defaults to
// `true`; omitted init/step become the empty expression.
func (p *Parser) parseFor() ast.Node {
	start := p.advance() // for
	p.expect(token.LParen)

	var initN ast.Node = &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: start.Loc}}
	if p.check(token.KwLet) {
		initN = p.parseVarDefBody()
	} else if !p.check(token.Comma) {
		initN = p.parseExpression()
	}
	p.expect(token.Comma)

	var endN ast.Node = &ast.BoolLiteral{Base: ast.Base{K: ast.KBoolLiteral, L: p.peek().Loc}, Value: true}
	if !p.check(token.Comma) {
		endN = p.parseExpression()
	}
	p.expect(token.Comma)

	var stepN ast.Node = &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: p.peek().Loc}}
	if !p.check(token.RParen) {
		stepN = p.parseExpression()
	}
	p.expect(token.RParen)

	body := p.parseStatement()
	return &ast.For{Base: ast.Base{K: ast.KFor, L: start.Loc}, Init: initN, End: endN, Step: stepN, Body: body}
}

func (p *Parser) parseReturn() ast.Node {
	start := p.advance() // return
	var val ast.Node = &ast.Empty{Base: ast.Base{K: ast.KEmpty, L: start.Loc}}
	if !p.check(token.Semicolon) {
		val = p.parseExpression()
	}
	p.expect(token.Semicolon)
	return &ast.Return{Base: ast.Base{K: ast.KReturn, L: start.Loc}, Value: val}
}

// parseExpression is the shunting-yard entry point.
func (p *Parser) parseExpression() ast.Node {
	return p.shuntingYard()
}
