package parser

import (
	"fmt"

	"github.com/mxvl/minipy/internal/lexer"
)

// SyntaxError reports a parse failure. The front-end renders it as
// "Error: <Msg>"; Line/Col are preserved for structured logging.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string { return e.Msg }

func newError(tok lexer.Token, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

// Parser is a one-token-lookahead (occasionally two-token-peek)
// recursive-descent parser over a pre-lexed token stream.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New builds a Parser over a complete token stream. toks is expected to end
// in an ENDMARKER, as lexer.Lex guarantees.
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.ENDMARKER }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return lexer.Token{}, newError(p.cur(), "Expected %s", what)
}

// ParseProgram parses the entire token stream into a Program, the top-level
// entry point mirroring `program := stmts ENDMARKER`.
func (p *Parser) ParseProgram() (*Program, error) {
	stmts, err := p.parseStmts()
	if err != nil {
		return nil, err
	}

	for p.check(lexer.NEWLINE) || p.check(lexer.DEDENT) {
		p.advance()
	}

	if !p.check(lexer.ENDMARKER) {
		return nil, newError(p.cur(), "Expected ENDMARKER")
	}

	return &Program{Statements: stmts}, nil
}

// parseStmts implements `stmts := (NEWLINE | stmt)*`, stopping at ENDMARKER
// or DEDENT so parseBlock can consume the DEDENT that closes it.
func (p *Parser) parseStmts() ([]Stmt, error) {
	var stmts []Stmt
	for !p.check(lexer.ENDMARKER) && !p.check(lexer.DEDENT) {
		for p.check(lexer.NEWLINE) {
			p.advance()
		}
		if p.check(lexer.ENDMARKER) || p.check(lexer.DEDENT) {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	if p.check(lexer.IF) || p.check(lexer.WHILE) {
		return p.parseCompoundStmt()
	}
	return p.parseSimpleStmt()
}

func (p *Parser) parseSimpleStmt() (Stmt, error) {
	var stmt Stmt
	var err error

	switch {
	case p.check(lexer.BREAK):
		p.advance()
		stmt = BreakStmt{}
	case p.check(lexer.CONTINUE):
		p.advance()
		stmt = ContinueStmt{}
	case p.check(lexer.PRINT):
		stmt, err = p.parsePrint()
	case p.check(lexer.ID):
		stmt, err = p.parseIDLedStatement()
	default:
		return nil, newError(p.cur(), "Unexpected token in simple statement")
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE, "newline"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseIDLedStatement dispatches on the second and third tokens following an
// ID at statement position, per the grammar's simple-statement dispatch
// rule: `name = list()`, `name[i] = v`, `name.append(v)`, or `name = expr`.
func (p *Parser) parseIDLedStatement() (Stmt, error) {
	name := p.cur().Text
	second := p.peek(1).Kind

	switch second {
	case lexer.ASSIGN:
		if p.peek(2).Kind == lexer.LIST {
			return p.parseListCreation(name)
		}
		return p.parseAssignment(name)
	case lexer.LBRACKET:
		return p.parseIndexAssignment(name)
	case lexer.DOT:
		return p.parseListAppend(name)
	default:
		return nil, newError(p.cur(), "Unexpected token in simple statement")
	}
}

func (p *Parser) parseAssignment(name string) (Stmt, error) {
	p.advance() // ID
	p.advance() // ASSIGN
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return AssignStmt{Name: name, Value: value}, nil
}

func (p *Parser) parseIndexAssignment(name string) (Stmt, error) {
	p.advance() // ID
	p.advance() // LBRACKET
	index, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return IndexAssignStmt{Name: name, Index: index, Value: value}, nil
}

func (p *Parser) parseListCreation(name string) (Stmt, error) {
	p.advance() // ID
	p.advance() // ASSIGN
	p.advance() // LIST
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return MakeListStmt{Name: name}, nil
}

func (p *Parser) parseListAppend(name string) (Stmt, error) {
	p.advance() // ID
	p.advance() // DOT
	if _, err := p.expect(lexer.APPEND, "'append'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return AppendStmt{Name: name, Value: value}, nil
}

func (p *Parser) parsePrint() (Stmt, error) {
	p.advance() // PRINT
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return PrintStmt{Value: value}, nil
}

func (p *Parser) parseCompoundStmt() (Stmt, error) {
	if p.check(lexer.IF) {
		return p.parseIfStmt()
	}
	return p.parseWhileStmt()
}

func (p *Parser) parseIfStmt() (Stmt, error) {
	p.advance() // IF
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := IfStmt{Cond: cond, Then: thenBlock}

	for p.check(lexer.ELIF) {
		p.advance()
		elifCond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		elifBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, ElifClause{Cond: elifCond, Body: elifBlock})
	}

	if p.check(lexer.ELSE) {
		p.advance()
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	}

	return stmt, nil
}

func (p *Parser) parseWhileStmt() (Stmt, error) {
	p.advance() // WHILE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return WhileStmt{Cond: cond, Body: body}, nil
}

// parseBlock implements `block := NEWLINE INDENT stmts DEDENT`.
func (p *Parser) parseBlock() (*Block, error) {
	if _, err := p.expect(lexer.NEWLINE, "newline before block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT, "indentation"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmts()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DEDENT, "dedent to close block"); err != nil {
		return nil, err
	}
	return &Block{Statements: stmts}, nil
}

// parseExpr implements `expr := join (OR join)*`.
func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseJoin()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.OR) {
		right, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: Or, Right: right}
	}
	return left, nil
}

// parseJoin implements `join := equality (AND equality)*`.
func (p *Parser) parseJoin() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.AND) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: And, Right: right}
	}
	return left, nil
}

// parseEquality implements `equality := rel ((EQUAL|NOT_EQUAL) rel)*`.
func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.match(lexer.EQUAL):
			op = Eq
		case p.match(lexer.NOT_EQUAL):
			op = Ne
		default:
			return left, nil
		}
		right, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// parseRel implements the non-associative relational layer: at most one
// relational operator is consumed per call, so `a < b < c` fails later when
// the grammar expects a statement boundary instead of a second operator.
func (p *Parser) parseRel() (Expr, error) {
	left, err := p.parseNumExpr()
	if err != nil {
		return nil, err
	}

	var op BinaryOp
	switch {
	case p.match(lexer.LESS):
		op = Lt
	case p.match(lexer.LESS_EQUAL):
		op = Le
	case p.match(lexer.GREATER):
		op = Gt
	case p.match(lexer.GREATER_EQUAL):
		op = Ge
	default:
		return left, nil
	}

	right, err := p.parseNumExpr()
	if err != nil {
		return nil, err
	}
	return BinaryExpr{Left: left, Op: op, Right: right}, nil
}

// parseNumExpr implements `numexpr := term ((PLUS|MINUS) term)*`.
func (p *Parser) parseNumExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.match(lexer.PLUS):
			op = Add
		case p.match(lexer.MINUS):
			op = Sub
		default:
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// parseTerm implements `term := unary ((MULTIPLY|DIVIDE) unary)*`.
func (p *Parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.match(lexer.MULTIPLY):
			op = Mul
		case p.match(lexer.DIVIDE):
			op = Div
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// parseUnary implements `unary := (NOT | MINUS) unary | factor`, right
// associative by construction (it recurses into itself, not into factor).
func (p *Parser) parseUnary() (Expr, error) {
	switch {
	case p.match(lexer.NOT):
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: Not, Operand: operand}, nil
	case p.match(lexer.MINUS):
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: Neg, Operand: operand}, nil
	default:
		return p.parseFactor()
	}
}

// parseFactor implements `factor := LPAREN expr RPAREN | NUM | TRUE | FALSE | loc`.
func (p *Parser) parseFactor() (Expr, error) {
	switch {
	case p.match(lexer.LPAREN):
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.check(lexer.NUM):
		tok := p.advance()
		return NumberLit{Value: parseDecimalDigits(tok.Text)}, nil
	case p.match(lexer.TRUE):
		return BoolLit{Value: true}, nil
	case p.match(lexer.FALSE):
		return BoolLit{Value: false}, nil
	case p.check(lexer.ID):
		return p.parseLoc()
	default:
		return nil, newError(p.cur(), "Expected expression")
	}
}

// parseLoc implements `loc := ID (LBRACKET expr RBRACKET)?`.
func (p *Parser) parseLoc() (Expr, error) {
	tok, err := p.expect(lexer.ID, "identifier")
	if err != nil {
		return nil, err
	}
	if p.match(lexer.LBRACKET) {
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		return IndexExpr{Name: tok.Text, Index: index}, nil
	}
	return VarExpr{Name: tok.Text}, nil
}

// parseDecimalDigits converts an already-validated NUM token's text (either
// "0" or [1-9][0-9]*) into its integer value.
func parseDecimalDigits(digits string) int64 {
	var v int64
	for i := 0; i < len(digits); i++ {
		v = v*10 + int64(digits[i]-'0')
	}
	return v
}
