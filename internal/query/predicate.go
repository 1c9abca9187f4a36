package query

import (
	"fmt"
	"strings"

	"github.com/inodb/vcfq/internal/vcf"
)

// Predicate decides whether a record matches.
type Predicate func(*vcf.Record) bool

// MatchAll matches every record.
func MatchAll(*vcf.Record) bool { return true }

// Compile parses a predicate expression against a schema. The
// expression grammar is a disjunction of conjunctions of field
// comparisons:
//
//	QUAL > 50
//	CHROM == chr1 && QUAL > 80
//	POS between 1000 and 4000
//	len(REF) == 1 and len(ALT) == 1
//	FILTER == PASS || FILTER == LOWQUAL
//
// Comparison operators: == != > >= < <=, "between lo and hi"
// (inclusive), and len(FIELD) for allele-length checks. "and"/"or"
// are accepted as aliases for &&/||, and AND binds tighter than OR.
// Values may be quoted ("chr1") or bare tokens. Unknown field names
// are an UnknownFieldError; malformed syntax is an
// InvalidPredicateError. Both are raised here, before any record is
// processed.
func Compile(expr string, schema *Schema) (Predicate, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	p := &exprParser{expr: expr, tokens: tokens, schema: schema}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected token %q", p.peek())
	}
	return pred, nil
}

// CompileAll compiles several expressions into their conjunction.
// An empty list matches every record.
func CompileAll(exprs []string, schema *Schema) (Predicate, error) {
	if len(exprs) == 0 {
		return MatchAll, nil
	}

	preds := make([]Predicate, len(exprs))
	for i, expr := range exprs {
		pred, err := Compile(expr, schema)
		if err != nil {
			return nil, err
		}
		preds[i] = pred
	}

	if len(preds) == 1 {
		return preds[0], nil
	}
	return func(r *vcf.Record) bool {
		for _, pred := range preds {
			if !pred(r) {
				return false
			}
		}
		return true
	}, nil
}

// Quoted tokens keep a leading \x00 marker so the parser can tell
// "and" the literal from and the keyword.
const quotedMarker = "\x00"

// tokenize splits an expression into tokens, honoring double-quoted
// strings.
func tokenize(expr string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			j := strings.IndexByte(expr[i+1:], '"')
			if j < 0 {
				return nil, &InvalidPredicateError{Expr: expr, Message: "unterminated string"}
			}
			tokens = append(tokens, quotedMarker+expr[i+1:i+1+j])
			i += j + 2
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case strings.HasPrefix(expr[i:], "&&") || strings.HasPrefix(expr[i:], "||"):
			tokens = append(tokens, expr[i:i+2])
			i += 2
		case strings.HasPrefix(expr[i:], "==") || strings.HasPrefix(expr[i:], "!=") ||
			strings.HasPrefix(expr[i:], ">=") || strings.HasPrefix(expr[i:], "<="):
			tokens = append(tokens, expr[i:i+2])
			i += 2
		case c == '>' || c == '<':
			tokens = append(tokens, string(c))
			i++
		default:
			j := i
			for j < len(expr) && !strings.ContainsAny(string(expr[j]), " \t\"()><=!&|") {
				j++
			}
			if j == i {
				return nil, &InvalidPredicateError{Expr: expr, Message: "unexpected character " + string(c)}
			}
			tokens = append(tokens, expr[i:j])
			i = j
		}
	}
	return tokens, nil
}

type exprParser struct {
	expr   string
	tokens []string
	pos    int
	schema *Schema
}

func (p *exprParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *exprParser) peek() string {
	if p.done() {
		return ""
	}
	return strings.TrimPrefix(p.tokens[p.pos], quotedMarker)
}

// peekKeyword returns the next token lowered, or "" for quoted
// tokens, which are never keywords.
func (p *exprParser) peekKeyword() string {
	if p.done() || strings.HasPrefix(p.tokens[p.pos], quotedMarker) {
		return ""
	}
	return strings.ToLower(p.tokens[p.pos])
}

func (p *exprParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	return &InvalidPredicateError{Expr: p.expr, Message: fmt.Sprintf(format, args...)}
}

// parseOr := parseAnd { ("||"|"or") parseAnd }
func (p *exprParser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		kw := p.peekKeyword()
		if kw != "||" && kw != "or" {
			return left, nil
		}
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		l, r := left, right
		left = func(rec *vcf.Record) bool { return l(rec) || r(rec) }
	}
}

// parseAnd := parseComparison { ("&&"|"and") parseComparison }
func (p *exprParser) parseAnd() (Predicate, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for {
		kw := p.peekKeyword()
		if kw != "&&" && kw != "and" {
			return left, nil
		}
		p.next()

		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}

		l, r := left, right
		left = func(rec *vcf.Record) bool { return l(rec) && r(rec) }
	}
}

// parseComparison := "(" parseOr ")"
//                  | "len" "(" field ")" op literal
//                  | field op literal
//                  | field "between" literal "and" literal
func (p *exprParser) parseComparison() (Predicate, error) {
	if p.done() {
		return nil, p.errorf("expected comparison")
	}

	if p.peekKeyword() == "(" {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peekKeyword() != ")" {
			return nil, p.errorf("expected closing parenthesis")
		}
		p.next()
		return inner, nil
	}

	if p.peekKeyword() == "len" {
		return p.parseLen()
	}

	tok := p.next()
	if isCompareOp(tok) || isKeyword(tok) {
		return nil, p.errorf("expected field name, got %q", tok)
	}
	field, err := p.schema.Resolve(tok)
	if err != nil {
		return nil, err
	}

	if p.peekKeyword() == "between" {
		return p.parseBetween(field)
	}

	op := p.next()
	if !isCompareOp(op) {
		return nil, p.errorf("expected comparison operator, got %q", op)
	}

	if p.done() {
		return nil, p.errorf("expected value after %q", op)
	}
	lit := literal(p.next())

	return compare(field, op, lit), nil
}

// parseLen handles len(FIELD) op N.
func (p *exprParser) parseLen() (Predicate, error) {
	p.next() // len
	if p.peekKeyword() != "(" {
		return nil, p.errorf("expected ( after len")
	}
	p.next()

	field, err := p.schema.Resolve(p.next())
	if err != nil {
		return nil, err
	}

	if p.peekKeyword() != ")" {
		return nil, p.errorf("expected ) in len()")
	}
	p.next()

	op := p.next()
	if !isCompareOp(op) {
		return nil, p.errorf("expected comparison operator after len(), got %q", op)
	}

	if p.done() {
		return nil, p.errorf("expected value after %q", op)
	}
	lit := literal(p.next())
	if !lit.isNum {
		return nil, p.errorf("len() comparison requires a numeric value")
	}

	f := field
	return func(r *vcf.Record) bool {
		v := f.eval(r)
		if !v.present {
			return false
		}
		return compareValues(numValue(float64(len(v.text)), ""), op, lit)
	}, nil
}

// parseBetween handles FIELD between LO and HI (inclusive).
func (p *exprParser) parseBetween(field *Field) (Predicate, error) {
	p.next() // between

	if p.done() {
		return nil, p.errorf("expected lower bound after between")
	}
	lo := literal(p.next())

	if p.peekKeyword() != "and" {
		return nil, p.errorf("expected and between bounds")
	}
	p.next()

	if p.done() {
		return nil, p.errorf("expected upper bound after and")
	}
	hi := literal(p.next())

	if !lo.isNum || !hi.isNum {
		return nil, p.errorf("between requires numeric bounds")
	}

	f := field
	return func(r *vcf.Record) bool {
		v := f.eval(r)
		if !v.present || !v.isNum {
			return false
		}
		return v.num >= lo.num && v.num <= hi.num
	}, nil
}

func isKeyword(tok string) bool {
	switch strings.ToLower(tok) {
	case "&&", "||", "and", "or", "between", "(", ")":
		return true
	}
	return false
}

func isCompareOp(op string) bool {
	switch op {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	}
	return false
}

// literal interprets a token in value position.
func literal(tok string) value {
	return textValue(tok)
}

// compare builds the predicate closure for one comparison. A missing
// field value compares false under every operator, never errors. The
// ordering operators additionally require a numeric field value;
// non-numeric text under > or < also evaluates to false.
func compare(f *Field, op string, lit value) Predicate {
	return func(r *vcf.Record) bool {
		v := f.eval(r)
		if !v.present {
			return false
		}
		return compareValues(v, op, lit)
	}
}

func compareValues(v value, op string, lit value) bool {
	numeric := v.isNum && lit.isNum

	switch op {
	case "==":
		if numeric {
			return v.num == lit.num
		}
		return v.text == lit.text
	case "!=":
		if numeric {
			return v.num != lit.num
		}
		return v.text != lit.text
	case ">":
		return numeric && v.num > lit.num
	case ">=":
		return numeric && v.num >= lit.num
	case "<":
		return numeric && v.num < lit.num
	case "<=":
		return numeric && v.num <= lit.num
	}
	return false
}
