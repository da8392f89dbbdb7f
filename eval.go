package calc

import "math/big"

// Context is a context for evaluating expressions. It holds the operator and
// operand stacks, which are reset at the start of each evaluation, so one
// Context can evaluate any number of expressions in turn. It is not safe to
// use a Context concurrently.
type Context struct {
	operands  stack[*big.Float]
	operators stack[Token]
	table     map[string]Operator
	nums      map[string]*big.Float
	prec      uint
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	precopt uint
	opopt   struct {
		sym string
		op  Operator
	}
)

func (precopt) ctxOption() {}
func (opopt) ctxOption()   {}

// Prec sets the minimum precision of calculations in bits. Integer operands
// and integer results of + - * and ^ up to 2^20 bits are exact regardless of
// precision.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// WithOperator adds or replaces an operator in the context's table. sym must
// be a single rune which is not a digit, bracket, or space; otherwise the
// tokenizer never produces it. A zero Operator removes sym from the table.
func WithOperator(sym string, op Operator) ContextOption {
	return opopt{sym, op}
}

// NewContext creates a new evaluation context with the default operators. If
// no precision is given, the default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		table: Operators(),
		nums:  make(map[string]*big.Float),
		prec:  64,
	}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil:
			// do nothing
		case precopt:
			ctx.prec = uint(opt)
		case opopt:
			if opt.op.Func == nil {
				delete(ctx.table, opt.sym)
				continue
			}
			ctx.table[opt.sym] = opt.op
		default:
			panic("calc: unknown option type")
		}
	}
	return &ctx
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Compile normalizes, tokenizes, and evaluates an expression.
func (ctx *Context) Compile(src string) (*big.Float, error) {
	return ctx.Eval(Tokenize(Normalize(src)))
}

// Eval evaluates a token sequence and returns the result. The tokens should
// come from Tokenize, which brackets the whole expression so that the final
// close bracket applies every pending operator. If an error occurs, the
// result is nil and no partial result is available.
func (ctx *Context) Eval(toks []Token) (*big.Float, error) {
	ctx.operands.reset()
	ctx.operators.reset()
	end := 0
	for _, tok := range toks {
		if err := ctx.step(tok); err != nil {
			return nil, err
		}
		end = tok.Pos
	}
	return ctx.result(end)
}

// step processes a single token.
func (ctx *Context) step(tok Token) error {
	switch tok.Kind {
	case KindNum:
		ctx.operands.push(new(big.Float).Copy(ctx.num(tok.Text)))
	case KindOpen:
		ctx.operators.push(tok)
	case KindClose:
		for {
			top, ok := ctx.operators.pop()
			if !ok {
				return &BracketError{Col: tok.Pos, Right: tok.Text}
			}
			if top.Kind == KindOpen {
				return nil
			}
			if err := ctx.apply(top); err != nil {
				return err
			}
		}
	case KindOp:
		op, ok := ctx.table[tok.Text]
		if !ok {
			return &OperatorError{Col: tok.Pos, Operator: tok.Text}
		}
		for {
			top, ok := ctx.operators.peek()
			if !ok || top.Kind != KindOp || !ctx.table[top.Text].precedes(op) {
				break
			}
			ctx.operators.pop()
			if err := ctx.apply(top); err != nil {
				return err
			}
		}
		ctx.operators.push(tok)
	default:
		panic("calc: unknown token: " + tok.String())
	}
	return nil
}

// apply reduces the top two operands with an operator token.
func (ctx *Context) apply(tok Token) (err error) {
	if n := ctx.operands.len(); n < 2 {
		return &UnderflowError{Col: tok.Pos, Operator: tok.Text, Have: n}
	}
	y, _ := ctx.operands.pop()
	x, _ := ctx.operands.peek()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		// Custom operators can still produce NaN.
		if _, ok := r.(big.ErrNaN); !ok {
			panic(r)
		}
		err = DomainError{X: new(big.Float).Copy(y), Func: tok.Text}
	}()
	if err := ctx.table[tok.Text].Func(x, x, y); err != nil {
		return err
	}
	if x.IsInf() {
		return RangeError{Func: tok.Text}
	}
	return nil
}

// result checks the final state of the stacks and returns the value of the
// expression. end is the position of the last token.
func (ctx *Context) result(end int) (*big.Float, error) {
	if n := ctx.operators.len(); n > 0 {
		for _, tok := range ctx.operators.v {
			if tok.Kind == KindOpen {
				// Like EOF in the middle of a bracketed term.
				return nil, &BracketError{Col: end, Left: tok.Text}
			}
		}
		return nil, &MalformedError{Col: end, Values: ctx.operands.len(), Pending: n}
	}
	if n := ctx.operands.len(); n != 1 {
		return nil, &MalformedError{Col: end, Values: n}
	}
	r, _ := ctx.operands.pop()
	return r, nil
}

// num gets a possibly cached number from its text. The number has at least
// the context's precision and enough to hold every digit.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("calc: invalid number: " + s)
	}
	r := new(big.Float).SetPrec(max(ctx.prec, uint(n.BitLen()))).SetInt(n)
	ctx.nums[s] = r
	return r
}

// Eval is a shortcut to evaluate tokens in a new context.
func Eval(toks []Token, opts ...ContextOption) (*big.Float, error) {
	return NewContext(opts...).Eval(toks)
}

// EvalString is a shortcut to normalize, tokenize, and evaluate a string
// expression in a new context.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	return NewContext(opts...).Compile(src)
}
