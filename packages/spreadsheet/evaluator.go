package spreadsheet

import "math"

// Lookup resolves a normalized variable to its numeric value. returning an
// error marks the variable as undefined.
type Lookup func(name string) (float64, error)

// evaluator holds the operand and operator stacks for one evaluation. '(' is
// kept on the operator stack as a marker.
type evaluator struct {
	values    []float64
	operators []string
	failure   *FormulaError
}

// Evaluate computes the value of the formula, resolving variables with
// lookup. the result is a float64 or a FormulaError; Evaluate never returns
// a Go error and never panics. * and / bind tighter than + and -, and all
// four are left associative.
func (f *Formula) Evaluate(lookup Lookup) Primitive {
	e := &evaluator{
		values:    make([]float64, 0, len(f.tokens)/2+1),
		operators: make([]string, 0, len(f.tokens)/2+1),
	}

	for _, tok := range f.tokens {
		switch tok.Type {
		case TokenNumber:
			e.pushOperand(tok.Number)
		case TokenVariable:
			if lookup == nil {
				return NewFormulaError(ReasonUndefinedVariable)
			}
			value, err := lookup(tok.Value)
			if err != nil {
				return NewFormulaError(ReasonUndefinedVariable)
			}
			e.pushOperand(value)
		case TokenOperator:
			if tok.Value == "+" || tok.Value == "-" {
				e.applyIfTop("+", "-")
			}
			e.operators = append(e.operators, tok.Value)
		case TokenLeftParen:
			e.operators = append(e.operators, "(")
		case TokenRightParen:
			e.applyIfTop("+", "-")
			if top, ok := e.popOperator(); !ok || top != "(" {
				e.fail(ReasonMalformed)
			}
			e.applyIfTop("*", "/")
		}
		if e.failure != nil {
			return *e.failure
		}
	}

	e.applyIfTop("+", "-")
	if e.failure != nil {
		return *e.failure
	}
	if len(e.operators) != 0 || len(e.values) != 1 {
		return NewFormulaError(ReasonMalformed)
	}
	return e.values[0]
}

// pushOperand pushes a value, applying a pending * or / first
func (e *evaluator) pushOperand(value float64) {
	e.values = append(e.values, value)
	e.applyIfTop("*", "/")
}

// applyIfTop pops and applies the top operator if it is one of ops
func (e *evaluator) applyIfTop(ops ...string) {
	if e.failure != nil || len(e.operators) == 0 {
		return
	}
	top := e.operators[len(e.operators)-1]
	for _, op := range ops {
		if top == op {
			e.operators = e.operators[:len(e.operators)-1]
			e.apply(op)
			return
		}
	}
}

func (e *evaluator) popOperator() (string, bool) {
	if len(e.operators) == 0 {
		return "", false
	}
	top := e.operators[len(e.operators)-1]
	e.operators = e.operators[:len(e.operators)-1]
	return top, true
}

// apply pops the right then left operand and pushes left op right
func (e *evaluator) apply(op string) {
	if len(e.values) < 2 {
		e.fail(ReasonMalformed)
		return
	}
	right := e.values[len(e.values)-1]
	left := e.values[len(e.values)-2]
	e.values = e.values[:len(e.values)-2]

	var result float64
	switch op {
	case "+":
		result = left + right
	case "-":
		result = left - right
	case "*":
		result = left * right
	case "/":
		if right == 0 {
			e.fail(ReasonDivideByZero)
			return
		}
		result = left / right
	default:
		e.fail(ReasonMalformed)
		return
	}
	// an overflowing product or quotient is reported like division by zero
	if (op == "*" || op == "/") && math.IsInf(result, 0) {
		e.fail(ReasonDivideByZero)
		return
	}
	e.values = append(e.values, result)
}

func (e *evaluator) fail(reason string) {
	if e.failure == nil {
		err := NewFormulaError(reason)
		e.failure = &err
	}
}
