package expr

import "math"

type builtin struct {
	eval func(float64) float64
	// derivative of f at u, before the chain-rule factor
	deriv func(u *Expr) *Expr
}

var builtins = map[string]builtin{
	"sin": {math.Sin, func(u *Expr) *Expr { return Call("cos", u) }},
	"cos": {math.Cos, func(u *Expr) *Expr { return Negate(Call("sin", u)) }},
	"tan": {math.Tan, func(u *Expr) *Expr {
		return Sum(Int(1), Power(Call("tan", u), Int(2)))
	}},
	"exp": {math.Exp, func(u *Expr) *Expr { return Call("exp", u) }},
	"log": {math.Log, func(u *Expr) *Expr { return Power(u, Int(-1)) }},
	"sqrt": {math.Sqrt, func(u *Expr) *Expr {
		return Quotient(Int(1), Product(Int(2), Call("sqrt", u)))
	}},
	"sinh": {math.Sinh, func(u *Expr) *Expr { return Call("cosh", u) }},
	"cosh": {math.Cosh, func(u *Expr) *Expr { return Call("sinh", u) }},
	"tanh": {math.Tanh, func(u *Expr) *Expr {
		return Difference(Int(1), Power(Call("tanh", u), Int(2)))
	}},
}

// aliases accepted by the parser
var funcAliases = map[string]string{
	"ln": "log",
}

// IsBuiltinFunction reports whether name is a function the engine knows how
// to evaluate and differentiate.
func IsBuiltinFunction(name string) bool {
	if _, ok := builtins[name]; ok {
		return true
	}
	_, ok := funcAliases[name]
	return ok
}

// reserved symbol with a fixed numeric value
const symPi = "pi"
