package quadrature

import (
	"fmt"

	"github.com/san-kum/numlib/internal/numeric"
)

// Trapezoid applies the composite trapezoidal rule over n equal panels.
func Trapezoid[T numeric.Float](a, b T, n int, f numeric.Func[T]) (T, error) {
	if n < 1 {
		return 0, numeric.Invalid("trapezoid: n must be positive, got %d", n)
	}
	if err := checkBounds("trapezoid", a, b); err != nil {
		return 0, err
	}
	h := (b - a) / T(n)

	fa, err := numeric.Eval("trapezoid", f, a)
	if err != nil {
		return 0, err
	}
	fb, err := numeric.Eval("trapezoid", f, b)
	if err != nil {
		return 0, err
	}

	var sum T
	for i := 1; i < n; i++ {
		v, err := numeric.Eval("trapezoid", f, a+T(i)*h)
		if err != nil {
			return 0, err
		}
		sum += v
	}

	return checkResult("trapezoid", b, h*(sum+fa/2+fb/2))
}

// Simpson applies the composite Simpson rule. n must be even.
func Simpson[T numeric.Float](a, b T, n int, f numeric.Func[T]) (T, error) {
	if n < 1 {
		return 0, numeric.Invalid("simpson: n must be positive, got %d", n)
	}
	if err := checkBounds("simpson", a, b); err != nil {
		return 0, err
	}
	if n%2 != 0 {
		return 0, numeric.Invalid("simpson: n must be even, got %d", n)
	}
	h := (b - a) / T(n)

	fa, err := numeric.Eval("simpson", f, a)
	if err != nil {
		return 0, err
	}
	fb, err := numeric.Eval("simpson", f, b)
	if err != nil {
		return 0, err
	}

	var sum T
	for i := 1; i < n; i++ {
		v, err := numeric.Eval("simpson", f, a+T(i)*h)
		if err != nil {
			return 0, err
		}
		if i%2 == 1 {
			sum += 4 * v
		} else {
			sum += 2 * v
		}
	}

	return checkResult("simpson", b, h*(sum+fa+fb)/3)
}

// ThreeEighths applies the composite Simpson 3/8 rule. n must be a multiple
// of 3. Both endpoint values carry weight 1.
func ThreeEighths[T numeric.Float](a, b T, n int, f numeric.Func[T]) (T, error) {
	if n < 1 {
		return 0, numeric.Invalid("simpson38: n must be positive, got %d", n)
	}
	if err := checkBounds("simpson38", a, b); err != nil {
		return 0, err
	}
	if n%3 != 0 {
		return 0, numeric.Invalid("simpson38: n must be a multiple of 3, got %d", n)
	}
	h := (b - a) / T(n)

	fa, err := numeric.Eval("simpson38", f, a)
	if err != nil {
		return 0, err
	}
	fb, err := numeric.Eval("simpson38", f, b)
	if err != nil {
		return 0, err
	}

	var sum T
	for i := 1; i < n; i++ {
		v, err := numeric.Eval("simpson38", f, a+T(i)*h)
		if err != nil {
			return 0, err
		}
		if i%3 == 0 {
			sum += 2 * v
		} else {
			sum += 3 * v
		}
	}

	return checkResult("simpson38", b, 3*h*(sum+fa+fb)/8)
}

func checkBounds[T numeric.Float](op string, a, b T) error {
	if !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return numeric.Invalid("%s: bounds must be finite, got [%v, %v]", op, a, b)
	}
	return nil
}

// checkResult rejects a weighted sum that overflowed even though every
// sample was finite.
func checkResult[T numeric.Float](op string, b, v T) (T, error) {
	if !numeric.IsFinite(v) {
		return 0, &numeric.EvalError{Op: op, X: float64(b), Y: float64(v), Wrapped: numeric.ErrNonFinite}
	}
	return v, nil
}

// Rule is a fixed-step composite rule over float64.
type Rule struct {
	Name  string
	Order int
	// Multiple is the divisor n must honor (1, 2 or 3).
	Multiple  int
	Integrate func(a, b float64, n int, f numeric.Func[float64]) (float64, error)
}

var rules = map[string]Rule{
	"trapezoid": {Name: "trapezoid", Order: 2, Multiple: 1, Integrate: Trapezoid[float64]},
	"simpson":   {Name: "simpson", Order: 4, Multiple: 2, Integrate: Simpson[float64]},
	"simpson38": {Name: "simpson38", Order: 4, Multiple: 3, Integrate: ThreeEighths[float64]},
}

// Lookup returns the fixed-step rule registered under name.
func Lookup(name string) (Rule, error) {
	r, ok := rules[name]
	if !ok {
		return Rule{}, fmt.Errorf("unknown rule: %s", name)
	}
	return r, nil
}

// RuleNames lists the registered fixed-step rules in order of accuracy.
func RuleNames() []string {
	return []string{"trapezoid", "simpson", "simpson38"}
}

// Admissible rounds n up to the nearest count the rule accepts.
func (r Rule) Admissible(n int) int {
	if n < r.Multiple {
		return r.Multiple
	}
	if rem := n % r.Multiple; rem != 0 {
		return n + r.Multiple - rem
	}
	return n
}
