// Package expression evaluates key expressions such as `sku`,
// `product.sku` or `"v2:" + result.sku` against named call bindings.
//
// `+` adds when every operand is a number, whatever its Go integer or float
// type: the sum is an int64 when all operands are integers and a float64
// otherwise. If any operand is a string or bool, `+` concatenates the
// string forms instead. Null never renders into a key: concatenating null,
// or rendering a null result with String, is an error.
package expression

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/nulzo/cachekit/internal/core/domain"
)

// Evaluator parses expressions once and caches the parsed form.
type Evaluator struct {
	parser   *participle.Parser[keyExpr]
	compiled sync.Map // string -> *keyExpr
}

func New() *Evaluator {
	return &Evaluator{parser: newParser()}
}

// Compile checks the syntax of expr without evaluating it.
func (e *Evaluator) Compile(expr string) error {
	_, err := e.compile(expr)
	return err
}

// Evaluate computes the scalar value of expr. Every failure is reported as
// an expression evaluation error.
func (e *Evaluator) Evaluate(expr string, bindings map[string]any) (any, error) {
	ast, err := e.compile(expr)
	if err != nil {
		return nil, err
	}
	v, err := ast.eval(bindings)
	if err != nil {
		return nil, domain.ExpressionError(expr, err)
	}
	if !isScalar(v) {
		return nil, domain.ExpressionError(expr, fmt.Errorf("result of type %T is not a scalar", v))
	}
	return v, nil
}

func (e *Evaluator) compile(expr string) (*keyExpr, error) {
	if cached, ok := e.compiled.Load(expr); ok {
		return cached.(*keyExpr), nil
	}
	ast, err := e.parser.ParseString("", expr)
	if err != nil {
		return nil, domain.ExpressionError(expr, err)
	}
	e.compiled.Store(expr, ast)
	return ast, nil
}

func (x *keyExpr) eval(b map[string]any) (any, error) {
	head, err := x.Head.eval(b)
	if err != nil {
		return nil, err
	}
	if len(x.Tail) == 0 {
		return head, nil
	}

	values := []any{head}
	for _, op := range x.Tail {
		v, err := op.eval(b)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return add(values)
}

func (o *operand) eval(b map[string]any) (any, error) {
	switch {
	case o.String != nil:
		return unquote(*o.String)
	case o.Number != nil:
		return parseNumber(*o.Number)
	case o.Bool != nil:
		return bool(*o.Bool), nil
	case o.Null:
		return nil, nil
	case o.Group != nil:
		return o.Group.eval(b)
	default:
		return o.Path.eval(b)
	}
}

func (p *pathExpr) eval(b map[string]any) (any, error) {
	v, ok := b[p.Root]
	if !ok {
		return nil, fmt.Errorf("undefined binding %q", p.Root)
	}
	walked := p.Root
	for _, f := range p.Fields {
		next, err := field(v, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", walked, f, err)
		}
		v = next
		walked += "." + f
	}
	return v, nil
}

// field reads name from a map with string keys or from an exported struct
// field, matched by field name (case-insensitive) or json tag.
func field(v any, name string) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, errors.New("nil value")
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not a string", rv.Type().Key())
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, errors.New("no such key")
		}
		return mv.Interface(), nil
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
			if tag == name || strings.EqualFold(sf.Name, name) {
				return rv.Field(i).Interface(), nil
			}
		}
		return nil, errors.New("no such field")
	default:
		return nil, fmt.Errorf("cannot select a field of %s", rv.Kind())
	}
}

var errNull = errors.New("null cannot be part of a cache key")

// add sums operands when all are numbers and concatenates their string forms
// otherwise.
func add(values []any) (any, error) {
	var (
		isum   int64
		fsum   float64
		allInt = true
	)
	for _, v := range values {
		i, f, isInt, ok := number(v)
		if !ok {
			return concat(values)
		}
		if !isInt {
			allInt = false
		}
		isum += i
		fsum += f
	}
	if allInt {
		return isum, nil
	}
	return fsum, nil
}

func concat(values []any) (any, error) {
	var sb strings.Builder
	for _, v := range values {
		s, err := String(v)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// number reports v as a number. f always holds the float value; i holds the
// integer value when isInt is set. Unsigned values above MaxInt64 count as
// floats.
func number(v any) (i int64, f float64, isInt, ok bool) {
	rv, present := indirect(v)
	if !present {
		return 0, 0, false, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), float64(rv.Int()), true, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, float64(u), false, true
		}
		return int64(u), float64(u), true, true
	case reflect.Float32, reflect.Float64:
		return 0, rv.Float(), false, true
	default:
		return 0, 0, false, false
	}
}

// String renders a scalar the way it appears in a cache key. Pointers are
// followed; null is rejected.
func String(v any) (string, error) {
	rv, present := indirect(v)
	if !present {
		return "", errNull
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("value of type %T is not a scalar", v)
	}
}

// isScalar accepts null and anything String can render.
func isScalar(v any) bool {
	if _, present := indirect(v); !present {
		return true
	}
	_, err := String(v)
	return err == nil
}

// indirect follows pointers and interfaces. present is false for null.
func indirect(v any) (rv reflect.Value, present bool) {
	rv = reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func unquote(raw string) (string, error) {
	if strings.HasPrefix(raw, "'") {
		return raw[1 : len(raw)-1], nil
	}
	return strconv.Unquote(raw)
}

func parseNumber(raw string) (any, error) {
	if strings.Contains(raw, ".") {
		return strconv.ParseFloat(raw, 64)
	}
	return strconv.ParseInt(raw, 10, 64)
}
