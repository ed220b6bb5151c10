// Package keygen provides the KeyGenerator implementations selectable from
// configuration.
package keygen

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/core/ports"
)

const (
	SimpleHashID = "simple_hash"
	CompositeID  = "composite"
)

// nullTag marks a nil parameter, untyped or a nil pointer.
const nullTag = "n"

// New returns the generator registered under id.
func New(id string) (ports.KeyGenerator, error) {
	switch id {
	case "", SimpleHashID:
		return SimpleHash{}, nil
	case CompositeID:
		return Composite{}, nil
	default:
		return nil, fmt.Errorf("unknown key generator %q", id)
	}
}

// scalar renders a key parameter as its canonical string form together with
// a short type tag. Only scalars are accepted: equality of the rendered form
// must follow equality of the value, never object identity. Pointers are
// followed to their element; a nil pointer is null.
func scalar(position int, p any) (tag, s string, err error) {
	if p == nil {
		return nullTag, "", nil
	}
	switch v := p.(type) {
	case string:
		return "s", v, nil
	case []byte:
		return "s", string(v), nil
	case bool:
		return "b", strconv.FormatBool(v), nil
	}

	// Named scalar types (type SKU string, time.Duration) by underlying kind.
	rv := reflect.ValueOf(p)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nullTag, "", nil
		}
		rv = rv.Elem()
	}
	if rv.Type() != reflect.TypeOf(p) {
		return scalar(position, rv.Interface())
	}

	switch rv.Kind() {
	case reflect.String:
		return "s", rv.String(), nil
	case reflect.Bool:
		return "b", strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i", strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "i", strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return "f", strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return "f", strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	default:
		return "", "", domain.UnsupportedKeyTypeError(position, p)
	}
}
