package domain

import (
	"fmt"
	"strings"
)

// Mode selects one of the three interception protocols.
type Mode string

const (
	ModeCacheable Mode = "cacheable"
	ModeEvict     Mode = "evict"
	ModeUpdate    Mode = "update"
)

// ParseMode accepts the configuration spellings of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cacheable":
		return ModeCacheable, nil
	case "evict", "cache_evict", "cacheevict":
		return ModeEvict, nil
	case "update", "cache_update", "cacheupdate", "put":
		return ModeUpdate, nil
	default:
		return "", fmt.Errorf("unknown cache mode %q", s)
	}
}

// CacheMetadata is the parsed caching descriptor of one call site.
// Treat it as immutable once registered.
type CacheMetadata struct {
	Site       string   `json:"site" mapstructure:"site" validate:"required"`
	Mode       Mode     `json:"mode" mapstructure:"mode" validate:"required,oneof=cacheable evict update"`
	CacheNames []string `json:"cache_names" mapstructure:"cache_names" validate:"required,min=1,unique,dive,required"`
	// KeyExpression is evaluated against the call bindings when set;
	// otherwise the configured KeyGenerator is applied to all arguments.
	KeyExpression string `json:"key,omitempty" mapstructure:"key"`
	// AllEntries only applies to ModeEvict and overrides KeyExpression.
	AllEntries bool `json:"all_entries,omitempty" mapstructure:"all_entries"`
}

// HasKeyExpression reports whether the key is computed from an expression.
func (m *CacheMetadata) HasKeyExpression() bool {
	return strings.TrimSpace(m.KeyExpression) != ""
}

// FlushesAll reports whether an eviction clears every entry.
func (m *CacheMetadata) FlushesAll() bool {
	return m.Mode == ModeEvict && m.AllEntries
}

// Param is one named, positioned argument of an intercepted call.
type Param struct {
	Name  string
	Value any
}

// CallContext holds the runtime data of one intercepted invocation.
type CallContext struct {
	Params []Param
}

// NewCallContext builds a context from name/value pairs in call order.
func NewCallContext(params ...Param) CallContext {
	return CallContext{Params: params}
}

// Args returns the argument values in call order.
func (c CallContext) Args() []any {
	args := make([]any, len(c.Params))
	for i, p := range c.Params {
		args[i] = p.Value
	}
	return args
}

// Bindings returns the named arguments, plus positional aliases p0, p1...
func (c CallContext) Bindings() map[string]any {
	b := make(map[string]any, len(c.Params)*2)
	for i, p := range c.Params {
		b[fmt.Sprintf("p%d", i)] = p.Value
		if p.Name != "" {
			b[p.Name] = p.Value
		}
	}
	return b
}

// ResultBinding is the name under which the return value is exposed to
// CacheUpdate key expressions.
const ResultBinding = "result"
