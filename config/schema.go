package config

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/modulus-sa/abcmd/logger"
)

// Kind is the expected type of a configuration entry
type Kind int

const (
	Any Kind = iota
	Bool
	String
	Int
	Float
	List
	Map
)

var kindNames = map[Kind]string{
	Any:    "any",
	Bool:   "bool",
	String: "str",
	Int:    "int",
	Float:  "float",
	List:   "list",
	Map:    "dict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf returns the kind of a decoded configuration value
func KindOf(val any) Kind {
	if val == nil {
		return Any
	}

	switch reflect.ValueOf(val).Kind() {
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Slice, reflect.Array:
		return List
	case reflect.Map:
		return Map
	}
	return Any
}

func typeName(val any) string {
	if kind := KindOf(val); kind != Any {
		return kind.String()
	}
	return fmt.Sprintf("%T", val)
}

// accepts reports whether a value of kind got satisfies want
func (k Kind) accepts(got Kind) bool {
	switch k {
	case Any:
		return true
	case Float:
		return got == Float || got == Int
	}
	return k == got
}

// entry is either required (no default) or optional with a default
type entry struct {
	key      string
	kind     Kind
	value    any
	required bool
}

// Schema lists the entries a configuration must or may contain
type Schema struct {
	parents []*Schema
	entries []entry
	index   map[string]int
}

// NewSchema creates a schema that extends parents. Entries declared on the
// schema itself replace inherited ones; among parents the first one
// declaring a key wins.
func NewSchema(parents ...*Schema) *Schema {
	return &Schema{
		parents: parents,
		index:   make(map[string]int),
	}
}

// Required declares an entry that must be present with the given kind
func (s *Schema) Required(key string, kind Kind) *Schema {
	return s.set(entry{key: key, kind: kind, required: true})
}

// Default declares an optional entry. When missing it is filled with
// value; when present it must have the kind of value.
func (s *Schema) Default(key string, value any) *Schema {
	return s.set(entry{key: key, kind: KindOf(value), value: value})
}

func (s *Schema) set(e entry) *Schema {
	if i, ok := s.index[e.key]; ok {
		s.entries[i] = e
		return s
	}
	s.index[e.key] = len(s.entries)
	s.entries = append(s.entries, e)
	return s
}

// Keys returns every declared key, inherited ones included, sorted
func (s *Schema) Keys() []string {
	merged := s.merged()
	keys := make([]string, len(merged))
	for i, e := range merged {
		keys[i] = e.key
	}
	sort.Strings(keys)
	return keys
}

// merged returns the effective entries: parents first, in declaration order
func (s *Schema) merged() []entry {
	var out []entry
	seen := make(map[string]int)

	add := func(e entry, replace bool) {
		if i, ok := seen[e.key]; ok {
			if replace {
				out[i] = e
			}
			return
		}
		seen[e.key] = len(out)
		out = append(out, e)
	}

	for _, parent := range s.parents {
		for _, e := range parent.merged() {
			add(e, false)
		}
	}
	for _, e := range s.entries {
		add(e, true)
	}
	return out
}

// Validate fills missing optional entries of cfg with their defaults and
// checks the type of every declared entry. All missing required entries
// are reported together.
func (s *Schema) Validate(cfg Config) error {
	logger.Debug("Checking config", logger.F("keys", fmt.Sprint(cfg.Keys())))

	var missing []string
	for _, e := range s.merged() {
		val, ok := cfg[e.key]
		if !ok {
			if e.required {
				missing = append(missing, e.key)
				continue
			}
			cfg[e.key] = copyDefault(e.value)
			continue
		}

		if !e.kind.accepts(KindOf(val)) {
			return &TypeError{Key: e.key, Want: e.kind, Got: typeName(val)}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingConfigurationError{Keys: missing}
	}
	return nil
}

// Load loads the configuration of task from dir and validates it
func (s *Schema) Load(task, dir string) (Config, error) {
	cfg, err := Load(task, dir)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating %s: %w", task, err)
	}
	return cfg, nil
}

// copyDefault copies slice and map defaults so configurations never share
// them.
func copyDefault(val any) any {
	switch v := val.(type) {
	case []any:
		return append([]any{}, v...)
	case []string:
		return append([]string{}, v...)
	case []int:
		return append([]int{}, v...)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = item
		}
		return out
	}
	return val
}
