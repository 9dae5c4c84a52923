// Package config loads task configuration files and checks them against a
// schema of required entries and defaults.
package config

import (
	"fmt"
	"reflect"
	"sort"
)

// Config is a task configuration. Keys are kept as written in the file.
type Config map[string]any

// Keys returns the configuration keys in sorted order
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value of key when it is a string
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Bool returns the value of key when it is a bool
func (c Config) Bool(key string) bool {
	b, _ := c[key].(bool)
	return b
}

// Int returns the value of key when it is an integer
func (c Config) Int(key string) int {
	n, _ := toInt(c[key])
	return n
}

// Strings returns the value of key as a list of strings. Non string
// elements are formatted with fmt.Sprint.
func (c Config) Strings(key string) []string {
	rv := reflect.ValueOf(c[key])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	out := make([]string, rv.Len())
	for i := range out {
		item := rv.Index(i).Interface()
		if s, ok := item.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(item)
		}
	}
	return out
}

// Ints returns the value of key as a list of integers, skipping elements
// that are not integers.
func (c Config) Ints(key string) []int {
	rv := reflect.ValueOf(c[key])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	out := make([]int, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if n, ok := toInt(rv.Index(i).Interface()); ok {
			out = append(out, n)
		}
	}
	return out
}

func toInt(val any) (int, bool) {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	}
	return 0, false
}
