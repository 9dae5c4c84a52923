package formatter

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/modulus-sa/abcmd/logger"
)

// Formatter renders command templates against a configuration mapping
type Formatter struct {
	config map[string]any
	memo   map[string]string
	log    logger.Logger
}

// Option configures a Formatter
type Option func(*Formatter)

// WithLogger sets the logger used for render traces
func WithLogger(l logger.Logger) Option {
	return func(f *Formatter) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates a formatter over config. The map is held by reference.
func New(config map[string]any, opts ...Option) *Formatter {
	if config == nil {
		config = map[string]any{}
	}
	f := &Formatter{
		config: config,
		memo:   make(map[string]string),
		log:    logger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the configuration for reading or mutation and drops every
// memoized rendering.
func (f *Formatter) Config() map[string]any {
	f.Invalidate()
	return f.config
}

// Invalidate drops every memoized rendering
func (f *Formatter) Invalidate() {
	if len(f.memo) > 0 {
		f.memo = make(map[string]string)
	}
}

// Render expands template into a normalized command line
func (f *Formatter) Render(template string) string {
	if rendered, ok := f.memo[template]; ok {
		return rendered
	}

	values := f.prepare()
	rendered := strings.Join(strings.Fields(f.expand(template, values)), " ")
	f.memo[template] = rendered

	f.log.Debug("Rendered template", logger.F("template", template), logger.F("command", rendered))
	return rendered
}

// prepare copies the configuration, turning booleans into switches
func (f *Formatter) prepare() map[string]any {
	values := make(map[string]any, len(f.config))
	for key, val := range f.config {
		if b, ok := val.(bool); ok {
			if b {
				values[key] = "--" + strings.ToLower(strings.ReplaceAll(key, "_", "-"))
			} else {
				values[key] = ""
			}
			continue
		}
		values[key] = val
	}
	return values
}

func (f *Formatter) expand(template string, values map[string]any) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				// unterminated field, keep the rest as is
				b.WriteString(template[i:])
				return b.String()
			}
			b.WriteString(f.field(template[i+1:i+1+end], values))
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// field resolves the body of a single {...} field
func (f *Formatter) field(body string, values map[string]any) string {
	key := strings.TrimSpace(body)
	flag := ""
	if strings.HasPrefix(key, "-") {
		parts := strings.Fields(key)
		if len(parts) < 2 {
			f.log.Debug("Flagged field without a key", logger.F("field", body))
			return ""
		}
		flag, key = parts[0], parts[1]
	}

	val, ok := values[key]
	if !ok {
		f.log.Debug("No configuration entry for field", logger.F("key", key))
		return ""
	}
	return text(flag, val)
}

// text converts a configuration value to its command line form
func text(flag string, val any) string {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Invalid:
		return ""
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return text(flag, rv.Elem().Interface())
	case reflect.String:
		if rv.Len() == 0 {
			return ""
		}
		return withFlag(flag, rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return withFlag(flag, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return withFlag(flag, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return ""
		}
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, withFlag(flag, fmt.Sprint(rv.Index(i).Interface())))
		}
		return strings.Join(parts, " ")
	case reflect.Map:
		if rv.Len() == 0 {
			return ""
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}

func withFlag(flag, value string) string {
	if flag == "" {
		return value
	}
	return flag + " " + value
}
