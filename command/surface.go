package command

import (
	"fmt"
	"regexp"
	"sort"
)

// HandlerFunc handles a failed command. Returning false stops resolution
// and lets the failure propagate.
type HandlerFunc func(c *Command, errText string) bool

// OverrideFunc replaces the execution of a named template. super is the
// runner of the inherited template, or nil when no surface declares one.
type OverrideFunc func(c *Command, super *Runner) (Result, error)

// Handler describes an error handler and the failures it applies to
type Handler struct {
	Name    string // Used in logs
	Command string // Runner name, or a regular expression over the command line
	Error   string // Regular expression over standard error
	RC      *int   // Return code, nil for any
	Func    HandlerFunc
}

// RC returns a pointer to code for use in Handler.RC
func RC(code int) *int {
	return &code
}

// handler is a Handler with its patterns compiled
type handler struct {
	Handler
	command *regexp.Regexp
	error   *regexp.Regexp
}

// identifier matches a Handler.Command that names a runner
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (h handler) matches(runner, commandText, errText string, rc int) bool {
	switch {
	case h.Command == "":
	case h.command == nil:
		if h.Command != runner {
			return false
		}
	case !h.command.MatchString(commandText):
		return false
	}
	if h.error != nil && !h.error.MatchString(errText) {
		return false
	}
	if h.RC != nil && *h.RC != rc {
		return false
	}
	return true
}

// Surface is the static description of a command type
type Surface struct {
	name      string
	parents   []*Surface
	templates map[string]string
	handlers  []handler
	overrides map[string]OverrideFunc
}

// NewSurface creates a surface that extends parents
func NewSurface(name string, parents ...*Surface) *Surface {
	return &Surface{
		name:      name,
		parents:   parents,
		templates: make(map[string]string),
		overrides: make(map[string]OverrideFunc),
	}
}

// Name returns the surface name
func (s *Surface) Name() string {
	return s.name
}

// Template declares a named command template, replacing any inherited
// template or override with the same name.
func (s *Surface) Template(name, template string) *Surface {
	s.templates[name] = template
	delete(s.overrides, name)
	return s
}

// Handle registers an error handler. It panics when h has no Func or one
// of its patterns does not compile, like regexp.MustCompile.
func (s *Surface) Handle(h Handler) *Surface {
	if h.Func == nil {
		panic(fmt.Sprintf("command: handler %q on surface %q has no func", h.Name, s.name))
	}

	compiled := handler{Handler: h}
	if h.Command != "" && !identifier.MatchString(h.Command) {
		compiled.command = regexp.MustCompile(h.Command)
	}
	if h.Error != "" {
		compiled.error = regexp.MustCompile(h.Error)
	}

	s.handlers = append(s.handlers, compiled)
	return s
}

// Override routes calls of a template name through fn
func (s *Surface) Override(name string, fn OverrideFunc) *Surface {
	s.overrides[name] = fn
	return s
}

// Templates returns the merged name to template table
func (s *Surface) Templates() map[string]string {
	merged := make(map[string]string)
	s.mergeTemplates(merged)
	return merged
}

func (s *Surface) mergeTemplates(into map[string]string) {
	for _, parent := range s.parents {
		parent.mergeTemplates(into)
	}
	for name, template := range s.templates {
		into[name] = template
	}
}

// TemplateNames returns the merged template names in sorted order
func (s *Surface) TemplateNames() []string {
	templates := s.Templates()
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers returns the merged handlers, ancestors first. A surface reached
// through several parents contributes its handlers once.
func (s *Surface) Handlers() []Handler {
	compiled := s.collectHandlers(nil, make(map[*Surface]bool))
	handlers := make([]Handler, len(compiled))
	for i, h := range compiled {
		handlers[i] = h.Handler
	}
	return handlers
}

func (s *Surface) collectHandlers(into []handler, seen map[*Surface]bool) []handler {
	if seen[s] {
		return into
	}
	seen[s] = true
	for _, parent := range s.parents {
		into = parent.collectHandlers(into, seen)
	}
	return append(into, s.handlers...)
}

// lookupOverride finds the most derived override for name. A template
// declared closer to s than any override hides it.
func (s *Surface) lookupOverride(name string) (OverrideFunc, bool) {
	fn, ok, _ := s.resolveOverride(name)
	return fn, ok
}

// resolveOverride reports the override for name and whether s or one of
// its ancestors settled the name, either by override or by template.
func (s *Surface) resolveOverride(name string) (OverrideFunc, bool, bool) {
	if fn, ok := s.overrides[name]; ok {
		return fn, true, true
	}
	if _, ok := s.templates[name]; ok {
		return nil, false, true
	}
	for i := len(s.parents) - 1; i >= 0; i-- {
		if fn, ok, settled := s.parents[i].resolveOverride(name); settled {
			return fn, ok, true
		}
	}
	return nil, false, false
}
