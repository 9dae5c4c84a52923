package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modulus-sa/abcmd/logger"
)

func newTestFormatter(config map[string]any) *Formatter {
	return New(config, WithLogger(logger.NewSilentLogger()))
}

func TestFormatter_Render(t *testing.T) {
	tests := []struct {
		name     string
		template string
		config   map[string]any
		expected string
	}{
		{
			name:     "plain value",
			template: "cmd {option0}",
			config:   map[string]any{"option0": "test_option"},
			expected: "cmd test_option",
		},
		{
			name:     "list values are space separated",
			template: "command {option0}::{option1} {option2}",
			config: map[string]any{
				"option0": "test_option",
				"option1": "test_option1",
				"option2": []string{"path0", "path1"},
			},
			expected: "command test_option::test_option1 path0 path1",
		},
		{
			name:     "true renders as long switch",
			template: "command {option0} {verbose}",
			config:   map[string]any{"option0": "test_option", "verbose": true},
			expected: "command test_option --verbose",
		},
		{
			name:     "switch name is kebab cased",
			template: "command {bool_option}",
			config:   map[string]any{"bool_option": true},
			expected: "command --bool-option",
		},
		{
			name:     "switch name is lower cased",
			template: "borg create {READ_SPECIAL}",
			config:   map[string]any{"READ_SPECIAL": true},
			expected: "borg create --read-special",
		},
		{
			name:     "false renders nothing",
			template: "command {option0} {verbose}",
			config:   map[string]any{"option0": "test_option", "verbose": false},
			expected: "command test_option",
		},
		{
			name:     "flagged value",
			template: "init {option0} {-e option1}",
			config:   map[string]any{"option0": "test_option", "option1": "keyfile"},
			expected: "init test_option -e keyfile",
		},
		{
			name:     "positional int list",
			template: "command {args}",
			config:   map[string]any{"args": []int{1, 2, 3, 4}},
			expected: "command 1 2 3 4",
		},
		{
			name:     "positional mixed list",
			template: "command {args}",
			config:   map[string]any{"args": []any{"a", 2}},
			expected: "command a 2",
		},
		{
			name:     "flagged list repeats the flag",
			template: "command {-e list_option}",
			config:   map[string]any{"list_option": []string{"/list_option0", "/list_option1"}},
			expected: "command -e /list_option0 -e /list_option1",
		},
		{
			name:     "flagged empty list vanishes",
			template: "command {option2} {-e list_option}",
			config:   map[string]any{"option2": []string{"test_path"}, "list_option": []string{}},
			expected: "command test_path",
		},
		{
			name:     "flagged empty string vanishes",
			template: "command {-c empty_option} end",
			config:   map[string]any{"empty_option": ""},
			expected: "command end",
		},
		{
			name:     "flagged int",
			template: "command {-h keep_hourly}",
			config:   map[string]any{"keep_hourly": 1},
			expected: "command -h 1",
		},
		{
			name:     "zero is a value",
			template: "command {-o arg}",
			config:   map[string]any{"arg": 0},
			expected: "command -o 0",
		},
		{
			name:     "unsigned zero is a value",
			template: "command {arg}",
			config:   map[string]any{"arg": uint(0)},
			expected: "command 0",
		},
		{
			name:     "long flag",
			template: "command {--long long_option}",
			config:   map[string]any{"long_option": 1},
			expected: "command --long 1",
		},
		{
			name:     "long flag with list",
			template: "command {--long long_option}",
			config:   map[string]any{"long_option": []int{1, 2, 3}},
			expected: "command --long 1 --long 2 --long 3",
		},
		{
			name:     "extra tokens are ignored",
			template: "command {-o option option2}",
			config:   map[string]any{"option": "opt"},
			expected: "command -o opt",
		},
		{
			name:     "positional int",
			template: "command {ARG}",
			config:   map[string]any{"ARG": 10},
			expected: "command 10",
		},
		{
			name:     "nil value vanishes",
			template: "command {ARG} end",
			config:   map[string]any{"ARG": nil},
			expected: "command end",
		},
		{
			name:     "missing key vanishes",
			template: "command {MISSING} {-o ALSO_MISSING} end",
			config:   map[string]any{},
			expected: "command end",
		},
		{
			name:     "flag without key vanishes",
			template: "command {-o} end",
			config:   map[string]any{},
			expected: "command end",
		},
		{
			name:     "escaped braces",
			template: "borg list --format {{time}} {repo}",
			config:   map[string]any{"repo": "/r"},
			expected: "borg list --format {time} /r",
		},
		{
			name:     "unterminated field is literal",
			template: "echo {repo} {oops",
			config:   map[string]any{"repo": "/r"},
			expected: "echo /r {oops",
		},
		{
			name:     "other types are stringified",
			template: "sleep {seconds}",
			config:   map[string]any{"seconds": 1.5},
			expected: "sleep 1.5",
		},
		{
			name:     "whitespace is normalized",
			template: "  create\t{-e EXCLUDE}\n  {REPOSITORY}  ",
			config:   map[string]any{"EXCLUDE": []string{}, "REPOSITORY": "/r"},
			expected: "create /r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFormatter(tt.config)
			assert.Equal(t, tt.expected, f.Render(tt.template))
		})
	}
}

func TestFormatter_EndToEndScenarios(t *testing.T) {
	f := newTestFormatter(map[string]any{"REPOSITORY": "/r"})
	assert.Equal(t, "init /r", f.Render("init {REPOSITORY}"))

	f = newTestFormatter(map[string]any{"EXCLUDE": []string{}})
	assert.Equal(t, "create", f.Render("create {-e EXCLUDE}"))
}

func TestFormatter_DoesNotPolluteConfig(t *testing.T) {
	config := map[string]any{"verbose": true}
	f := newTestFormatter(config)

	assert.Equal(t, "cmd --verbose", f.Render("cmd {verbose}"))
	assert.Equal(t, true, config["verbose"])
}

func TestFormatter_CachesRenders(t *testing.T) {
	config := map[string]any{"OPTION": "option"}
	f := newTestFormatter(config)

	first := f.Render("command {-o OPTION}")
	second := f.Render("command {-o OPTION}")
	assert.Equal(t, "command -o option", first)
	assert.Equal(t, first, second)

	// a write that bypasses the accessor keeps serving the memo
	config["OPTION"] = "bypassed"
	assert.Equal(t, "command -o option", f.Render("command {-o OPTION}"))
}

func TestFormatter_ConfigAccessInvalidates(t *testing.T) {
	f := newTestFormatter(map[string]any{"OPTION": "option"})
	assert.Equal(t, "command option", f.Render("command {OPTION}"))

	f.Config()["OPTION"] = "changed"
	assert.Equal(t, "command changed", f.Render("command {OPTION}"))
}

func TestFormatter_Invalidate(t *testing.T) {
	config := map[string]any{"OPTION": "option"}
	f := newTestFormatter(config)
	assert.Equal(t, "command option", f.Render("command {OPTION}"))

	config["OPTION"] = "changed"
	f.Invalidate()
	assert.Equal(t, "command changed", f.Render("command {OPTION}"))
}

func TestFormatter_NilConfig(t *testing.T) {
	f := newTestFormatter(nil)
	assert.Equal(t, "echo", f.Render("echo {anything}"))

	f.Config()["anything"] = "else"
	assert.Equal(t, "echo else", f.Render("echo {anything}"))
}
