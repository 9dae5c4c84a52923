package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/modulus-sa/abcmd/logger"
)

// Decoder parses the contents of a configuration file
type Decoder func(data []byte) (map[string]any, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]Decoder{
		"yaml": decodeYAML,
		"yml":  decodeYAML,
		"toml": decodeTOML,
		"json": decodeJSON,
	}
)

// RegisterDecoder makes a decoder available for files with extension ext
// (without the leading dot), replacing any existing one.
func RegisterDecoder(ext string, fn Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[strings.TrimPrefix(ext, ".")] = fn
}

func lookupDecoder(ext string) (Decoder, bool) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	fn, ok := decoders[ext]
	return fn, ok
}

// Load reads the configuration of task from the first file in dir named
// task.<ext>. An empty dir means the working directory.
func Load(task, dir string) (Config, error) {
	path, err := Find(task, dir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Find returns the configuration file of task in dir
func Find(task, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("no such directory: %s: %w", dir, fs.ErrNotExist)
	}

	logger.Debug("Searching config files", logger.F("dir", dir), logger.F("task", task))
	matches, err := filepath.Glob(filepath.Join(dir, escapeGlob(task)+".*"))
	if err != nil {
		return "", fmt.Errorf("searching config for %s: %w", task, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("could not find configuration file for task %q in %s: %w", task, dir, fs.ErrNotExist)
	}
	return matches[0], nil
}

// LoadFile decodes a single configuration file, choosing the decoder by
// the file extension.
func LoadFile(path string) (Config, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	decode, ok := lookupDecoder(ext)
	if !ok {
		return nil, &UnknownFormatError{Path: path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	logger.Debug("Loading configuration", logger.F("path", path), logger.F("format", ext))
	raw, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	cfg := make(Config, len(raw))
	for key, val := range raw {
		cfg[key] = normalize(val)
	}
	return cfg, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize converts decoded numbers to int where they are integral, so
// every format yields the same value types.
func normalize(val any) any {
	switch v := val.(type) {
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	}
	return val
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`).Replace(s)
}
