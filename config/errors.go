package config

import (
	"fmt"
	"strings"
)

// MissingConfigurationError is returned when required entries are absent
type MissingConfigurationError struct {
	Keys []string // sorted
}

func (e *MissingConfigurationError) Error() string {
	return "Missing required configuration entries: " + strings.Join(e.Keys, ", ")
}

// UnknownFormatError is returned for a configuration file no decoder handles
type UnknownFormatError struct {
	Path string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("could not load configuration file %s, unknown format", e.Path)
}

// TypeError is returned when an entry has the wrong type
type TypeError struct {
	Key  string
	Want Kind
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("'%s' must be of type '%s' not '%s'", e.Key, e.Want, e.Got)
}
