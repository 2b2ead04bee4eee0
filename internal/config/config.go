// Package config describes the desired monitor topology: one anchor output
// and up to four ordered wings of neighbors radiating from it.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the topology a dock event should produce. Wing slices are
// ordered outward from the anchor.
type Config struct {
	Anchor Anchor `yaml:"anchor"`
	Left   []Wing `yaml:"left"`
	Right  []Wing `yaml:"right"`
	Top    []Wing `yaml:"top"`
	Bottom []Wing `yaml:"bottom"`
}

// Anchor is the output every layout computation originates from.
type Anchor struct {
	Output  string `yaml:"output"`
	Mode    string `yaml:"mode"`
	Primary bool   `yaml:"primary"`
}

// Wing is one neighbor on a cardinal chain.
type Wing struct {
	Output string `yaml:"output"`
	Mode   string `yaml:"mode"`
}

// ValidationError points at the config path that failed validation.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// ParseMode parses a "WIDTHxHEIGHT" mode string.
func ParseMode(s string) (width, height uint16, err error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("mode %q is not WIDTHxHEIGHT", s)
	}
	wv, err := strconv.ParseUint(w, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("mode %q has invalid width: %w", s, err)
	}
	hv, err := strconv.ParseUint(h, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("mode %q has invalid height: %w", s, err)
	}
	return uint16(wv), uint16(hv), nil
}

// Validate checks structural consistency: the anchor must name an output,
// mode strings must parse, and no output may appear twice in the topology.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Anchor.Output) == "" {
		return &ValidationError{Path: "anchor.output", Msg: "output name is required"}
	}
	if err := validateMode("anchor.mode", c.Anchor.Mode); err != nil {
		return err
	}

	seen := map[string]string{c.Anchor.Output: "anchor"}
	for wing, entries := range map[string][]Wing{
		"left": c.Left, "right": c.Right, "top": c.Top, "bottom": c.Bottom,
	} {
		for i, entry := range entries {
			path := fmt.Sprintf("%s[%d]", wing, i)
			if strings.TrimSpace(entry.Output) == "" {
				return &ValidationError{Path: path + ".output", Msg: "output name is required"}
			}
			if prev, dup := seen[entry.Output]; dup {
				return &ValidationError{
					Path: path + ".output",
					Msg:  fmt.Sprintf("output %q already used by %s", entry.Output, prev),
				}
			}
			seen[entry.Output] = path
			if err := validateMode(path+".mode", entry.Mode); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateMode(path, mode string) error {
	if mode == "" {
		// Empty means "use the output's preferred mode".
		return nil
	}
	if _, _, err := ParseMode(mode); err != nil {
		return &ValidationError{Path: path, Msg: err.Error()}
	}
	return nil
}
