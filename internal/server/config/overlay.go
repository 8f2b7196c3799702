package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// The set* helpers apply one textual setting on top of the current value.
// Empty input leaves the destination untouched.

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

// setBytes accepts plain byte counts and humanized sizes ("64KiB", "100 MB").
func setBytes(dst *int64, name, v string) error {
	if v == "" {
		return nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = int64(n)
	return nil
}

func setInt(dst *int, name, v string) error {
	if v == "" {
		return nil
	}
	var n int64
	if err := setBytes(&n, name, v); err != nil {
		return err
	}
	*dst = int(n)
	return nil
}

func setBool(dst *bool, name, v string) error {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = b
	return nil
}

// setList splits a comma separated list.
func setList(dst *[]string, v string) {
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
