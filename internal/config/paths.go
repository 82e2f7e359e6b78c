package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands environment variables and a leading ~ in p.
// On Windows %VAR% references and a ~\ prefix are expanded as well.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = expandPercentVars(expanded)
	}

	if expanded != "~" && !strings.HasPrefix(expanded, "~/") &&
		!(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}

// expandPercentVars replaces %NAME% with the value of NAME. Unknown
// variables and unmatched percent signs are left as they are.
func expandPercentVars(p string) string {
	var b strings.Builder
	rest := p
	for {
		before, after, found := strings.Cut(rest, "%")
		b.WriteString(before)
		if !found {
			return b.String()
		}
		name, tail, closed := strings.Cut(after, "%")
		if !closed {
			b.WriteString("%")
			b.WriteString(after)
			return b.String()
		}
		if val, ok := os.LookupEnv(name); ok && name != "" {
			b.WriteString(val)
			rest = tail
			continue
		}
		b.WriteString("%")
		b.WriteString(name)
		// the closing % may open the next reference
		rest = "%" + tail
	}
}
