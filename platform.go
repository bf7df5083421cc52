package provenance

import (
	"os"
	"runtime"
	"strings"
)

// PlatformFacts runs a fixed set of zero-argument descriptive queries
// about the operating environment and keeps those that answer. Entries
// whose value is empty, or a sequence made entirely of empty strings,
// carry no information and are dropped.
func PlatformFacts() map[string]any {
	queries := []struct {
		name string
		fn   func() (any, error)
	}{
		{"os", func() (any, error) { return runtime.GOOS, nil }},
		{"arch", func() (any, error) { return runtime.GOARCH, nil }},
		{"compiler", func() (any, error) { return runtime.Compiler, nil }},
		{"go_version", func() (any, error) { return runtime.Version(), nil }},
		{"num_cpu", func() (any, error) { return runtime.NumCPU(), nil }},
		{"pagesize", func() (any, error) { return os.Getpagesize(), nil }},
		{"hostname", func() (any, error) { return os.Hostname() }},
		{"kernel_release", readTrimmed("/proc/sys/kernel/osrelease")},
		{"kernel_version", readTrimmed("/proc/sys/kernel/version")},
		{"os_release", osReleaseName},
	}

	facts := make(map[string]any, len(queries))
	for _, q := range queries {
		v, err := q.fn()
		if err != nil || allEmpty(v) {
			continue
		}
		facts[q.name] = v
	}
	return facts
}

func readTrimmed(path string) func() (any, error) {
	return func() (any, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(string(data)), nil
	}
}

// osReleaseName reads the distribution's PRETTY_NAME from /etc/os-release.
func osReleaseName() (any, error) {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if name, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(name, `"`), nil
		}
	}
	return "", nil
}

// allEmpty reports whether v is an empty string or a (possibly nested)
// sequence composed entirely of empty strings.
func allEmpty(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []string:
		for _, s := range x {
			if s != "" {
				return false
			}
		}
		return true
	case []any:
		for _, e := range x {
			if !allEmpty(e) {
				return false
			}
		}
		return true
	}
	return false
}
