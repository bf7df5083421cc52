// Package peek runs format-specific Risor scripts that summarize asset
// files. A script lives at peek/<format>.risor, keyed by the asset's
// file extension, and reports its summary through the emit host
// function. The caller treats every error here as "no peek"; a script
// failure never taints the asset record it was summarizing.
package peek

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/risor-io/risor"
)

// defaultTimeout bounds one script evaluation.
const defaultTimeout = 10 * time.Second

// Runtime embeds a Risor VM and exposes asset-inspection host functions
// to peek scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	timeout    time.Duration
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS loads scripts from the given filesystem instead of scriptsDir,
// enabling embedding via go:embed.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) { r.fsys = fsys }
}

// WithTimeout bounds each script evaluation.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) { r.timeout = d }
}

// NewRuntime creates a Runtime loading scripts from scriptsDir on disk.
// scriptsDir may be empty when WithFS is used.
func NewRuntime(scriptsDir string, opts ...Option) *Runtime {
	r := &Runtime{scriptsDir: scriptsDir, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Peek summarizes the asset at path using the script for its format.
// Missing script, script error, and empty result are all errors; the
// caller degrades them to an omitted peek field.
func (r *Runtime) Peek(ctx context.Context, path string) (map[string]any, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return nil, fmt.Errorf("peek: no format extension on %s", path)
	}

	src, err := r.loadScript(scriptPath(format))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var result map[string]any
	opts := []risor.Option{
		risor.WithGlobal("asset_path", path),
		risor.WithGlobal("read_head", makeReadHeadFn(path)),
		risor.WithGlobal("file_size", makeFileSizeFn(path)),
		risor.WithGlobal("line_count", makeLineCountFn(path)),
		risor.WithGlobal("emit", makeEmitFn(&result)),
	}
	if _, err := risor.Eval(ctx, src, opts...); err != nil {
		return nil, fmt.Errorf("peek: script for %s: %w", format, err)
	}
	if result == nil {
		return nil, fmt.Errorf("peek: script for %s emitted nothing", format)
	}
	return result, nil
}

// scriptPath returns the script location for a format, relative to the
// scripts root.
func scriptPath(format string) string {
	return filepath.Join("peek", format+".risor")
}

// loadScript reads a .risor file from the configured filesystem or from
// scriptsDir on disk.
func (r *Runtime) loadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("peek: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("peek: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}
