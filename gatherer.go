package provenance

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// defaultTimeout bounds each git and nvidia-smi subprocess so a hung
// invocation degrades to a per-item failure instead of stalling the
// report.
const defaultTimeout = 30 * time.Second

// Gatherer assembles provenance reports. Construct one with New and
// reuse it; each Gather call is independent and fully synchronous.
type Gatherer struct {
	registry   Registry
	roots      *RootResolver
	extraRoots []Root
	gpu        GPUProber
	peeker     Peeker
	logger     *log.Logger
	timeout    time.Duration

	git *GitProbe
	now func() time.Time
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithRegistry replaces the default build-info component registry.
func WithRegistry(r Registry) Option {
	return func(g *Gatherer) { g.registry = r }
}

// WithRoots adds named install roots to the defaults the runtime
// reports, typically the named paths from the user's configuration file.
func WithRoots(roots ...Root) Option {
	return func(g *Gatherer) { g.extraRoots = append(g.extraRoots, roots...) }
}

// WithRootResolver replaces root resolution entirely, defaults included.
func WithRootResolver(r *RootResolver) Option {
	return func(g *Gatherer) { g.roots = r }
}

// WithPeeker sets the asset format summarizer consulted after each
// successful fingerprint.
func WithPeeker(p Peeker) Option {
	return func(g *Gatherer) { g.peeker = p }
}

// WithGPUProber replaces the default nvidia-smi prober.
func WithGPUProber(p GPUProber) Option {
	return func(g *Gatherer) { g.gpu = p }
}

// WithTimeout bounds each subprocess invocation made during a gather.
func WithTimeout(d time.Duration) Option {
	return func(g *Gatherer) { g.timeout = d }
}

// WithLogger sets the logger for per-item recoverable failures.
func WithLogger(l *log.Logger) Option {
	return func(g *Gatherer) { g.logger = l }
}

// New creates a Gatherer. Without WithRegistry, components come from the
// build information embedded in the running binary; a binary built
// without it fails here.
func New(opts ...Option) (*Gatherer, error) {
	g := &Gatherer{
		timeout: defaultTimeout,
		logger:  log.New(os.Stderr, "", log.LstdFlags),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.registry == nil {
		registry, err := NewBuildInfoRegistry()
		if err != nil {
			return nil, fmt.Errorf("provenance: reading build info: %w", err)
		}
		g.registry = registry
	}
	if g.roots == nil {
		g.roots = NewRootResolver(append(DefaultRoots(), g.extraRoots...))
	}
	if g.gpu == nil {
		g.gpu = NewSMIProber(g.timeout)
	}
	g.git = NewGitProbe(g.timeout, g.logger.Printf)

	return g, nil
}

// Options selects what one Gather call collects.
type Options struct {
	// Assets lists files to fingerprint. Full mode only.
	Assets []string

	// Full adds environment, platform, accelerator, and asset detail to
	// the summary fields.
	Full bool
}

// Gather produces a report of the process and filesystem state at the
// moment of the call. Apart from the Time field the report is a pure
// function of that state. Per-item failures degrade inline; the only
// hard failure is a component registry that cannot be read at all.
func (g *Gatherer) Gather(ctx context.Context, opts Options) (*Report, error) {
	values, candidates, err := newEnumerator(g.registry, g.roots, opts.Full).enumerate()
	if err != nil {
		return nil, fmt.Errorf("provenance: enumerating components: %w", err)
	}

	report := &Report{
		Time:           g.now().UTC().Format(time.RFC3339),
		RuntimeVersion: runtime.Version(),
		ModuleVersions: values,
		GitVersions:    g.git.Probe(ctx, candidates, opts.Full),
		Full:           opts.Full,
	}
	if !opts.Full {
		return report, nil
	}

	// Executable resolution can fail on exotic platforms; treat it like
	// any other per-item absence.
	if exe, err := os.Executable(); err == nil {
		report.Executable = exe
	}
	report.Args = os.Args
	report.SearchPath = filepath.SplitList(os.Getenv("PATH"))
	report.ConfigPaths = g.roots.Roots()
	report.Platform = PlatformFacts()

	gpus := g.gpu.Probe(ctx)
	report.GPUs = &gpus

	report.Assets = NewFingerprinter(g.peeker).Fingerprint(ctx, opts.Assets)
	return report, nil
}
