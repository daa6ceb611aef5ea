package confloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yndnr/projconf/internal/core/domain"
)

// DefaultName is the default rc name; it yields .projconfrc files.
const DefaultName = "projconf"

// DefaultFsRoot bounds the project search when FsRoot is unset.
const DefaultFsRoot = string(filepath.Separator)

// rcSuffixes are tried in order for every rc base name. YAML is a superset
// of JSON, so one parser covers all of them.
var rcSuffixes = []string{"", ".json", ".yaml", ".yml"}

// FragmentOptions controls fragment discovery.
type FragmentOptions struct {
	// Name is the rc name: files are called .<name>rc.
	Name string
	// Defaults seeds the lowest-precedence fragment.
	Defaults map[string]any
	// ExtendBy seeds the highest-precedence fragment.
	ExtendBy map[string]any
	// PathToConfig names one config file that replaces home and project
	// discovery.
	PathToConfig string
	// FsRoot is the outermost directory searched for project rc files.
	FsRoot string
	// FsHome is the directory searched for per-user rc files.
	FsHome string
	// Cwd is where the project search starts.
	Cwd string
	// EnvPrefix selects environment overrides. "__" separates nesting
	// levels: <prefix>levels__blocks__strict=true.
	EnvPrefix string
}

// FragmentLoader discovers and parses configuration fragments.
type FragmentLoader struct {
	logger *slog.Logger
}

// FragmentLoaderOption configures a FragmentLoader.
type FragmentLoaderOption func(*FragmentLoader)

// WithFragmentLogger sets the logger for the fragment loader.
func WithFragmentLogger(logger *slog.Logger) FragmentLoaderOption {
	return func(l *FragmentLoader) {
		l.logger = logger
	}
}

// NewFragmentLoader creates a new fragment loader.
func NewFragmentLoader(opts ...FragmentLoaderOption) *FragmentLoader {
	l := &FragmentLoader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the fragment stack for opts, lowest precedence first:
//
//  1. Defaults
//  2. Home rc files (FsHome)
//  3. Project rc files from FsRoot down to Cwd, or PathToConfig alone
//  4. Environment overrides
//  5. ExtendBy
//
// The project search climbs from Cwd and stops at FsRoot or at the first
// directory holding a file with root: true.
func (l *FragmentLoader) Load(ctx context.Context, opts FragmentOptions) (domain.Stack, error) {
	opts = opts.withDefaults()

	var stack domain.Stack
	if opts.Defaults != nil {
		stack = append(stack, domain.NewFragment(opts.Defaults, ""))
	}

	if opts.PathToConfig != "" {
		f, err := l.loadExplicit(opts)
		if err != nil {
			return nil, err
		}
		stack = append(stack, f)
	} else {
		found, err := l.discover(ctx, opts)
		if err != nil {
			return nil, err
		}
		stack = append(stack, found...)
	}

	envFragment, err := loadEnv(opts.EnvPrefix)
	if err != nil {
		return nil, err
	}
	if envFragment != nil {
		stack = append(stack, *envFragment)
	}

	if opts.ExtendBy != nil {
		stack = append(stack, domain.NewFragment(opts.ExtendBy, ""))
	}

	l.logger.Debug("config fragments loaded",
		"name", opts.Name,
		"count", len(stack),
		"sources", stack.Sources(),
	)
	return stack, nil
}

func (o FragmentOptions) withDefaults() FragmentOptions {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Cwd == "" {
		o.Cwd, _ = os.Getwd()
	}
	if o.FsHome == "" {
		o.FsHome, _ = os.UserHomeDir()
	}
	if o.FsRoot == "" {
		o.FsRoot = DefaultFsRoot
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = strings.ToLower(o.Name) + "_"
	}
	return o
}

func (l *FragmentLoader) loadExplicit(opts FragmentOptions) (domain.Fragment, error) {
	path := opts.PathToConfig
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Cwd, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Fragment{}, domain.ErrConfigFileNotFound.WithDetails(path)
		}
		return domain.Fragment{}, domain.ErrConfigFileRead.WithDetails(path).WithCause(err)
	}
	return LoadFragmentFile(path)
}

// discover loads home rc files followed by project rc files. Each
// candidate group contributes at most its first existing file.
func (l *FragmentLoader) discover(ctx context.Context, opts FragmentOptions) (domain.Stack, error) {
	var (
		stack  domain.Stack
		result *multierror.Error
	)

	load := func(candidates []string) (domain.Fragment, bool) {
		f, ok, err := firstExisting(candidates)
		if err != nil {
			result = multierror.Append(result, err)
		}
		return f, ok
	}

	if opts.FsHome != "" {
		for _, group := range homeCandidates(opts.FsHome, opts.Name) {
			if f, ok := load(group); ok {
				stack = append(stack, f)
			}
		}
	}

	// Climb from cwd, then reverse so the outermost directory comes first.
	var project domain.Stack
	for _, dir := range ancestors(opts.Cwd, opts.FsRoot) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dir == opts.FsHome {
			continue
		}
		f, ok := load(rcCandidates(dir, opts.Name))
		if !ok {
			continue
		}
		project = append(project, f)
		if f.IsRoot() {
			break
		}
	}
	for i := len(project) - 1; i >= 0; i-- {
		stack = append(stack, project[i])
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return stack, nil
}

// LoadFragmentFile reads and parses one rc file.
func LoadFragmentFile(path string) (domain.Fragment, error) {
	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		return domain.Fragment{}, err
	}
	return l.Fragment(), nil
}

// firstExisting loads the first candidate that exists as a regular file.
// A candidate that exists but cannot be read or parsed is an error; later
// candidates are not consulted.
func firstExisting(candidates []string) (domain.Fragment, bool, error) {
	for _, path := range candidates {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Fragment{}, false, domain.ErrConfigFileRead.WithDetails(path).WithCause(err)
		}
		if info.IsDir() {
			continue
		}
		f, err := LoadFragmentFile(path)
		if err != nil {
			return domain.Fragment{}, false, err
		}
		return f, true, nil
	}
	return domain.Fragment{}, false, nil
}

// loadEnv builds the environment fragment, or nil when no variable
// carries the prefix.
func loadEnv(prefix string) (*domain.Fragment, error) {
	l := NewLoader(WithEnvPrefix(prefix), WithEnvKey(NestedKey))
	if err := l.LoadEnv(); err != nil {
		return nil, err
	}
	if l.Empty() {
		return nil, nil
	}
	f := l.Fragment()
	return &f, nil
}

func rcCandidates(dir, name string) []string {
	out := make([]string, 0, len(rcSuffixes))
	for _, suffix := range rcSuffixes {
		out = append(out, filepath.Join(dir, fmt.Sprintf(".%src%s", name, suffix)))
	}
	return out
}

// homeCandidates returns the two per-user groups: the XDG-style config
// file, then the dot rc file.
func homeCandidates(home, name string) [][]string {
	xdg := make([]string, 0, len(rcSuffixes))
	for _, suffix := range rcSuffixes {
		xdg = append(xdg, filepath.Join(home, ".config", name, "config"+suffix))
	}
	return [][]string{xdg, rcCandidates(home, name)}
}

// ancestors lists dir and its parents up to and including stop. The walk
// ends at the filesystem root when stop is not an ancestor of dir.
func ancestors(dir, stop string) []string {
	dir = filepath.Clean(dir)
	stop = filepath.Clean(stop)

	var out []string
	for {
		out = append(out, dir)
		if dir == stop {
			return out
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}
		dir = parent
	}
}
