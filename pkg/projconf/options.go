package projconf

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/projconf/internal/core/domain"
	"github.com/yndnr/projconf/internal/infra/confloader"
)

// Options selects which fragments make up a configuration. It is plain
// data: two equal Options describe the same configuration, which is what
// the Cache relies on.
type Options struct {
	// Name is the rc name; files are called .<name>rc. Defaults to
	// "projconf".
	Name string `json:"name,omitempty" validate:"omitempty,rcname"`
	// Defaults seeds the lowest-precedence fragment.
	Defaults map[string]any `json:"defaults,omitempty"`
	// ExtendBy seeds the highest-precedence fragment.
	ExtendBy map[string]any `json:"extendBy,omitempty"`
	// PathToConfig names one file that replaces home and project rc
	// discovery. Relative paths resolve against Cwd.
	PathToConfig string `json:"pathToConfig,omitempty"`
	// FsRoot bounds the project rc search and is the root directory
	// reported when no fragment sets root: true.
	FsRoot string `json:"fsRoot,omitempty" validate:"omitempty,abspath"`
	// FsHome is searched for per-user rc files.
	FsHome string `json:"fsHome,omitempty" validate:"omitempty,abspath"`
	// Cwd anchors level identifiers and the project rc search. Defaults
	// to the process working directory.
	Cwd string `json:"cwd,omitempty" validate:"omitempty,abspath"`
	// EnvPrefix selects environment overrides. Defaults to "<name>_".
	EnvPrefix string `json:"envPrefix,omitempty" validate:"omitempty,printascii"`
}

var rcNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	_ = v.RegisterValidation("rcname", func(fl validator.FieldLevel) bool {
		return rcNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the options for values no loader could use.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return domain.ErrInvalidOptions.WithDetails(err.Error()).WithCause(err)
	}
	return nil
}

// Fingerprint returns a stable 128-bit hash of the options, hex encoded.
// Map keys are serialized in sorted order, so equal options always give
// the same fingerprint.
func (o Options) Fingerprint() (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", domain.ErrInvalidOptions.WithDetails("options are not serializable").WithCause(err)
	}
	h1, h2 := murmur3.Sum128(b)
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}

// fsRoot is the search boundary discovery uses; an unset FsRoot means the
// filesystem root.
func (o Options) fsRoot() string {
	if o.FsRoot == "" {
		return confloader.DefaultFsRoot
	}
	return o.FsRoot
}

func (o Options) fragmentOptions() confloader.FragmentOptions {
	return confloader.FragmentOptions{
		Name:         o.Name,
		Defaults:     o.Defaults,
		ExtendBy:     o.ExtendBy,
		PathToConfig: o.PathToConfig,
		FsRoot:       o.fsRoot(),
		FsHome:       o.FsHome,
		Cwd:          o.Cwd,
		EnvPrefix:    o.EnvPrefix,
	}
}
