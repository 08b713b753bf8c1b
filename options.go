package greenspline

import (
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Method  Method  `yaml:"method"`
	Tension float64 `yaml:"tension"`
	// LengthScale divides separations in the tension kernels. Zero picks the
	// mean of Spacing, or 1.
	LengthScale  float64      `yaml:"length_scale"`
	DistanceMode DistanceMode `yaml:"distance_mode"`
	// Detrend removes a least-squares line or plane before fitting.
	Detrend bool `yaml:"detrend"`
	// Renormalize scales the residuals into [-1, 1].
	Renormalize bool `yaml:"renormalize"`
	// Cutoff selects the SVD solver; nil solves with Gauss-Jordan elimination.
	Cutoff     *Cutoff      `yaml:"cutoff"`
	Weighted   bool         `yaml:"weighted"`
	WeightKind WeightKind   `yaml:"weight_kind"`
	Series     SeriesConfig `yaml:"series"`
	// Spacing of the intended output lattice.
	Spacing []float64 `yaml:"spacing"`
	Workers int       `yaml:"workers"`

	Logger *zerolog.Logger `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		Method:       Sandwell2D,
		DistanceMode: Cartesian2D,
		WeightKind:   WeightSigma,
		Series:       DefaultSeriesConfig(),
		Workers:      runtime.GOMAXPROCS(0),
	}
}

// LoadOptions decodes YAML over DefaultOptions and validates the result.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && err != io.EOF {
		return opts, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return opts, opts.Validate()
}

func (o Options) Validate() error {
	if !o.Method.valid() {
		return fmt.Errorf("%w: unknown method %q", ErrConfiguration, o.Method)
	}
	if !o.DistanceMode.valid() {
		return fmt.Errorf("%w: unknown distance mode %d", ErrConfiguration, int(o.DistanceMode))
	}
	if o.Method.Spherical() != (o.DistanceMode == SphericalCosine) {
		return fmt.Errorf("%w: method %s cannot be used with distance mode %s", ErrConfiguration, o.Method, o.DistanceMode)
	}
	if o.Method.Dimension() != o.DistanceMode.Dimension() {
		return fmt.Errorf("%w: method %s is %d-D but distance mode %s is %d-D",
			ErrDimension, o.Method, o.Method.Dimension(), o.DistanceMode, o.DistanceMode.Dimension())
	}
	if o.Tension < 0 || o.Tension >= 1 {
		return fmt.Errorf("%w: tension %g outside [0, 1)", ErrConfiguration, o.Tension)
	}
	if o.Cutoff != nil {
		if err := o.Cutoff.validate(); err != nil {
			return err
		}
	}
	if o.Weighted && o.WeightKind != WeightSigma && o.WeightKind != WeightDirect {
		return fmt.Errorf("%w: unknown weight kind %q", ErrConfiguration, o.WeightKind)
	}
	if o.Method == WesselBecker {
		if err := o.Series.validate(); err != nil {
			return err
		}
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrConfiguration, o.Workers)
	}
	return nil
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}

func (o Options) normalizeMode() NormalizeMode {
	mode := NormalizeMean
	if o.Detrend {
		mode |= NormalizeTrend
	}
	if o.Renormalize {
		mode |= NormalizeRange
	}
	return mode
}
