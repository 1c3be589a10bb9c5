package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kovidgoyal/lutsynth"
	"github.com/kovidgoyal/lutsynth/blend"
	"github.com/kovidgoyal/lutsynth/curve"
	"github.com/kovidgoyal/lutsynth/encode"
	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/pcs"
	"github.com/kovidgoyal/lutsynth/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var _ = fmt.Print

// DeviceSpec describes a matrix/shaper reference display. An empty spec, or
// one naming sRGB with no other settings, is the sRGB display.
type DeviceSpec struct {
	// Name of a working space from the candidate catalog
	Space string `toml:"space" yaml:"space"`
	// Gamma of the tone curves, the gamma of the working space if zero
	Gamma float64 `toml:"gamma" yaml:"gamma"`
	// Parameters of an ICC parametric tone curve, g a b c d e f, overriding gamma
	Parametric []float64 `toml:"parametric" yaml:"parametric"`
	// A tabulated tone curve over evenly spaced inputs, overriding gamma
	// and parametric
	TRC []float64 `toml:"trc" yaml:"trc"`
	// Luminance of the neutral black
	Black float64 `toml:"black" yaml:"black"`
}

func (d DeviceSpec) tone_curve(name string) (ans curve.Curve, err error) {
	switch {
	case len(d.TRC) > 0:
		var c *curve.PointsCurve
		if c, err = curve.NewPointsCurve(d.TRC); err == nil {
			ans = c
		}
		return
	case len(d.Parametric) > 0:
		return curve.NewParametricCurve(d.Parametric)
	}
	gamma := d.Gamma
	if gamma == 0 {
		c, ok := pcs.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown working space: %#v", name)
		}
		gamma = c.Gamma
	}
	var g *curve.GammaCurve
	if g, err = curve.NewGammaCurve(gamma); err == nil {
		ans = g
	}
	return
}

func (d DeviceSpec) Device() (*oracle.MatrixDevice, error) {
	is_srgb := d.Space == "" || strings.EqualFold(d.Space, "sRGB")
	if is_srgb && d.Gamma == 0 && d.Black == 0 && len(d.Parametric) == 0 && len(d.TRC) == 0 {
		return oracle.SRGBDevice(), nil
	}
	name := grid.IfElse(is_srgb, "Rec. 709", d.Space)
	c, err := d.tone_curve(name)
	if err != nil {
		return nil, fmt.Errorf("tone curve of %s: %w", name, err)
	}
	return oracle.NewCandidateCurveDevice(name, c, d.Black)
}

type BlackPointSpec struct {
	Enabled bool    `toml:"enabled" yaml:"enabled"`
	Scale   bool    `toml:"scale" yaml:"scale"`
	Mode    string  `toml:"mode" yaml:"mode"`
	Power   float64 `toml:"power" yaml:"power"`
}

type BoundarySpec struct {
	Inner int `toml:"inner" yaml:"inner"`
	Outer int `toml:"outer" yaml:"outer"`
}

// Job is a single table to generate, read from a TOML or YAML file.
type Job struct {
	// inverse (the default) or devicelink
	Mode string `toml:"mode" yaml:"mode"`
	// The output file, its extension selects the format. Relative paths are
	// resolved against the directory of the job file.
	Output string `toml:"output" yaml:"output"`

	Device      DeviceSpec  `toml:"device" yaml:"device"`
	Destination *DeviceSpec `toml:"destination" yaml:"destination"`

	PCS            string          `toml:"pcs" yaml:"pcs"`
	Intent         string          `toml:"intent" yaml:"intent"`
	Source         string          `toml:"source" yaml:"source"`
	Resolution     int             `toml:"resolution" yaml:"resolution"`
	CurveEntries   int             `toml:"curve_entries" yaml:"curve_entries"`
	BlackPoint     *BlackPointSpec `toml:"black_point" yaml:"black_point"`
	PerceptualClip *bool           `toml:"perceptual_clip" yaml:"perceptual_clip"`
	Boundary       *BoundarySpec   `toml:"boundary" yaml:"boundary"`
	Smoothing      bool            `toml:"smoothing" yaml:"smoothing"`
	// full (the default) or xvycc, the input encoding of eeColor tables
	InputEncoding string `toml:"input_encoding" yaml:"input_encoding"`

	Title      string `toml:"title" yaml:"title"`
	Owner      string `toml:"owner" yaml:"owner"`
	InputBits  int    `toml:"input_bits" yaml:"input_bits"`
	OutputBits int    `toml:"output_bits" yaml:"output_bits"`
	ImageBits  int    `toml:"image_bits" yaml:"image_bits"`
}

// DecodeJob reads a job in the syntax named by ext, either toml or yaml.
// Unknown keys are an error.
func DecodeJob(r io.Reader, ext string) (ans *Job, err error) {
	ans = &Job{}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(ans)
	case "yaml", "yml":
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		if err = d.Decode(ans); err == io.EOF {
			err = nil
		}
	default:
		return nil, fmt.Errorf("unknown job file type: %#v, must be .toml or .yaml", ext)
	}
	if err != nil {
		return nil, err
	}
	return ans, nil
}

// LoadJob reads the job file at path, resolving its output path.
func LoadJob(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ans, err := DecodeJob(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if ans.Output == "" {
		return nil, fmt.Errorf("the job file %s does not specify an output file", path)
	}
	if !filepath.IsAbs(ans.Output) {
		ans.Output = filepath.Join(filepath.Dir(path), ans.Output)
	}
	return ans, nil
}

// Options converts the job settings into pipeline options.
func (j *Job) Options(log *slog.Logger) (ans []lutsynth.Option, err error) {
	ans = append(ans, lutsynth.WithLogger(log), lutsynth.WithSmoothing(j.Smoothing))
	if j.Resolution != 0 {
		ans = append(ans, lutsynth.WithResolution(j.Resolution))
	}
	if j.CurveEntries != 0 {
		ans = append(ans, lutsynth.WithCurveEntries(j.CurveEntries))
	}
	if j.Intent != "" {
		intent, err := types.ParseIntent(j.Intent)
		if err != nil {
			return nil, err
		}
		ans = append(ans, lutsynth.WithIntent(intent))
	}
	if j.Source != "" {
		s, err := lutsynth.ParseSource(j.Source)
		if err != nil {
			return nil, err
		}
		ans = append(ans, lutsynth.WithSource(s))
	}
	if bp := j.BlackPoint; bp != nil {
		ans = append(ans, lutsynth.WithBlackPointCompensation(bp.Enabled, bp.Scale))
		if bp.Mode != "" {
			m, err := blend.ParseMode(bp.Mode)
			if err != nil {
				return nil, err
			}
			ans = append(ans, lutsynth.WithBlendMode(m))
		}
		if bp.Power != 0 {
			ans = append(ans, lutsynth.WithBlendPower(bp.Power))
		}
	}
	if j.PerceptualClip != nil {
		ans = append(ans, lutsynth.WithPerceptualClip(*j.PerceptualClip))
	}
	if j.Boundary != nil {
		ans = append(ans, lutsynth.WithBoundary(j.Boundary.Inner, j.Boundary.Outer))
	}
	if j.InputEncoding != "" {
		e, err := grid.ParseInputEncoding(j.InputEncoding)
		if err != nil {
			return nil, err
		}
		ans = append(ans, lutsynth.WithInputEncoding(e))
	}
	title := j.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(j.Output), filepath.Ext(j.Output))
	}
	return append(ans, lutsynth.WithTitle(title)), nil
}

func (j *Job) encode_options() (ans []encode.Option) {
	if j.InputBits != 0 {
		ans = append(ans, encode.InputBits(j.InputBits))
	}
	if j.OutputBits != 0 {
		ans = append(ans, encode.OutputBits(j.OutputBits))
	}
	if j.ImageBits != 0 {
		ans = append(ans, encode.ImageBits(j.ImageBits))
	}
	if j.Owner != "" {
		ans = append(ans, encode.Owner(j.Owner))
	}
	// validated by Options
	if e, err := grid.ParseInputEncoding(j.InputEncoding); j.InputEncoding != "" && err == nil {
		ans = append(ans, encode.InputEncoding(e))
	}
	return
}

// Generate builds the table the job describes without writing it.
func (j *Job) Generate(ctx context.Context, log *slog.Logger) (*lut.Table, error) {
	opts, err := j.Options(log)
	if err != nil {
		return nil, err
	}
	src, err := j.Device.Device()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(j.Mode) {
	case "", "inverse":
		space := types.XYZ
		switch strings.ToLower(j.PCS) {
		case "", "xyz":
		case "lab":
			space = types.Lab
		default:
			return nil, fmt.Errorf("%w: %#v", lutsynth.ErrUnsupportedSpace, j.PCS)
		}
		intent := types.RelativeColorimetric
		if j.Intent != "" {
			if intent, err = types.ParseIntent(j.Intent); err != nil {
				return nil, err
			}
		}
		p, err := lutsynth.ResolveProfile(ctx, src, space, intent)
		if err != nil {
			return nil, err
		}
		return lutsynth.GenerateInverse(ctx, src, p, opts...)
	case "devicelink", "link":
		dest := src
		if j.Destination != nil {
			if dest, err = j.Destination.Device(); err != nil {
				return nil, err
			}
		}
		f, err := types.FormatFromFilename(j.Output)
		if err != nil {
			return nil, err
		}
		return lutsynth.GenerateDeviceLink(ctx, oracle.Link{Source: src, Destination: dest}, f, opts...)
	}
	return nil, fmt.Errorf("unknown job mode: %#v, must be inverse or devicelink", j.Mode)
}

// Run generates the table and saves it. Nothing is written if generation
// fails or is cancelled.
func (j *Job) Run(ctx context.Context, log *slog.Logger) error {
	if _, err := types.FormatFromFilename(j.Output); err != nil {
		return err
	}
	t, err := j.Generate(ctx, log)
	if err != nil {
		return err
	}
	if err = lutsynth.Save(t, j.Output, j.encode_options()...); err != nil {
		return err
	}
	log.Info("table saved", "path", j.Output, "size", t.Size)
	return nil
}
