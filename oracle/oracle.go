package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

var ErrContract = errors.New("oracle: contract violation")

// ClipMode selects how out of gamut connection space colors are brought into
// the device gamut.
type ClipMode int

const (
	// ClipNearest clips to the nearest device value
	ClipNearest ClipMode = iota
	// ClipPerceptual reduces colorfulness in a color appearance model at
	// constant lightness and hue until the color is in gamut
	ClipPerceptual
)

func (c ClipMode) String() string {
	if c == ClipPerceptual {
		return "perceptual"
	}
	return "nearest"
}

type Request struct {
	Intent    types.Intent
	Direction types.Direction
	// Encoding of the connection space side of the lookup. Set it to a
	// device space for device links.
	PCS  types.ColorSpace
	Clip ClipMode
}

type Result struct {
	Coord types.Coordinate
	// the input was outside the gamut of the destination and was clipped
	Clipped bool
}

// Oracle transforms batches of coordinates through a color profile. Results
// must be in input order, one per input coordinate.
type Oracle interface {
	Lookup(ctx context.Context, req Request, coords []types.Coordinate) ([]Result, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, req Request, coords []types.Coordinate) ([]Result, error)

func (f Func) Lookup(ctx context.Context, req Request, coords []types.Coordinate) ([]Result, error) {
	return f(ctx, req, coords)
}

// LookupAll sends coords to o in chunks of at most chunk_size coordinates,
// waiting for each chunk to complete before sending the next, and verifies
// the results.
func LookupAll(ctx context.Context, o Oracle, req Request, coords []types.Coordinate, chunk_size int) ([]Result, error) {
	ans := make([]Result, 0, len(coords))
	for _, chunk := range grid.Chunks(coords, chunk_size) {
		res, err := o.Lookup(ctx, req, chunk)
		if err != nil {
			return nil, fmt.Errorf("color lookup of %d coordinates failed: %w", len(chunk), err)
		}
		if len(res) != len(chunk) {
			return nil, fmt.Errorf("%w: requested %d coordinates but got %d results", ErrContract, len(chunk), len(res))
		}
		for i, r := range res {
			if r.Coord.Space.IsConnectionSpace() == req.Direction.ToDevice() && req.PCS.IsConnectionSpace() {
				return nil, fmt.Errorf("%w: result %d for %s is in %s", ErrContract, len(ans)+i, chunk[i], r.Coord.Space)
			}
		}
		ans = append(ans, res...)
	}
	return ans, nil
}
