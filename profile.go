package lutsynth

import (
	"context"
	"fmt"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/types"
)

// Profile is the metadata of a color profile needed to invert it. All XYZ
// values are D50 relative with white at Y=1.
type Profile interface {
	Primaries() (red, green, blue colorconv.Vec3)
	WhitePoint() colorconv.Vec3
	BlackPoint() colorconv.Vec3
	DeviceChannels() int
	ConnectionSpace() types.ColorSpace
}

type ProfileInfo struct {
	Red, Green, Blue colorconv.Vec3
	White, Black     colorconv.Vec3
	Channels         int
	PCS              types.ColorSpace
}

var _ Profile = ProfileInfo{}

func (p ProfileInfo) Primaries() (red, green, blue colorconv.Vec3) { return p.Red, p.Green, p.Blue }
func (p ProfileInfo) WhitePoint() colorconv.Vec3                   { return p.White }
func (p ProfileInfo) BlackPoint() colorconv.Vec3                   { return p.Black }
func (p ProfileInfo) DeviceChannels() int                          { return p.Channels }
func (p ProfileInfo) ConnectionSpace() types.ColorSpace            { return p.PCS }

func (p ProfileInfo) String() string {
	return fmt.Sprintf("ProfileInfo{%s %d channels, white: %v black: %v}", p.PCS, p.Channels, p.White, p.Black)
}

// ResolveProfile derives the metadata of an RGB profile by looking up its
// primaries, white and black through o. pcs is the connection space of the
// profile and is only recorded, lookups are always done in XYZ.
func ResolveProfile(ctx context.Context, o oracle.Oracle, pcs types.ColorSpace, intent types.Intent) (ans ProfileInfo, err error) {
	if !pcs.IsConnectionSpace() {
		return ans, fmt.Errorf("%w: %s", ErrUnsupportedSpace, pcs)
	}
	coords := []types.Coordinate{types.RGB(0, 0, 0), types.RGB(1, 1, 1), types.RGB(1, 0, 0), types.RGB(0, 1, 0), types.RGB(0, 0, 1)}
	res, err := oracle.LookupAll(ctx, o, oracle.Request{Intent: intent, Direction: types.Forward, PCS: types.XYZ}, coords, len(coords))
	if err != nil {
		return ans, oracle_error(ctx, err)
	}
	v := func(i int) colorconv.Vec3 { return colorconv.Vec3(res[i].Coord.Triple()) }
	return ProfileInfo{Black: v(0), White: v(1), Red: v(2), Green: v(3), Blue: v(4), Channels: 3, PCS: pcs}, nil
}
