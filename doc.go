/*
Package lutsynth synthesizes 3D lookup tables from color profiles.

A profile is consumed through an oracle.Oracle that transforms batches of
coordinates between device values and a profile connection space.
GenerateInverse derives a connection space to device table by inverting the
forward transform of the profile, GenerateDeviceLink samples a device to
device transform. The resulting tables can be written in the formats of the
encode package with Save or Encode.
*/
package lutsynth

import "fmt"

type VersionInfo struct {
	Major, Minor, Patch uint
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v VersionInfo) Equal(o VersionInfo) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func (v VersionInfo) After(o VersionInfo) bool {
	switch {
	case v.Major == o.Major:
		switch {
		case v.Minor == o.Minor:
			return v.Patch > o.Patch
		case v.Minor > o.Minor:
			return true
		case v.Minor < o.Minor:
			return false
		}
	case v.Major > o.Major:
		return true
	case v.Major < o.Major:
		return false
	}
	return false
}

func (v VersionInfo) Before(o VersionInfo) bool {
	return !v.Equal(o) && !v.After(o)
}

var Version = VersionInfo{1, 0, 0}

// Creator is recorded in the headers of the LUT formats that have one.
func Creator() string { return "lutsynth " + Version.String() }
