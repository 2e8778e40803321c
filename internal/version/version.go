// Package version provides the build version of the module.
package version

import "fmt"

// Build information, set at link time.
var (
	major  = 0
	minor  = 1
	commit = "dev"
)

// Info describes a build.
type Info struct {
	Major  int
	Minor  int
	Commit string
}

// Current returns the current build version.
func Current() Info {
	return Info{
		Major:  major,
		Minor:  minor,
		Commit: commit,
	}
}

// String returns the version in the major.minor-commit format.
func (v Info) String() string {
	return fmt.Sprintf("%d.%d-%s", v.Major, v.Minor, v.Commit)
}
