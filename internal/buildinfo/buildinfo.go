// Package buildinfo carries the version stamped in by the linker.
package buildinfo

const Graffiti = " ____   ___  ____ ____  \n| __ ) / _ \\/ ___/ ___| \n|  _ \\| | | \\___ \\___ \\ \n| |_) | |_| |___) |__) |\n|____/ \\___/|____/____/ \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "BOSS"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// String is the one line banner printed at startup.
func (b buildinfo) String() string {
	if b.Time() == "" {
		return b.Name() + " " + b.Tag()
	}
	return b.Name() + " " + b.Tag() + " (" + b.Time() + ")"
}

var Info buildinfo
