package config

import "git.home.luguber.info/inful/sitebuild/internal/foundation/normalization"

// BuildMode selects which targets a build produces.
type BuildMode string

const (
	// ModeStatic builds the server target (prerender, actions) and then the client target.
	ModeStatic BuildMode = "static"
	// ModeServer builds only the server target.
	ModeServer BuildMode = "server"
)

var buildModeNormalizer = normalization.NewNormalizer("build mode", map[string]BuildMode{
	"static": ModeStatic,
	"server": ModeServer,
}, ModeStatic)

// ParseBuildMode normalizes raw into a BuildMode. Empty input yields ModeStatic.
func ParseBuildMode(raw string) (BuildMode, error) {
	return buildModeNormalizer.Parse(raw)
}

// UnmarshalYAML accepts any casing of the known modes.
func (m *BuildMode) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	mode, err := ParseBuildMode(raw)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m BuildMode) String() string { return string(m) }
