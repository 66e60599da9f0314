package models

// Target names an output configuration a build plugin can apply to.
type Target string

const (
	TargetServer Target = "server"
	TargetClient Target = "client"
)

// IsValid returns true if the target is recognized.
func (t Target) IsValid() bool {
	switch t {
	case TargetServer, TargetClient:
		return true
	default:
		return false
	}
}

// String returns the string representation of the target.
func (t Target) String() string {
	return string(t)
}
