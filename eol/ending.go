package eol

import (
	"fmt"
	"strings"
)

// Ending is a target line-ending convention.
type Ending int

const (
	Unix    Ending = iota // "\n"
	Windows               // "\r\n"
)

// String returns the CLI name of the convention.
func (e Ending) String() string {
	switch e {
	case Unix:
		return "unix"
	case Windows:
		return "windows"
	default:
		return fmt.Sprintf("Ending(%d)", int(e))
	}
}

// ParseEnding maps "unix" or "windows" (case-insensitive) to an Ending.
func ParseEnding(name string) (Ending, error) {
	switch strings.ToLower(name) {
	case "unix":
		return Unix, nil
	case "windows":
		return Windows, nil
	default:
		return Unix, fmt.Errorf("unknown line ending %q (must be \"unix\" or \"windows\")", name)
	}
}
