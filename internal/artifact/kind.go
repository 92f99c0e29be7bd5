package artifact

import (
	"fmt"
	"strings"
)

// Kind names one stage of the derivation chain.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
	KindSegments
	KindDocument
)

var kindNames = [...]string{"video", "audio", "segments", "document"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a stage name to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown artifact kind %q (want one of %s)", name, strings.Join(kindNames[:], ", "))
}
