// Package idgen generates short random identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// slugAlphabet keeps generated suffixes valid inside a field key.
const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// KeySuffix returns n slug-safe random characters.
func KeySuffix(n int) (string, error) {
	id, err := nanoid.Generate(slugAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// Origin returns an identifier for this process, used to recognise its own
// messages on a shared bus.
func Origin() string {
	id, err := nanoid.New()
	if err != nil {
		panic(fmt.Sprintf("idgen: %v", err))
	}
	return id
}
