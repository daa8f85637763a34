// Package ids generates identifiers for subtasks the gateway returned
// without one. The generator is injected so tests can produce deterministic
// IDs.
package ids

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces identifiers for subtasks created client-side.
type Generator interface {
	// SubtaskID returns a new identifier scoped to the given parent task.
	SubtaskID(parentID string) string
}

// Random generates IDs of the form <parentId>-<unix-millis>-<random>.
type Random struct {
	now func() time.Time
}

// NewRandom creates the production generator.
func NewRandom() *Random {
	return &Random{now: time.Now}
}

// SubtaskID implements Generator.
func (g *Random) SubtaskID(parentID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", parentID, g.now().UnixMilli(), suffix)
}

// Fixed generates a predictable sequence for tests: <parentId>-<prefix>-<n>.
type Fixed struct {
	Prefix string
	n      int
}

// SubtaskID implements Generator.
func (g *Fixed) SubtaskID(parentID string) string {
	g.n++
	return fmt.Sprintf("%s-%s-%d", parentID, g.Prefix, g.n)
}
