// Package folders maps a classification onto a concrete job subfolder,
// allocating round numbers and finding or creating the folder.
package folders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/projects"
	"github.com/MGhunch/dot-file/pkg/docstore"
)

// Marker prefixes every managed subfolder name.
const Marker = "-- "

// ErrFolderResolution indicates the destination could not be found or created.
var ErrFolderResolution = errors.New("folder resolution failed")

// Destination is a resolved subfolder.
type Destination struct {
	FolderName string            `json:"folder_name"`
	Location   docstore.Location `json:"location"`
	WebURL     string            `json:"web_url,omitempty"`
	Existed    bool              `json:"existed"`
}

// Path is the full site-relative path of the folder.
func (d Destination) Path() string {
	return d.Location.Path
}

// FolderName returns the marked subfolder name for r, e.g. "-- Round 3".
func FolderName(r classification.Result) (string, error) {
	if r.Category == classification.Round {
		if r.Round < 1 {
			return "", fmt.Errorf("%w: round not allocated", ErrFolderResolution)
		}
		return fmt.Sprintf("%sRound %d", Marker, r.Round), nil
	}
	if _, ok := classification.ParseCategory(string(r.Category)); !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrFolderResolution, r.Category)
	}
	return Marker + string(r.Category), nil
}

// AllocateRound returns the round to file into. A new round starts when the
// job has none yet, the last filing was not a Round, or the caller asks for
// one; otherwise the current round is reused. It is pure.
func AllocateRound(p projects.Project, increment bool) int {
	if p.Round < 1 || p.LastFiledTo != classification.Round || increment {
		return p.Round + 1
	}
	return p.Round
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}
