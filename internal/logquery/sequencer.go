package logquery

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/logplatform/backend/internal/models"
)

// RotationKey is the (date, sequence) pair embedded in a rotated file name.
type RotationKey struct {
	Date string
	Seq  int
	OK   bool
}

// unparsedKey is used for names that do not follow <prefix>.<date>.<seq>.log.
// Such files sort before parsed ones and fall back to name order among themselves.
var unparsedKey = RotationKey{}

// Sequencer orders classified files so that reading them in sequence
// reconstructs chronological log order.
type Sequencer struct {
	patterns []*regexp.Regexp
}

// NewSequencer builds a sequencer for the given stream prefixes.
func NewSequencer(prefixes ...string) *Sequencer {
	s := &Sequencer{}
	for _, p := range prefixes {
		s.patterns = append(s.patterns,
			regexp.MustCompile(`^`+regexp.QuoteMeta(p)+`\.(\d{4}-\d{2}-\d{2})\.(\d+)\.log(?:\.gz)?$`))
	}
	return s
}

// Key extracts the rotation key of a file name.
func (s *Sequencer) Key(name string) RotationKey {
	for _, re := range s.patterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[2])
		if err != nil {
			return unparsedKey
		}
		return RotationKey{Date: m[1], Seq: seq, OK: true}
	}
	return unparsedKey
}

// Compare is a total order: rotated files by date, then sequence, then name;
// active files after every rotated file.
func (s *Sequencer) Compare(a, b models.LogFileDescriptor) int {
	if a.IsActive != b.IsActive {
		if a.IsActive {
			return 1
		}
		return -1
	}
	if !a.IsActive {
		ka, kb := s.Key(a.Name), s.Key(b.Name)
		if c := strings.Compare(ka.Date, kb.Date); c != 0 {
			return c
		}
		if ka.Seq != kb.Seq {
			if ka.Seq < kb.Seq {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.Name, b.Name)
}

// Sort orders files in place.
func (s *Sequencer) Sort(files []models.LogFileDescriptor) {
	slices.SortFunc(files, s.Compare)
}
