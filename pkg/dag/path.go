package dag

import (
	"strings"

	"github.com/pkg/errors"
)

const PathSeparator = "/"

var (
	ErrEmptyPath    = errors.New("path is empty")
	ErrEmptySegment = errors.New("path contains an empty segment")
)

// ParsePath splits a slash separated path into segments. Leading and trailing
// separators are ignored, "a//b" is rejected.
func ParsePath(p string) ([]string, error) {
	p = strings.Trim(p, PathSeparator)
	if p == "" {
		return nil, ErrEmptyPath
	}

	segs := strings.Split(p, PathSeparator)
	if err := ValidatePath(segs); err != nil {
		return nil, err
	}

	return segs, nil
}

// ValidatePath checks that a path has at least one segment and no empty ones
func ValidatePath(segs []string) error {
	if len(segs) == 0 {
		return ErrEmptyPath
	}

	for i, s := range segs {
		if s == "" {
			return errors.Wrapf(ErrEmptySegment, "segment %d", i)
		}
	}

	return nil
}

// JoinPath is the inverse of ParsePath
func JoinPath(segs []string) string {
	return strings.Join(segs, PathSeparator)
}
