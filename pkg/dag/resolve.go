package dag

import (
	"context"
	"strconv"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/storage"
)

// Result is the outcome of a path resolution. The zero value is Unresolved.
type Result struct {
	// Value found at the deepest resolvable point of the path
	Value interface{}
	// Remaining holds the path segments left over when Value is a scalar
	// that could not be walked into
	Remaining []string

	resolved bool
}

// Unresolved is returned when a path has never been written
var Unresolved = Result{}

// Resolved reports whether anything was found along the path
func (r Result) Resolved() bool {
	return r.resolved
}

// Complete reports whether the whole path was consumed
func (r Result) Complete() bool {
	return r.resolved && len(r.Remaining) == 0
}

func found(v interface{}, remaining []string) Result {
	rem := make([]string, len(remaining))
	copy(rem, remaining)

	return Result{Value: v, Remaining: rem, resolved: true}
}

// Resolve walks path from root. Absent segments and absent nodes yield
// Unresolved, only unexpected store failures are returned as errors.
func Resolve(ctx context.Context, s storage.ContentStore, root cid.Cid, path []string) (Result, error) {
	if !root.Defined() {
		return Unresolved, nil
	}

	n, err := LoadNode(ctx, s, root)
	if err != nil {
		if storage.IsNotFound(err) {
			return Unresolved, nil
		}
		return Unresolved, errors.Wrap(err, "loading root")
	}

	for i, seg := range path {
		if c, ok := n.Link(seg); ok {
			n, err = LoadNode(ctx, s, c)
			if err != nil {
				if storage.IsNotFound(err) {
					return Unresolved, nil
				}
				return Unresolved, errors.Wrapf(err, "loading %s", JoinPath(path[:i+1]))
			}
			continue
		}

		v, ok := n.Values[seg]
		if !ok {
			return Unresolved, nil
		}

		return resolveValue(v, path[i+1:]), nil
	}

	return found(n.AsMap(), nil), nil
}

func resolveValue(v interface{}, path []string) Result {
	for i, seg := range path {
		switch t := v.(type) {
		case map[string]interface{}:
			next, ok := t[seg]
			if !ok {
				return Unresolved
			}
			v = next
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(t) {
				return Unresolved
			}
			v = t[idx]
		default:
			return found(v, path[i:])
		}
	}

	return found(v, nil)
}
