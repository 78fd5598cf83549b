package kv

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GetSub loads the whole JSON value for key and walks path into it. found
// is false if key itself does not exist. err carries a path-not-found
// *Error if any intermediate node along path is absent or not a container.
func (s *Store) GetSub(key string, path []string) (value []byte, found bool, err error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if len(path) == 0 {
		return raw, true, nil
	}

	result := gjson.GetBytes(raw, gjsonPath(path))
	if !result.Exists() {
		return nil, false, pathNotFoundError(path)
	}
	return []byte(result.Raw), true, nil
}

// SetSub loads the whole JSON value for key, walks all but the last step of
// path to confirm every intermediate node exists and is a container, then
// assigns value at the final step and stores the mutated whole value via
// Set. There is no locking between the read and the write: concurrent
// SetSub calls on the same key may lose updates, an accepted limitation of
// the read-modify-write model.
func (s *Store) SetSub(key string, path []string, value []byte, cb Callback) error {
	if len(path) == 0 {
		return s.Set(key, value, cb)
	}

	raw, ok, err := s.Get(key)
	if err != nil {
		invoke(cb, err)
		return err
	}
	if !ok {
		pnf := pathNotFoundError(path)
		invoke(cb, pnf)
		return pnf
	}

	for i := 0; i < len(path)-1; i++ {
		node := gjson.GetBytes(raw, gjsonPath(path[:i+1]))
		if !node.Exists() || !(node.IsObject() || node.IsArray()) {
			pnf := pathNotFoundError(path)
			invoke(cb, pnf)
			return pnf
		}
	}

	updated, err := sjson.SetRawBytes(raw, gjsonPath(path), value)
	if err != nil {
		wrapped := newError(ErrCodeDecode, "setSub failed to write path", err)
		invoke(cb, wrapped)
		return wrapped
	}

	return s.Set(key, updated, cb)
}

// gjsonPath joins path into a single gjson/sjson dotted path expression,
// escaping each segment's literal '.', '*', '?' and '\' so that a key
// containing one of those characters is not misread as a path operator.
func gjsonPath(path []string) string {
	segs := make([]string, len(path))
	for i, p := range path {
		segs[i] = escapeSegment(p)
	}
	return strings.Join(segs, ".")
}

func escapeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// joinPath renders path for inclusion in an error message.
func joinPath(path []string) string {
	return strings.Join(path, "/")
}
