// pkg/bootenv/grubenv.go
//
// Codec for the GRUB environment block, the fixed-size file grub reads at
// boot and grub2-editenv rewrites.

package bootenv

import (
	"bytes"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

const (
	blockSize = 1024
	header    = "# GRUB Environment Block\n"
)

const (
	KeyBootSuccess = "boot_success"
	KeyBootCounter = "boot_counter"
)

var (
	ErrBadHeader = cerr.New("not a GRUB environment block")
	ErrTooLarge  = cerr.New("GRUB environment block overflow")
)

// Env is an ordered set of variables.
type Env struct {
	keys   []string
	values map[string]string
}

func NewEnv() *Env {
	return &Env{values: make(map[string]string)}
}

// Parse decodes a block. Comment and padding lines are dropped.
func Parse(data []byte) (*Env, error) {
	if !bytes.HasPrefix(data, []byte(header)) {
		return nil, ErrBadHeader
	}
	env := NewEnv()
	for _, line := range strings.Split(string(data[len(header):]), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		env.Set(key, value)
	}
	return env, nil
}

func (e *Env) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Set reports whether the stored value changed.
func (e *Env) Set(key, value string) bool {
	if old, ok := e.values[key]; ok {
		e.values[key] = value
		return old != value
	}
	e.keys = append(e.keys, key)
	e.values[key] = value
	return true
}

// Unset reports whether the key was present.
func (e *Env) Unset(key string) bool {
	if _, ok := e.values[key]; !ok {
		return false
	}
	delete(e.values, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
	return true
}

func (e *Env) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Encode renders the block padded with '#' to its fixed size.
func (e *Env) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	for _, k := range e.keys {
		v := e.values[k]
		if strings.ContainsAny(k, "=\n") || strings.Contains(v, "\n") {
			return nil, cerr.Newf("invalid grubenv entry %q", k)
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(v)
		buf.WriteByte('\n')
	}
	if buf.Len() > blockSize {
		return nil, cerr.Wrapf(ErrTooLarge, "%d bytes", buf.Len())
	}
	buf.Write(bytes.Repeat([]byte{'#'}, blockSize-buf.Len()))
	return buf.Bytes(), nil
}
