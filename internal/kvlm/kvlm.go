// Package kvlm implements the "key-value list with message" format
// shared by commit and annotated-tag payloads.
package kvlm

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "kvlm")

// Message is the key under which the free-form trailing message is
// stored; there is no valid header key that collides with it since
// header keys are never empty.
const Message = ""

// KVLM is an ordered key-value-list-with-message: keys preserve
// insertion order, and repeated keys preserve the relative order of
// their values. Message is always present under the Message key.
type KVLM struct {
	keys   []string
	values map[string][]string
}

// New returns an empty KVLM with the given message.
func New(message []byte) *KVLM {
	k := &KVLM{values: make(map[string][]string)}
	k.values[Message] = []string{string(message)}
	return k
}

// Set appends value under key, preserving any prior values for that
// key and recording key in insertion order the first time it's seen.
func (k *KVLM) Set(key string, value []byte) {
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = append(k.values[key], string(value))
}

// Get returns the first (or only) value for key.
func (k *KVLM) Get(key string) (string, bool) {
	vs, ok := k.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// All returns every value recorded for key, in insertion order.
func (k *KVLM) All(key string) []string {
	return k.values[key]
}

// Message returns the trailing free-form message.
func (k *KVLM) Message() []byte {
	vs := k.values[Message]
	if len(vs) == 0 {
		return nil
	}
	return []byte(vs[0])
}

// Parse decodes raw into a KVLM. The walk is iterative rather than
// recursive per key, so it doesn't stack overflow on pathological
// input such as a very long commit body.
func Parse(raw []byte) (*KVLM, error) {
	k := &KVLM{values: make(map[string][]string)}
	start := 0

	for {
		space := bytes.IndexByte(raw[start:], ' ')
		newline := bytes.IndexByte(raw[start:], '\n')
		if space >= 0 {
			space += start
		}
		if newline >= 0 {
			newline += start
		}

		if space < 0 || (newline >= 0 && newline < space) {
			if newline != start {
				return nil, errors.Errorf("kvlm: expected blank line at %d, found newline at %d", start, newline)
			}
			k.values[Message] = []string{string(raw[start+1:])}
			log.Debug("kvlm: reached message")
			return k, nil
		}

		key := string(raw[start:space])

		// Continuation lines start with a single space; advance past
		// newlines until one is not followed by a space.
		end := start
		for {
			next := bytes.IndexByte(raw[end+1:], '\n')
			if next < 0 {
				return nil, errors.Errorf("kvlm: unterminated value for key %q", key)
			}
			end = end + 1 + next
			if end+1 >= len(raw) || raw[end+1] != ' ' {
				break
			}
		}

		rawValue := raw[space+1 : end]
		value := bytes.ReplaceAll(rawValue, []byte("\n "), []byte("\n"))

		if _, ok := k.values[key]; !ok {
			k.keys = append(k.keys, key)
		}
		k.values[key] = append(k.values[key], string(value))
		log.WithField("key", key).Debug("kvlm: parsed header")

		start = end + 1
	}
}

// Serialize is the exact inverse of Parse: serialize(parse(x)) == x for
// well-formed input.
func (k *KVLM) Serialize() []byte {
	var buf bytes.Buffer
	for _, key := range k.keys {
		if key == Message {
			continue
		}
		for _, v := range k.values[key] {
			folded := bytes.ReplaceAll([]byte(v), []byte("\n"), []byte("\n "))
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(folded)
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.Message())
	return buf.Bytes()
}
