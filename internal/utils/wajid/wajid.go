// Package wajid normalizes WhatsApp JIDs of the form
// "<number>:<device>@<host>" into the canonical "<number>@<host>" form
// used for persisted profile identifiers.
package wajid

import (
	"errors"
	"strings"
)

var ErrInvalidFormat = errors.New("invalid jid format")

// Normalize strips the device suffix from a raw JID, returning
// "<number>@<host>". Raw JIDs without a device part are returned unchanged
// as long as they carry a host.
func Normalize(raw string) (string, error) {
	number, host, err := split(raw)
	if err != nil {
		return "", err
	}
	return number + "@" + host, nil
}

// Number returns only the numeric part of a raw JID.
func Number(raw string) (string, error) {
	number, _, err := split(raw)
	if err != nil {
		return "", err
	}
	return number, nil
}

func split(raw string) (number, host string, err error) {
	if !strings.ContainsAny(raw, ":@") {
		return "", "", ErrInvalidFormat
	}

	rest := raw
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		number = raw[:idx]
		rest = raw[idx+1:]
	} else {
		idx := strings.IndexByte(raw, '@')
		number = raw[:idx]
		rest = raw[idx:]
	}

	at := strings.IndexByte(rest, '@')
	if at < 0 || number == "" || rest[at+1:] == "" {
		return "", "", ErrInvalidFormat
	}
	return number, rest[at+1:], nil
}
