// Package audio decodes the base64 audio payloads posted by browser clients.
package audio

import (
	"errors"
	"regexp"
	"strings"
)

// MIMEType is the container the browser recorder produces and the tag sent
// to the provider with the inline audio.
const MIMEType = "audio/webm"

// ErrInvalidAudio is returned when a body holds no recognizable payload.
var ErrInvalidAudio = errors.New("invalid audio")

var (
	dataURIRe = regexp.MustCompile(`data:audio/[^;]+;base64,([A-Za-z0-9+/=]+)`)
	bareRe    = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

// DecodePayload extracts the base64 data from a request body. The body may
// contain a data URI ("data:audio/webm;base64,...") anywhere in it, or be a
// bare base64 string. The returned data is not decoded further; it is
// forwarded to the provider as-is.
func DecodePayload(body string) (string, error) {
	if m := dataURIRe.FindStringSubmatch(body); m != nil {
		return m[1], nil
	}
	bare := strings.TrimSpace(body)
	if bare != "" && bareRe.MatchString(bare) {
		return bare, nil
	}
	return "", ErrInvalidAudio
}
