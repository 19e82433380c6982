// Package tickets renders registration tokens as scannable tickets.
package tickets

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered QR code edge length in pixels.
const DefaultSize = 256

// MaxSize caps the rendered edge length; the encoder allocates a
// size x size image, so an unbounded value lets a caller exhaust memory.
const MaxSize = 1024

// Encoder produces a PNG QR code for content at the given size.
// Matches the signature of qrcode.Encode so tests can substitute it.
type Encoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// EncodePNG renders the ticket QR code. The payload is exactly the raw
// token string; scanners feed it back through the check-in endpoint.
func EncodePNG(token string, size int, encode Encoder) ([]byte, error) {
	if token == "" {
		return nil, errors.New("empty ticket token")
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	return encode(token, qrcode.Medium, size)
}
