package encoder

import (
	"fmt"
	"strings"
)

// FallbackFormat is used when the requested encoder is unavailable.
const FallbackFormat = "jpeg"

// Registry holds the available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry of the built-in encoders, probing each for
// availability.
func NewRegistry() *Registry {
	return NewRegistryWith(&WebPEncoder{}, &JPEGEncoder{}, &PNGEncoder{})
}

// NewRegistryWith creates a registry from encs. Unavailable encoders are
// skipped.
func NewRegistryWith(encs ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range encs {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[normalize(format)]
}

// Resolve returns the encoder for format, falling back to JPEG when it is
// unavailable.
func (r *Registry) Resolve(format string) (Encoder, error) {
	if enc := r.Get(format); enc != nil {
		return enc, nil
	}
	if enc := r.encoders[FallbackFormat]; enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("no encoder for %q and no %s fallback", format, FallbackFormat)
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range []string{"webp", "jpeg", "png"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}

func normalize(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpg" {
		return "jpeg"
	}
	return f
}
