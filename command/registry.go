package command

import "encoding/binary"

// Decoder reconstructs a Command from its full serialized byte form,
// including the leading kind tag the registry already consumed.
type Decoder func(data []byte) (Command, error)

// Registry maps a numeric kind to the decoder that knows how to parse it.
// Instances are independent: nothing in this package holds process-wide
// state. Register additional kinds at startup before any traffic is
// decoded.
type Registry struct {
	decoders map[Kind]Decoder
}

// NewRegistry returns a Registry with the built-in Empty/Move/Action kinds
// already registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[Kind]Decoder)}
	r.Register(KindEmpty, decodeEmpty)
	r.Register(KindMove, decodeMove)
	r.Register(KindAction, decodeAction)
	return r
}

// Register installs or replaces the decoder for kind.
func (r *Registry) Register(kind Kind, decoder Decoder) {
	r.decoders[kind] = decoder
}

// Deserialize reads the 4-byte kind tag from the front of data, looks up
// the matching decoder, and hands it the whole byte slice (the decoder
// re-skips the kind itself).
func (r *Registry) Deserialize(data []byte) (Command, error) {
	if len(data) < 4 {
		return Command{}, ErrTruncated
	}
	kind := Kind(binary.LittleEndian.Uint32(data[0:4]))
	decoder, ok := r.decoders[kind]
	if !ok {
		return Command{}, ErrUnknownKind
	}
	return decoder(data)
}
