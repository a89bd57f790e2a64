// Package abi holds the flat, fixed-size records exchanged with the host and
// the codec that packs them into boundary buffers.
//
// A boundary buffer for a record kind is always Layout.Max slots of
// Layout.Size bytes. Records are written left to right from offset 0 and
// unused slots stay zero. There is no length prefix: an all-zero slot decodes
// to a default record and callers tell padding from data by a count they
// carry themselves.
package abi

// Record is implemented by pointers to the fixed-size record types.
type Record[T any] interface {
	*T
	Layout() Layout
	// MarshalABI writes exactly Layout().Size bytes into dst.
	MarshalABI(dst []byte) error
	// UnmarshalABI parses exactly Layout().Size bytes from src.
	UnmarshalABI(src []byte) error
}

// LayoutOf returns the layout of record kind T.
func LayoutOf[T any, P Record[T]]() Layout {
	return P(new(T)).Layout()
}

// Encode packs up to Max records into a zero-padded buffer of BufferSize bytes.
func Encode[T any, P Record[T]](records []T) ([]byte, error) {
	l := LayoutOf[T, P]()
	buf := make([]byte, l.BufferSize())
	if err := EncodeInto[T, P](buf, records); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeInto is Encode writing into a caller provided buffer, which must be
// exactly BufferSize bytes. Slots past len(records) are zeroed.
func EncodeInto[T any, P Record[T]](buf []byte, records []T) error {
	l := LayoutOf[T, P]()
	if len(records) > l.Max {
		return Overflow(l.Name, "%d records exceed the maximum of %d", len(records), l.Max)
	}
	if len(buf) != l.BufferSize() {
		return Overflow(l.Name, "buffer is %d bytes, layout needs %d", len(buf), l.BufferSize())
	}

	for i := range records {
		slot := buf[i*l.Size : (i+1)*l.Size]
		if err := P(&records[i]).MarshalABI(slot); err != nil {
			return AtSlot(err, i)
		}
	}
	clear(buf[len(records)*l.Size:])
	return nil
}

// Decode parses every slot of a boundary buffer.
func Decode[T any, P Record[T]](buf []byte) ([]T, error) {
	return DecodeN[T, P](buf, LayoutOf[T, P]().Max)
}

// DecodeN parses the first n slots of a boundary buffer and ignores the rest.
// The buffer must still be exactly BufferSize bytes long.
func DecodeN[T any, P Record[T]](buf []byte, n int) ([]T, error) {
	l := LayoutOf[T, P]()
	if len(buf) < l.BufferSize() {
		return nil, Truncated(l.Name, l.BufferSize(), len(buf))
	}
	if len(buf) > l.BufferSize() {
		return nil, newError(KindDecodingMalformed, l.Name, "buffer is %d bytes, layout needs %d", len(buf), l.BufferSize())
	}
	if n < 0 || n > l.Max {
		return nil, newError(KindDecodingMalformed, l.Name, "record count %d outside [0, %d]", n, l.Max)
	}

	records := make([]T, n)
	for i := range records {
		slot := buf[i*l.Size : (i+1)*l.Size]
		if err := P(&records[i]).UnmarshalABI(slot); err != nil {
			return nil, AtSlot(err, i)
		}
	}
	return records, nil
}

func checkMarshal(l Layout, dst []byte) error {
	if len(dst) < l.Size {
		return Overflow(l.Name, "record needs %d bytes, slot has %d", l.Size, len(dst))
	}
	return nil
}

func checkUnmarshal(l Layout, src []byte) error {
	if len(src) < l.Size {
		return Truncated(l.Name, l.Size, len(src))
	}
	return nil
}
