package codec

import "encoding/binary"

// AppendFields serializes an ordered field list as uvarint-prefixed strings.
func AppendFields(dst []byte, fields []string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(fields)))
	for _, f := range fields {
		dst = binary.AppendUvarint(dst, uint64(len(f)))
		dst = append(dst, f...)
	}
	return dst
}

// DecodeFields parses a payload produced by AppendFields.
func DecodeFields(src []byte) ([]string, bool) {
	count, n := binary.Uvarint(src)
	if n <= 0 {
		return nil, false
	}
	src = src[n:]
	if count > uint64(len(src)) {
		return nil, false
	}

	fields := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n := binary.Uvarint(src)
		if n <= 0 {
			return nil, false
		}
		src = src[n:]
		if size > uint64(len(src)) {
			return nil, false
		}
		fields = append(fields, string(src[:size]))
		src = src[size:]
	}
	if len(src) != 0 {
		return nil, false
	}
	return fields, true
}
