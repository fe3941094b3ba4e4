// Package scanner splits and parses delimited text records without
// allocating per field.
package scanner

// SplitFields appends the sep separated fields of line to dst and returns
// it. Leading and trailing spaces of every field are trimmed. An empty line
// yields no fields.
func SplitFields(dst [][]byte, line []byte, sep byte) [][]byte {
	line = TrimSpace(line)
	if len(line) == 0 {
		return dst
	}
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == sep {
			dst = append(dst, TrimSpace(line[start:i]))
			start = i + 1
		}
	}
	return append(dst, TrimSpace(line[start:]))
}

// ParseInt parses an optionally signed base 10 integer.
func ParseInt(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	switch b[0] {
	case '-':
		neg = true
		b = b[1:]
	case '+':
		b = b[1:]
	}
	v, ok := ParseUint(b)
	if !ok || v > 1<<63-1 {
		return 0, false
	}
	if neg {
		return -int64(v), true
	}
	return int64(v), true
}

// ParseUint parses a base 10 unsigned integer.
func ParseUint(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if v > (1<<64-1-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

func TrimSpace(b []byte) []byte {
	for len(b) > 0 && IsSpace(b[0]) {
		b = b[1:]
	}
	for len(b) > 0 && IsSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
