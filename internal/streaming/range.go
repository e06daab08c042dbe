package streaming

import (
	"strconv"
	"strings"
)

// ByteRange is an inclusive byte window within a file of known size.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange interprets a single-range "bytes=start-end" header against the
// given file size. The end is optional and both bounds are clamped into
// [0, size-1]. A malformed header returns ok=false, which callers treat as
// a whole-file request rather than an error.
func ParseRange(header string, size int64) (ByteRange, bool) {
	if size <= 0 {
		return ByteRange{}, false
	}
	if !strings.HasPrefix(header, "bytes=") {
		return ByteRange{}, false
	}

	spec := strings.TrimPrefix(header, "bytes=")
	if idx := strings.IndexByte(spec, ','); idx >= 0 {
		spec = strings.TrimSpace(spec[:idx])
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return ByteRange{}, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, false
	}
	if start > size-1 {
		start = size - 1
	}

	end := size - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < 0 {
			return ByteRange{}, false
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start > end {
		return ByteRange{}, false
	}
	return ByteRange{Start: start, End: end}, true
}
