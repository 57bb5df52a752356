package stream

import (
	"errors"
	"strconv"
	"strings"
)

var errMalformedRange = errors.New("malformed range header")

// byteRange is a resolved inclusive span within a file of known size.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

// parseRange resolves the first byte-range unit of a Range header against
// the given file size. Suffix ranges (bytes=-500) and multiple units are
// not supported; only the first unit is honored, matching how browsers
// request video. A malformed header returns errMalformedRange so the
// caller can fall back to serving the whole file.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, errMalformedRange
	}

	// first unit only
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}
	spec = strings.TrimSpace(spec)

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return byteRange{}, errMalformedRange
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, errMalformedRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return byteRange{}, errMalformedRange
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return byteRange{start: start, end: end}, nil
}
