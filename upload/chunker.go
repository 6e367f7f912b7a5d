package upload

import "fmt"

// DefaultPartSize is the fixed chunk size requested from callers that do not
// configure one.
const DefaultPartSize = 100 * 1024 * 1024 // 100 MiB

// Part is one byte range of the source file. Numbers are 1-based and
// contiguous; only the last part may be shorter than the part size.
type Part struct {
	Number int
	Offset int64
	Size   int64
}

// SplitParts slices a file of the given total size into fixed-size parts.
func SplitParts(totalSize, partSize int64) ([]Part, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("invalid file size %d", totalSize)
	}
	if partSize <= 0 {
		return nil, fmt.Errorf("invalid part size %d", partSize)
	}

	n := int((totalSize + partSize - 1) / partSize)
	parts := make([]Part, 0, n)
	for i := 0; i < n; i++ {
		offset := int64(i) * partSize
		size := partSize
		if offset+size > totalSize {
			size = totalSize - offset
		}
		parts = append(parts, Part{Number: i + 1, Offset: offset, Size: size})
	}
	return parts, nil
}
