package report

import (
	"fmt"
	"strconv"
	"time"
)

// FilenameLayout is the yyyyMMdd_HHmmss timestamp embedded in export filenames.
const FilenameLayout = "20060102_150405"

// GeneratedLayout is how generation timestamps are printed inside documents.
const GeneratedLayout = "02-01-2006 15:04:05"

// FormatCurrency groups thousands with "." and drops decimals: 1234567 -> 1.234.567.
func FormatCurrency(v int64) string {
	neg := v < 0
	digits := strconv.FormatUint(absUint(v), 10)

	out := make([]byte, 0, len(digits)+len(digits)/3+1)
	if neg {
		out = append(out, '-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		out = append(out, '.')
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}

func absUint(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// Filename returns <name>_<yyyyMMdd_HHmmss>.<ext>.
func Filename(name, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", name, at.Format(FilenameLayout), ext)
}
