// Package confirmation derives the human-legible codes printed on
// tickets and read aloud at the launch field.
package confirmation

import (
	"fmt"
	"io"
	"time"
)

// Alphabet has exactly 32 symbols with the visually confusable
// 0/O and 1/I removed, so a masked random byte maps uniformly.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const suffixLen = 6

// Generate returns a code of the form PREFIX-YYYYMMDD-XXXXXX. The date
// is the flight date, so codes for the same launch day group together.
// Uniqueness is the caller's job (retry on storage conflict).
func Generate(prefix string, date time.Time, r io.Reader) (string, error) {
	var buf [suffixLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("confirmation entropy: %w", err)
	}
	for i := range buf {
		buf[i] = Alphabet[int(buf[i])&31]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), buf[:]), nil
}
