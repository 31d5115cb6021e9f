package usecase

import (
	"crypto/rand"
	"strings"
)

// NewWatermarkID returns a fresh random bitstring of exactly bitLen
// characters drawn from {'0','1'}. The identifier only needs collision
// avoidance, not secrecy, but crypto/rand costs nothing here and spares a
// seeding concern. bitLen <= 0 yields the empty string.
func NewWatermarkID(bitLen int) string {
	if bitLen <= 0 {
		return ""
	}
	buf := make([]byte, (bitLen+7)/8)
	rand.Read(buf)
	var b strings.Builder
	b.Grow(bitLen)
	for i := 0; i < bitLen; i++ {
		if buf[i/8]&(1<<(i%8)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
