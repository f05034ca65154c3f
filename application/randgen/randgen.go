// Package randgen produces synthetic test data: integers, base-36 strings,
// fixed-length digit strings and structured passwords. Output is not suitable
// for cryptographic use.
package randgen

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// FixedChunk is the largest digit run drawn from a single random integer
const FixedChunk = 11

const (
	UpperCase    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowerCase    = "abcdefghijklmnopqrstuvwxyz"
	Digits       = "0123456789"
	SpecialChars = `!@#$%^&*()><?:"|{}+_`
)

// Generator draws from its own source when seeded and from the shared
// runtime source otherwise. A seeded Generator must not be used from
// several goroutines at once.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator backed by the runtime source
func New() *Generator {
	return &Generator{}
}

// NewSeeded returns a reproducible generator
func NewSeeded(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) int64N(n int64) int64 {
	if g == nil || g.rng == nil {
		return rand.Int64N(n)
	}
	return g.rng.Int64N(n)
}

func (g *Generator) uint64N(n uint64) uint64 {
	if g == nil || g.rng == nil {
		return rand.Uint64N(n)
	}
	return g.rng.Uint64N(n)
}

func (g *Generator) uint64() uint64 {
	if g == nil || g.rng == nil {
		return rand.Uint64()
	}
	return g.rng.Uint64()
}

// Integer returns a uniformly distributed integer in [min, max].
// Reversed bounds are swapped.
func (g *Generator) Integer(min, max int) int {
	if min > max {
		min, max = max, min
	}
	// the span is taken modulo 2^64 so the full int range does not overflow
	span := uint64(max) - uint64(min)
	if span == math.MaxUint64 {
		return int(uint64(min) + g.uint64())
	}
	return int(uint64(min) + g.uint64N(span+1))
}

// String returns length characters from [0-9a-z], built from base-36
// fragments and truncated. A negative length yields "".
func (g *Generator) String(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(length + 13)
	for b.Len() < length {
		b.WriteString(strconv.FormatUint(g.uint64(), 36))
	}
	return b.String()[:length]
}

// FixedDigits returns a string of exactly n decimal digits. Each chunk of
// up to FixedChunk digits comes from one integer drawn in [10^k, 10^(k+1)-1]
// with its forced leading digit dropped, so leading zeros survive.
// n <= 0 yields "".
func (g *Generator) FixedDigits(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for remaining := n; remaining > 0; {
		k := min(remaining, FixedChunk)
		b.WriteString(g.digitChunk(k))
		remaining -= k
	}
	return b.String()
}

func (g *Generator) digitChunk(k int) string {
	lo := pow10(k)
	hi := pow10(k+1) - 1
	v := lo + g.int64N(hi-lo+1)
	return strconv.FormatInt(v, 10)[1:]
}

func pow10(k int) int64 {
	p := int64(1)
	for i := 0; i < k; i++ {
		p *= 10
	}
	return p
}

// Password returns 4n characters: n uppercase letters, then n lowercase,
// then n digits, then n from SpecialChars. The classes are not interleaved.
func (g *Generator) Password(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(4 * n)
	for _, class := range []string{UpperCase, LowerCase, Digits, SpecialChars} {
		for i := 0; i < n; i++ {
			b.WriteByte(class[g.int64N(int64(len(class)))])
		}
	}
	return b.String()
}

// Index returns a uniform index in [0, n), or -1 when n <= 0
func (g *Generator) Index(n int) int {
	if n <= 0 {
		return -1
	}
	return int(g.int64N(int64(n)))
}

// Pick returns a uniformly chosen value, or the zero value for an empty set
func Pick[T any](g *Generator, values []T) T {
	var zero T
	i := g.Index(len(values))
	if i < 0 {
		return zero
	}
	return values[i]
}

// Integer returns a uniformly distributed integer in [min, max]
func Integer(min, max int) int { return New().Integer(min, max) }

// String returns a random [0-9a-z] string of the given length
func String(length int) string { return New().String(length) }

// FixedDigits returns a random string of exactly n digits
func FixedDigits(n int) string { return New().FixedDigits(n) }

// Password returns a 4n character password of four class blocks
func Password(n int) string { return New().Password(n) }

// EnumValue returns a uniformly chosen member of a closed set of constants
func EnumValue[T any](values []T) T { return Pick(New(), values) }
