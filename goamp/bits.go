package goamp

import (
	"math/bits"

	"github.com/pkg/errors"
)

// PopCount returns the number of set bits in x.
func PopCount(x uint64) int {
	return bits.OnesCount64(x)
}

// Parity returns PopCount(x) mod 2.
func Parity(x uint64) uint64 {
	return uint64(bits.OnesCount64(x) & 1)
}

// ToBinary decodes x into width bits, least significant first.
func ToBinary(width int, x uint64) ([]byte, error) {
	if width < 0 || width > 64 {
		return nil, errors.Wrapf(ErrBitWidth, "width %d", width)
	}
	if width < 64 && x>>uint(width) != 0 {
		return nil, errors.Wrapf(ErrBitWidth, "%d needs more than %d bits", x, width)
	}
	xb := make([]byte, width)
	for q := range xb {
		xb[q] = byte(x>>uint(q)) & 1
	}
	return xb, nil
}

// GrayCode returns the full flip schedule for the given length: the reflected binary
// sequence of 2^length-1 flips followed by a trailing flip of bit length-1, which
// returns the walk to the all-zero string.
//
// The list is exponentially large, so length is bounded by MaxGrayListLen.
// Use a GraySchedule to stream longer schedules.
func GrayCode(length int) ([]int, error) {
	if length < 1 || length > MaxGrayListLen {
		return nil, errors.Wrapf(ErrGrayLength, "GrayCode(%d)", length)
	}
	C := make([]int, 0, 1<<uint(length))
	C = appendReflected(C, length)
	C = append(C, length-1)
	return C, nil
}

func appendReflected(C []int, length int) []int {
	if length == 1 {
		return append(C, 0)
	}
	C = appendReflected(C, length-1)
	C = append(C, length-1)
	return appendReflected(C, length-1)
}

// GrayFlip returns the bit flipped at schedule position pos of a length-bit schedule.
func GrayFlip(length int, pos uint64) int {
	next := pos + 1
	if length >= 64 || next>>uint(length) == 0 {
		return bits.TrailingZeros64(next)
	}
	return length - 1
}

// GrayAt returns the bit string held before schedule position pos runs.
// The schedule is cyclic, so GrayAt(length, 1<<length) is 0.
func GrayAt(length int, pos uint64) uint64 {
	if length < 64 {
		pos &= (uint64(1) << uint(length)) - 1
	}
	return pos ^ (pos >> 1)
}

// GraySchedule lazily streams the flip schedule over [pos, end).
type GraySchedule struct {
	length int
	pos    uint64
	end    uint64
}

// NewGraySchedule returns a schedule over all 2^length positions.
func NewGraySchedule(length int) (*GraySchedule, error) {
	if length < 1 || length > MaxNodes {
		return nil, errors.Wrapf(ErrGrayLength, "GraySchedule(%d)", length)
	}
	return &GraySchedule{
		length: length,
		end:    uint64(1) << uint(length),
	}, nil
}

// NewGrayScheduleAt returns a schedule over [pos, end) of a length-bit schedule.
func NewGrayScheduleAt(length int, pos, end uint64) (*GraySchedule, error) {
	gs, err := NewGraySchedule(length)
	if err != nil {
		return nil, err
	}
	if pos > end || end > gs.end {
		return nil, errors.Wrapf(ErrGrayLength, "range [%d, %d) outside schedule of %d", pos, end, gs.end)
	}
	gs.pos = pos
	gs.end = end
	return gs, nil
}

// Next returns the next bit to flip or false if the schedule is exhausted.
func (gs *GraySchedule) Next() (flip int, ok bool) {
	if gs.pos >= gs.end {
		return -1, false
	}
	flip = GrayFlip(gs.length, gs.pos)
	gs.pos++
	return flip, true
}

// Pos returns the position of the next flip.
func (gs *GraySchedule) Pos() uint64 {
	return gs.pos
}

// Remaining returns the number of flips left.
func (gs *GraySchedule) Remaining() uint64 {
	return gs.end - gs.pos
}
