package codec

import (
	"math"
	"strconv"
	"strings"

	"tradeflow/pkg/exception"
)

// Treasury prices tick in 32nds with a trailing eighth-of-a-32nd digit,
// so the finest representable increment is 1/256 of a point.
const (
	TicksPerPoint   = 256
	ticksPer32nd    = 8
	halfOf32ndDigit = '+'
)

// DecodePrice parses fractional notation such as "99-16+" (99 + 16/32 + 4/256).
func DecodePrice(text string) (float64, error) {
	text = strings.TrimSpace(text)
	handle, frac, ok := strings.Cut(text, "-")
	if !ok || len(handle) == 0 || len(frac) != 3 {
		return 0, exception.ErrMalformedPrice
	}

	integer, err := strconv.ParseInt(handle, 10, 64)
	if err != nil || integer < 0 {
		return 0, exception.ErrMalformedPrice
	}

	n32, err := strconv.Atoi(frac[:2])
	if err != nil || n32 < 0 || n32 >= 32 {
		return 0, exception.ErrMalformedPrice
	}

	var n256 int
	switch c := frac[2]; {
	case c == halfOf32ndDigit:
		n256 = 4
	case c >= '0' && c < '0'+ticksPer32nd:
		n256 = int(c - '0')
	default:
		return 0, exception.ErrMalformedPrice
	}

	return float64(integer) + float64(n32)/32 + float64(n256)/TicksPerPoint, nil
}

// MustDecodePrice is DecodePrice for literals known to be well formed.
func MustDecodePrice(text string) float64 {
	p, err := DecodePrice(text)
	if err != nil {
		panic("codec: malformed price literal " + strconv.Quote(text))
	}
	return p
}

// EncodePrice renders a price in fractional notation, truncating anything
// finer than 1/256.
func EncodePrice(price float64) string {
	buf := make([]byte, 0, 16)
	return string(AppendPrice(buf, price))
}

// AppendPrice appends the fractional notation of price to dst.
func AppendPrice(dst []byte, price float64) []byte {
	ticks := int64(math.Floor(price * TicksPerPoint))
	handle := floorDiv(ticks, TicksPerPoint)
	rem := ticks - handle*TicksPerPoint
	n32 := rem / ticksPer32nd
	n256 := rem % ticksPer32nd

	dst = strconv.AppendInt(dst, handle, 10)
	dst = append(dst, '-')
	if n32 < 10 {
		dst = append(dst, '0')
	}
	dst = strconv.AppendInt(dst, n32, 10)
	if n256 == 4 {
		return append(dst, halfOf32ndDigit)
	}
	return append(dst, byte('0'+n256))
}

// Quantize truncates a price onto the 1/256 grid.
func Quantize(price float64) float64 {
	return math.Floor(price*TicksPerPoint) / TicksPerPoint
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
