package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSignificantDigits is the precision used when no fixed number of
// decimals is requested.
const DefaultSignificantDigits = 3

var hundred = decimal.NewFromInt(100)

type formatSpec struct {
	ratio       bool
	decimals    int
	significant int
}

// FormatOption adjusts a single Format call.
type FormatOption func(*formatSpec)

// AsRatio suppresses the percent rendering of percentage metrics.
func AsRatio() FormatOption {
	return func(s *formatSpec) { s.ratio = true }
}

// WithDecimals forces a fixed number of fraction digits.
func WithDecimals(n int) FormatOption {
	return func(s *formatSpec) {
		if n >= 0 {
			s.decimals = n
		}
	}
}

// WithSignificant overrides the significant digit count of the default mode.
func WithSignificant(n int) FormatOption {
	return func(s *formatSpec) {
		if n > 0 {
			s.significant = n
		}
	}
}

// Formatter renders metric values the way the dashboard displays them.
type Formatter struct {
	registry    *Registry
	significant int
}

func NewFormatter(registry *Registry, significant int) *Formatter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if significant <= 0 {
		significant = DefaultSignificantDigits
	}
	return &Formatter{registry: registry, significant: significant}
}

// Format renders value for metric key. Percentage metrics are scaled by 100
// and suffixed with "%" unless AsRatio is given. Without WithDecimals the
// value is rounded to the formatter's significant digits and trailing zeros
// are dropped.
func (f *Formatter) Format(value float64, key string, opts ...FormatOption) string {
	spec := formatSpec{decimals: -1, significant: f.significant}
	for _, opt := range opts {
		if opt != nil {
			opt(&spec)
		}
	}
	if s, ok := nonFinite(value); ok {
		return s
	}
	percent := !spec.ratio && f.registry.IsPercentage(key)
	d := decimal.NewFromFloat(value)
	if percent {
		d = d.Mul(hundred)
	}
	var text string
	if spec.decimals >= 0 {
		text = d.StringFixed(int32(spec.decimals))
	} else {
		text = roundSignificant(d, spec.significant).String()
	}
	text = groupThousands(text)
	if percent {
		text += "%"
	}
	return text
}

// FormatFixed renders value with exactly decimals fraction digits.
func (f *Formatter) FormatFixed(value float64, key string, decimals int) string {
	return f.Format(value, key, WithDecimals(decimals))
}

// FormatDefault renders value with the metric's default precision.
func (f *Formatter) FormatDefault(value float64, key string) string {
	return f.Format(value, key)
}

func (f *Formatter) FormatRaw(value float64) string {
	return Raw(value)
}

// Raw returns the shortest text that round-trips value, with no rounding or
// grouping. Magnitudes from 1e21 up and below 1e-6 use exponent form
// ("1e+21", "1.5e-7"), the same text a browser prints for the number.
func Raw(value float64) string {
	if s, ok := nonFinite(value); ok {
		return s
	}
	if abs := math.Abs(value); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return trimExponent(strconv.FormatFloat(value, 'e', -1, 64))
	}
	return decimal.NewFromFloat(value).String()
}

// trimExponent drops the zero padding strconv puts in the exponent ("e-07").
func trimExponent(text string) string {
	mantissa, exp, ok := strings.Cut(text, "e")
	if !ok || exp == "" {
		return text
	}
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}

func nonFinite(value float64) (string, bool) {
	switch {
	case math.IsNaN(value):
		return "NaN", true
	case math.IsInf(value, 1):
		return "Infinity", true
	case math.IsInf(value, -1):
		return "-Infinity", true
	}
	return "", false
}

func roundSignificant(d decimal.Decimal, digits int) decimal.Decimal {
	if d.IsZero() || digits <= 0 {
		return d
	}
	mag := int(math.Floor(math.Log10(math.Abs(d.InexactFloat64()))))
	return d.Round(int32(digits - 1 - mag))
}

func groupThousands(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	intPart, frac := text, ""
	if i := strings.IndexByte(text, '.'); i >= 0 {
		intPart, frac = text[:i], text[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
