package amount

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

const (
	NanoTHRYLOS = 1e9
)

var (
	ErrInvalidAmount = errors.New("invalid THRYLOS amount")
	ErrOverflow      = errors.New("amount overflow")
	ErrUnderflow     = errors.New("amount underflow")
)

type Unit int

const (
	MegaTHR  Unit = 6
	KiloTHR  Unit = 3
	THR      Unit = 0
	MilliTHR Unit = -3
	MicroTHR Unit = -6
	NanoTHR  Unit = -9
)

func (u Unit) String() string {
	switch u {
	case MegaTHR:
		return "MTHR"
	case KiloTHR:
		return "kTHR"
	case THR:
		return "THR"
	case MilliTHR:
		return "mTHR"
	case MicroTHR:
		return "μTHR"
	case NanoTHR:
		return "nTHR"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " THR"
	}
}

// Amount is the smallest indivisible unit of the staked asset.
// Each unit equals to 1e-9 of a THRYLOS.
type Amount uint64

// Max is the largest representable amount.
const Max = Amount(math.MaxUint64)

func round(f float64) Amount {
	return Amount(f + 0.5)
}

// NewAmount converts a THRYLOS value into atomic units.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f),
		math.IsInf(f, 1),
		math.IsInf(f, -1),
		f < 0:
		return 0, ErrInvalidAmount
	}

	scaled := f * float64(NanoTHRYLOS)
	if scaled >= float64(math.MaxUint64) {
		return 0, ErrOverflow
	}
	return round(scaled), nil
}

// FromString parses a decimal THRYLOS value such as "12.5".
func FromString(str string) (Amount, error) {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "parse %q", str)
	}
	return NewAmount(f)
}

// Parse reads a base-10 count of atomic units.
func Parse(str string) (Amount, error) {
	v, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, ErrOverflow
		}
		return 0, errors.Wrapf(ErrInvalidAmount, "parse %q", str)
	}
	return Amount(v), nil
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) ToUnit(u Unit) float64 {
	return float64(a) / math.Pow10(int(u+9))
}

func (a Amount) Format(u Unit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+9), 64)
	return formatted + units
}

// String is the equivalent of calling Format with THR.
func (a Amount) String() string {
	return a.Format(THR)
}
