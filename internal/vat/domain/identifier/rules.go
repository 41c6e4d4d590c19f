package identifier

// MinLengthRule accepts identifiers strictly longer than Min.
type MinLengthRule struct {
	Min int
}

func (r MinLengthRule) Check(normalized string) bool {
	return len(normalized) > r.Min
}

// WeightedChecksumRule accepts identifiers of exactly Length ASCII digits whose
// last digit equals sum(d[i]*Weights[i]) mod Modulus over the leading digits.
//
// len(Weights) must be Length-1. A remainder of 10 under modulus 11 can never
// match a single digit, so such identifiers are always invalid.
type WeightedChecksumRule struct {
	Length  int
	Weights []int
	Modulus int
}

func (r WeightedChecksumRule) Check(normalized string) bool {
	if r.Modulus <= 0 || len(r.Weights) != r.Length-1 || len(normalized) != r.Length {
		return false
	}
	sum := 0
	for i := 0; i < len(normalized); i++ {
		if !isASCIIDigit(normalized[i]) {
			return false
		}
		if i < len(r.Weights) {
			sum += int(normalized[i]-'0') * r.Weights[i]
		}
	}
	check := int(normalized[r.Length-1] - '0')
	return sum%r.Modulus == check
}

// PolishNIPRule is the 10-digit NIP checksum.
var PolishNIPRule = WeightedChecksumRule{
	Length:  10,
	Weights: []int{6, 5, 7, 2, 3, 4, 5, 6, 7},
	Modulus: 11,
}

// DefaultRule applies to countries without a specific rule.
var DefaultRule = MinLengthRule{Min: 3}
