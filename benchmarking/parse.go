package benchmarking

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var ErrProtocolMismatch = errors.New("decoder output does not match the expected protocol")

var diagnosticPattern = regexp.MustCompile(`^\s*Decoded (\d+) blocks, (\d+) valid`)

//ParseDiagnostic extracts the counts from the decoder's "Decoded <total> blocks, <valid> valid..." line.
func ParseDiagnostic(text string) (decoded, valid int, err error) {
	match := diagnosticPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrProtocolMismatch, text)
	}

	decoded, err = strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: decoded count: %v", ErrProtocolMismatch, err)
	}
	valid, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: valid count: %v", ErrProtocolMismatch, err)
	}

	if decoded == 0 {
		return 0, 0, fmt.Errorf("%w: zero blocks decoded", ErrProtocolMismatch)
	}
	if valid > decoded {
		return 0, 0, fmt.Errorf("%w: %v valid of %v decoded", ErrProtocolMismatch, valid, decoded)
	}
	return decoded, valid, nil
}

//SuccessPercentage is valid/decoded*100.
func SuccessPercentage(decoded, valid int) float64 {
	return float64(valid) / float64(decoded) * 100
}
