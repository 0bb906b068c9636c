package blocks

import (
	"crypto/md5"
	"fmt"
	"os"
	"strings"

	mat "github.com/nathanhack/sparsemat"
)

var symbolBits = map[rune]string{
	'A': "00",
	'T': "01",
	'C': "10",
	'G': "11",
}

var bitsSymbol = map[string]byte{
	"00": 'A',
	"01": 'T',
	"10": 'C',
	"11": 'G',
}

//Encode maps every symbol to its two bit representation.
// Any symbol outside of {A,T,C,G} is an ErrMalformedInput.
func Encode(symbols string) (string, error) {
	buf := strings.Builder{}
	buf.Grow(2 * len(symbols))
	for i, s := range symbols {
		bits, has := symbolBits[s]
		if !has {
			return "", fmt.Errorf("%w: invalid symbol %q at offset %v", ErrMalformedInput, s, i)
		}
		buf.WriteString(bits)
	}
	return buf.String(), nil
}

//Decode is the inverse of Encode.
func Decode(bits string) (string, error) {
	if len(bits)%2 != 0 {
		return "", fmt.Errorf("%w: odd number of bits %v", ErrMalformedInput, len(bits))
	}
	buf := strings.Builder{}
	buf.Grow(len(bits) / 2)
	for i := 0; i < len(bits); i += 2 {
		s, has := bitsSymbol[bits[i:i+2]]
		if !has {
			return "", fmt.Errorf("%w: invalid bits %q at offset %v", ErrMalformedInput, bits[i:i+2], i)
		}
		buf.WriteByte(s)
	}
	return buf.String(), nil
}

//Payload is the transmission payload, one binary string per block.
type Payload []string

//NewPayload encodes the data of every record.
func NewPayload(records []Record) (Payload, error) {
	payload := make(Payload, len(records))
	for i, r := range records {
		bits, err := Encode(r.Data)
		if err != nil {
			return nil, fmt.Errorf("block %v (position %v): %w", i, r.Position, err)
		}
		payload[i] = bits
	}
	return payload, nil
}

//Bytes returns the payload as it is written to the transmission input file.
func (p Payload) Bytes() []byte {
	buf := strings.Builder{}
	for _, line := range p {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

//WriteFile writes the payload to path, one line per block, replacing any existing file.
func (p Payload) WriteFile(path string) error {
	err := os.WriteFile(path, p.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("error while writing payload to %v: %w", path, err)
	}
	return nil
}

func (p Payload) Md5Sum() string {
	return fmt.Sprintf("%x", md5.Sum(p.Bytes()))
}

//Bits is the total number of bits in the payload.
func (p Payload) Bits() (count int) {
	for _, line := range p {
		count += len(line)
	}
	return
}

//Vectors converts every line into a bit vector.
func (p Payload) Vectors() []mat.SparseVector {
	result := make([]mat.SparseVector, len(p))
	for i, line := range p {
		vec, err := BitVector(line)
		if err != nil {
			//payload lines are produced by Encode
			panic(err)
		}
		result[i] = vec
	}
	return result
}

//BitVector parses a line of '0' and '1' characters.
func BitVector(line string) (mat.SparseVector, error) {
	vec := mat.CSRVec(len(line))
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '0':
		case '1':
			vec.Set(i, 1)
		default:
			return nil, fmt.Errorf("%w: invalid bit %q at offset %v", ErrMalformedInput, line[i], i)
		}
	}
	return vec, nil
}
