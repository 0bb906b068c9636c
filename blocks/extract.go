package blocks

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrInsufficientBlocks = errors.New("insufficient blocks")
)

//Record is a single <Block> of the source document.
type Record struct {
	Position string
	Data     string
}

//ExtractFile opens the file at path and returns the first n records found in it.
func ExtractFile(path string, n int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Extract(f, n)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return records, nil
}

//Extract returns the first n <Block> records, in document order, of the first
// <Blocks> element in r. Reading stops as soon as n records are found.
func Extract(r io.Reader, n int) ([]Record, error) {
	if n < 1 {
		return nil, fmt.Errorf("at least one block must be requested but found %v", n)
	}
	decoder := xml.NewDecoder(r)
	records := make([]Record, 0, n)
	depth := 0 // depth inside <Blocks>, 0 means not inside

	for len(records) < n {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case depth == 0 && t.Name.Local == "Blocks":
				depth = 1
			case depth > 0 && t.Name.Local == "Block":
				record, err := decodeBlock(decoder, len(records))
				if err != nil {
					return nil, err
				}
				records = append(records, record)
			case depth > 0:
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if depth == 0 {
					//only the first <Blocks> is considered
					return finish(records, n)
				}
			}
		}
	}
	return finish(records, n)
}

func finish(records []Record, n int) ([]Record, error) {
	if len(records) < n {
		return nil, fmt.Errorf("%w: %v blocks required but found %v", ErrInsufficientBlocks, n, len(records))
	}
	return records, nil
}

//decodeBlock reads the rest of a <Block>. Position is taken from the first
// <Position> inside the first <Header>, and Data from the first <Data>. Both may
// sit at any depth below the block.
func decodeBlock(decoder *xml.Decoder, index int) (Record, error) {
	var position, data *string
	depth := 1  // depth inside <Block>
	header := 0 // depth of the first <Header>, 0 means not inside it
	seenHeader := false

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return Record{}, fmt.Errorf("%w: block %v: %v", ErrMalformedInput, index, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "Position" && header > 0 && position == nil:
				s, err := text(decoder, t, index)
				if err != nil {
					return Record{}, err
				}
				position = &s
				continue
			case t.Name.Local == "Data" && data == nil:
				s, err := text(decoder, t, index)
				if err != nil {
					return Record{}, err
				}
				data = &s
				continue
			}
			depth++
			if t.Name.Local == "Header" && !seenHeader {
				seenHeader = true
				header = depth
			}
		case xml.EndElement:
			if depth == header {
				header = 0
			}
			depth--
		}
	}

	if position == nil {
		return Record{}, fmt.Errorf("%w: block %v has no Header/Position", ErrMalformedInput, index)
	}
	if data == nil {
		return Record{}, fmt.Errorf("%w: block %v has no Data", ErrMalformedInput, index)
	}
	trimmed := strings.TrimSpace(*data)
	if trimmed == "" {
		return Record{}, fmt.Errorf("%w: block %v has empty Data", ErrMalformedInput, index)
	}

	return Record{
		Position: strings.TrimSpace(*position),
		Data:     trimmed,
	}, nil
}

//text returns the character data of the element that starts with start.
func text(decoder *xml.Decoder, start xml.StartElement, index int) (string, error) {
	var s string
	if err := decoder.DecodeElement(&s, &start); err != nil {
		return "", fmt.Errorf("%w: block %v: %v", ErrMalformedInput, index, err)
	}
	return s, nil
}
