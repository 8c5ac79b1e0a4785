package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
)

// Formats accepted by Output
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// JSON writes data as indented JSON to stdout
func JSON(data interface{}) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as indented JSON to the given writer
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// JSONLinesTo writes one compact JSON document per line. Slices are split
// into their elements; anything else is written as a single line.
func JSONLinesTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)

	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return encoder.Encode(data)
	}
	for i := 0; i < v.Len(); i++ {
		if err := encoder.Encode(v.Index(i).Interface()); err != nil {
			return fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}
	return nil
}

// Output writes data to stdout in the named format
func Output(format string, data interface{}) error {
	switch format {
	case FormatJSON:
		return JSON(data)
	case FormatJSONL:
		return JSONLinesTo(os.Stdout, data)
	case FormatTable, "":
		return Table(data)
	default:
		return fmt.Errorf("unknown output format: %s (use table, json or jsonl)", format)
	}
}
