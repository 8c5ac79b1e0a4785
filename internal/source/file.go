package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vijay-prabhu/jobscout/internal/job"
)

// LoadFile reads raw jobs from a JSON file, or stdin when path is "-".
// The file holds either an array of jobs or a single job object.
func LoadFile(path string) ([]job.RawJob, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a JSON array of raw jobs or a single raw job object
func Decode(data []byte) ([]job.RawJob, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var one job.RawJob
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("failed to parse job: %w", err)
		}
		return []job.RawJob{one}, nil
	}

	var many []job.RawJob
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("failed to parse jobs: %w", err)
	}
	return many, nil
}
