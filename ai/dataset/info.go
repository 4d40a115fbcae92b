// Package dataset describes a project's CSV dataset for prompt injection.
// The agent never sees the full file; it sees column names with a few example
// values and writes code against them.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const exampleRows = 5

// Info summarizes a CSV dataset.
type Info struct {
	Path    string
	Columns []string
	// Examples holds up to exampleRows values per column, by column order.
	Examples [][]string
}

// Load reads the CSV header and the first few rows.
func Load(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset header %s", path)
	}

	info := &Info{
		Path:     path,
		Columns:  header,
		Examples: make([][]string, len(header)),
	}

	for row := 0; row < exampleRows; row++ {
		record, err := reader.Read()
		if err != nil {
			// Short files are fine; the examples just end early.
			break
		}
		for i := 0; i < len(header) && i < len(record); i++ {
			info.Examples[i] = append(info.Examples[i], record[i])
		}
	}

	return info, nil
}

// Attrs renders the dataset description injected into the agent system
// prompt: one line per column with its example values.
func (i *Info) Attrs() string {
	var sb strings.Builder
	for idx, col := range i.Columns {
		fmt.Fprintf(&sb, "- %s: %s\n", col, strings.Join(i.Examples[idx], ", "))
	}
	return sb.String()
}
