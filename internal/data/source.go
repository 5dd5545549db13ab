package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// Source supplies labeled samples. Each call to Each is a fresh pass that
// yields the same samples in the same order.
type Source interface {
	Each(fn func(Sample) error) error
}

// Collect reads a full pass of src into memory.
func Collect(src Source) ([]Sample, error) {
	var out []Sample
	err := src.Each(func(s Sample) error {
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MemorySource serves a fixed slice of samples.
type MemorySource struct {
	samples []Sample
}

func NewMemorySource(samples ...Sample) *MemorySource {
	return &MemorySource{samples: append([]Sample(nil), samples...)}
}

func (m *MemorySource) Each(fn func(Sample) error) error {
	for _, s := range m.samples {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemorySource) Len() int {
	return len(m.samples)
}

// CSVSource streams Record samples from a CSV file with a header row.
type CSVSource struct {
	filename    string
	labelColumn string
	idColumn    string
}

// NoLabel as a label column reads every column as a field, for unlabeled data.
const NoLabel = "-"

// NewCSVSource reads filename. labelColumn names the label field; when empty
// the last column is used, NoLabel disables labels. idColumn, when set, names the sample id field,
// otherwise ids are "row-N".
func NewCSVSource(filename, labelColumn, idColumn string) *CSVSource {
	return &CSVSource{filename: filename, labelColumn: labelColumn, idColumn: idColumn}
}

func (cs *CSVSource) Each(fn func(Sample) error) error {
	file, err := os.Open(cs.filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return ReadCSV(file, cs.labelColumn, cs.idColumn, fn)
}

// ReadCSV parses CSV records from r and calls fn for each row.
func ReadCSV(r io.Reader, labelColumn, idColumn string, fn func(Sample) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return errors.Wrap(err, "failed to read headers")
	}

	labelCol := len(headers) - 1
	if labelColumn == NoLabel {
		labelCol = -1
	}
	idCol := -1
	for i, h := range headers {
		h = strings.TrimSpace(h)
		headers[i] = h
		if labelColumn != "" && labelColumn != NoLabel && h == labelColumn {
			labelCol = i
		}
		if idColumn != "" && h == idColumn {
			idCol = i
		}
	}
	if labelColumn != "" && labelColumn != NoLabel && headers[labelCol] != labelColumn {
		return errors.Errorf("label column %q not found", labelColumn)
	}
	if idColumn != "" && idCol < 0 {
		return errors.Errorf("id column %q not found", idColumn)
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "error reading record %d", row)
		}
		row++

		id := fmt.Sprintf("row-%d", row)
		if idCol >= 0 {
			id = record[idCol]
		}

		fields := make([]Field, 0, len(record))
		label := ""
		for j, val := range record {
			val = strings.TrimSpace(val)
			switch j {
			case labelCol:
				label = val
			case idCol:
			default:
				if val == "" {
					return mlerr.InvalidSample(id, "empty field %q", headers[j])
				}
				fields = append(fields, Field{Name: headers[j], Value: val})
			}
		}

		if err := fn(Sample{ID: id, Raw: Record{Fields: fields}, Label: label}); err != nil {
			return err
		}
	}
}
