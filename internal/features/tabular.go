package features

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// ColumnKind says how a record field becomes features.
type ColumnKind string

const (
	ColumnNumeric     ColumnKind = "numeric"
	ColumnCategorical ColumnKind = "categorical"
)

// Encoding selects the categorical encoding scheme.
type Encoding string

const (
	EncodingOneHot  Encoding = "onehot"
	EncodingOrdinal Encoding = "ordinal"
)

// UnknownPolicy decides what happens to a category outside Categories.
type UnknownPolicy string

const (
	UnknownError UnknownPolicy = "error"
	UnknownZero  UnknownPolicy = "zero"
)

// Column describes one field of a record.
type Column struct {
	Name       string     `yaml:"name"`
	Kind       ColumnKind `yaml:"kind"`
	Categories []string   `yaml:"categories,omitempty"`
	Encoding   Encoding   `yaml:"encoding,omitempty"`
	// Precision is the number of decimal places kept for numeric fields.
	Precision *int32 `yaml:"precision,omitempty"`
}

// TabularConfig lists the columns in feature order.
type TabularConfig struct {
	Columns []Column      `yaml:"columns"`
	Unknown UnknownPolicy `yaml:"unknown,omitempty"`
}

// TabularExtractor encodes financial style records. Numeric fields are parsed
// as decimals so "1200.10" and "1200.1" always give the same feature.
type TabularExtractor struct {
	cfg     TabularConfig
	offsets []int
	dim     int
	catIdx  []map[string]int
}

func NewTabularExtractor(cfg TabularConfig) (*TabularExtractor, error) {
	if len(cfg.Columns) == 0 {
		return nil, errors.New("tabular: at least one column is required")
	}
	if cfg.Unknown == "" {
		cfg.Unknown = UnknownError
	}
	if cfg.Unknown != UnknownError && cfg.Unknown != UnknownZero {
		return nil, errors.Errorf("tabular: unknown policy %q", cfg.Unknown)
	}

	cfg.Columns = append([]Column(nil), cfg.Columns...)
	te := &TabularExtractor{
		cfg:     cfg,
		offsets: make([]int, len(cfg.Columns)),
		catIdx:  make([]map[string]int, len(cfg.Columns)),
	}
	seen := make(map[string]bool)
	for i := range cfg.Columns {
		col := &te.cfg.Columns[i]
		if seen[col.Name] {
			return nil, errors.Errorf("tabular: duplicate column %q", col.Name)
		}
		seen[col.Name] = true
		te.offsets[i] = te.dim

		switch col.Kind {
		case ColumnNumeric, "":
			col.Kind = ColumnNumeric
			te.dim++
		case ColumnCategorical:
			if len(col.Categories) == 0 {
				return nil, errors.Errorf("tabular: column %q has no categories", col.Name)
			}
			if col.Encoding == "" {
				col.Encoding = EncodingOneHot
			}
			idx := make(map[string]int, len(col.Categories))
			for k, c := range col.Categories {
				idx[c] = k
			}
			te.catIdx[i] = idx
			switch col.Encoding {
			case EncodingOneHot:
				te.dim += len(col.Categories)
			case EncodingOrdinal:
				te.dim++
			default:
				return nil, errors.Errorf("tabular: column %q has unknown encoding %q", col.Name, col.Encoding)
			}
		default:
			return nil, errors.Errorf("tabular: column %q has unknown kind %q", col.Name, col.Kind)
		}
	}
	return te, nil
}

func (te *TabularExtractor) Name() string { return "tabular" }

func (te *TabularExtractor) Dim() int { return te.dim }

func (te *TabularExtractor) Extract(s data.Sample) (Vector, error) {
	rec, ok := s.Raw.(data.Record)
	if !ok {
		return nil, mlerr.InvalidSample(s.ID, "expected record, got %T", s.Raw)
	}
	if len(rec.Fields) == 0 {
		return nil, mlerr.InvalidSample(s.ID, "empty record")
	}

	out := make(Vector, te.dim)
	for i, col := range te.cfg.Columns {
		raw, ok := rec.Get(col.Name)
		if !ok || raw == "" {
			return nil, mlerr.InvalidSample(s.ID, "missing field %q", col.Name)
		}
		off := te.offsets[i]

		if col.Kind == ColumnNumeric {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, mlerr.InvalidSample(s.ID, "field %q: %q is not numeric", col.Name, raw)
			}
			if col.Precision != nil {
				d = d.Round(*col.Precision)
			}
			out[off] = d.InexactFloat64()
			continue
		}

		k, known := te.catIdx[i][raw]
		if !known {
			if te.cfg.Unknown == UnknownError {
				return nil, mlerr.InvalidSample(s.ID, "field %q: unknown category %q", col.Name, raw)
			}
			if col.Encoding == EncodingOrdinal {
				out[off] = -1
			}
			continue
		}
		if col.Encoding == EncodingOrdinal {
			out[off] = float64(k)
		} else {
			out[off+k] = 1
		}
	}
	return out, nil
}
