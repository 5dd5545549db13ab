package features

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

func record(id string, kv ...string) data.Sample {
	var fields []data.Field
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, data.Field{Name: kv[i], Value: kv[i+1]})
	}
	return data.NewSample(id, data.Record{Fields: fields}, "")
}

func creditConfig(unknown UnknownPolicy) TabularConfig {
	two := int32(2)
	return TabularConfig{
		Unknown: unknown,
		Columns: []Column{
			{Name: "income", Kind: ColumnNumeric, Precision: &two},
			{Name: "history", Kind: ColumnCategorical, Categories: []string{"poor", "fair", "good"}},
			{Name: "term", Kind: ColumnCategorical, Categories: []string{"short", "long"}, Encoding: EncodingOrdinal},
		},
	}
}

func TestTabularEncoding(t *testing.T) {
	ex, err := NewTabularExtractor(creditConfig(""))
	if err != nil {
		t.Fatal(err)
	}
	if ex.Dim() != 1+3+1 {
		t.Fatalf("Dim() = %d, want 5", ex.Dim())
	}

	v, err := ex.Extract(record("a", "term", "long", "income", "1200.456", "history", "fair"))
	if err != nil {
		t.Fatal(err)
	}
	want := Vector{1200.46, 0, 1, 0, 1}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Extract = %v, want %v", v, want)
		}
	}
}

func TestTabularDecimalStable(t *testing.T) {
	ex, _ := NewTabularExtractor(creditConfig(""))
	a, _ := ex.Extract(record("a", "income", "1200.10", "history", "good", "term", "short"))
	b, _ := ex.Extract(record("b", "income", "1200.1", "history", "good", "term", "short"))
	if a[0] != b[0] {
		t.Errorf("1200.10 and 1200.1 differ: %v vs %v", a[0], b[0])
	}
}

func TestTabularUnknownCategory(t *testing.T) {
	strict, _ := NewTabularExtractor(creditConfig(UnknownError))
	s := record("x", "income", "10", "history", "excellent", "term", "medium")
	if _, err := strict.Extract(s); !errors.Is(err, mlerr.ErrInvalidSample) {
		t.Errorf("strict error = %v, want ErrInvalidSample", err)
	}

	lenient, _ := NewTabularExtractor(creditConfig(UnknownZero))
	v, err := lenient.Extract(s)
	if err != nil {
		t.Fatal(err)
	}
	want := Vector{10, 0, 0, 0, -1}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Extract = %v, want %v", v, want)
		}
	}
}

func TestTabularInvalid(t *testing.T) {
	ex, _ := NewTabularExtractor(creditConfig(""))
	tests := []struct {
		name   string
		sample data.Sample
	}{
		{"empty record", record("e")},
		{"missing field", record("m", "income", "10", "history", "good")},
		{"not numeric", record("n", "income", "lots", "history", "good", "term", "long")},
		{"wrong kind", data.NewSample("img", data.Image{Width: 1, Height: 1, Pixels: []float64{0}}, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ex.Extract(tt.sample); !errors.Is(err, mlerr.ErrInvalidSample) {
				t.Errorf("error = %v, want ErrInvalidSample", err)
			}
		})
	}
}

func TestTabularConfigErrors(t *testing.T) {
	bad := []TabularConfig{
		{},
		{Columns: []Column{{Name: "a"}, {Name: "a"}}},
		{Columns: []Column{{Name: "c", Kind: ColumnCategorical}}},
		{Columns: []Column{{Name: "c", Kind: "date"}}},
		{Columns: []Column{{Name: "a"}}, Unknown: "ignore"},
	}
	for i, cfg := range bad {
		if _, err := NewTabularExtractor(cfg); err == nil {
			t.Errorf("config %d accepted", i)
		}
	}
}

func TestTabularLeavesConfigUntouched(t *testing.T) {
	cfg := TabularConfig{Columns: []Column{{Name: "a"}}}
	if _, err := NewTabularExtractor(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Columns[0].Kind != "" {
		t.Errorf("caller config mutated: %+v", cfg.Columns[0])
	}
}
