package features

import (
	"testing"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
)

type countingExtractor struct {
	inner Extractor
	calls int
}

func (c *countingExtractor) Extract(s data.Sample) (Vector, error) {
	c.calls++
	return c.inner.Extract(s)
}

func (c *countingExtractor) Dim() int { return c.inner.Dim() }

func (c *countingExtractor) Name() string { return c.inner.Name() }

func TestCachedExtractor(t *testing.T) {
	img, _ := NewImageExtractor(ImageConfig{Width: 2, Height: 2})
	counter := &countingExtractor{inner: img}
	cached, err := NewCachedExtractor(counter, 8)
	if err != nil {
		t.Fatal(err)
	}

	first, err := cached.Extract(digit())
	if err != nil {
		t.Fatal(err)
	}
	first[0] = 42 // callers own the returned vector

	second, err := cached.Extract(digit())
	if err != nil {
		t.Fatal(err)
	}
	if counter.calls != 1 {
		t.Errorf("inner extractor called %d times, want 1", counter.calls)
	}
	if second[0] != 1 {
		t.Errorf("cached vector was modified through a returned copy: %v", second)
	}

	changed := data.NewSample("d", data.Image{Width: 4, Height: 4, Pixels: make([]float64, 16)}, "")
	v, err := cached.Extract(changed)
	if err != nil {
		t.Fatal(err)
	}
	if counter.calls != 2 || v[0] != 0 {
		t.Errorf("same id with new pixels served from cache: calls=%d v=%v", counter.calls, v)
	}
	if cached.Unwrap() != Extractor(counter) || cached.Dim() != 4 {
		t.Error("cache does not expose the wrapped extractor")
	}
}

func TestNewFromSpec(t *testing.T) {
	ex, err := New(Spec{Kind: KindImage, Image: &ImageConfig{Width: 3, Height: 2}, Cache: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ex.(*CachedExtractor); !ok {
		t.Errorf("New returned %T, want *CachedExtractor", ex)
	}
	if ex.Dim() != 6 || ex.Name() != "image" {
		t.Errorf("Dim() = %d, Name() = %q", ex.Dim(), ex.Name())
	}

	for _, spec := range []Spec{{}, {Kind: KindAudio}, {Kind: KindTabular}, {Kind: KindImage}} {
		if _, err := New(spec); err == nil {
			t.Errorf("spec %+v accepted", spec)
		}
	}
}

func TestExtractAllIsAllOrNothing(t *testing.T) {
	ex, _ := NewImageExtractor(ImageConfig{Width: 2, Height: 2})
	samples := []data.Sample{digit(), data.NewSample("bad", data.Image{}, ""), digit()}
	out, err := ExtractAll(ex, samples)
	if err == nil {
		t.Fatal("invalid sample accepted")
	}
	if out != nil {
		t.Errorf("partial output returned: %v", out)
	}
}
