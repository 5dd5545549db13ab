package features

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
)

// CachedExtractor memoises another extractor. Entries are keyed by sample id
// and a fingerprint of the raw input, so a reused id with new content misses.
type CachedExtractor struct {
	inner Extractor
	cache *lru.Cache
}

func NewCachedExtractor(inner Extractor, size int) (*CachedExtractor, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create extractor cache")
	}
	return &CachedExtractor{inner: inner, cache: c}, nil
}

func (c *CachedExtractor) Name() string { return c.inner.Name() }

func (c *CachedExtractor) Dim() int { return c.inner.Dim() }

// Unwrap returns the wrapped extractor.
func (c *CachedExtractor) Unwrap() Extractor { return c.inner }

func (c *CachedExtractor) Extract(s data.Sample) (Vector, error) {
	key := cacheKey{id: s.ID, sum: fingerprint(s.Raw)}
	if v, ok := c.cache.Get(key); ok {
		return v.(Vector).Clone(), nil
	}
	v, err := c.inner.Extract(s)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, v.Clone())
	return v, nil
}

type cacheKey struct {
	id  string
	sum uint64
}

func fingerprint(raw data.Raw) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	putInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}

	switch r := raw.(type) {
	case data.Audio:
		putInt(r.SampleRate)
		putInt(r.Channels)
		for _, v := range r.PCM {
			putFloat(v)
		}
	case data.Record:
		for _, f := range r.Fields {
			h.Write([]byte(f.Name))
			h.Write([]byte{0})
			h.Write([]byte(f.Value))
			h.Write([]byte{0})
		}
	case data.Image:
		putInt(r.Width)
		putInt(r.Height)
		for _, v := range r.Pixels {
			putFloat(v)
		}
	}
	return h.Sum64()
}
