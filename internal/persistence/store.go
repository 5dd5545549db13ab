package persistence

import (
	"bytes"
	"regexp"
	"sort"

	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for names absent from a Store.
var ErrNotFound = errors.New("bundle not found")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store keeps named bundles in a directory.
type Store struct {
	dv *diskv.Diskv
}

func NewStore(basePath string) *Store {
	return &Store{dv: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 16 * 1024 * 1024,
		Compression:  diskv.NewGzipCompression(),
	})}
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return errors.Errorf("invalid bundle name %q", name)
	}
	return nil
}

// Put stores b under name, replacing any earlier bundle.
func (s *Store) Put(name string, b *Bundle) error {
	if err := checkName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		return err
	}
	return errors.Wrapf(s.dv.Write(name, buf.Bytes()), "write bundle %s", name)
}

func (s *Store) Get(name string) (*Bundle, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if !s.dv.Has(name) {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	raw, err := s.dv.Read(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read bundle %s", name)
	}
	return Load(bytes.NewReader(raw))
}

// List returns the stored names in sorted order.
func (s *Store) List() []string {
	var names []string
	for name := range s.dv.Keys(nil) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if !s.dv.Has(name) {
		return errors.Wrap(ErrNotFound, name)
	}
	return s.dv.Erase(name)
}
