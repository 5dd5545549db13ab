package data

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrUnknownLabel is returned when a label is outside the configured set.
var ErrUnknownLabel = errors.New("unknown label")

// LabelSet is the closed, ordered set of valid classes. Class indices are
// positions in Labels. Blank, when set, is the sequence filler symbol and is
// itself a member of Labels.
type LabelSet struct {
	Labels    []string
	Blank     string
	Separator string

	index map[string]int
}

// NewLabelSet builds a set in the given order. Duplicates are rejected.
func NewLabelSet(labels ...string) (LabelSet, error) {
	if len(labels) == 0 {
		return LabelSet{}, errors.New("label set must not be empty")
	}
	ls := LabelSet{Labels: append([]string(nil), labels...)}
	ls.index = make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := ls.index[l]; dup {
			return LabelSet{}, errors.Errorf("duplicate label %q", l)
		}
		ls.index[l] = i
	}
	return ls, nil
}

// NewSequenceLabelSet builds a symbol set for sequence tasks. The blank symbol
// is appended when it is not already listed.
func NewSequenceLabelSet(blank, separator string, symbols ...string) (LabelSet, error) {
	all := append([]string(nil), symbols...)
	found := false
	for _, s := range symbols {
		if s == blank {
			found = true
			break
		}
	}
	if !found {
		all = append(all, blank)
	}
	ls, err := NewLabelSet(all...)
	if err != nil {
		return LabelSet{}, err
	}
	ls.Blank = blank
	ls.Separator = separator
	return ls, nil
}

func (ls *LabelSet) lookup() map[string]int {
	if ls.index == nil {
		ls.index = make(map[string]int, len(ls.Labels))
		for i, l := range ls.Labels {
			ls.index[l] = i
		}
	}
	return ls.index
}

// Len returns the number of classes.
func (ls LabelSet) Len() int {
	return len(ls.Labels)
}

// Index returns the class index of label.
func (ls LabelSet) Index(label string) (int, error) {
	if i, ok := ls.lookup()[label]; ok {
		return i, nil
	}
	return 0, errors.Wrapf(ErrUnknownLabel, "%q", label)
}

// Contains reports whether label belongs to the set.
func (ls LabelSet) Contains(label string) bool {
	_, ok := ls.lookup()[label]
	return ok
}

// Label returns the label of class index i.
func (ls LabelSet) Label(i int) (string, error) {
	if i < 0 || i >= len(ls.Labels) {
		return "", errors.Wrapf(ErrUnknownLabel, "index %d", i)
	}
	return ls.Labels[i], nil
}

// BlankIndex returns the class index of the blank symbol, or -1.
func (ls LabelSet) BlankIndex() int {
	if ls.Blank == "" {
		return -1
	}
	if i, ok := ls.lookup()[ls.Blank]; ok {
		return i
	}
	return -1
}

// Encode maps labels to class indices.
func (ls LabelSet) Encode(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, err := ls.Index(l)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode maps class indices back to labels.
func (ls LabelSet) Decode(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		l, err := ls.Label(idx)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

// EncodeSequence splits s into symbols and maps them to class indices. With an
// empty Separator every rune is a symbol. The blank symbol may not appear in s.
func (ls LabelSet) EncodeSequence(s string) ([]int, error) {
	var symbols []string
	if ls.Separator == "" {
		symbols = make([]string, 0, utf8.RuneCountInString(s))
		for _, r := range s {
			symbols = append(symbols, string(r))
		}
	} else if s != "" {
		symbols = strings.Split(s, ls.Separator)
	}
	out, err := ls.Encode(symbols)
	if err != nil {
		return nil, err
	}
	blank := ls.BlankIndex()
	for _, idx := range out {
		if idx == blank {
			return nil, errors.Errorf("sequence %q contains the blank symbol", s)
		}
	}
	return out, nil
}

// DecodeSequence joins symbols for indices with Separator.
func (ls LabelSet) DecodeSequence(indices []int) (string, error) {
	symbols, err := ls.Decode(indices)
	if err != nil {
		return "", err
	}
	return strings.Join(symbols, ls.Separator), nil
}
