package persistence

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

func TestStore(t *testing.T) {
	store := NewStore(t.TempDir())
	if names := store.List(); len(names) != 0 {
		t.Fatalf("new store lists %v", names)
	}

	knn := trainBundle(t, models.KindKNN)
	tree := trainBundle(t, models.KindTree)
	if err := store.Put("zeta", knn); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("alpha.v1", tree); err != nil {
		t.Fatal(err)
	}

	if got := store.List(); !reflect.DeepEqual(got, []string{"alpha.v1", "zeta"}) {
		t.Errorf("List() = %v", got)
	}

	got, err := store.Get("zeta")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != knn.ID || got.Metadata.ModelName != knn.Metadata.ModelName {
		t.Errorf("Get returned %s %s", got.ID, got.Metadata.ModelName)
	}

	// replacing keeps one entry per name
	if err := store.Put("zeta", tree); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get("zeta")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != tree.ID {
		t.Error("Put did not replace the bundle")
	}

	if err := store.Delete("zeta"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("zeta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete("zeta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	b := trainBundle(t, models.KindBayes)
	if err := NewStore(dir).Put("bayes", b); err != nil {
		t.Fatal(err)
	}
	got, err := NewStore(dir).Get("bayes")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID {
		t.Error("reopened store returned another bundle")
	}
}

func TestStoreNames(t *testing.T) {
	store := NewStore(t.TempDir())
	b := trainBundle(t, models.KindKNN)
	for _, name := range []string{"", "../escape", "a/b", ".hidden", "has space"} {
		if err := store.Put(name, b); err == nil {
			t.Errorf("name %q accepted", name)
		}
		if _, err := store.Get(name); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) = %v, want a name error", name, err)
		}
	}
}
