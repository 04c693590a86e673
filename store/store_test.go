package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleDoc(t *testing.T, name string) *design.Document {
	t.Helper()
	doc := design.NewDocument(name, design.DefaultPage())
	txt, err := design.NewElement(design.TypeText)
	require.NoError(t, err)
	txt.Text().Content = "Hello {{name}}"
	box, err := design.NewElement(design.TypeShape)
	require.NoError(t, err)
	group, err := design.NewElement(design.TypeContainer)
	require.NoError(t, err)
	group.Container().Children = []string{txt.ID, box.ID}
	doc.Add(txt)
	doc.Add(box)
	doc.Add(group)
	doc.Variables = []design.TemplateVariable{{Name: "name", Type: design.VarText}}
	return doc
}

type repoFactory func(t *testing.T) Repository

func factories() map[string]repoFactory {
	return map[string]repoFactory{
		"file": func(t *testing.T) Repository {
			r, err := NewFileRepository(t.TempDir(), WithClock(fixedClock))
			require.NoError(t, err)
			return r
		},
		"sqlite": func(t *testing.T) Repository {
			db, err := OpenSQLite(":memory:")
			require.NoError(t, err)
			r, err := NewGormRepository(db, WithClock(fixedClock))
			require.NoError(t, err)
			return r
		},
	}
}

func TestRepositories(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			t.Run("create and get", func(t *testing.T) { testCreateGet(t, newRepo(t)) })
			t.Run("list", func(t *testing.T) { testList(t, newRepo(t)) })
			t.Run("update", func(t *testing.T) { testUpdate(t, newRepo(t)) })
			t.Run("delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
			t.Run("duplicate", func(t *testing.T) { testDuplicate(t, newRepo(t)) })
			t.Run("not found", func(t *testing.T) { testNotFound(t, newRepo(t)) })
		})
	}
}

func testCreateGet(t *testing.T, r Repository) {
	ctx := context.Background()
	doc := sampleDoc(t, "Certificate")
	created, err := r.Create(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt)

	got, err := r.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Certificate", got.Name)
	require.Len(t, got.Elements, 3)
	assert.Equal(t, "Hello {{name}}", got.Elements[0].Text().Content)
	assert.Equal(t, doc.Variables, got.Variables)
	assert.Equal(t, fixedNow, got.UpdatedAt)

	got.Name = "mutated"
	again, err := r.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Certificate", again.Name)

	_, err = r.Create(ctx, doc)
	require.Error(t, err, "ids are unique")

	bad := sampleDoc(t, "bad")
	bad.Page.Width = -1
	_, err = r.Create(ctx, bad)
	require.ErrorIs(t, err, layoutpdf.ErrInvalidParam)
}

func testList(t *testing.T, r Repository) {
	ctx := context.Background()
	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, n := range []string{"Card", "Badge", "Diploma"} {
		_, err := r.Create(ctx, sampleDoc(t, n))
		require.NoError(t, err)
	}
	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Badge", list[0].Name)
	assert.Equal(t, "Card", list[1].Name)
	assert.Equal(t, "Diploma", list[2].Name)
	assert.Equal(t, 3, list[0].Elements)
	assert.Equal(t, []string{"name"}, list[0].Variables)
}

func testUpdate(t *testing.T, r Repository) {
	ctx := context.Background()
	doc, err := r.Create(ctx, sampleDoc(t, "Card"))
	require.NoError(t, err)

	name := "Card v2"
	landscape := doc.Page
	landscape.Orientation = design.Landscape
	got, err := r.Update(ctx, doc.ID, Patch{Name: &name, Page: &landscape})
	require.NoError(t, err)
	assert.Equal(t, "Card v2", got.Name)
	assert.Len(t, got.Elements, 3, "unset fields are kept")

	stored, err := r.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, design.Landscape, stored.Page.Orientation)

	bad := doc.Page
	bad.Margins.Left = 500
	_, err = r.Update(ctx, doc.ID, Patch{Page: &bad})
	require.ErrorIs(t, err, layoutpdf.ErrInvalidParam)
	stored, err = r.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.Page.Margins.Left, "rejected patch is not stored")
}

func testDelete(t *testing.T, r Repository) {
	ctx := context.Background()
	doc, err := r.Create(ctx, sampleDoc(t, "Card"))
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, doc.ID))
	_, err = r.Get(ctx, doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, doc.ID), ErrNotFound)
}

func testDuplicate(t *testing.T, r Repository) {
	ctx := context.Background()
	doc, err := r.Create(ctx, sampleDoc(t, "Card"))
	require.NoError(t, err)

	cp, err := r.Duplicate(ctx, doc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, doc.ID, cp.ID)
	assert.Equal(t, "Card (copy)", cp.Name)
	require.Len(t, cp.Elements, 3)
	for i := range cp.Elements {
		assert.NotEqual(t, doc.Elements[i].ID, cp.Elements[i].ID)
	}
	children := cp.Elements[2].Container().Children
	assert.Equal(t, []string{cp.Elements[0].ID, cp.Elements[1].ID}, children)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testNotFound(t *testing.T, r Repository) {
	ctx := context.Background()
	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Update(ctx, "missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Duplicate(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	var lerr *layoutpdf.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "store.Duplicate", lerr.Op)
}

func TestFileRepositoryRejectsPathIDs(t *testing.T) {
	r, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)
	_, err = r.Get(context.Background(), "../etc/passwd")
	require.ErrorIs(t, err, layoutpdf.ErrInvalidParam)

	doc := sampleDoc(t, "x")
	doc.ID = "a/b"
	_, err = r.Create(context.Background(), doc)
	require.ErrorIs(t, err, layoutpdf.ErrInvalidParam)
}

func TestFileRepositorySkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFileRepository(dir)
	require.NoError(t, err)
	_, err = r.Create(context.Background(), sampleDoc(t, "ok"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok", list[0].Name)
}

func TestPatchApplyCopies(t *testing.T) {
	doc := sampleDoc(t, "x")
	elems := []*design.Element{doc.Elements[0]}
	Patch{Elements: elems}.Apply(doc)
	require.Len(t, doc.Elements, 1)
	elems[0].Name = "changed"
	assert.NotEqual(t, "changed", doc.Elements[0].Name)
}
