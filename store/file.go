package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

// FileRepository stores each template as <id>.json in a directory.
type FileRepository struct {
	dir string
	opt options
	mu  sync.RWMutex
}

// NewFileRepository returns a repository rooted at dir, creating it if
// needed.
func NewFileRepository(dir string, opts ...Option) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, layoutpdf.Wrap("store.NewFileRepository", err)
	}
	return &FileRepository{dir: dir, opt: newOptions(opts)}, nil
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// List returns every readable template ordered by name. Files that fail to
// parse are logged and skipped.
func (r *FileRepository) List(ctx context.Context) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, layoutpdf.Wrap("store.List", err)
	}
	out := []Summary{}
	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		doc, err := r.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			r.opt.logger.Warn("skipping unreadable template", "file", name, "err", err)
			continue
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		return s[i].ID < s[j].ID
	})
}

func (r *FileRepository) Get(ctx context.Context, id string) (*design.Document, error) {
	const op = "store.Get"
	if err := validID(op, id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, err := r.read(id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(op, id)
	}
	if err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	return doc, nil
}

func (r *FileRepository) Create(ctx context.Context, doc *design.Document) (*design.Document, error) {
	const op = "store.Create"
	d, err := prepareNew(op, doc, r.opt.now())
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path(d.ID)); err == nil {
		return nil, layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "template %q already exists", d.ID)
	}
	if err := r.write(d); err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	r.opt.logger.Debug("template created", "id", d.ID, "name", d.Name)
	return d.Clone(), nil
}

func (r *FileRepository) Update(ctx context.Context, id string, p Patch) (*design.Document, error) {
	const op = "store.Update"
	if err := validID(op, id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, err := r.read(id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(op, id)
	}
	if err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	d, err := patched(op, cur, p, r.opt.now())
	if err != nil {
		return nil, err
	}
	if err := r.write(d); err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	return d.Clone(), nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	const op = "store.Delete"
	if err := validID(op, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.Remove(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(op, id)
	}
	return layoutpdf.Wrap(op, err)
}

func (r *FileRepository) Duplicate(ctx context.Context, id string) (*design.Document, error) {
	const op = "store.Duplicate"
	if err := validID(op, id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	src, err := r.read(id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(op, id)
	}
	if err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	d := copyOf(src, r.opt.now())
	if err := r.write(d); err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	return d.Clone(), nil
}

func (r *FileRepository) read(id string) (*design.Document, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		return nil, err
	}
	return design.Parse(data)
}

// write replaces the template file atomically.
func (r *FileRepository) write(d *design.Document) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path(d.ID))
}

var _ Repository = (*FileRepository)(nil)
