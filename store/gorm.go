package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

// templateModel is the row layout of the layout_templates table. Page,
// elements and variables are stored as JSON text.
type templateModel struct {
	ID          string    `gorm:"type:varchar(64);primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null;index"`
	Description string    `gorm:"type:text"`
	Category    string    `gorm:"type:varchar(100);index"`
	Page        string    `gorm:"type:text;not null"`
	Elements    string    `gorm:"type:text;not null"`
	Variables   string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (templateModel) TableName() string {
	return "layout_templates"
}

func (m *templateModel) toDocument() (*design.Document, error) {
	d := &design.Document{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(m.Page), &d.Page); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(m.Elements), &d.Elements); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(m.Variables), &d.Variables); err != nil {
		return nil, err
	}
	if d.Elements == nil {
		d.Elements = []*design.Element{}
	}
	return d, nil
}

func modelFromDocument(d *design.Document) (*templateModel, error) {
	page, err := json.Marshal(d.Page)
	if err != nil {
		return nil, err
	}
	elems, err := json.Marshal(d.Elements)
	if err != nil {
		return nil, err
	}
	vars := d.Variables
	if vars == nil {
		vars = []design.TemplateVariable{}
	}
	variables, err := json.Marshal(vars)
	if err != nil {
		return nil, err
	}
	return &templateModel{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Page:        string(page),
		Elements:    string(elems),
		Variables:   string(variables),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// GormRepository stores templates in a SQL database through gorm.
type GormRepository struct {
	db  *gorm.DB
	opt options
}

// OpenSQLite opens (or creates) a SQLite database at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, layoutpdf.Wrap("store.OpenSQLite", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, layoutpdf.Wrap("store.OpenSQLite", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewGormRepository migrates the templates table and returns a repository
// over db.
func NewGormRepository(db *gorm.DB, opts ...Option) (*GormRepository, error) {
	if err := db.AutoMigrate(&templateModel{}); err != nil {
		return nil, layoutpdf.Wrap("store.NewGormRepository", err)
	}
	return &GormRepository{db: db, opt: newOptions(opts)}, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Summary, error) {
	var rows []templateModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, layoutpdf.Wrap("store.List", err)
	}
	out := make([]Summary, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toDocument()
		if err != nil {
			r.opt.logger.Warn("skipping unreadable template", "id", rows[i].ID, "err", err)
			continue
		}
		out = append(out, summarize(d))
	}
	return out, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*design.Document, error) {
	return r.find(r.db.WithContext(ctx), "store.Get", id)
}

func (r *GormRepository) find(tx *gorm.DB, op, id string) (*design.Document, error) {
	var m templateModel
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(op, id)
		}
		return nil, layoutpdf.Wrap(op, err)
	}
	d, err := m.toDocument()
	if err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	return d, nil
}

func (r *GormRepository) Create(ctx context.Context, doc *design.Document) (*design.Document, error) {
	const op = "store.Create"
	d, err := prepareNew(op, doc, r.opt.now())
	if err != nil {
		return nil, err
	}
	m, err := modelFromDocument(d)
	if err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	r.opt.logger.Debug("template created", "id", d.ID, "name", d.Name)
	return d, nil
}

func (r *GormRepository) Update(ctx context.Context, id string, p Patch) (*design.Document, error) {
	const op = "store.Update"
	var out *design.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := r.find(tx, op, id)
		if err != nil {
			return err
		}
		d, err := patched(op, cur, p, r.opt.now())
		if err != nil {
			return err
		}
		m, err := modelFromDocument(d)
		if err != nil {
			return layoutpdf.Wrap(op, err)
		}
		if err := tx.Save(m).Error; err != nil {
			return layoutpdf.Wrap(op, err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	const op = "store.Delete"
	res := r.db.WithContext(ctx).Delete(&templateModel{}, "id = ?", id)
	if res.Error != nil {
		return layoutpdf.Wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(op, id)
	}
	return nil
}

func (r *GormRepository) Duplicate(ctx context.Context, id string) (*design.Document, error) {
	const op = "store.Duplicate"
	var out *design.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := r.find(tx, op, id)
		if err != nil {
			return err
		}
		d := copyOf(src, r.opt.now())
		m, err := modelFromDocument(d)
		if err != nil {
			return layoutpdf.Wrap(op, err)
		}
		if err := tx.Create(m).Error; err != nil {
			return layoutpdf.Wrap(op, err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*GormRepository)(nil)
