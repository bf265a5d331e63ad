// Package importer ingests batches of loosely-structured product rows,
// creating categories on demand. Rows are fault-isolated: one bad row is
// recorded and skipped, the rest of the batch proceeds.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
)

// Row is one loosely-typed product record, usually parsed from an uploaded
// file. Both the legacy Spanish column names and English ones are accepted.
type Row = map[string]interface{}

// RowError identifies one failed row and the reason.
type RowError struct {
	Product string `json:"product"`
	Error   string `json:"error"`
}

// Result is the outcome of one import run. Partial success is the expected
// outcome, not an exception.
type Result struct {
	Created           int        `json:"created"`
	CategoriesCreated int        `json:"categoriesCreated"`
	Errors            []RowError `json:"errors"`
}

// Importer materializes product rows into Product and Category records.
type Importer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Import processes rows one by one, each inside its own transaction so a
// failure never rolls back another row's success. Categories are
// deduplicated by name within the run.
func (im *Importer) Import(ctx context.Context, rows []Row) *Result {
	result := &Result{Errors: []RowError{}}
	// In-run category cache: two rows naming the same new category must
	// resolve to one Category row.
	categoryCache := map[string]int64{}

	zap.L().Info("bulk import started", zap.Int("rows", len(rows)))

	for _, row := range rows {
		name := rowName(row)
		var resolved map[string]int64
		var created int
		err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			resolved, created, err = im.importRow(tx, row, categoryCache)
			return err
		})
		if err != nil {
			if name == "" {
				name = "Unknown"
			}
			result.Errors = append(result.Errors, RowError{Product: name, Error: err.Error()})
			zap.L().Warn("bulk import row failed", zap.String("product", name), zap.Error(err))
			continue
		}
		// Cache and counter are only touched once the row committed, so a
		// rolled-back category create never leaks into later rows.
		for label, id := range resolved {
			categoryCache[label] = id
		}
		result.CategoriesCreated += created
		result.Created++
	}

	zap.L().Info("bulk import finished",
		zap.Int("created", result.Created),
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("errors", len(result.Errors)))
	return result
}

func (im *Importer) importRow(tx *gorm.DB, row Row, cache map[string]int64) (map[string]int64, int, error) {
	name := rowName(row)
	if name == "" {
		return nil, 0, fmt.Errorf("product name is required")
	}

	categoryIDs, resolved, created, err := im.resolveCategories(tx, row, cache)
	if err != nil {
		return nil, 0, err
	}

	price, err := parseFloat(pick(row, "Precio", "price"))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid price: %v", err)
	}

	p := domain.Product{
		Name:        name,
		Description: cast.ToString(pick(row, "Descripción", "description")),
		Brand:       cast.ToString(pick(row, "Marca", "brand")),
		Size:        cast.ToString(pick(row, "Talle", "size")),
		Price:       price,
		Active:      parseActive(pick(row, "Activo", "active")),
	}

	if v := pick(row, "Precio original", "originalPrice", "original_price"); v != nil && cast.ToString(v) != "" {
		op, err := parseFloat(v)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid original price: %v", err)
		}
		p.OriginalPrice = &op
	}
	if v := pick(row, "Margen", "margin"); v != nil && cast.ToString(v) != "" {
		m, err := ParseMargin(v)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid margin: %v", err)
		}
		p.Margin = &m
	}
	if v := pick(row, "Stock", "stock"); v != nil && cast.ToString(v) != "" {
		stock, err := cast.ToIntE(v)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid stock: %v", err)
		}
		p.Stock = stock
	}

	if err := tx.Create(&p).Error; err != nil {
		return nil, 0, err
	}
	if len(categoryIDs) > 0 {
		categories := make([]domain.Category, 0, len(categoryIDs))
		for _, id := range categoryIDs {
			categories = append(categories, domain.Category{ID: id})
		}
		if err := tx.Model(&p).Association("Categories").Append(categories); err != nil {
			return nil, 0, err
		}
	}
	return resolved, created, nil
}

// resolveCategories looks up or creates every category label attached to the
// row. A unique-constraint violation on create means a concurrent importer
// won the race: the category is re-fetched and reused, never treated as fatal.
// The cache is read-only here; resolved labels and the created count are
// returned so the caller can apply them after the row commits.
func (im *Importer) resolveCategories(tx *gorm.DB, row Row, cache map[string]int64) ([]int64, map[string]int64, int, error) {
	labels := categoryLabels(pick(row, "Categorias", "Categorías", "categories"))
	ids := make([]int64, 0, len(labels))
	resolved := map[string]int64{}
	created := 0
	for _, label := range labels {
		if id, ok := cache[label]; ok {
			ids = append(ids, id)
			continue
		}
		if id, ok := resolved[label]; ok {
			ids = append(ids, id)
			continue
		}

		var cat domain.Category
		err := tx.Where("name = ?", label).First(&cat).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			cat = domain.Category{Name: label, Active: true}
			if cerr := tx.Create(&cat).Error; cerr != nil {
				// Unique name constraint is the concurrency backstop.
				if ferr := tx.Where("name = ?", label).First(&cat).Error; ferr != nil {
					return nil, nil, 0, cerr
				}
			} else {
				created++
			}
		default:
			return nil, nil, 0, err
		}

		resolved[label] = cat.ID
		ids = append(ids, cat.ID)
	}
	return ids, resolved, created, nil
}

// ParseMargin parses a margin value that may be formatted as a percentage
// string, e.g. "250%" is stored as numeric 250.
func ParseMargin(v interface{}) (float64, error) {
	s := strings.TrimSpace(cast.ToString(v))
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	return cast.ToFloat64E(s)
}

func parseFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return 0, nil
	}
	return cast.ToFloat64E(s)
}

// parseActive mirrors the legacy import semantics: "1", 1 and true mean
// active, everything else inactive.
func parseActive(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) == "1" || strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return cast.ToInt(v) == 1
	}
}

func rowName(row Row) string {
	return strings.TrimSpace(cast.ToString(pick(row, "Nombre", "name")))
}

func pick(row Row, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// categoryLabels normalizes a category field that may be a single label, a
// list of labels, or a comma-separated string.
func categoryLabels(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		raw = t
	case []interface{}:
		for _, e := range t {
			raw = append(raw, cast.ToString(e))
		}
	default:
		raw = strings.Split(cast.ToString(v), ",")
	}
	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
