package importer

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

// csvRow mirrors the spreadsheet template handed to shop staff. Column
// headers may be the legacy Spanish ones or their English equivalents.
type csvRow struct {
	Nombre         string `csv:"Nombre"`
	Categorias     string `csv:"Categorias"`
	Descripcion    string `csv:"Descripción"`
	Marca          string `csv:"Marca"`
	PrecioOriginal string `csv:"Precio original"`
	Margen         string `csv:"Margen"`
	Precio         string `csv:"Precio"`
	Talle          string `csv:"Talle"`
	Stock          string `csv:"Stock"`
	Activo         string `csv:"Activo"`

	Name          string `csv:"name"`
	Categories    string `csv:"categories"`
	Description   string `csv:"description"`
	Brand         string `csv:"brand"`
	OriginalPrice string `csv:"originalPrice"`
	Margin        string `csv:"margin"`
	Price         string `csv:"price"`
	Size          string `csv:"size"`
	StockEn       string `csv:"stock"`
	Active        string `csv:"active"`
}

func (r csvRow) toRow() Row {
	row := Row{}
	set := func(key, es, en string) {
		if es != "" {
			row[key] = es
		} else if en != "" {
			row[key] = en
		}
	}
	set("Nombre", r.Nombre, r.Name)
	set("Categorias", r.Categorias, r.Categories)
	set("Descripción", r.Descripcion, r.Description)
	set("Marca", r.Marca, r.Brand)
	set("Precio original", r.PrecioOriginal, r.OriginalPrice)
	set("Margen", r.Margen, r.Margin)
	set("Precio", r.Precio, r.Price)
	set("Talle", r.Talle, r.Size)
	set("Stock", r.Stock, r.StockEn)
	set("Activo", r.Activo, r.Active)
	return row
}

// ParseCSV reads an uploaded CSV file into import rows.
func ParseCSV(r io.Reader) ([]Row, error) {
	var records []csvRow
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.toRow())
	}
	return rows, nil
}

// ParseXLSX reads the first sheet of an uploaded workbook into import rows.
// The first row is taken as the header.
func ParseXLSX(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	sheet := f.GetSheetName(1)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	cells := f.GetRows(sheet)
	if len(cells) < 2 {
		return nil, nil
	}
	header := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := Row{}
		empty := true
		for i, h := range header {
			if h = strings.TrimSpace(h); h == "" || i >= len(line) {
				continue
			}
			if v := strings.TrimSpace(line[i]); v != "" {
				row[h] = v
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseFile dispatches on the uploaded file's extension.
func ParseFile(filename string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported import file type: %s", path.Ext(filename))
	}
}
