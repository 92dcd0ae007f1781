package writer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// XLSXWriter buffers rows in a workbook and saves it to disk on Close.
type XLSXWriter struct {
	Writer
	path       string
	workbook   *excelize.File
	fieldnames []string
	next_row   int
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "xlsx", NewXLSXWriter)

	if err != nil {
		panic(err)
	}
}

func NewXLSXWriter(ctx context.Context, uri string, fieldnames []string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	wr := &XLSXWriter{
		path:       pathFromURI(u),
		workbook:   excelize.NewFile(),
		fieldnames: fieldnames,
		next_row:   1,
	}

	header := make([]interface{}, len(fieldnames))

	for i, k := range fieldnames {
		header[i] = k
	}

	err = wr.writeCells(header)

	if err != nil {
		wr.workbook.Close()
		return nil, err
	}

	return wr, nil
}

func (wr *XLSXWriter) WriteRow(ctx context.Context, row map[string]string) error {

	values := make([]interface{}, len(wr.fieldnames))

	for i, k := range wr.fieldnames {
		values[i] = row[k]
	}

	return wr.writeCells(values)
}

func (wr *XLSXWriter) writeCells(values []interface{}) error {

	cell, err := excelize.CoordinatesToCellName(1, wr.next_row)

	if err != nil {
		return err
	}

	err = wr.workbook.SetSheetRow(xlsxSheet, cell, &values)

	if err != nil {
		return fmt.Errorf("failed to write row %d: %w", wr.next_row, err)
	}

	wr.next_row += 1
	return nil
}

func (wr *XLSXWriter) Close() error {

	err := wr.workbook.SaveAs(wr.path)

	if err != nil {
		wr.workbook.Close()
		return fmt.Errorf("failed to save %s: %w", wr.path, err)
	}

	return wr.workbook.Close()
}
