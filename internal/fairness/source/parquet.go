package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"fairdash/internal/fairness/models"
)

// ReadParquet decodes a parquet dataset. Columns are matched by name, so
// their order in the file does not matter. Year and coalesced_n may be
// stored as any integer or floating point type.
func ReadParquet(r io.ReaderAt, size int64) ([]models.Row, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	columns := make(map[int]string, len(models.Columns))
	for _, col := range models.Columns {
		leaf, ok := f.Schema().Lookup(col)
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		columns[leaf.ColumnIndex] = col
	}

	rows := make([]models.Row, 0, f.NumRows())
	buf := make([]parquet.Row, 256)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, columns, buf, &rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func readRowGroup(rg parquet.RowGroup, columns map[int]string, buf []parquet.Row, out *[]models.Row) error {
	reader := rg.Rows()
	defer reader.Close()
	for {
		n, err := reader.ReadRows(buf)
		for _, values := range buf[:n] {
			row, derr := decodeParquetRow(values, columns)
			if derr != nil {
				return fmt.Errorf("row %d: %w", len(*out)+1, derr)
			}
			*out = append(*out, row)
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row group: %w", err)
		}
	}
}

func decodeParquetRow(values parquet.Row, columns map[int]string) (models.Row, error) {
	var row models.Row
	for _, v := range values {
		col, ok := columns[v.Column()]
		if !ok {
			continue
		}
		switch col {
		case models.ColumnState:
			row.State = parquetText(v)
		case models.ColumnDemographicCategory:
			row.DemographicCategory = parquetText(v)
		case models.ColumnDemographicGroup:
			row.DemographicGroup = parquetText(v)
		case models.ColumnFairnessMeasure:
			row.FairnessMeasure = parquetText(v)
		case models.ColumnYear:
			year, ok, err := parquetNumber(v)
			if err != nil {
				return row, fmt.Errorf("year: %w", err)
			}
			if !ok {
				return row, errors.New("year: missing")
			}
			row.Year = int(math.Round(year))
		case models.ColumnValue:
			value, ok, err := parquetNumber(v)
			if err != nil {
				return row, fmt.Errorf("value: %w", err)
			}
			if ok {
				row.Value = &value
			}
		case models.ColumnCoalescedN:
			n, ok, err := parquetNumber(v)
			if err != nil {
				return row, fmt.Errorf("coalesced_n: %w", err)
			}
			if ok {
				row.CoalescedN = int(math.Round(n))
			}
		}
	}
	return row, nil
}

func parquetText(v parquet.Value) string {
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	case parquet.Int32:
		return strconv.Itoa(int(v.Int32()))
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	}
	return ""
}

// parquetNumber reports false for null and NaN values.
func parquetNumber(v parquet.Value) (float64, bool, error) {
	if v.IsNull() {
		return 0, false, nil
	}
	var f float64
	switch v.Kind() {
	case parquet.Int32:
		f = float64(v.Int32())
	case parquet.Int64:
		f = float64(v.Int64())
	case parquet.Float:
		f = float64(v.Float())
	case parquet.Double:
		f = v.Double()
	case parquet.ByteArray:
		p, err := parseValue(string(v.ByteArray()))
		if err != nil || p == nil {
			return 0, false, err
		}
		f = *p
	default:
		return 0, false, fmt.Errorf("unsupported parquet type %s", v.Kind())
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, nil
	}
	return f, true, nil
}
