package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"fairdash/internal/fairness/models"
)

// ReadCSV decodes a dataset with a header row naming the columns. Columns
// may come in any order; value and coalesced_n may be blank.
func ReadCSV(r io.Reader) ([]models.Row, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []models.Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string { return strings.TrimSpace(rec[index[col]]) }

		year, err := strconv.Atoi(get(models.ColumnYear))
		if err != nil {
			return nil, fmt.Errorf("line %d: year: %w", line, err)
		}
		value, err := parseValue(get(models.ColumnValue))
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		n, err := parseCount(get(models.ColumnCoalescedN))
		if err != nil {
			return nil, fmt.Errorf("line %d: coalesced_n: %w", line, err)
		}
		rows = append(rows, models.Row{
			State:               get(models.ColumnState),
			Year:                year,
			DemographicCategory: get(models.ColumnDemographicCategory),
			DemographicGroup:    get(models.ColumnDemographicGroup),
			FairnessMeasure:     get(models.ColumnFairnessMeasure),
			Value:               value,
			CoalescedN:          n,
		})
	}
	return rows, nil
}

func parseValue(raw string) (*float64, error) {
	switch strings.ToLower(raw) {
	case "", "na", "nan", "null":
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

// WriteCSV encodes rows with a header, the inverse of ReadCSV.
func WriteCSV(w io.Writer, rows []models.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		value := ""
		if r.Value != nil {
			value = strconv.FormatFloat(*r.Value, 'f', -1, 64)
		}
		rec := []string{
			r.State,
			strconv.Itoa(r.Year),
			r.DemographicCategory,
			r.DemographicGroup,
			r.FairnessMeasure,
			value,
			strconv.Itoa(r.CoalescedN),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
