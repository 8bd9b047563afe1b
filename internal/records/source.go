package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/xuri/excelize/v2"
)

// Row is a single source table row keyed by column header.
type Row map[string]any

// ReadApplicants reads the applicant profiles source file (.csv or .xlsx).
func ReadApplicants(path string) ([]*Applicant, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}

	var applicants []*Applicant
	if err := decodeRows(rows, &applicants); err != nil {
		return nil, fmt.Errorf("decoding applicants from %s: %w", path, err)
	}

	return applicants, nil
}

// ReadJobs reads the job postings source file (.csv or .xlsx). Row order is kept.
func ReadJobs(path string) ([]*Job, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}

	var jobs []*Job
	if err := decodeRows(rows, &jobs); err != nil {
		return nil, fmt.Errorf("decoding jobs from %s: %w", path, err)
	}

	return jobs, nil
}

// ReadSources reads both source files into tables.
func ReadSources(applicantsPath, jobsPath string) (*Tables, error) {
	applicants, err := ReadApplicants(applicantsPath)
	if err != nil {
		return nil, err
	}

	jobs, err := ReadJobs(jobsPath)
	if err != nil {
		return nil, err
	}

	return NewTables(applicants, jobs), nil
}

// ReadRows reads a delimited or spreadsheet file. The first line is the header.
func ReadRows(path string) ([]Row, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readSpreadsheet(path)
	default:
		records, err = readDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	rows, err := toRows(records)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return rows, nil
}

func readDelimited(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}

	return records, nil
}

// ErrInvalidEncoding is returned for source values that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("value is not valid UTF-8")

func toRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, nil
	}

	for line, record := range records {
		for column, value := range record {
			if !utf8.ValidString(value) {
				return nil, fmt.Errorf("line %d, column %d: %w", line+1, column+1, ErrInvalidEncoding)
			}
		}
	}

	header := make([]string, 0, len(records[0]))
	for _, name := range records[0] {
		header = append(header, strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(Row, len(header))
		for idx, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if idx < len(record) {
				value = record[idx]
			}
			row[name] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func decodeRows(rows []Row, result any) error {
	for _, row := range rows {
		for key, value := range row {
			// numeric columns may carry padding, text columns are kept verbatim
			if s, ok := value.(string); ok && (key == "vacancies" || key == "minExp") {
				row[key] = strings.TrimSpace(s)
			}
		}
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           result,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(rows)
}
