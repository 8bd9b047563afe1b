package snapshot

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spigell/job-recommender/internal/records"
)

var gzipMagic = []byte{0x1f, 0x8b}

// document is the on-disk container: exactly two named tables.
type document struct {
	Applicants []*records.Applicant `json:"userprofile"`
	Jobs       []*records.Job       `json:"job"`
}

// Save writes both tables into a gzip compressed json container.
// The file is replaced atomically. Text must be valid UTF-8, json would not keep other bytes.
func Save(path string, tables *records.Tables) error {
	if tables == nil || tables.Applicants == nil || tables.Jobs == nil {
		return errors.New("both tables are required")
	}
	if err := tables.CheckEncoding(); err != nil {
		return err
	}

	doc := document{
		Applicants: tables.Applicants.Items,
		Jobs:       tables.Jobs.Items,
	}
	if doc.Applicants == nil {
		doc.Applicants = []*records.Applicant{}
	}
	if doc.Jobs == nil {
		doc.Jobs = []*records.Job{}
	}

	dir := filepath.Dir(path)
	file, err := os.CreateTemp(dir, ".snapshot_*")
	if err != nil {
		return err
	}
	defer os.Remove(file.Name())
	defer file.Close()

	zw := gzip.NewWriter(file)
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(file.Name(), path)
}

// Load reads a snapshot from disk. Plain (uncompressed) json is accepted too.
func Load(path string) (*records.Tables, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Source: path, Err: ErrNotFound}
		}
		return nil, &LoadError{Source: path, Err: err}
	}
	defer file.Close()

	tables, err := Decode(file)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	return tables, nil
}

// Decode parses a snapshot container from r.
func Decode(r io.Reader) (*records.Tables, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, _ := br.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		src = zr
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(src).Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: expected an object of named tables", ErrFormat)
		}
		return nil, err
	}

	if err := checkTables(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw[records.ApplicantsTable], &doc.Applicants); err != nil {
		return nil, fmt.Errorf("decoding %s table: %w", records.ApplicantsTable, err)
	}
	if err := json.Unmarshal(raw[records.JobsTable], &doc.Jobs); err != nil {
		return nil, fmt.Errorf("decoding %s table: %w", records.JobsTable, err)
	}

	return records.NewTables(doc.Applicants, doc.Jobs), nil
}

func checkTables(raw map[string]json.RawMessage) error {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	_, hasApplicants := raw[records.ApplicantsTable]
	_, hasJobs := raw[records.JobsTable]
	if len(raw) != 2 || !hasApplicants || !hasJobs {
		return fmt.Errorf("%w: expected tables %q and %q, got [%s]",
			ErrFormat, records.ApplicantsTable, records.JobsTable, strings.Join(names, ", "))
	}

	return nil
}
