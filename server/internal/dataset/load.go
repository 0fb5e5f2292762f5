package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// ErrDataUnavailable is returned when the postings file is missing, unreadable
// or cannot be parsed as CSV. Without a table no analytics can be served.
var ErrDataUnavailable = errors.New("dataset unavailable")

// now is injectable for deterministic tests.
var now = time.Now

const utf8BOM = "\ufeff"

// Load reads the CSV file at path into a Table. Files ending in .gz are
// gunzipped and files ending in .zst or .zstd are zstd-decoded first.
//
// Every failure wraps ErrDataUnavailable.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w: %w", path, ErrDataUnavailable, err)
	}

	data, err := decompress(path, raw)
	if err != nil {
		return nil, fmt.Errorf("dataset: decompress %q: %w: %w", path, ErrDataUnavailable, err)
	}

	header, rows, err := parseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %q: %w: %w", path, ErrDataUnavailable, err)
	}

	sum := blake3.Sum256(raw)
	t := newTable(header, rows, hex.EncodeToString(sum[:]))
	t.Source = path
	return t, nil
}

// decompress selects a decoder from the file extension.
func decompress(path string, raw []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(raw, nil)

	default:
		return raw, nil
	}
}

// parseCSV reads a header row followed by data rows. Rows may have fewer or
// more fields than the header.
func parseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
