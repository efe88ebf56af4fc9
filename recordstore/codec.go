package recordstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"

	"github.com/kjk/records/atomicfile"
	"github.com/kjk/records/u"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// name of the field holding record id in exported data
const idField = "id"

// TOON document for a store without records
const emptyTOON = "[0]:"

var (
	jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

	prettyOptions = &pretty.Options{
		Width:  80,
		Indent: "    ",
	}
)

// FormatFromPath picks a format based on file extension, ignoring
// compression extension i.e. "cars.json.br" is FormatJSON
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	name = u.TrimCompressionExt(name)
	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, nil
	case ".toon":
		return FormatTOON, nil
	}
	return "", fmt.Errorf("unsupported file type '%s', use .json or .toon (optionally with .gz, .br or .zst)", filepath.Base(path))
}

// Rejection is an imported entry that failed validation
type Rejection struct {
	// zero-based position of the entry in the imported data
	Position int
	ID       string
	Err      error
}

type ImportReport struct {
	Imported int
	Rejected []Rejection
}

// Export writes all records to path, atomically. Format and compression
// are picked based on file extension.
func (s *Store[T]) Export(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	f, err := atomicfile.New(path)
	if err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	// no-op after successful Close()
	defer f.RemoveIfNotClosed()

	w, err := u.NewCompressWriter(f, path)
	if err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	if err = s.ExportTo(w, format); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	if err = w.Close(); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	return nil
}

// ExportTo writes all records to w in a given format
func (s *Store[T]) ExportTo(w io.Writer, format Format) error {
	var d []byte
	var err error
	switch format {
	case FormatJSON:
		d, err = s.marshalJSON()
	case FormatTOON:
		d, err = s.marshalTOON()
	default:
		err = fmt.Errorf("unsupported format '%s'", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// marshalJSON writes fields in schema order, with id first. encoding
// a map would sort the keys.
func (s *Store[T]) marshalJSON() ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	stream.WriteArrayStart()
	for i := range s.records {
		rec := &s.records[i]
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		stream.WriteObjectField(idField)
		stream.WriteString(rec.ID)
		for _, f := range s.kind.Fields {
			stream.WriteMore()
			stream.WriteObjectField(f.Name)
			stream.WriteVal(f.Get(&rec.Value))
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return pretty.PrettyOptions(stream.Buffer(), prettyOptions), nil
}

func (s *Store[T]) marshalTOON() ([]byte, error) {
	if len(s.records) == 0 {
		return []byte(emptyTOON + "\n"), nil
	}
	rows := make([]map[string]any, 0, len(s.records))
	for i := range s.records {
		rec := &s.records[i]
		m := s.kind.ToFields(&rec.Value)
		m[idField] = rec.ID
		rows = append(rows, m)
	}
	d, err := toon.Marshal(rows)
	if err != nil {
		return nil, err
	}
	if len(d) > 0 && d[len(d)-1] != '\n' {
		d = append(d, '\n')
	}
	return d, nil
}

// Import replaces the content of the store with records read from path.
// Every entry is validated like in Add. Entries that fail validation are
// skipped and reported in ImportReport.Rejected.
// If the data can't be parsed at all, the store is unchanged.
func (s *Store[T]) Import(path string) (*ImportReport, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &IOError{Op: "import", Path: path, Err: err}
	}
	r, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, &IOError{Op: "import", Path: path, Err: err}
		}
		// not a valid compressed stream
		if inner := errors.Unwrap(err); inner != nil {
			err = inner
		}
		return nil, &FormatError{Path: path, Err: err}
	}
	defer r.Close()

	report, err := s.ImportFrom(r, format)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		var ioe *IOError
		if errors.As(err, &ioe) && ioe.Path == "" {
			ioe.Path = path
		}
		return nil, err
	}
	return report, nil
}

// ImportFrom is like Import but reads from r
func (s *Store[T]) ImportFrom(r io.Reader, format Format) (*ImportReport, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, &IOError{Op: "import", Err: err}
		}
		// a broken compressed stream
		return nil, &FormatError{Err: err}
	}

	var entries []map[string]any
	switch format {
	case FormatJSON:
		entries, err = unmarshalJSON(d)
	case FormatTOON:
		entries, err = unmarshalTOON(d)
	default:
		return nil, &IOError{Op: "import", Err: fmt.Errorf("unsupported format '%s'", format)}
	}
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	report := &ImportReport{}
	records := make([]Record[T], 0, len(entries))
	seen := map[string]bool{}
	for i, entry := range entries {
		rec, err := s.recordFromEntry(entry, seen)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{
				Position: i,
				ID:       rec.ID,
				Err:      err,
			})
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	report.Imported = len(records)
	s.replace(records)
	return report, nil
}

func (s *Store[T]) recordFromEntry(entry map[string]any, seen map[string]bool) (Record[T], error) {
	var rec Record[T]
	fields := make(Fields, len(entry))
	for k, v := range entry {
		if k == idField {
			continue
		}
		fields[k] = v
	}
	switch id := entry[idField].(type) {
	case nil:
		rec.ID = s.newID()
	case string:
		rec.ID = id
		if id == "" {
			rec.ID = s.newID()
		}
	default:
		return rec, Invalid(idField, "must be a string, got %T", id)
	}
	if seen[rec.ID] {
		return rec, Invalid(idField, "duplicate id %s", rec.ID)
	}
	v, err := s.kind.Build(fields)
	if err != nil {
		return rec, err
	}
	rec.Value = v
	return rec, nil
}

func unmarshalJSON(d []byte) ([]map[string]any, error) {
	d = bytes.TrimSpace(d)
	if len(d) == 0 {
		return nil, errors.New("empty data")
	}
	if d[0] != '[' {
		return nil, errors.New("expected a list of records")
	}
	dec := jsonAPI.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	var entries []map[string]any
	if err := dec.Decode(&entries); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the list of records")
	}
	return entries, nil
}

func unmarshalTOON(d []byte) ([]map[string]any, error) {
	d = bytes.TrimSpace(d)
	if len(d) == 0 {
		return nil, errors.New("empty data")
	}
	if string(d) == emptyTOON {
		return nil, nil
	}
	var v any
	if err := toon.Unmarshal(d, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of records, got %T", v)
	}
	entries := make([]map[string]any, 0, len(list))
	for i, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: expected a mapping of fields, got %T", i, el)
		}
		entries = append(entries, m)
	}
	return entries, nil
}
