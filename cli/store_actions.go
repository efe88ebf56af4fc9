package cli

import (
	"errors"
	"strconv"

	"github.com/kjk/records/changelog"
	"github.com/kjk/records/recordstore"
)

const maxHistoryData = 60

// StoreMenu provides actions common to stores of every kind
type StoreMenu[T any] struct {
	Store *recordstore.Store[T]
	// default path offered by export and import
	DataFile string
	// optional, enables "History"
	History *changelog.Log
	// how many entries "History" shows
	HistorySize int
}

func (m *StoreMenu[T]) Actions() []Action {
	return []Action{
		{Name: "List", Run: m.List},
		{Name: "Add", Run: m.Add},
		{Name: "Update", Run: m.Update},
		{Name: "Search", Run: m.Search},
		{Name: "Remove", Run: m.Remove},
		{Name: "Export", Run: m.Export},
		{Name: "Import", Run: m.Import},
		{Name: "History", Run: m.ShowHistory},
	}
}

func (m *StoreMenu[T]) kind() *recordstore.Kind[T] {
	return m.Store.Kind()
}

// PrintRecords prints recs as a table, with positions as in the full list
func PrintRecords[T any](p *Prompt, s *recordstore.Store[T], recs []recordstore.Record[T]) {
	if len(recs) == 0 {
		p.Printf("No %s records.\n", s.Kind().Name)
		return
	}
	positions := make([]int, len(recs))
	for i, rec := range recs {
		positions[i] = s.IndexOf(rec.ID)
	}
	p.Printf("%s\n", RecordsTable(s.Kind(), recs, positions))
}

func (m *StoreMenu[T]) List(p *Prompt) error {
	PrintRecords(p, m.Store, m.Store.List())
	return nil
}

func (m *StoreMenu[T]) Add(p *Prompt) error {
	p.Printf("New %s:\n", m.kind().Name)
	fields, err := p.Fields(m.kind().FieldNames())
	if err != nil {
		return err
	}
	rec, err := m.Store.Add(fields)
	if err != nil {
		return err
	}
	p.Printf("Added %s #%d.\n", m.kind().Name, m.Store.Len())
	PrintRecords(p, m.Store, []recordstore.Record[T]{rec})
	return nil
}

func (m *StoreMenu[T]) Update(p *Prompt) error {
	if m.Store.Len() == 0 {
		p.Printf("No %s records to update.\n", m.kind().Name)
		return nil
	}
	PrintRecords(p, m.Store, m.Store.List())
	idx, err := p.Position("Number of the record to update: ")
	if err != nil {
		return err
	}
	if _, err = m.Store.At(idx); err != nil {
		return err
	}
	p.Printf("New values, leave empty to keep the current value:\n")
	fields, err := p.Fields(m.kind().FieldNames())
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		p.Printf("Nothing changed.\n")
		return nil
	}
	rec, err := m.Store.UpdateAt(idx, fields)
	if err != nil {
		return err
	}
	p.Printf("Updated.\n")
	PrintRecords(p, m.Store, []recordstore.Record[T]{rec})
	return nil
}

func (m *StoreMenu[T]) Search(p *Prompt) error {
	p.Printf("Search, leave empty to ignore a field. Records matching any field are shown:\n")
	criteria, err := p.Fields(m.kind().FieldNames())
	if err != nil {
		return err
	}
	if len(criteria) == 0 {
		p.Printf("No search criteria.\n")
		return nil
	}
	res, err := m.Store.Search(criteria)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		p.Printf("No matches.\n")
		return nil
	}
	PrintRecords(p, m.Store, res)
	return nil
}

func (m *StoreMenu[T]) Remove(p *Prompt) error {
	if m.Store.Len() == 0 {
		p.Printf("No %s records to remove.\n", m.kind().Name)
		return nil
	}
	PrintRecords(p, m.Store, m.Store.List())
	idx, err := p.Position("Number of the record to remove: ")
	if err != nil {
		return err
	}
	if _, err = m.Store.At(idx); err != nil {
		return err
	}
	ok, err := p.Confirm("Remove record #" + strconv.Itoa(idx+1) + "?")
	if err != nil || !ok {
		return err
	}
	if _, err = m.Store.RemoveAt(idx); err != nil {
		return err
	}
	p.Printf("Removed.\n")
	return nil
}

func (m *StoreMenu[T]) Export(p *Prompt) error {
	path, err := p.LineDefault("Export to file: ", m.DataFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("file name is required")
	}
	if err = m.Store.Export(path); err != nil {
		return err
	}
	p.Printf("Exported %d records to '%s'.\n", m.Store.Len(), path)
	return nil
}

func (m *StoreMenu[T]) Import(p *Prompt) error {
	path, err := p.LineDefault("Import from file: ", m.DataFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("file name is required")
	}
	report, err := m.Store.Import(path)
	if err != nil {
		return err
	}
	PrintImportReport(p, report)
	return nil
}

func PrintImportReport(p *Prompt, report *recordstore.ImportReport) {
	p.Printf("Imported %d records.\n", report.Imported)
	if len(report.Rejected) == 0 {
		return
	}
	p.Printf("Skipped %d invalid records:\n", len(report.Rejected))
	rows := make([][]string, 0, len(report.Rejected))
	for _, r := range report.Rejected {
		rows = append(rows, []string{strconv.Itoa(r.Position + 1), shortID(r.ID), r.Err.Error()})
	}
	p.Printf("%s\n", RenderTable([]string{"#", "ID", "Error"}, rows))
}

func (m *StoreMenu[T]) ShowHistory(p *Prompt) error {
	if m.History == nil {
		p.Printf("History is not enabled.\n")
		return nil
	}
	n := m.HistorySize
	if n <= 0 {
		n = 20
	}
	entries := m.History.Last(n)
	if len(entries) == 0 {
		p.Printf("No changes yet.\n")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Time().Local().Format("2006-01-02 15:04:05"),
			e.Op,
			e.Meta,
			m.historyData(e),
		})
	}
	p.Printf("%s\n", RenderTable([]string{"Time", "Change", "Record", "Values"}, rows))
	return nil
}

// historyData returns values of the record stored with e, shortened
// to fit in a table
func (m *StoreMenu[T]) historyData(e *changelog.Entry) string {
	d, err := m.History.ReadData(e)
	if err != nil {
		return "error: " + err.Error()
	}
	s := string(d)
	if len(s) > maxHistoryData {
		s = s[:maxHistoryData-3] + "..."
	}
	return s
}
