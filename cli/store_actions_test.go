package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"

	"github.com/kjk/records/changelog"
	"github.com/kjk/records/kinds"
	"github.com/kjk/records/recordstore"
)

func newCarMenu(t *testing.T) (*StoreMenu[kinds.Car], *Menu) {
	s := kinds.NewCarStore()
	assert.NoError(t, kinds.SeedCars(s))
	sm := &StoreMenu[kinds.Car]{
		Store:    s,
		DataFile: filepath.Join(t.TempDir(), "cars.json"),
	}
	m := &Menu{
		Title:   "Cars",
		Actions: sm.Actions(),
	}
	return sm, m
}

// menu numbers of StoreMenu actions
const (
	actList = "1"
	actAdd  = "2"
	actUpd  = "3"
	actFind = "4"
	actRm   = "5"
	actExp  = "6"
	actImp  = "7"
	actHist = "8"
)

func lines(all ...string) string {
	return strings.Join(all, "\n") + "\n"
}

func TestStoreMenuListAndAdd(t *testing.T) {
	sm, m := newCarMenu(t)
	out := runMenu(t, m, lines(actAdd, "Tesla", "Model 3", "2023", actList, "0"))
	assert.Equal(t, 4, sm.Store.Len())
	for _, s := range []string{"Toyota", "Corolla", "Mustang", "Tesla", "Model 3", "2023", "Make", "Year"} {
		assert.True(t, strings.Contains(out, s), "missing %s in: %s", s, out)
	}
}

func TestStoreMenuAddInvalid(t *testing.T) {
	sm, m := newCarMenu(t)
	out := runMenu(t, m, lines(actAdd, "Tesla", "Model 3", "1800", "0"))
	assert.Equal(t, 3, sm.Store.Len())
	assert.True(t, strings.Contains(out, "Error: year: must be between 1900"), "out: %s", out)
}

func TestStoreMenuUpdate(t *testing.T) {
	sm, m := newCarMenu(t)
	out := runMenu(t, m, lines(actUpd, "x", actUpd, "9", actUpd, "1", "", "", "2021", "0"))
	assert.True(t, strings.Contains(out, "not a number"), "out: %s", out)
	assert.True(t, strings.Contains(out, "invalid index 8"), "out: %s", out)
	rec, err := sm.Store.At(0)
	assert.NoError(t, err)
	assert.Equal(t, kinds.Car{Make: "Toyota", Model: "Corolla", Year: 2021}, rec.Value)
}

func TestStoreMenuSearch(t *testing.T) {
	_, m := newCarMenu(t)
	out := runMenu(t, m, lines(actFind, "honda", "", "", actFind, "Tesla", "", "", actFind, "", "", "", "0"))
	assert.True(t, strings.Contains(out, "Civic"), "out: %s", out)
	assert.True(t, strings.Contains(out, "No matches."), "out: %s", out)
	assert.True(t, strings.Contains(out, "No search criteria."), "out: %s", out)
}

func TestStoreMenuRemove(t *testing.T) {
	sm, m := newCarMenu(t)
	runMenu(t, m, lines(actRm, "2", "n", actRm, "2", "y", "0"))
	assert.Equal(t, 2, sm.Store.Len())
	for _, rec := range sm.Store.List() {
		assert.NotEqual(t, "Honda", rec.Value.Make)
	}
}

func TestStoreMenuExportImport(t *testing.T) {
	sm, m := newCarMenu(t)
	other := filepath.Join(t.TempDir(), "cars.toon.gz")
	out := runMenu(t, m, lines(actExp, "", actExp, other, "0"))
	assert.True(t, strings.Contains(out, "Exported 3 records"), "out: %s", out)

	s2 := kinds.NewCarStore()
	sm2 := &StoreMenu[kinds.Car]{Store: s2, DataFile: sm.DataFile}
	m2 := &Menu{Title: "Cars", Actions: sm2.Actions()}
	out = runMenu(t, m2, lines(actImp, "", "0"))
	assert.True(t, strings.Contains(out, "Imported 3 records."), "out: %s", out)
	assert.Equal(t, sm.Store.List(), s2.List())

	out = runMenu(t, m2, lines(actImp, other, actImp, filepath.Join(t.TempDir(), "missing.json"), "0"))
	assert.True(t, strings.Contains(out, "Imported 3 records."), "out: %s", out)
	assert.True(t, strings.Contains(out, "Error: import"), "out: %s", out)
	assert.Equal(t, 3, s2.Len())
}

func TestPrintImportReport(t *testing.T) {
	var out strings.Builder
	p := NewPrompt(strings.NewReader(""), &out)
	report := &recordstore.ImportReport{
		Imported: 1,
		Rejected: []recordstore.Rejection{
			{Position: 1, ID: "abc", Err: recordstore.Invalid("year", "must be between 1900 and 2025")},
		},
	}
	PrintImportReport(p, report)
	s := out.String()
	assert.True(t, strings.Contains(s, "Imported 1 records."), "out: %s", s)
	assert.True(t, strings.Contains(s, "Skipped 1 invalid records"), "out: %s", s)
	assert.True(t, strings.Contains(s, "year: must be between 1900 and 2025"), "out: %s", s)
}

func TestStoreMenuHistory(t *testing.T) {
	sm, m := newCarMenu(t)
	out := runMenu(t, m, lines(actHist, "0"))
	assert.True(t, strings.Contains(out, "History is not enabled."), "out: %s", out)

	l, err := changelog.Open(t.TempDir(), "car")
	assert.NoError(t, err)
	sm.History = l
	out = runMenu(t, m, lines(actHist, "0"))
	assert.True(t, strings.Contains(out, "No changes yet."), "out: %s", out)

	_, err = l.Append("add", []byte(`{"make":"Toyota"}`), "car 1234")
	assert.NoError(t, err)
	_, err = l.Append("add", []byte(`{"make":"`+strings.Repeat("x", 100)+`"}`), "car 5678")
	assert.NoError(t, err)
	_, err = l.Append("import", nil, "car")
	assert.NoError(t, err)
	out = runMenu(t, m, lines(actHist, "0"))
	assert.True(t, strings.Contains(out, "car 1234"), "out: %s", out)
	assert.True(t, strings.Contains(out, `{"make":"Toyota"}`), "out: %s", out)
	assert.True(t, strings.Contains(out, `{"make":"xxx`), "out: %s", out)
	assert.True(t, strings.Contains(out, `x...`), "out: %s", out)
	assert.False(t, strings.Contains(out, strings.Repeat("x", 100)), "out: %s", out)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "yes", FormatValue(true))
	assert.Equal(t, "no", FormatValue(false))
	assert.Equal(t, "50.00", FormatValue(50.0))
	assert.Equal(t, "2020", FormatValue(2020))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "x", FormatValue("x"))
}

func TestRecordsTable(t *testing.T) {
	s := kinds.NewVehicleStore()
	assert.NoError(t, kinds.SeedVehicles(s))
	out := RecordsTable(s.Kind(), s.List(), nil)
	for _, str := range []string{"#", "Type", "Daily rate", "Convertible", "Yamaha", "30.00", "yes"} {
		assert.True(t, strings.Contains(out, str), "missing %s in: %s", str, out)
	}
}
