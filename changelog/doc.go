// Package changelog is an append-only history of changes made to record
// stores.
//
// A Log consists of two files:
//   - an index file with one line per entry
//   - a data file with the record (as JSON) the entry refers to
//
// The format of an index line is:
//
//	<offset> <size> <timestamp_ms> <op> <meta>
//
// where offset and size locate the data in the data file, timestamp is in
// UTC unix milliseconds, op is e.g. "add" or "remove" and meta is optional
// free-form text without newlines.
//
// # Basic Usage
//
//	l, err := changelog.Open("./data", "car")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close()
//
//	_, err = l.Append("add", []byte(`{"make":"Toyota"}`), "car 5b1f")
//
//	for _, e := range l.Entries() {
//	    data, err := l.ReadData(e)
//	    // ...
//	}
//
// Log is safe for concurrent use.
package changelog
