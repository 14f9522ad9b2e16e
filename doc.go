// Package tabimport imports tabular files into an embedded object store,
// deriving one schema per file (or sheet) from its header rows and
// persisting every valid row as one object.
//
// # Features
//
//   - Import CSV, TSV, Parquet, and Excel (XLSX) files
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Optional type row under the header (string, int, float, double, bool, date)
//   - Row-level validation against the declared types, with custom rules
//   - Splitting one CSV file into several sheets with a delimiter line
//   - SQLite and bbolt stores (see the store package)
//
// # Basic Usage
//
//	st, err := store.OpenSQLite(ctx, "default.realm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	builder, err := tabimport.NewBuilder().
//	    AddPath("users.csv").
//	    AddPath("orders.xlsx").
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := builder.Run(ctx, st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary)
//
// # Schema Naming
//
// Schema names are derived from file names. Underscores separate words,
// every word is capitalized and whitespace is removed:
//   - "My_File.csv" becomes "MyFile"
//   - "a_b_c.csv.gz" becomes "ABC"
//   - "sales.xlsx" with sheets "q1" and "q2" becomes "SalesQ1" and "SalesQ2"
//
// When two sources derive the same name the CollisionPolicy decides
// whether the later definition replaces the earlier one (the default),
// is rejected, or is merged into it.
//
// # Validation
//
// A declared type row is detected under the header when every non-empty
// cell is a type token. Integer accepts whole numbers, Float only numbers
// with a fractional part, Double any number. Boolean and Date accept only
// values the reader already converted. A row with any invalid column is
// rejected as a whole and logged; the run continues.
//
// # Errors
//
// Problems with one source (empty, duplicate columns, malformed content)
// skip that source. Any store error aborts the run with ErrStoreFatal.
package tabimport
