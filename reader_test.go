package tabimport

import (
	"errors"
	"io"
	"testing"

	"github.com/nao1215/tabimport/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsOf returns a rowFunc serving rows with 1-based line numbers.
func rowsOf(rows ...[]string) rowFunc {
	i := 0
	return func() ([]string, int, error) {
		if i >= len(rows) {
			return nil, 0, io.EOF
		}
		i++
		return rows[i-1], i, nil
	}
}

// readAll drains r and returns the rows as strings.
func readAll(t *testing.T, r TabularReader) [][]string {
	t.Helper()

	var out [][]string
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, row.Strings())
	}
}

func TestCellReader(t *testing.T) {
	t.Parallel()

	t.Run("header skips leading blank rows", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"", " "}, []string{"name", "age"}, []string{"Alice", "30"}), true, nil)
		header, err := r.ReadHeaderRow()
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, header)
		assert.Equal(t, 2, r.Line())
	})

	t.Run("non-type row is left as data", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"name"}, []string{"Alice"}, []string{"Bob"}), true, nil)
		_, err := r.ReadHeaderRow()
		require.NoError(t, err)

		tokens, ok, err := r.ReadOptionalTypeRow(false)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, tokens)

		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice"}, row.Strings())
		assert.Equal(t, 2, r.Line())
		assert.Equal(t, [][]string{{"Bob"}}, readAll(t, r))
	})

	t.Run("type row is consumed", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"name", "age"}, []string{"string", "int"}, []string{"Alice", "30"}), true, nil)
		_, err := r.ReadHeaderRow()
		require.NoError(t, err)

		tokens, ok, err := r.ReadOptionalTypeRow(false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"string", "int"}, tokens)
		assert.Equal(t, [][]string{{"Alice", "30"}}, readAll(t, r))
	})

	t.Run("forced type row is consumed", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"name"}, []string{"Alice"}), true, nil)
		_, err := r.ReadHeaderRow()
		require.NoError(t, err)

		tokens, ok, err := r.ReadOptionalTypeRow(true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"Alice"}, tokens)
		assert.Empty(t, readAll(t, r))
	})

	t.Run("blank data rows are skipped", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"a"}, []string{""}, []string{"1"}, []string{"", ""}), true, nil)
		assert.Equal(t, [][]string{{"a"}, {"1"}}, readAll(t, r))
	})

	t.Run("native values", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"true", "2024-01-02", "7"}), true, nil)
		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, model.KindBool, row[0].Kind())
		assert.Equal(t, model.KindDate, row[1].Kind())
		assert.Equal(t, model.KindString, row[2].Kind())

		r = newCellReader(rowsOf([]string{"true"}), false, nil)
		row, err = r.Next()
		require.NoError(t, err)
		assert.Equal(t, model.KindString, row[0].Kind())
	})

	t.Run("close runs once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		r := newCellReader(rowsOf(), true, func() error { calls++; return nil })
		require.NoError(t, r.Close())
		require.NoError(t, r.Close())
		assert.Equal(t, 1, calls)
	})
}

func TestDelimitedSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	open := func(t *testing.T, name, content, delimiter string) *delimitedSource {
		t.Helper()
		path := writeTestFile(t, dir, name, []byte(content))
		opts := quietOptions()
		opts.SheetDelimiter = delimiter
		src, err := openDelimitedSource(newFile(path), opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = src.Close() })
		return src
	}

	t.Run("single sheet without label", func(t *testing.T) {
		t.Parallel()

		src := open(t, "single.tsv", "name\tcity\nAlice\tParis\nBob\n", "")
		sheet, err := src.NextSheet()
		require.NoError(t, err)
		assert.Empty(t, sheet.Label)
		assert.Equal(t, [][]string{{"name", "city"}, {"Alice", "Paris"}, {"Bob"}}, readAll(t, sheet.Reader))

		_, err = src.NextSheet()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("split on delimiter line", func(t *testing.T) {
		t.Parallel()

		content := "id,name\n1,one\n---,\nsku,price\nA1,9.5\n  ---  \nx\n"
		src := open(t, "split.csv", content, "---")

		var labels []string
		var sheets [][][]string
		for {
			sheet, err := src.NextSheet()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			labels = append(labels, sheet.Label)
			sheets = append(sheets, readAll(t, sheet.Reader))
		}

		assert.Equal(t, []string{"1", "2", "3"}, labels)
		assert.Equal(t, [][][]string{
			{{"id", "name"}, {"1", "one"}},
			{{"sku", "price"}, {"A1", "9.5"}},
			{{"x"}},
		}, sheets)
	})

	t.Run("trailing delimiter line adds no sheet", func(t *testing.T) {
		t.Parallel()

		src := open(t, "trailing.csv", "a\n1\n---\n", "---")
		sheet, err := src.NextSheet()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a"}, {"1"}}, readAll(t, sheet.Reader))

		_, err = src.NextSheet()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("sheet after a delimiter keeps its first row", func(t *testing.T) {
		t.Parallel()

		src := open(t, "peek.csv", "a\n---\nb\n2\n", "---")
		_, err := src.NextSheet()
		require.NoError(t, err)

		second, err := src.NextSheet()
		require.NoError(t, err)
		header, err := second.Reader.ReadHeaderRow()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, header)
		assert.Equal(t, 3, second.Reader.Line())
	})

	t.Run("unread rows are discarded", func(t *testing.T) {
		t.Parallel()

		src := open(t, "partial.csv", "a\n1\n2\n===\nb\n3\n", "===")
		first, err := src.NextSheet()
		require.NoError(t, err)
		_, err = first.Reader.ReadHeaderRow()
		require.NoError(t, err)

		second, err := src.NextSheet()
		require.NoError(t, err)
		assert.Equal(t, "2", second.Label)
		header, err := second.Reader.ReadHeaderRow()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, header)
	})

	t.Run("delimiter mixed with data is not a split", func(t *testing.T) {
		t.Parallel()

		src := open(t, "mixed.csv", "a,b\n---,x\n", "---")
		sheet, err := src.NextSheet()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b"}, {"---", "x"}}, readAll(t, sheet.Reader))
	})

	t.Run("line numbers", func(t *testing.T) {
		t.Parallel()

		src := open(t, "lines.csv", "a\n\n1\n2\n", "")
		sheet, err := src.NextSheet()
		require.NoError(t, err)
		_, err = sheet.Reader.ReadHeaderRow()
		require.NoError(t, err)

		_, err = sheet.Reader.Next()
		require.NoError(t, err)
		assert.Equal(t, 3, sheet.Reader.Line())
	})

	t.Run("malformed quoting", func(t *testing.T) {
		t.Parallel()

		src := open(t, "broken.csv", "a,b\n\"unterminated,1\n", "")
		sheet, err := src.NextSheet()
		require.NoError(t, err)
		_, err = sheet.Reader.ReadHeaderRow()
		require.NoError(t, err)

		_, err = sheet.Reader.Next()
		assert.ErrorIs(t, err, ErrMalformedSource)
	})
}
