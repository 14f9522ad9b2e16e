package tabimport

import (
	"testing"

	"github.com/nao1215/tabimport/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveHeaderMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.HeaderTyped, effectiveHeaderMode(model.HeaderAuto, FileTypeParquet))
	assert.Equal(t, model.HeaderSpreadsheet, effectiveHeaderMode(model.HeaderAuto, FileTypeCSV))
	assert.Equal(t, model.HeaderSpreadsheet, effectiveHeaderMode(model.HeaderAuto, FileTypeXLSX))
	assert.Equal(t, model.HeaderPlain, effectiveHeaderMode(model.HeaderPlain, FileTypeParquet))
}

func TestInspectHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rows      [][]string
		mode      model.HeaderMode
		wantNames []string
		wantTypes []model.TypeTag
		wantData  [][]string
	}{
		{
			name:      "plain ignores a type row",
			rows:      [][]string{{"id", "name"}, {"int", "string"}},
			mode:      model.HeaderPlain,
			wantNames: []string{"id", "name"},
			wantData:  [][]string{{"int", "string"}},
		},
		{
			name:      "typed consumes the second row",
			rows:      [][]string{{"id", "score"}, {"int", "bogus"}, {"1", "2"}},
			mode:      model.HeaderTyped,
			wantNames: []string{"id", "score"},
			wantTypes: []model.TypeTag{model.TypeInteger, model.TypeUnknown},
			wantData:  [][]string{{"1", "2"}},
		},
		{
			name:      "spreadsheet detects a type row",
			rows:      [][]string{{}, {"id", "when", "note"}, {"int", "date"}, {"1", "2024-01-01", "x"}},
			mode:      model.HeaderSpreadsheet,
			wantNames: []string{"id", "when", "note"},
			wantTypes: []model.TypeTag{model.TypeInteger, model.TypeDate, model.TypeString},
			wantData:  [][]string{{"1", "2024-01-01", "x"}},
		},
		{
			name:      "spreadsheet keeps data in the second row",
			rows:      [][]string{{"id", "name"}, {"1", "Alice"}},
			mode:      model.HeaderSpreadsheet,
			wantNames: []string{"id", "name"},
			wantData:  [][]string{{"1", "Alice"}},
		},
		{
			name:      "header only",
			rows:      [][]string{{"id"}},
			mode:      model.HeaderTyped,
			wantNames: []string{"id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newCellReader(rowsOf(tt.rows...), false, nil)
			header, err := inspectHeader(r, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, header.Names)
			assert.Equal(t, tt.wantTypes, header.Types)
			assert.Equal(t, tt.wantData, readAll(t, r))
		})
	}

	t.Run("typed header reports unknown tokens", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{"id", "score"}, []string{"int", "bogus"}), false, nil)
		header, err := inspectHeader(r, model.HeaderTyped)
		require.NoError(t, err)
		require.Len(t, header.Unknown, 1)
		assert.Equal(t, "score", header.Unknown[0].Column)
		assert.Equal(t, "bogus", header.Unknown[0].Token)
	})

	t.Run("empty source", func(t *testing.T) {
		t.Parallel()

		r := newCellReader(rowsOf([]string{""}, []string{" "}), false, nil)
		_, err := inspectHeader(r, model.HeaderAuto)
		assert.ErrorIs(t, err, ErrEmptySource)
	})
}
