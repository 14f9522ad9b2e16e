package tabimport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorContext(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	tests := []struct {
		name string
		ec   *ErrorContext
		want string
	}{
		{
			name: "file only",
			ec:   NewErrorContext("open", "data/people.csv"),
			want: "tabimport: open failed, file: data/people.csv: boom",
		},
		{
			name: "all fields",
			ec: NewErrorContext("create object", "book.xlsx").
				WithSheet("Q1").
				WithSchema("BookQ1").
				WithDetails("commit"),
			want: "tabimport: create object failed, file: book.xlsx, sheet: Q1, schema: BookQ1, details: commit: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ec.Error(base)
			assert.EqualError(t, err, tt.want)
			assert.ErrorIs(t, err, base)
		})
	}

	t.Run("without base error", func(t *testing.T) {
		t.Parallel()
		assert.EqualError(t, NewErrorContext("scan", "").Error(nil), "tabimport: scan failed")
	})
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	fatal := storeFatal(base)
	assert.ErrorIs(t, fatal, ErrStoreFatal)
	assert.ErrorIs(t, fatal, base)
	assert.Same(t, fatal, storeFatal(fatal))
	assert.NoError(t, storeFatal(nil))

	bad := malformed(base)
	assert.ErrorIs(t, bad, ErrMalformedSource)
	assert.Same(t, bad, malformed(bad))

	assert.True(t, isFatal(fatal))
	assert.True(t, isFatal(fmt.Errorf("read: %w", context.Canceled)))
	assert.True(t, isFatal(context.DeadlineExceeded))
	assert.False(t, isFatal(bad))
	assert.False(t, isFatal(ErrEmptySource))
}
