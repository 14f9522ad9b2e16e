package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		native bool
		kind   ValueKind
	}{
		{name: "blank is null", in: "  ", native: true, kind: KindNull},
		{name: "text", in: "hello", native: true, kind: KindString},
		{name: "numbers stay text", in: "42", native: true, kind: KindString},
		{name: "true literal", in: "TRUE", native: true, kind: KindBool},
		{name: "false literal", in: "false", native: true, kind: KindBool},
		{name: "iso date", in: "2023-01-15", native: true, kind: KindDate},
		{name: "iso datetime", in: "2023-01-15T10:30:00Z", native: true, kind: KindDate},
		{name: "us date", in: "1/15/2023", native: true, kind: KindDate},
		{name: "european date", in: "15.1.2023", native: true, kind: KindDate},
		{name: "time only", in: "10:30:00", native: true, kind: KindDate},
		{name: "not native", in: "true", native: false, kind: KindString},
		{name: "not native date", in: "2023-01-15", native: false, kind: KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := ParseText(tt.in, tt.native)
			if v.Kind() != tt.kind {
				t.Errorf("ParseText(%q, %v).Kind() = %v, want %v", tt.in, tt.native, v.Kind(), tt.kind)
			}
		})
	}
}

func TestParseText_KeepsRawText(t *testing.T) {
	t.Parallel()

	v := ParseText("True", true)
	b, ok := v.Bool()
	assert.True(t, ok)
	assert.True(t, b)
	assert.Equal(t, "True", v.String())

	d := ParseText("2023-01-15", true)
	ts, ok := d.Time()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), ts)
	assert.Equal(t, "2023-01-15", d.String())
}

func TestValue_Native(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, NullValue().Native(TypeInteger))
	assert.Equal(t, int64(30), StringValue("30").Native(TypeInteger))
	assert.Equal(t, int64(3), StringValue("3.0").Native(TypeInteger))
	assert.Equal(t, 4.5, StringValue("4.5").Native(TypeFloat))
	assert.Equal(t, float64(4), IntValue(4).Native(TypeDouble))
	assert.Equal(t, true, BoolValue(true).Native(TypeBoolean))
	assert.Equal(t, date, DateValue(date).Native(TypeDate))
	assert.Equal(t, "30", StringValue("30").Native(TypeString))
	assert.Equal(t, "x", StringValue("x").Native(TypeInteger), "unfit values fall back to text")
	assert.Equal(t, "9223372036854775808", StringValue("9223372036854775808").Native(TypeInteger), "out of range stays text")
	assert.Equal(t, int64(math.MaxInt64), StringValue("9223372036854775807").Native(TypeInteger))
	assert.Equal(t, "2024-02-29T12:00:00Z", DateValue(date).Native(TypeString))
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NullValue().String())
	assert.Equal(t, "-5", IntValue(-5).String())
	assert.Equal(t, "0.25", FloatValue(0.25).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, []string{"a", "1", ""}, RawRow{StringValue("a"), IntValue(1), NullValue()}.Strings())
}
