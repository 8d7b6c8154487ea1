package syntax_test

import (
	"bytes"
	"slices"
	"testing"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string          // Name of the test case
		want string          // Expected return value
		pos  syntax.Position // Position under test
	}{
		{
			name: "empty",
			pos:  syntax.Position{},
			want: `BadPosition: {Name: "", Line: 0, StartCol: 0, EndCol: 0}`,
		},
		{
			name: "missing name",
			pos:  syntax.Position{Line: 12, StartCol: 2, EndCol: 6},
			want: `BadPosition: {Name: "", Line: 12, StartCol: 2, EndCol: 6}`,
		},
		{
			name: "zero line",
			pos:  syntax.Position{Name: "orders.txt", Line: 0, StartCol: 12, EndCol: 19},
			want: `BadPosition: {Name: "orders.txt", Line: 0, StartCol: 12, EndCol: 19}`,
		},
		{
			name: "zero end column",
			pos:  syntax.Position{Name: "orders.txt", Line: 4, StartCol: 1, EndCol: 0},
			want: `BadPosition: {Name: "orders.txt", Line: 4, StartCol: 1, EndCol: 0}`,
		},
		{
			name: "end less than start",
			pos:  syntax.Position{Name: "orders.txt", Line: 1, StartCol: 6, EndCol: 4},
			want: `BadPosition: {Name: "orders.txt", Line: 1, StartCol: 6, EndCol: 4}`,
		},
		{
			name: "valid single column",
			pos:  syntax.Position{Name: "stdin", Line: 1, StartCol: 6, EndCol: 6},
			want: "stdin:1:6",
		},
		{
			name: "valid column range",
			pos:  syntax.Position{Name: "orders.txt", Line: 17, StartCol: 20, EndCol: 26},
			want: "orders.txt:17:20-26",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.Equal(t, tt.pos.String(), tt.want)
		})
	}
}

func TestComparePosition(t *testing.T) {
	positions := []syntax.Position{
		{Name: "b.txt", Offset: 3},
		{Name: "a.txt", Offset: 10},
		{Name: "a.txt", Offset: 2},
	}

	slices.SortFunc(positions, syntax.ComparePosition)

	want := []syntax.Position{
		{Name: "a.txt", Offset: 2},
		{Name: "a.txt", Offset: 10},
		{Name: "b.txt", Offset: 3},
	}

	test.EqualFunc(t, positions, want, slices.Equal)
}

func TestPrettyConsoleHandler(t *testing.T) {
	hue.Enabled(false)

	buf := &bytes.Buffer{}
	handler := syntax.PrettyConsoleHandler(buf)

	handler(syntax.Position{Name: "orders.txt", Line: 2, StartCol: 1, EndCol: 9}, "Invalid segment format: ProductID")

	test.Equal(t, buf.String(), "orders.txt:2:1-9: Error: Invalid segment format: ProductID\n")
}
