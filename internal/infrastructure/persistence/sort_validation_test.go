package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortColumns_Column(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"allowed field", "last_name", "last_name"},
		{"trimmed field", "  cin ", "cin"},
		{"fallback itself", "created_at", "created_at"},
		{"empty falls back", "", "created_at"},
		{"unknown falls back", "salary", "created_at"},
		{"injection falls back", "cin; DROP TABLE employees", "created_at"},
		{"case sensitive", "LAST_NAME", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, employeeSortColumns.column(tt.input))
		})
	}
}

func TestSortColumns_OrderBy(t *testing.T) {
	tests := []struct {
		dir  string
		desc bool
	}{
		{"asc", false},
		{"  ASC ", false},
		{"desc", true},
		{"", true},
		{"ASC; DROP TABLE employees;--", true},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			o := employeeSortColumns.orderBy("last_name", tt.dir)
			assert.Equal(t, "last_name", o.Column.Name)
			assert.Equal(t, tt.desc, o.Desc)
		})
	}

	o := employeeSortColumns.orderBy("password", "asc")
	assert.Equal(t, "created_at", o.Column.Name)
	assert.False(t, o.Desc)
}
