package utils

import "testing"

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/", ""},
		{"/due_date", "due_date"},
		{"#/due_date", "due_date"},
		{"/tasks/0/title", "tasks[0].title"},
		{"/0", "[0]"},
		{"/a~1b/c~0d", "a/b.c~d"},
		{"/a//b", "a.b"},
	}

	for _, tt := range tests {
		if got := JSONPointerToPath(tt.ptr); got != tt.want {
			t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.ptr, got, tt.want)
		}
	}
}
