package server

import "testing"

func TestShouldSkipJWT(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{path: "/webhook/line", want: true},
		{path: "/webhook/line/", want: true},
		{path: "/ping", want: true},
		{path: "/health", want: true},
		{path: "/auth/login", want: true},
		{path: "/admin/products", want: false},
		{path: "/admin/cache/stats", want: false},
		{path: "/webhook", want: false},
	}

	for _, tc := range cases {
		got := shouldSkipJWT(tc.path)
		if got != tc.want {
			t.Fatalf("path=%q want=%v got=%v", tc.path, tc.want, got)
		}
	}
}
