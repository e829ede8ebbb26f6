package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaiunlab/kaiun/internal/store"
)

func TestKeywordTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		keywords string
		want     []string
	}{
		{name: "empty", keywords: "", want: nil},
		{name: "blank", keywords: "  ", want: nil},
		{name: "single", keywords: "恋愛", want: []string{"恋愛"}},
		{name: "trimmed", keywords: " 恋愛 , 金運 ,仕事", want: []string{"恋愛", "金運", "仕事"}},
		{name: "empty tokens dropped", keywords: "love,,  ,money", want: []string{"love", "money"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := store.ProductRecord{Keywords: tc.keywords}
			require.Equal(t, tc.want, p.KeywordTokens())
		})
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("column \"keywords\" does not exist")
	err := &store.StoreError{Op: "list products", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "list products")

	var storeErr *store.StoreError
	require.ErrorAs(t, error(err), &storeErr)
}
