package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	from, limit := Calculate(3, 10)
	require.Equal(t, 20, from)
	require.Equal(t, 10, limit)

	from, limit = Calculate(0, 500)
	require.Equal(t, 0, from)
	require.Equal(t, DefaultPageSize, limit)
}

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 7, ParseIntDefault("", 7))
	require.Equal(t, 7, ParseIntDefault("abc", 7))
	require.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 2, 10, 25)
	require.NotNil(t, p.Data)
	require.Equal(t, int64(3), p.Meta.TotalPages)
	require.True(t, p.Meta.HasPrev)
	require.True(t, p.Meta.HasNext)

	p = NewPage([]int{1}, 3, 10, 25)
	require.False(t, p.Meta.HasNext)
}
