package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		page       int
		wantNumber int
		wantOffset int
	}{
		{page: 1, wantNumber: 1, wantOffset: 0},
		{page: 2, wantNumber: 2, wantOffset: 10},
		{page: 5, wantNumber: 5, wantOffset: 40},
		{page: 0, wantNumber: 1, wantOffset: 0},
		{page: -3, wantNumber: 1, wantOffset: 0},
	}
	for _, tc := range cases {
		number, offset := window(tc.page)
		assert.Equal(t, tc.wantNumber, number, "page %d", tc.page)
		assert.Equal(t, tc.wantOffset, offset, "page %d", tc.page)
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, pageCount(0))
	assert.Equal(t, 1, pageCount(1))
	assert.Equal(t, 1, pageCount(10))
	assert.Equal(t, 2, pageCount(11))
	assert.Equal(t, 2, pageCount(13))
	assert.Equal(t, 2, pageCount(20))
	assert.Equal(t, 3, pageCount(21))
}
