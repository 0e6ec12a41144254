package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"r0": 0}
	b := map[string]int{"cr": 1}

	all := maps.Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"r0": 0, "cr": 1}, all)

	var order []int
	for n := range IterSeq2Concat(slices.All([]int{7, 8}), slices.All([]int{9})) {
		order = append(order, n)
	}
	assert.Equal([]int{0, 1, 0}, order)

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		break
	}
	assert.Equal(1, count)
}
