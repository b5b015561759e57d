package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFileName(t *testing.T) {
	assert.Equal(t, "Trip_to_Bali_2024", CleanFileName("  Trip to   Bali 2024 "))
	assert.Equal(t, "a_b_c", CleanFileName("a/b:c"))
	assert.Equal(t, "group", CleanFileName("   "))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "note", FirstNonEmpty("", "  ", " note ", "tag"))
	assert.Equal(t, "", FirstNonEmpty("", " "))
}
