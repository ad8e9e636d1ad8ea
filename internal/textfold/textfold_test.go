package textfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "ynys mon", Fold("Ynys Môn"))
	assert.Equal(t, "kent", Fold("KENT"))
	assert.Equal(t, "", Fold(""))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"Tyne", "and", "Wear"}, Words("Tyne and Wear"))
	assert.Equal(t, []string{"Perth", "Kinross"}, Words("Perth & Kinross"))
	assert.Empty(t, Words("  -- "))
}
