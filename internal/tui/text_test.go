package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponseKeepsPersianAndLatin(t *testing.T) {
	in := "گربه روی حصار است. The cat is on the fence!"
	assert.Equal(t, in, CleanResponse(in))
}

func TestCleanResponseStripsMarkup(t *testing.T) {
	assert.Equal(t, "پاسخ bold", CleanResponse("پاسخ **bold**"))
	assert.Equal(t, "code", CleanResponse("`code`"))
}

func TestCleanResponseKeepsQuestionMarks(t *testing.T) {
	assert.Equal(t, "گربه کجاست؟ Where?", CleanResponse("گربه کجاست؟ Where?"))
}
