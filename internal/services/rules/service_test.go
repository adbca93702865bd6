package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wordrace/server/internal/services/dictionary"
	"github.com/wordrace/server/internal/storage/memory"
)

func newChecker(t *testing.T, words ...string) dictionary.Checker {
	t.Helper()
	svc := dictionary.New(memory.New())
	if err := svc.LoadWords(words); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestValidateWordAccepts(t *testing.T) {
	dict := newChecker(t, "table", "elect")

	res := ValidateWord("table", "T", "E", 3, dict)
	assert.True(t, res.Valid)
	assert.Equal(t, "table", res.Word)
	assert.Empty(t, res.Reason)
}

func TestValidateWordEitherOrder(t *testing.T) {
	dict := newChecker(t, "table", "elect")

	// elect starts with the second letter and ends with the first
	res := ValidateWord("elect", "T", "E", 3, dict)
	assert.True(t, res.Valid)
	assert.Equal(t, "elect", res.Word)
}

func TestValidateWordNormalizes(t *testing.T) {
	dict := newChecker(t, "table")

	res := ValidateWord("  TaBLe  ", "T", "E", 3, dict)
	assert.True(t, res.Valid)
	assert.Equal(t, "table", res.Word)
}

func TestValidateWordTooShort(t *testing.T) {
	dict := newChecker(t, "to")

	res := ValidateWord("to", "T", "O", 3, dict)
	assert.False(t, res.Valid)
	assert.Equal(t, "Min 3 chars", res.Reason)
}

func TestValidateWordLengthCheckedBeforeDictionary(t *testing.T) {
	dict := newChecker(t, "table")

	// "xy" is both too short and not a word; length wins
	res := ValidateWord("xy", "X", "Y", 3, dict)
	assert.Equal(t, "Min 3 chars", res.Reason)
}

func TestValidateWordNotAWord(t *testing.T) {
	dict := newChecker(t, "table")

	res := ValidateWord("tqble", "T", "E", 3, dict)
	assert.False(t, res.Valid)
	assert.Equal(t, "Not a word", res.Reason)
}

func TestValidateWordDictionaryCheckedBeforeLetters(t *testing.T) {
	dict := newChecker(t, "table")

	// Wrong letters and not a word; dictionary wins
	res := ValidateWord("zzzzz", "T", "E", 3, dict)
	assert.Equal(t, "Not a word", res.Reason)
}

func TestValidateWordWrongLetters(t *testing.T) {
	dict := newChecker(t, "house")

	res := ValidateWord("house", "T", "E", 3, dict)
	assert.False(t, res.Valid)
	assert.Equal(t, "Wrong letters", res.Reason)
}

func TestValidateWordRoyaleMinLength(t *testing.T) {
	dict := newChecker(t, "tie")

	res := ValidateWord("tie", "T", "E", 4, dict)
	assert.False(t, res.Valid)
	assert.Equal(t, "Min 4 chars", res.Reason)
}

func TestValidateWordSameLetterBothEnds(t *testing.T) {
	dict := newChecker(t, "tot")

	res := ValidateWord("tot", "T", "T", 3, dict)
	assert.True(t, res.Valid)
}
