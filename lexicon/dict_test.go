package lexicon

import (
	"strings"
	"testing"

	"github.com/ieee0824/bptbl-go/acoustic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDict = `# Japanese pronunciation dictionary
東京	トウキョウ	t o u k y o u
タワー	タワー	t a w a long
食べる	タベル	t a b e r u
食べる	タベル	t a b e r u
<sil>		sil
`

func TestLoadDict(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// 東京 should have 1 entry
	entries := d.Lookup("東京")
	if len(entries) != 1 {
		t.Fatalf("東京 entries = %d, want 1", len(entries))
	}
	if entries[0].Reading != "トウキョウ" {
		t.Errorf("東京 reading = %s, want トウキョウ", entries[0].Reading)
	}
	if len(entries[0].Phonemes) != 7 {
		t.Errorf("東京 phonemes = %d, want 7", len(entries[0].Phonemes))
	}
	if entries[0].Phonemes[0] != acoustic.PhonT {
		t.Errorf("東京 phonemes[0] = %s, want t", entries[0].Phonemes[0])
	}

	// 食べる should have 2 entries (duplicates)
	entries = d.Lookup("食べる")
	if len(entries) != 2 {
		t.Errorf("食べる entries = %d, want 2", len(entries))
	}
}

func TestPhonemeSequence(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	phonemes, ok := d.PhonemeSequence("東京")
	if !ok {
		t.Fatal("東京 not found")
	}
	expected := []acoustic.Phoneme{"t", "o", "u", "k", "y", "o", "u"}
	if len(phonemes) != len(expected) {
		t.Fatalf("len = %d, want %d", len(phonemes), len(expected))
	}
	for i := range expected {
		if phonemes[i] != expected[i] {
			t.Errorf("phonemes[%d] = %s, want %s", i, phonemes[i], expected[i])
		}
	}
}

func TestLookupMissing(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	_, ok := d.PhonemeSequence("存在しない")
	if ok {
		t.Error("should not find nonexistent word")
	}
}

func TestWords(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	words := d.Words()
	if len(words) != 4 {
		t.Errorf("len(Words) = %d, want 4", len(words))
	}
}

func TestVariantIDs(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	require.NoError(t, err)
	require.Equal(t, 5, d.Len())

	base, ok := d.ID("食べる")
	require.True(t, ok)
	variant, ok := d.ID("食べる(2)")
	require.True(t, ok)

	assert.NotEqual(t, base, variant)
	assert.Equal(t, base, d.BaseWord(variant))
	assert.Equal(t, base, d.BaseWord(base))
	assert.Equal(t, "食べる(2)", d.Word(variant))
}

func TestExplicitVariantName(t *testing.T) {
	d := NewDictionary()
	a := d.Add("あ", "ア", []acoustic.Phoneme{acoustic.PhonA})
	b := d.Add("あ(2)", "ア", []acoustic.Phoneme{acoustic.PhonA, acoustic.PhonLong})
	assert.Equal(t, a, d.BaseWord(b))
	assert.Equal(t, "あ(2)", d.Word(b))

	c := d.Add("あ(4)", "ア", []acoustic.Phoneme{acoustic.PhonA, acoustic.PhonA})
	assert.Equal(t, "あ(4)", d.Word(c))
	id, ok := d.ID("あ(4)")
	require.True(t, ok)
	assert.Equal(t, c, id)
	assert.Equal(t, a, d.BaseWord(c))

	// The next generated name skips the one taken explicitly.
	e := d.Add("あ", "ア", []acoustic.Phoneme{acoustic.PhonA, acoustic.PhonI})
	assert.Equal(t, "あ(3)", d.Word(e))
	f := d.Add("あ", "ア", []acoustic.Phoneme{acoustic.PhonA, acoustic.PhonU})
	assert.Equal(t, "あ(5)", d.Word(f))
	assert.Len(t, d.Lookup("あ"), 5)
}

func TestVariantWithoutBase(t *testing.T) {
	d := NewDictionary()
	b := d.Add("い(2)", "イ", []acoustic.Phoneme{acoustic.PhonI})
	assert.Equal(t, "い(2)", d.Word(b))
	assert.Equal(t, b, d.BaseWord(b))
	_, ok := d.ID("い")
	assert.False(t, ok)
	assert.Len(t, d.Lookup("い(2)"), 1)

	dup := d.Add("い(2)", "イ", []acoustic.Phoneme{acoustic.PhonI, acoustic.PhonI})
	assert.Equal(t, "い(3)", d.Word(dup))
	assert.Equal(t, b, d.BaseWord(dup))
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"word":      "word",
		"word(2)":   "word",
		"word(x)":   "word(x)",
		"(3)":       "(3)",
		"ab(12)":    "ab",
		"++NOISE++": "++NOISE++",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseName(in), in)
	}
}

func TestFillers(t *testing.T) {
	d, err := Load(strings.NewReader(testDict))
	require.NoError(t, err)
	require.NoError(t, d.LoadFiller(strings.NewReader("<cough>\t\tsil\n")))

	sil, ok := d.ID(SilenceWord)
	require.True(t, ok)
	assert.True(t, d.IsFiller(sil))

	cough, ok := d.ID("<cough>")
	require.True(t, ok)
	assert.True(t, d.IsFiller(cough))

	tokyo, _ := d.ID("東京")
	assert.False(t, d.IsFiller(tokyo))

	noise := d.Add("++BREATH++", "", []acoustic.Phoneme{acoustic.PhonSil})
	assert.True(t, d.IsFiller(noise))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("東京\tトウキョウ\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("東京\tトウキョウ\t \n"))
	assert.Error(t, err)
}
