package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ieee0824/bptbl-go/acoustic"
)

// WordID identifies a pronunciation in a Dictionary. Every alternative
// pronunciation of a word has its own id.
type WordID int32

// NoWord marks an absent or unresolved word.
const NoWord WordID = -1

// SilenceWord is the silence filler present in most dictionaries.
const SilenceWord = "<sil>"

// Entry represents a single pronunciation for a word.
type Entry struct {
	Word     string             // unique name, "word(2)" for variants
	Reading  string             // kana reading
	Phonemes []acoustic.Phoneme // phoneme sequence
	Base     WordID             // id of the first pronunciation
	Filler   bool               // silence, noise and other non-linguistic entries
}

// Dictionary holds word-to-pronunciation mappings.
type Dictionary struct {
	entries  []Entry
	ids      map[string]WordID   // unique name -> id
	variants map[WordID][]WordID // base id -> all pronunciations
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		ids:      make(map[string]WordID),
		variants: make(map[WordID][]WordID),
	}
}

// Add adds a pronunciation entry to the dictionary and returns its id.
// A name of the form "word(n)" is kept as given and attached to word as a
// variant; without an entry for word it becomes its own base. Adding a
// name that already exists creates a new variant "word(n)" with the next
// free n. Silence and "++NOISE++" style names are fillers.
func (d *Dictionary) Add(word, reading string, phonemes []acoustic.Phoneme) WordID {
	return d.add(word, reading, phonemes, isFillerName(word))
}

// AddFiller adds a filler pronunciation.
func (d *Dictionary) AddFiller(word string, phonemes []acoustic.Phoneme) WordID {
	return d.add(word, "", phonemes, true)
}

func (d *Dictionary) add(word, reading string, phonemes []acoustic.Phoneme, filler bool) WordID {
	baseName := BaseName(word)
	base, hasBase := d.ids[baseName]
	if prev, taken := d.ids[word]; taken {
		base, hasBase = d.entries[prev].Base, true
		for n := 2; ; n++ {
			word = fmt.Sprintf("%s(%d)", baseName, n)
			if !d.hasName(word) {
				break
			}
		}
	}

	id := WordID(len(d.entries))
	if !hasBase {
		base = id
	}
	d.entries = append(d.entries, Entry{
		Word:     word,
		Reading:  reading,
		Phonemes: phonemes,
		Base:     base,
		Filler:   filler,
	})
	d.ids[word] = id
	d.variants[base] = append(d.variants[base], id)
	return id
}

func (d *Dictionary) hasName(word string) bool {
	_, ok := d.ids[word]
	return ok
}

// BaseName strips a trailing "(n)" pronunciation-variant suffix.
func BaseName(word string) string {
	if !strings.HasSuffix(word, ")") {
		return word
	}
	open := strings.LastIndexByte(word, '(')
	if open <= 0 {
		return word
	}
	if _, err := strconv.Atoi(word[open+1 : len(word)-1]); err != nil {
		return word
	}
	return word[:open]
}

func isFillerName(word string) bool {
	if word == SilenceWord {
		return true
	}
	return len(word) > 4 && strings.HasPrefix(word, "++") && strings.HasSuffix(word, "++")
}

// Load reads a pronunciation dictionary from a tab-separated file.
// Format: word<TAB>reading<TAB>phoneme1 phoneme2 phoneme3 ...
func Load(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	if err := d.read(r, false); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFiller reads a filler dictionary in the same format as Load and
// adds every entry as a filler.
func (d *Dictionary) LoadFiller(r io.Reader) error {
	return d.read(r, true)
}

func (d *Dictionary) read(r io.Reader, filler bool) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			return fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", lineNum, len(parts))
		}

		phonemeStrs := strings.Fields(parts[2])
		if len(phonemeStrs) == 0 {
			return fmt.Errorf("line %d: word %q has no phonemes", lineNum, parts[0])
		}
		phonemes := make([]acoustic.Phoneme, len(phonemeStrs))
		for i, p := range phonemeStrs {
			phonemes[i] = acoustic.Phoneme(p)
		}

		d.add(parts[0], parts[1], phonemes, filler || isFillerName(parts[0]))
	}

	return scanner.Err()
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of pronunciations.
func (d *Dictionary) Len() int { return len(d.entries) }

// ID returns the id of a unique word name.
func (d *Dictionary) ID(word string) (WordID, bool) {
	id, ok := d.ids[word]
	return id, ok
}

// Entry returns the pronunciation with the given id.
func (d *Dictionary) Entry(id WordID) Entry {
	return d.entries[id]
}

// Word returns the unique name of id.
func (d *Dictionary) Word(id WordID) string {
	if id < 0 || int(id) >= len(d.entries) {
		return ""
	}
	return d.entries[id].Word
}

// BaseWord returns the id of the first pronunciation of id's word.
func (d *Dictionary) BaseWord(id WordID) WordID {
	return d.entries[id].Base
}

// IsFiller reports whether id is a filler word.
func (d *Dictionary) IsFiller(id WordID) bool {
	return d.entries[id].Filler
}

// Phonemes returns the phone sequence of id.
func (d *Dictionary) Phonemes(id WordID) []acoustic.Phoneme {
	return d.entries[id].Phonemes
}

// Lookup returns all pronunciation variants for a word.
func (d *Dictionary) Lookup(word string) []Entry {
	base, ok := d.ids[BaseName(word)]
	if !ok {
		id, ok := d.ids[word]
		if !ok {
			return nil
		}
		base = d.entries[id].Base
	}
	ids := d.variants[base]
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = d.entries[id]
	}
	return out
}

// PhonemeSequence returns the phoneme sequence for a word (first pronunciation).
func (d *Dictionary) PhonemeSequence(word string) ([]acoustic.Phoneme, bool) {
	entries := d.Lookup(word)
	if len(entries) == 0 {
		return nil, false
	}
	return entries[0].Phonemes, true
}

// Words returns all base words in the dictionary in id order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.variants))
	for _, e := range d.entries {
		if d.ids[e.Word] == e.Base {
			words = append(words, e.Word)
		}
	}
	return words
}
