package acoustic

// Phoneme represents a Japanese phoneme.
type Phoneme string

const (
	// Silence and pause
	PhonSil Phoneme = "sil" // silence
	PhonSP  Phoneme = "sp"  // short pause

	// Vowels
	PhonA Phoneme = "a"
	PhonI Phoneme = "i"
	PhonU Phoneme = "u"
	PhonE Phoneme = "e"
	PhonO Phoneme = "o"

	// Stops (voiceless/voiced)
	PhonK Phoneme = "k"
	PhonG Phoneme = "g"
	PhonT Phoneme = "t"
	PhonD Phoneme = "d"
	PhonP Phoneme = "p"
	PhonB Phoneme = "b"

	// Fricatives
	PhonS Phoneme = "s"
	PhonZ Phoneme = "z"
	PhonH Phoneme = "h"
	PhonF Phoneme = "f" // [ɸ] as in ふ

	// Affricates
	PhonCh Phoneme = "ch" // [tɕ] as in ち
	PhonTs Phoneme = "ts" // [ts] as in つ
	PhonJ  Phoneme = "j"  // [dʑ] as in じ

	// Nasals
	PhonM  Phoneme = "m"
	PhonN  Phoneme = "n"
	PhonNg Phoneme = "ng" // moraic nasal ん

	// Liquid
	PhonR Phoneme = "r" // Japanese flap

	// Glides
	PhonY Phoneme = "y"
	PhonW Phoneme = "w"

	// Sibilant
	PhonSh Phoneme = "sh" // [ɕ] as in し

	// Special morae
	PhonQ    Phoneme = "q"    // geminate っ
	PhonLong Phoneme = "long" // long vowel ー
)

// PhoneID is the position of a context-independent phone in an Inventory.
type PhoneID int16

// NoPhone marks an absent phone, e.g. the second-to-last phone of a
// single-phone word.
const NoPhone PhoneID = -1

// AllPhonemes returns the complete Japanese phoneme set.
func AllPhonemes() []Phoneme {
	return []Phoneme{
		PhonSil, PhonSP,
		PhonA, PhonI, PhonU, PhonE, PhonO,
		PhonK, PhonG, PhonT, PhonD, PhonP, PhonB,
		PhonS, PhonZ, PhonH, PhonF,
		PhonCh, PhonTs, PhonJ,
		PhonM, PhonN, PhonNg,
		PhonR,
		PhonY, PhonW,
		PhonSh,
		PhonQ, PhonLong,
	}
}

// Inventory is an ordered set of context-independent phones. The order
// defines PhoneID values and the order in which right contexts are
// enumerated.
type Inventory struct {
	phones []Phoneme
	index  map[Phoneme]PhoneID
}

// NewInventory builds an inventory from phones. Duplicates keep their
// first position.
func NewInventory(phones []Phoneme) *Inventory {
	inv := &Inventory{index: make(map[Phoneme]PhoneID, len(phones))}
	for _, p := range phones {
		if _, ok := inv.index[p]; ok {
			continue
		}
		inv.index[p] = PhoneID(len(inv.phones))
		inv.phones = append(inv.phones, p)
	}
	return inv
}

// DefaultInventory returns the inventory of AllPhonemes.
func DefaultInventory() *Inventory {
	return NewInventory(AllPhonemes())
}

// Len returns the number of phones.
func (inv *Inventory) Len() int { return len(inv.phones) }

// ID returns the id of p.
func (inv *Inventory) ID(p Phoneme) (PhoneID, bool) {
	id, ok := inv.index[p]
	return id, ok
}

// Phone returns the phone with the given id.
func (inv *Inventory) Phone(id PhoneID) Phoneme {
	return inv.phones[id]
}

// Phones returns the phones in id order.
func (inv *Inventory) Phones() []Phoneme {
	out := make([]Phoneme, len(inv.phones))
	copy(out, inv.phones)
	return out
}
