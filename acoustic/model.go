package acoustic

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Model maps context-dependent phones to senone-sequence ids. Two
// triphones with the same id share an HMM and are acoustically
// indistinguishable; every monophone of the inventory has its own id.
type Model struct {
	Inventory *Inventory
	ssids     map[Triphone]int
	nextSSID  int
}

// NewModel creates a model holding only the monophones of inv.
func NewModel(inv *Inventory) *Model {
	m := &Model{
		Inventory: inv,
		ssids:     make(map[Triphone]int),
	}
	for _, p := range inv.phones {
		m.ssids[Triphone(p)] = m.nextSSID
		m.nextSSID++
	}
	return m
}

// AddTriphone registers tri with a fresh senone-sequence id and returns it.
// Registering an existing triphone returns its current id.
func (m *Model) AddTriphone(tri Triphone) int {
	if id, ok := m.ssids[tri]; ok {
		return id
	}
	id := m.nextSSID
	m.nextSSID++
	m.ssids[tri] = id
	return id
}

// TieTriphone registers tri as sharing the senone sequence of other.
func (m *Model) TieTriphone(tri, other Triphone) error {
	id, ok := m.ssids[other]
	if !ok {
		return fmt.Errorf("tie %s: unknown triphone %s", tri, other)
	}
	m.ssids[tri] = id
	return nil
}

// AddWord registers the word-internal triphones of a phone sequence.
func (m *Model) AddWord(phonemes []Phoneme) {
	if len(phonemes) < 2 {
		return
	}
	for _, tri := range WordToTriphones(phonemes) {
		m.AddTriphone(tri)
	}
}

// SSID returns the senone-sequence id registered for tri.
func (m *Model) SSID(tri Triphone) (int, bool) {
	id, ok := m.ssids[tri]
	return id, ok
}

// NumSSID returns the number of distinct senone sequences.
func (m *Model) NumSSID() int { return m.nextSSID }

// Resolve returns the senone-sequence id used for center in the given
// contexts: the exact triphone, else the triphone with a word-boundary
// right context, else the monophone.
func (m *Model) Resolve(left, center, right Phoneme) int {
	if id, ok := m.ssids[MakeTriphone(string(left), string(center), string(right))]; ok {
		return id
	}
	if id, ok := m.ssids[MakeTriphone(string(left), string(center), WordBoundary)]; ok {
		return id
	}
	if id, ok := m.ssids[Triphone(center)]; ok {
		return id
	}
	return -1
}

// serializable form for gob encoding
type serializedModel struct {
	Phones   []string
	SSIDs    map[string]int
	NextSSID int
}

// Save serializes the model to a writer using gob encoding.
func (m *Model) Save(w io.Writer) error {
	sm := serializedModel{
		SSIDs:    make(map[string]int, len(m.ssids)),
		NextSSID: m.nextSSID,
	}
	for _, p := range m.Inventory.phones {
		sm.Phones = append(sm.Phones, string(p))
	}
	for tri, id := range m.ssids {
		sm.SSIDs[string(tri)] = id
	}
	return gob.NewEncoder(w).Encode(sm)
}

// Load deserializes a model from a reader.
func Load(r io.Reader) (*Model, error) {
	var sm serializedModel
	if err := gob.NewDecoder(r).Decode(&sm); err != nil {
		return nil, err
	}
	phones := make([]Phoneme, len(sm.Phones))
	for i, p := range sm.Phones {
		phones[i] = Phoneme(p)
	}
	m := &Model{
		Inventory: NewInventory(phones),
		ssids:     make(map[Triphone]int, len(sm.SSIDs)),
		nextSSID:  sm.NextSSID,
	}
	for tri, id := range sm.SSIDs {
		if id < 0 || id >= sm.NextSSID {
			return nil, fmt.Errorf("triphone %s: ssid %d out of range", tri, id)
		}
		if _, ok := m.Inventory.ID(Triphone(tri).CenterPhoneme()); !ok {
			return nil, fmt.Errorf("triphone %s: center phone not in inventory", tri)
		}
		m.ssids[Triphone(tri)] = id
	}
	return m, nil
}
