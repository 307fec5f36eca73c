package hashtable

import "fmt"

type (
	// A single cell of the table. The zero value is an empty slot.
	Slot struct {
		state SlotState
		key   string
		value string
	}

	SlotState uint8
)

const (
	Empty SlotState = iota
	Occupied
)

var slotStateStr = []string{"empty", "occupied"}

func (s SlotState) String() string {
	return slotStateStr[s]
}

func (s Slot) IsEmpty() bool { return s.state == Empty }

// Set moves the slot from Empty to Occupied.
// An occupied slot is never written again.
func (s *Slot) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if s.state != Empty {
		return fmt.Errorf("%w: holds %q", ErrSlotOccupied, s.key)
	}

	s.key = key
	s.value = value
	s.state = Occupied

	return nil
}

func (s Slot) State() SlotState { return s.state }

func (s Slot) Key() string { return s.key }

func (s Slot) Value() string { return s.value }

func (s Slot) String() string {
	if s.state == Empty {
		return fmt.Sprintf("(%s)", s.state)
	}

	return fmt.Sprintf("(%q, %q)", s.key, s.value)
}
