package model

// AddressSlot is one allocatable deposit address within a currency pool.
// Identity is immutable; a slot belongs to exactly one pool.
type AddressSlot struct {
	Address string `json:"address"`
	SlotID  string `json:"slot_id"`
}
