package addresspool

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// ErrNoCapacity is returned when a pool has no available deposit address.
// Callers surface it as a retry-later condition, not a fault.
var ErrNoCapacity = errors.New("no available deposit address")

// Pool hands out deposit address slots per currency. Every slot is in exactly
// one of two partitions, available or checked-out, and moves between them only
// through Checkout and Release under one mutex.
type Pool struct {
	mux sync.Mutex

	// known holds every slot the pool was built with, keyed by pool key then
	// slot id. Release refuses anything outside this set.
	known     map[string]map[string]model.AddressSlot
	available map[string][]model.AddressSlot

	logger *logger.Logger
}

// New builds the pool from the configured per-currency address lists. Slot ids
// are assigned positionally, starting at "1".
func New(appConfig *config.AppConfig, logger *logger.Logger) *Pool {
	p := &Pool{
		known:     map[string]map[string]model.AddressSlot{},
		available: map[string][]model.AddressSlot{},
		logger:    logger,
	}

	for poolKey, addresses := range appConfig.DepositAddresses {
		p.known[poolKey] = map[string]model.AddressSlot{}
		for i, address := range addresses {
			slot := model.AddressSlot{
				Address: address,
				SlotID:  strconv.Itoa(i + 1),
			}
			p.known[poolKey][slot.SlotID] = slot
			p.available[poolKey] = append(p.available[poolKey], slot)
		}
	}

	return p
}

// Checkout removes and returns one available slot for the currency. It never
// hands the same slot to two callers.
func (p *Pool) Checkout(poolKey string) (*model.AddressSlot, error) {
	p.mux.Lock()
	defer p.mux.Unlock()

	slots := p.available[poolKey]
	if len(slots) == 0 {
		return nil, ErrNoCapacity
	}

	slot := slots[0]
	p.available[poolKey] = slots[1:]

	return &slot, nil
}

// Release returns a slot to the available set. Releasing a slot that is
// already available, or one the pool has never owned, is a no-op; the
// available set never holds duplicates.
func (p *Pool) Release(poolKey, slotID string) {
	p.mux.Lock()
	defer p.mux.Unlock()

	slot, ok := p.known[poolKey][slotID]
	if !ok {
		p.logger.Error("release of unknown slot ignored", map[string]string{
			"pool_key": poolKey,
			"slot_id":  slotID,
		})
		return
	}

	for _, s := range p.available[poolKey] {
		if s.SlotID == slotID {
			return
		}
	}

	p.available[poolKey] = append(p.available[poolKey], slot)
}

// Reserve removes a specific slot from the available set. It is used when
// rebuilding in-memory state from persisted orders at startup. Reserving a
// slot that is already checked out, or one the pool has never owned, is a
// no-op.
func (p *Pool) Reserve(poolKey, slotID string) {
	p.mux.Lock()
	defer p.mux.Unlock()

	if _, ok := p.known[poolKey][slotID]; !ok {
		p.logger.Error("reserve of unknown slot ignored", map[string]string{
			"pool_key": poolKey,
			"slot_id":  slotID,
		})
		return
	}

	slots := p.available[poolKey]
	for i, s := range slots {
		if s.SlotID == slotID {
			p.available[poolKey] = append(slots[:i], slots[i+1:]...)
			return
		}
	}
}

// Available returns the number of free slots for the currency.
func (p *Pool) Available(poolKey string) int {
	p.mux.Lock()
	defer p.mux.Unlock()

	return len(p.available[poolKey])
}

// PoolKeys returns every currency the pool was configured with.
func (p *Pool) PoolKeys() []string {
	p.mux.Lock()
	defer p.mux.Unlock()

	keys := make([]string, 0, len(p.known))
	for k := range p.known {
		keys = append(keys, k)
	}
	return keys
}
