package addresspool

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voltpass/vpc-backend/internal/types/environments"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

var _ = Describe("AddressPool", func() {
	var pool *Pool

	newPool := func(addresses map[string][]string) *Pool {
		return New(&config.AppConfig{DepositAddresses: addresses}, logger.New(environments.Test))
	}

	BeforeEach(func() {
		pool = newPool(map[string][]string{
			"sol": {"SolAddr1", "SolAddr2"},
			"btc": {"bc1qaddr1"},
		})
	})

	Describe("#Checkout", func() {
		It("should hand out each slot at most once", func() {
			first, err := pool.Checkout("sol")
			Expect(err).NotTo(HaveOccurred())
			second, err := pool.Checkout("sol")
			Expect(err).NotTo(HaveOccurred())

			Expect(first.SlotID).NotTo(Equal(second.SlotID))
			Expect(pool.Available("sol")).To(Equal(0))
		})

		It("should report no capacity when the pool is empty", func() {
			_, err := pool.Checkout("btc")
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Checkout("btc")
			Expect(err).To(MatchError(ErrNoCapacity))
		})

		It("should report no capacity for an unknown currency", func() {
			_, err := pool.Checkout("doge")
			Expect(err).To(MatchError(ErrNoCapacity))
		})

		It("should never return the same slot to concurrent callers", func() {
			big := map[string][]string{"sol": {}}
			for i := 0; i < 50; i++ {
				big["sol"] = append(big["sol"], "SolAddr")
			}
			p := newPool(big)

			var mu sync.Mutex
			seen := map[string]int{}
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					slot, err := p.Checkout("sol")
					if err != nil {
						return
					}
					mu.Lock()
					seen[slot.SlotID]++
					mu.Unlock()
				}()
			}
			wg.Wait()

			Expect(seen).To(HaveLen(50))
			for _, count := range seen {
				Expect(count).To(Equal(1))
			}
		})
	})

	Describe("#Release", func() {
		It("should return a checked-out slot to the available set", func() {
			slot, err := pool.Checkout("btc")
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Available("btc")).To(Equal(0))

			pool.Release("btc", slot.SlotID)
			Expect(pool.Available("btc")).To(Equal(1))

			again, err := pool.Checkout("btc")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Address).To(Equal(slot.Address))
		})

		It("should be idempotent and never duplicate a slot", func() {
			slot, err := pool.Checkout("btc")
			Expect(err).NotTo(HaveOccurred())

			pool.Release("btc", slot.SlotID)
			pool.Release("btc", slot.SlotID)
			pool.Release("btc", slot.SlotID)

			Expect(pool.Available("btc")).To(Equal(1))
		})

		It("should ignore slots the pool has never owned", func() {
			pool.Release("btc", "99")
			Expect(pool.Available("btc")).To(Equal(1))

			pool.Release("doge", "1")
			Expect(pool.Available("doge")).To(Equal(0))
		})
	})

	Describe("#Reserve", func() {
		It("should take a specific slot out of circulation", func() {
			p := newPool(map[string][]string{"sol": {"addr-a", "addr-b"}})

			p.Reserve("sol", "2")
			Expect(p.Available("sol")).To(Equal(1))

			slot, err := p.Checkout("sol")
			Expect(err).NotTo(HaveOccurred())
			Expect(slot.Address).To(Equal("addr-a"))
		})

		It("should be a no-op for already checked-out or unknown slots", func() {
			p := newPool(map[string][]string{"sol": {"addr-a"}})

			p.Reserve("sol", "1")
			p.Reserve("sol", "1")
			p.Reserve("sol", "99")
			Expect(p.Available("sol")).To(Equal(0))

			p.Release("sol", "1")
			Expect(p.Available("sol")).To(Equal(1))
		})
	})
})
