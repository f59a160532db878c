package mmio_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/card"
	"github.com/sarchlab/sdsim/disk"
	"github.com/sarchlab/sdsim/latency"
	"github.com/sarchlab/sdsim/mmio"
)

func TestMMIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MMIO Suite")
}

var _ = Describe("Window", func() {
	var (
		c *card.Controller
		w *mmio.Window
	)

	BeforeEach(func() {
		store := disk.NewStore()
		c = card.New(store, card.WithLatency(
			latency.NewModel(latency.WithSleeper(func(time.Duration) {})),
		))
		w = mmio.NewWindow(c)
	})

	It("should forward TxData writes to the controller", func() {
		Expect(w.Write(mmio.TxData, 0x40)).To(Succeed())
		Expect(c.State()).To(Equal(card.StateReceivingCmd0))
	})

	It("should use only the low byte of a store", func() {
		Expect(w.Write(mmio.TxData, 0xABCD40)).To(Succeed())
		Expect(c.State()).To(Equal(card.StateReceivingCmd0))
	})

	It("should ignore writes to reserved offsets", func() {
		Expect(w.Write(0x00, 0x42)).To(Succeed())
		Expect(w.Write(mmio.RxData, 0x42)).To(Succeed())
		Expect(c.State()).To(Equal(card.StateIdle))
	})

	It("should read 0 from reserved offsets with no side effect", func() {
		for _, b := range []byte{0x40, 0x00, 0x00, 0x00, 0x00, 0x95} {
			Expect(w.Write(mmio.TxData, uint64(b))).To(Succeed())
		}

		v, err := w.Read(0x00)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0)))

		// The reserved read must not have consumed the transition
		// read: the next two RxData reads follow the normal sequence.
		v, err = w.Read(mmio.RxData)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0xFF)))

		v, err = w.Read(mmio.RxData)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0x01)))
	})

	It("should surface controller errors on RxData reads", func() {
		// CMD17 addressing the first block past capacity.
		for _, b := range []byte{0x51, 0x00, 0x00, 0x20, 0x00, 0xFF} {
			Expect(w.Write(mmio.TxData, uint64(b))).To(Succeed())
		}
		_, err := w.Read(mmio.RxData) // transition read
		Expect(err).NotTo(HaveOccurred())

		_, err = w.Read(mmio.RxData)
		Expect(err).To(MatchError(disk.ErrBlockOutOfRange))
	})

	It("should surface controller errors on TxData writes", func() {
		err := w.Write(mmio.TxData, 0x42)
		Expect(err).To(MatchError(card.ErrUnknownCommand))
	})

	It("should reject accesses outside the window", func() {
		Expect(w.Write(mmio.WindowSize, 0)).NotTo(Succeed())
		_, err := w.Read(mmio.WindowSize)
		Expect(err).To(HaveOccurred())
	})
})
