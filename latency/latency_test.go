package latency_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/latency"
)

func TestLatency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latency Suite")
}

var _ = Describe("Config", func() {
	It("should default to the reference 30ms block-read latency", func() {
		config := latency.DefaultConfig()
		Expect(config.BlockRead).To(Equal(30 * time.Millisecond))
		Expect(config.Validate()).To(Succeed())
	})

	It("should reject negative latencies", func() {
		config := &latency.Config{BlockRead: -time.Millisecond}
		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should clone independently", func() {
		config := latency.DefaultConfig()
		clone := config.Clone()
		clone.BlockRead = time.Second
		Expect(config.BlockRead).To(Equal(30 * time.Millisecond))
	})

	Describe("file round trip", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and reload a config", func() {
			path := filepath.Join(tempDir, "latency.json")
			config := &latency.Config{BlockRead: 5 * time.Millisecond}

			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.BlockRead).To(Equal(5 * time.Millisecond))
		})

		It("should fail on a missing file", func() {
			_, err := latency.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Model", func() {
	It("should sleep for the configured block-read latency", func() {
		var slept []time.Duration
		m := latency.NewModelWithConfig(
			&latency.Config{BlockRead: 7 * time.Millisecond},
			latency.WithSleeper(func(d time.Duration) {
				slept = append(slept, d)
			}),
		)

		m.BlockRead()

		Expect(slept).To(Equal([]time.Duration{7 * time.Millisecond}))
	})

	It("should not sleep when the latency is zero", func() {
		called := false
		m := latency.NewModelWithConfig(
			&latency.Config{},
			latency.WithSleeper(func(time.Duration) { called = true }),
		)

		m.BlockRead()

		Expect(called).To(BeFalse())
	})
})
