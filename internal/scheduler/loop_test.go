package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellviz/internal/timeutil"
)

const interval = time.Second / 60

var _ = Describe("Loop", func() {
	var (
		clock *timeutil.MockClock
		ticks atomic.Int64
		loop  *Loop
	)

	// advance keeps nudging the mock clock so the loop's ticker fires no
	// matter when the loop goroutine created it.
	advance := func() int64 {
		clock.Advance(interval)
		return ticks.Load()
	}

	BeforeEach(func() {
		clock = timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		ticks.Store(0)
		loop = New(clock, interval, func(time.Time) error {
			ticks.Add(1)
			return nil
		})
	})

	AfterEach(func() {
		loop.Stop()
	})

	Describe("Stop", func() {
		It("is safe without a prior Start", func() {
			Expect(loop.Stop).NotTo(Panic())
			Expect(loop.Done()).To(BeClosed())
			Expect(loop.Post(func() {})).To(BeFalse())
		})

		It("is idempotent", func() {
			Expect(loop.Start()).To(Succeed())
			loop.Stop()
			Expect(loop.Stop).NotTo(Panic())
			Expect(loop.Done()).To(BeClosed())
		})

		It("leaves no tick pending", func() {
			Expect(loop.Start()).To(Succeed())
			Eventually(advance).Should(BeNumerically(">=", 2))

			loop.Stop()
			n := ticks.Load()
			for i := 0; i < 10; i++ {
				clock.Advance(interval)
			}
			Consistently(ticks.Load, 50*time.Millisecond).Should(Equal(n))
		})

		It("rejects a restart", func() {
			loop.Stop()
			Expect(loop.Start()).To(MatchError(ErrLoopStopped))
		})
	})

	Describe("Start", func() {
		It("ticks on every refresh", func() {
			Expect(loop.Start()).To(Succeed())
			Eventually(advance).Should(BeNumerically(">=", 3))
		})

		It("refuses to run twice", func() {
			Expect(loop.Start()).To(Succeed())
			Expect(loop.Start()).To(MatchError(ErrLoopRunning))
		})
	})

	Describe("Post", func() {
		It("applies queued events in order before the first tick", func() {
			var mu sync.Mutex
			var applied []int
			var seen []int

			loop = New(clock, interval, func(time.Time) error {
				mu.Lock()
				defer mu.Unlock()
				if seen == nil {
					seen = append([]int{}, applied...)
				}
				ticks.Add(1)
				return nil
			})
			for i := 1; i <= 3; i++ {
				i := i
				Expect(loop.Post(func() {
					mu.Lock()
					applied = append(applied, i)
					mu.Unlock()
				})).To(BeTrue())
			}

			Expect(loop.Start()).To(Succeed())
			Eventually(advance).Should(BeNumerically(">=", 1))

			mu.Lock()
			defer mu.Unlock()
			Expect(seen).To(Equal([]int{1, 2, 3}))
		})

		It("runs events without waiting for a tick", func() {
			Expect(loop.Start()).To(Succeed())
			ran := make(chan struct{})
			Expect(loop.Post(func() { close(ran) })).To(BeTrue())
			Eventually(ran).Should(BeClosed())
		})
	})

	Describe("tick errors", func() {
		It("stop the loop and are reported", func() {
			errClosed := errors.New("display closed")
			loop = New(clock, interval, func(time.Time) error { return errClosed })

			Expect(loop.Start()).To(Succeed())
			Eventually(func() bool {
				clock.Advance(interval)
				select {
				case <-loop.Done():
					return true
				default:
					return false
				}
			}).Should(BeTrue())
			Expect(loop.Err()).To(MatchError(errClosed))
			Expect(loop.Post(func() {})).To(BeFalse())
		})
	})

	Describe("Run", func() {
		It("blocks until the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			result := make(chan error, 1)
			go func() { result <- loop.Run(ctx) }()

			Eventually(advance).Should(BeNumerically(">=", 1))
			cancel()
			Eventually(result).Should(Receive(BeNil()))
			Expect(loop.Done()).To(BeClosed())
		})
	})
})
