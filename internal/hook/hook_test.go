package hook

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellviz/internal/grid"
	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/scene"
	"github.com/san-kum/cellviz/internal/scheduler"
	"github.com/san-kum/cellviz/internal/timeutil"
)

// closingRenderer reports the display closed after limit frames.
type closingRenderer struct {
	limit  int64
	inits  atomic.Int64
	frames atomic.Int64
	closed atomic.Bool
}

func (r *closingRenderer) Init(scene.Setup) error {
	r.inits.Add(1)
	return nil
}
func (r *closingRenderer) Render(*scene.Scene, *scene.Camera, render.Stats) error {
	if r.frames.Add(1) >= r.limit {
		return render.ErrDisplayClosed
	}
	return nil
}
func (r *closingRenderer) Close() error {
	r.closed.Store(true)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	pushed []host.Pushed
}

func (r *recorder) push(p host.Pushed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, p)
}

func (r *recorder) events() []host.Pushed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]host.Pushed(nil), r.pushed...)
}

var _ = Describe("Hook", func() {
	var (
		clock    *timeutil.MockClock
		renderer *render.Nop
		rec      *recorder
		local    *host.Local
		h        *Hook
		origLog  func(string, ...interface{})
	)

	frame := time.Second / 60

	BeforeEach(func() {
		origLog = logging.Logf
		logging.SetLogger(nil)

		clock = timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		renderer = &render.Nop{}
		rec = &recorder{}
		local = host.NewLocal(rec.push)

		opts := DefaultOptions()
		opts.Clock = clock
		h = New(renderer, opts)
	})

	AfterEach(func() {
		h.Unmount()
		logging.Logf = origLog
	})

	aliveCount := func() int {
		n := -1
		h.Inspect(func(m *grid.Model, _ *scene.Camera) { n = m.AliveCount() })
		return n
	}

	cellCount := func() int {
		n := -1
		h.Inspect(func(m *grid.Model, _ *scene.Camera) { n = m.Len() })
		return n
	}

	Context("when mounted", func() {
		BeforeEach(func() {
			Expect(h.Mount(local)).To(Succeed())
		})

		It("rebuilds and merges from host events", func() {
			Expect(local.Dispatch(EventCellCount, CellCount{W: 4, H: 4})).To(Succeed())
			Eventually(cellCount).Should(Equal(16))
			Expect(aliveCount()).To(Equal(16))

			Expect(local.Dispatch(EventCellAliveMap, AliveMap{Cells: map[string]bool{
				"0,0": false,
				"2,2": false,
			}})).To(Succeed())
			Eventually(aliveCount).Should(Equal(14))
			Expect(cellCount()).To(Equal(16))

			var dead []string
			h.Inspect(func(m *grid.Model, _ *scene.Camera) {
				m.Range(func(k string, c *grid.Cell) bool {
					if !c.Alive {
						dead = append(dead, k)
					}
					return true
				})
			})
			Expect(dead).To(ConsistOf("0,0", "2,2"))
		})

		It("ignores a snapshot before any grid size", func() {
			Expect(local.Dispatch(EventCellAliveMap, AliveMap{Cells: map[string]bool{"0,0": false}})).To(Succeed())
			Expect(cellCount()).To(Equal(0))
		})

		It("drops malformed payloads", func() {
			Expect(local.DispatchRaw(EventCellCount, json.RawMessage(`{"w":"four"}`))).To(Succeed())
			Expect(cellCount()).To(Equal(0))
		})

		It("reports fps to the host once per second", func() {
			Eventually(func() int {
				clock.Advance(frame)
				return len(rec.events())
			}).Should(BeNumerically(">=", 1))

			first := rec.events()[0]
			Expect(first.Event).To(Equal(EventUpdateFps))
			var p FPS
			Expect(json.Unmarshal(first.Payload, &p)).To(Succeed())
			Expect(p.FPS).To(BeNumerically(">", 0))
		})

		It("orbits the camera", func() {
			Eventually(func() bool {
				clock.Advance(frame)
				return renderer.Frames() > 0
			}).Should(BeTrue())

			var target scene.Vec3
			h.Inspect(func(_ *grid.Model, cam *scene.Camera) { target = cam.Target })
			Expect(target).To(Equal(scene.Vec3{}))
		})

		It("signals that handlers are registered", func() {
			Expect(h.Mounted()).To(BeClosed())
		})

		It("refuses a second mount", func() {
			Expect(h.Mount(local)).To(MatchError(ErrMounted))
		})

		It("stops rendering after unmount", func() {
			Eventually(func() int64 {
				clock.Advance(frame)
				return renderer.Frames()
			}).Should(BeNumerically(">=", 2))

			h.Unmount()
			n := renderer.Frames()
			for i := 0; i < 5; i++ {
				clock.Advance(frame)
			}
			Consistently(renderer.Frames, 50*time.Millisecond).Should(Equal(n))
			Expect(h.Done()).To(BeClosed())
			Expect(h.Inspect(func(*grid.Model, *scene.Camera) {})).To(BeFalse())
		})
	})

	It("is not ready before mount", func() {
		Expect(h.Mounted()).NotTo(BeClosed())
	})

	It("unmounts safely without a mount", func() {
		Expect(h.Unmount).NotTo(Panic())
		Expect(h.Unmount).NotTo(Panic())
	})

	It("refuses to mount after an early unmount", func() {
		r := &closingRenderer{limit: 1 << 40}
		opts := DefaultOptions()
		opts.Clock = clock
		h = New(r, opts)

		h.Unmount()
		Expect(h.Mount(local)).To(MatchError(scheduler.ErrLoopStopped))
		Expect(r.inits.Load()).To(BeZero())
		Expect(r.closed.Load()).To(BeFalse())
		Expect(h.Mounted()).NotTo(BeClosed())
	})

	It("returns from Run when the display closes", func() {
		r := &closingRenderer{limit: 3}
		opts := DefaultOptions()
		opts.Clock = clock
		h = New(r, opts)

		result := make(chan error, 1)
		go func() { result <- h.Run(context.Background(), local) }()

		Eventually(func() bool {
			clock.Advance(frame)
			return r.closed.Load()
		}).Should(BeTrue())
		Eventually(result).Should(Receive(BeNil()))
	})
})
