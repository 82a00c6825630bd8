package trace

import (
	"errors"

	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Simple steppable clock implementation.
type stepClock struct {
	now int64
}

func (c *stepClock) Now() int64 {
	c.now++
	return c.now
}

var _ = Describe("State", func() {
	var (
		mockCtrl *gomock.Controller
		clock    *MockClock
		sink     *MockSink
		state    *State
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = NewMockClock(mockCtrl)
		sink = NewMockSink(mockCtrl)

		clock.EXPECT().Now().Return(int64(1))
		sink.EXPECT().Collect(gomock.Any())
		state = NewState("driver-0", clock, sink)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic if the clock is missing", func() {
		Expect(func() {
			NewState("driver-1", nil, sink)
		}).To(Panic())
	})

	It("should panic if the sink is missing", func() {
		Expect(func() {
			NewState("driver-1", clock, nil)
		}).To(Panic())
	})

	It("should stamp time with the clock", func() {
		clock.EXPECT().Now().Return(int64(42))

		Expect(state.Now()).To(Equal(int64(42)))
	})

	It("should forward events to the sink unchanged", func() {
		e := AsyncOnCPU(SpanID(3), 99)
		sink.EXPECT().Collect(e)

		state.Emit(e)
	})

	It("should start with no current span", func() {
		Expect(state.CurrentSpan()).To(Equal(NoSpan))
	})

	It("should panic when closed with a span still open", func() {
		state.SetCurrentSpan(SpanID(7))

		Expect(func() { state.Close() }).To(Panic())
	})
})

var _ = Describe("State scopes", func() {
	var (
		clock   *stepClock
		capture *CaptureSink
		state   *State
	)

	BeforeEach(func() {
		clock = &stepClock{}
		capture = NewCaptureSink()
		state = NewState("driver-0", clock, capture)
	})

	It("should emit the thread lifecycle events", func() {
		state.Close()

		events := capture.Events()
		Expect(events).To(HaveLen(2))
		Expect(events[0].Kind).To(Equal(KindThreadStart))
		Expect(events[0].Name).To(Equal("driver-0"))
		Expect(events[1].Kind).To(Equal(KindThreadEnd))
		Expect(events[1].ID).To(Equal(events[0].ID))
	})

	It("should bracket fn with sync events and restore the current span", func() {
		err := state.Scope("root", func() error {
			Expect(state.CurrentSpan()).NotTo(Equal(NoSpan))
			return nil
		})

		Expect(err).To(BeNil())
		Expect(state.CurrentSpan()).To(Equal(NoSpan))

		events := capture.Events()
		Expect(events).To(HaveLen(3))
		Expect(events[1].Kind).To(Equal(KindSyncStart))
		Expect(events[1].Name).To(Equal("root"))
		Expect(events[1].ParentID).To(Equal(NoSpan))
		Expect(events[2].Kind).To(Equal(KindSyncEnd))
		Expect(events[2].ID).To(Equal(events[1].ID))
		Expect(events[2].Outcome).To(Equal(OutcomeSuccess))
		Expect(events[2].Time).To(BeNumerically(">", events[1].Time))
	})

	It("should parent nested scopes on the enclosing one", func() {
		var rootID, childParent SpanID

		_ = state.Scope("root", func() error {
			rootID = state.CurrentSpan()

			return state.Scope("child", func() error {
				return nil
			})
		})

		events := capture.Events()
		for _, e := range events {
			if e.Kind == KindSyncStart && e.Name == "child" {
				childParent = e.ParentID
			}
		}

		Expect(childParent).To(Equal(rootID))
	})

	It("should record fn's error and return it unchanged", func() {
		wantErr := errors.New("out of coffee")

		err := state.Scope("root", func() error { return wantErr })

		Expect(err).To(Equal(wantErr))

		events := capture.Events()
		last := events[len(events)-1]
		Expect(last.Kind).To(Equal(KindSyncEnd))
		Expect(last.Outcome).To(Equal(OutcomeError))
		Expect(last.Error).To(Equal("out of coffee"))
	})

	It("should close the span and re-panic when fn panics", func() {
		Expect(func() {
			_ = state.Scope("root", func() error {
				panic("boom")
			})
		}).To(Panic())

		Expect(state.CurrentSpan()).To(Equal(NoSpan))

		events := capture.Events()
		last := events[len(events)-1]
		Expect(last.Kind).To(Equal(KindSyncEnd))
		Expect(last.Outcome).To(Equal(OutcomeError))
	})

	It("should panic if fn leaks a span", func() {
		Expect(func() {
			_ = state.Scope("root", func() error {
				state.SetCurrentSpan(SpanID(9999))
				return nil
			})
		}).To(Panic())
	})
})
