package future

import (
	"sync"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("AtomicTask", func() {
	var slot *AtomicTask

	ginkgo.BeforeEach(func() {
		slot = &AtomicTask{}
	})

	ginkgo.It("should wake a parked waker exactly once", func() {
		w := &countWaker{}

		slot.Park(w)
		slot.Notify(nil)

		Expect(w.wakes.Load()).To(Equal(int32(1)))
	})

	ginkgo.It("should do nothing when notified while empty", func() {
		slot.Notify(nil)
	})

	ginkgo.It("should treat a second notify with no intervening park as a no-op", func() {
		w := &countWaker{}

		slot.Park(w)
		slot.Notify(nil)
		slot.Notify(nil)

		Expect(w.wakes.Load()).To(Equal(int32(1)))
	})

	ginkgo.It("should leave the slot untouched when the same waker parks again", func() {
		w := &countWaker{}

		slot.Park(w)
		slot.Park(w)
		slot.Notify(nil)
		slot.Notify(nil)

		Expect(w.wakes.Load()).To(Equal(int32(1)))
	})

	ginkgo.It("should wake only the last-parked waker", func() {
		old := &countWaker{}
		last := &countWaker{}

		slot.Park(old)
		slot.Park(last)
		slot.Notify(nil)

		Expect(old.wakes.Load()).To(Equal(int32(0)))
		Expect(last.wakes.Load()).To(Equal(int32(1)))
	})

	ginkgo.It("should wake exactly once under concurrent notifies", func() {
		const numGoroutine = 16

		w := &countWaker{}
		slot.Park(w)

		var wg sync.WaitGroup
		for i := 0; i < numGoroutine; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				slot.Notify(nil)
			}()
		}
		wg.Wait()

		Expect(w.wakes.Load()).To(Equal(int32(1)))
	})

	ginkgo.It("should support repeated park/notify rounds", func() {
		w := &countWaker{}

		for i := 0; i < 3; i++ {
			slot.Park(w)
			slot.Notify(nil)
		}

		Expect(w.wakes.Load()).To(Equal(int32(3)))
	})
})

var _ = ginkgo.Describe("Task", func() {
	ginkgo.It("should unblock Wait after a wake", func() {
		task := NewTask()

		task.Wake(nil)
		task.Wait()
	})

	ginkgo.It("should collapse multiple wakes into one", func() {
		task := NewTask()

		task.Wake(nil)
		task.Wake(nil)
		task.Wait()

		woken := make(chan struct{})
		go func() {
			task.Wait()
			close(woken)
		}()

		Consistently(woken).ShouldNot(BeClosed())

		task.Wake(nil)
		Eventually(woken).Should(BeClosed())
	})
})
