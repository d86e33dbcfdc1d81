package hooking

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type sampleDomain struct {
	HookableBase
}

func (d *sampleDomain) Name() string {
	return "Domain"
}

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *sampleDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = &sampleDomain{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke all hooks in order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		domain.AcceptHook(hook1)
		domain.AcceptHook(hook2)

		pos := &HookPos{Name: "Pos"}
		ctx := HookCtx{Domain: domain, Pos: pos, Item: "key"}

		gomock.InOrder(
			hook1.EXPECT().Func(ctx),
			hook2.EXPECT().Func(ctx),
		)

		domain.InvokeHook(ctx)

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(domain.Hooks()).To(HaveLen(2))
	})

	It("should panic on duplicated hook", func() {
		hook := NewMockHook(mockCtrl)
		domain.AcceptHook(hook)

		Expect(func() { domain.AcceptHook(hook) }).To(Panic())
	})

	It("should accept hook functions", func() {
		count := 0
		domain.AcceptHook(HookFunc(func(ctx HookCtx) { count++ }))
		domain.AcceptHook(HookFunc(func(ctx HookCtx) { count += 10 }))

		domain.InvokeHook(HookCtx{Domain: domain})

		Expect(count).To(Equal(11))
	})
})

var _ = Describe("HookableBase under concurrent use", func() {
	It("should accept hooks while invoking them", func() {
		domain := &sampleDomain{}
		var count atomic.Int64
		wg := sync.WaitGroup{}

		for g := 0; g < 4; g++ {
			wg.Add(2)

			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				for i := 0; i < 100; i++ {
					domain.AcceptHook(HookFunc(func(HookCtx) { count.Add(1) }))
				}
			}()

			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				for i := 0; i < 100; i++ {
					if domain.NumHooks() > 0 {
						domain.InvokeHook(HookCtx{Domain: domain})
					}
					_ = domain.Hooks()
				}
			}()
		}

		wg.Wait()

		Expect(domain.NumHooks()).To(Equal(400))
		Expect(domain.Hooks()).To(HaveLen(400))
	})

	It("should let a hook attach another hook", func() {
		domain := &sampleDomain{}
		inner := 0
		domain.AcceptHook(HookFunc(func(HookCtx) {
			domain.AcceptHook(HookFunc(func(HookCtx) { inner++ }))
		}))

		domain.InvokeHook(HookCtx{Domain: domain})
		Expect(inner).To(Equal(0))

		domain.InvokeHook(HookCtx{Domain: domain})
		Expect(inner).To(Equal(1))
		Expect(domain.NumHooks()).To(Equal(3))
	})
})
