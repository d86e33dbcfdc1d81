package medium

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/cache/lru"
	"github.com/sarchlab/mediumcache/cache/setassoc"
)

var _ = Describe("MemoryStore", func() {
	var store *MemoryStore

	BeforeEach(func() {
		store = NewMemoryStore()
		Expect(Seed(store, 4)).To(Succeed())
	})

	It("should be seeded", func() {
		Expect(store.Len()).To(Equal(4))

		r, found, err := store.Read("key-2")

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(r.Data()).To(Equal([]byte("2")))
		Expect(r.IsDirty()).To(BeFalse())
	})

	It("should report missing keys", func() {
		_, found, err := store.Read("nope")

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should bump the version on write", func() {
		r, _, _ := store.Read("key-0")
		before := r.Version()
		r.Set([]byte("new"))

		Expect(store.IsDirtyMustWrite(r)).To(BeTrue())
		Expect(store.Write(r)).To(Succeed())

		Expect(store.IsDirtyMustWrite(r)).To(BeFalse())
		Expect(r.Version()).To(BeNumerically(">", before))
		Expect(store.IsDirtyMustRead(r)).To(BeFalse())
	})

	It("should mark older copies as stale", func() {
		old, _, _ := store.Read("key-0")
		mine, _, _ := store.Read("key-0")

		mine.Set([]byte("new"))
		Expect(store.Write(mine)).To(Succeed())

		Expect(store.IsDirtyMustRead(old)).To(BeTrue())
	})

	It("should mark copies of removed keys as stale", func() {
		r, _, _ := store.Read("key-1")
		Expect(store.Remove("key-1")).To(Succeed())

		Expect(store.IsDirtyMustRead(r)).To(BeTrue())

		Expect(store.Seed("key-1", []byte("again"))).To(Succeed())
		Expect(store.IsDirtyMustRead(r)).To(BeTrue())
	})

	It("should refuse to dispose pinned records", func() {
		r, _, _ := store.Read("key-0")
		r.Pin()

		Expect(store.CanDispose(r)).To(BeFalse())

		r.Unpin()

		Expect(store.CanDispose(r)).To(BeTrue())
		Expect(store.Counters().Refusals).To(Equal(uint64(1)))
	})

	Context("shared by two caches", func() {
		var (
			a *lru.Cache[string, *Record]
			b *setassoc.Cache[string, *Record]
		)

		BeforeEach(func() {
			a = lru.MakeBuilder[string, *Record]().
				WithCapacity(2).
				WithMedium(store).
				Build("A")
			b = setassoc.MakeBuilder[string, *Record]().
				WithCapacity(2).
				WithWays(2).
				WithMedium(store).
				Build("B")
		})

		It("should see writes made through the other cache", func() {
			ra, _, err := a.Get("key-0")
			Expect(err).NotTo(HaveOccurred())

			rb, _, err := b.Get("key-0")
			Expect(err).NotTo(HaveOccurred())
			Expect(rb).NotTo(BeIdenticalTo(ra))

			rb.Set([]byte("from B"))
			Expect(b.Put("key-0", rb)).To(Succeed())

			again, found, err := a.Get("key-0")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(again.Data()).To(Equal([]byte("from B")))
			Expect(store.Counters().Writes).To(Equal(uint64(1)))
			Expect(store.Counters().Reads).To(Equal(uint64(3)))
		})

		It("should write new records through on put", func() {
			r := NewRecord("key-9", []byte("nine"))

			Expect(a.Put("key-9", r)).To(Succeed())

			stored, found, _ := store.Read("key-9")
			Expect(found).To(BeTrue())
			Expect(stored.Data()).To(Equal([]byte("nine")))
		})

		It("should report a full cache when every record is pinned", func() {
			for _, k := range []string{"key-0", "key-1"} {
				r, _, err := a.Get(k)
				Expect(err).NotTo(HaveOccurred())
				r.Pin()
			}

			_, _, err := a.Get("key-2")

			Expect(err).To(MatchError(cache.ErrCacheFull))
			Expect(store.Counters().Refusals).To(Equal(uint64(2)))
		})

		It("should count disposals", func() {
			_, _, _ = a.Get("key-0")
			_, _, _ = b.Get("key-0")

			Expect(a.Flush()).To(Succeed())
			Expect(b.Flush()).To(Succeed())

			Expect(store.Counters().Disposals).To(Equal(uint64(2)))
		})
	})
})
