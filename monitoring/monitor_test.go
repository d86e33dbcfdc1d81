package monitoring

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/cache/cachetest"
	"github.com/sarchlab/mediumcache/cache/lru"
	"github.com/sarchlab/mediumcache/datarecording"
	"github.com/sarchlab/mediumcache/idgen"
	"github.com/sarchlab/mediumcache/tracing"

	// Need SQLite driver for tests
	_ "github.com/mattn/go-sqlite3"
)

func serve(m *Monitor, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Router().ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		medium *cachetest.Medium
		c      *lru.Cache[string, *cachetest.Item]
	)

	BeforeEach(func() {
		m = NewMonitor()
		medium = cachetest.NewMedium(map[string]int{"A": 1, "B": 2, "C": 3})
		c = lru.MakeBuilder[string, *cachetest.Item]().
			WithCapacity(2).
			WithMedium(medium).
			Build("L1")
		m.RegisterCache(c)
	})

	It("should reject a port below 1000", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should not register two caches with the same name", func() {
		Expect(func() { m.RegisterCache(c) }).To(Panic())
	})

	It("should list caches", func() {
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodGet, "/api/list_caches")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(
			`[{"name":"L1","len":1,"capacity":2}]`))
	})

	It("should report stats", func() {
		_, _, _ = c.Get("A")
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodGet, "/api/stats/L1")

		var stats tracing.Stats
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.HitRatio).To(BeNumerically("~", 0.5))
	})

	It("should return 404 for unknown caches", func() {
		for _, target := range []string{
			"/api/cache/L9",
			"/api/stats/L9",
			"/api/events/L9",
			"/api/field/" +
				url.PathEscape(`{"cache_name":"L9","field_name":"capacity"}`),
		} {
			Expect(serve(m, http.MethodGet, target).Code).
				To(Equal(http.StatusNotFound))
		}
	})

	It("should reject malformed field requests", func() {
		rec := serve(m, http.MethodGet, "/api/field/notjson")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serialize a copy of the cache", func() {
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodGet, "/api/cache/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"Keys"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"t":"string","v":"L1"`))
	})

	It("should serialize one field of the cache", func() {
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodGet, "/api/field/"+
			url.PathEscape(`{"cache_name":"L1","field_name":"Capacity"}`))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(
			`{"r":"0","dict":{"0":{"k":2,"t":"int","v":2}}}`))

		rec = serve(m, http.MethodGet, "/api/field/"+
			url.PathEscape(`{"cache_name":"L1","field_name":"Keys"}`))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"t":"string","v":"A"`))
	})

	It("should inspect a cache while it is in use", func() {
		done := make(chan struct{})

		go func() {
			defer GinkgoRecover()
			defer close(done)

			for i := 0; i < 500; i++ {
				_, _, err := c.Get([]string{"A", "B", "C"}[i%3])
				Expect(err).NotTo(HaveOccurred())
			}
		}()

		for i := 0; i < 50; i++ {
			Expect(serve(m, http.MethodGet, "/api/cache/L1").Code).
				To(Equal(http.StatusOK))
		}

		<-done
	})

	It("should flush a cache", func() {
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodPost, "/api/flush/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(c.Len()).To(Equal(0))
		Expect(medium.CallsOf(cachetest.OpDispose)).To(Equal([]string{"A"}))
	})

	It("should only flush on POST", func() {
		_, _, _ = c.Get("A")

		rec := serve(m, http.MethodGet, "/api/flush/L1")

		Expect(rec.Code).NotTo(Equal(http.StatusOK))
		Expect(c.Len()).To(Equal(1))
	})

	It("should resize a cache", func() {
		_, _, _ = c.Get("A")
		_, _, _ = c.Get("B")

		rec := serve(m, http.MethodPost, "/api/capacity/L1/1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(
			`{"name":"L1","len":1,"capacity":1}`))
		Expect(c.Keys()).To(Equal([]string{"B"}))
	})

	It("should reject invalid capacities", func() {
		Expect(serve(m, http.MethodPost, "/api/capacity/L1/-1").Code).
			To(Equal(http.StatusBadRequest))
		Expect(serve(m, http.MethodPost, "/api/capacity/L1/x").Code).
			To(Equal(http.StatusBadRequest))
		Expect(c.Capacity()).To(Equal(2))
	})

	It("should report a full cache as a conflict", func() {
		a, _, _ := c.Get("A")
		a.Pinned = true
		b, _, _ := c.Get("B")
		b.Pinned = true

		rec := serve(m, http.MethodPost, "/api/capacity/L1/1")

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(c.Capacity()).To(Equal(2))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Workload", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)
		done := m.CreateProgressBar("Done", 1)
		m.CompleteProgressBar(done)

		rec := serve(m, http.MethodGet, "/api/progress")

		var bars []ProgressBarSnapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].ID).To(Equal("1"))
		Expect(bars[0].Name).To(Equal("Workload"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))
	})

	It("should report resources", func() {
		rec := serve(m, http.MethodGet, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveKey("cpu_percent"))
		Expect(rsp["memory_size"]).To(BeNumerically(">", 0))
	})

	It("should collect a profile", func() {
		rec := serve(m, http.MethodGet, "/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("SampleType"))
	})

	It("should serve the dashboard", func() {
		rec := serve(m, http.MethodGet, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("mediumcache monitor"))
	})

	Context("with recorded events", func() {
		var db *sql.DB

		BeforeEach(func() {
			var err error

			db, err = sql.Open("sqlite3",
				filepath.Join(GinkgoT().TempDir(), "events.db"))
			Expect(err).NotTo(HaveOccurred())

			recorder := datarecording.NewWithDB(db)
			tracer := tracing.NewDBTracer(
				tracing.NewWallClock(), recorder, idgen.NewSequential())
			c.AcceptHook(tracer)
			tracer.StartTracing()

			_, _, _ = c.Get("A")
			_, _, _ = c.Get("A")
			tracer.StopTracing()

			m.RegisterEventReader(datarecording.NewReaderWithDB(db))
		})

		AfterEach(func() {
			db.Close()
		})

		It("should page through the events of a cache", func() {
			rec := serve(m, http.MethodGet, "/api/events/L1?limit=1&offset=1")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var rsp eventsRsp
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
			Expect(rsp.Total).To(Equal(2))
			Expect(rsp.Events).To(HaveLen(1))
			Expect(rsp.Events[0].Kind).To(Equal("CacheHit"))
		})

		It("should reject a bad page", func() {
			rec := serve(m, http.MethodGet, "/api/events/L1?limit=x")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("Monitor with a mocked cache", func() {
	var (
		mockCtrl *gomock.Controller
		c        *MockMonitored
		m        *Monitor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		c = NewMockMonitored(mockCtrl)
		c.EXPECT().Name().Return("Mock").AnyTimes()
		c.EXPECT().AcceptHook(gomock.Any())

		m = NewMonitor()
		m.RegisterCache(c)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report flush errors", func() {
		c.EXPECT().Flush().Return(errors.New("write failed"))

		rec := serve(m, http.MethodPost, "/api/flush/Mock")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring("write failed"))
	})

	It("should report capacity errors", func() {
		c.EXPECT().SetCapacity(4).Return(errors.New("disk gone"))

		rec := serve(m, http.MethodPost, "/api/capacity/Mock/4")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("should map wrapped cache-full errors to a conflict", func() {
		c.EXPECT().SetCapacity(0).
			Return(errors.Join(cache.ErrCacheFull, errors.New("more")))

		rec := serve(m, http.MethodPost, "/api/capacity/Mock/0")

		Expect(rec.Code).To(Equal(http.StatusConflict))
	})
})
