// Package monitoring serves a small HTTP API and dashboard over running
// caches. Caches can be inspected, flushed and resized while a workload runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/datarecording"
	"github.com/sarchlab/mediumcache/hooking"
	"github.com/sarchlab/mediumcache/idgen"
	"github.com/sarchlab/mediumcache/monitoring/web"
	"github.com/sarchlab/mediumcache/tracing"
)

// Monitored is the part of a cache that the monitor uses. Every cache engine
// satisfies it.
type Monitored interface {
	hooking.NamedHookable

	Len() int
	Capacity() int
	SetCapacity(n int) error
	Flush() error

	// Inspect returns a copy of the cache bookkeeping. The copy is what the
	// monitor serializes, so it must not share state with the cache.
	Inspect() any
}

type monitoredCache struct {
	cache Monitored
	stats *tracing.StatsTracer
}

// Monitor turns a running program into a server that allows external
// monitoring and control of its caches.
type Monitor struct {
	portNumber int
	idGen      idgen.Generator

	cachesLock sync.Mutex
	caches     []monitoredCache

	eventReader datarecording.DataReader

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		idGen: idgen.NewSequential(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache to be monitored. A StatsTracer is attached
// to the cache and returned. Names must be unique.
func (m *Monitor) RegisterCache(c Monitored) *tracing.StatsTracer {
	m.cachesLock.Lock()
	defer m.cachesLock.Unlock()

	for _, mc := range m.caches {
		if mc.cache.Name() == c.Name() {
			panic("cache " + c.Name() + " is already registered")
		}
	}

	stats := tracing.NewStatsTracer()
	c.AcceptHook(stats)

	m.caches = append(m.caches, monitoredCache{cache: c, stats: stats})

	return stats
}

// RegisterEventReader makes the events recorded by a DBTracer available.
func (m *Monitor) RegisterEventReader(reader datarecording.DataReader) {
	reader.MapTable(tracing.EventTable, tracing.Event{})
	m.eventReader = reader
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_caches", m.listCaches)
	r.HandleFunc("/api/cache/{name}", m.listCacheDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/stats/{name}", m.cacheStats)
	r.HandleFunc("/api/events/{name}", m.cacheEvents)
	r.HandleFunc("/api/flush/{name}", m.flushCache).Methods(http.MethodPost)
	r.HandleFunc("/api/capacity/{name}/{n}", m.setCapacity).
		Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor in the background and returns its URL.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring caches with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	return url
}

type cacheSummary struct {
	Name     string `json:"name"`
	Len      int    `json:"len"`
	Capacity int    `json:"capacity"`
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	m.cachesLock.Lock()
	summaries := make([]cacheSummary, 0, len(m.caches))
	for _, mc := range m.caches {
		summaries = append(summaries, cacheSummary{
			Name:     mc.cache.Name(),
			Len:      mc.cache.Len(),
			Capacity: mc.cache.Capacity(),
		})
	}
	m.cachesLock.Unlock()

	writeJSON(w, summaries)
}

func (m *Monitor) listCacheDetails(w http.ResponseWriter, r *http.Request) {
	mc, ok := m.findCacheOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(mc.cache.Inspect())
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CacheName string `json:"cache_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mc, ok := m.findCacheOr404(w, req.CacheName)
	if !ok {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(mc.cache.Inspect())
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) cacheStats(w http.ResponseWriter, r *http.Request) {
	mc, ok := m.findCacheOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	writeJSON(w, mc.stats.Stats())
}

type eventsRsp struct {
	Total  int              `json:"total"`
	Events []*tracing.Event `json:"events"`
}

func (m *Monitor) cacheEvents(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, ok := m.findCacheOr404(w, name); !ok {
		return
	}

	if m.eventReader == nil {
		http.Error(w, "Events are not recorded", http.StatusNotFound)
		return
	}

	limit, offset, err := parsePage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, total, err := m.eventReader.Query(r.Context(), tracing.EventTable,
		datarecording.QueryParams{
			Where:   "Cache = ?",
			Args:    []any{name},
			OrderBy: "Time",
			Limit:   limit,
			Offset:  offset,
		})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rsp := eventsRsp{Total: total, Events: []*tracing.Event{}}
	for _, result := range results {
		rsp.Events = append(rsp.Events, result.(*tracing.Event))
	}

	writeJSON(w, rsp)
}

func parsePage(r *http.Request) (limit, offset int, err error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "100"
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return 0, 0, fmt.Errorf("invalid limit %q", limitStr)
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}

	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset %q", offsetStr)
	}

	return limit, offset, nil
}

func (m *Monitor) flushCache(w http.ResponseWriter, r *http.Request) {
	mc, ok := m.findCacheOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	err := mc.cache.Flush()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) setCapacity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	mc, ok := m.findCacheOr404(w, vars["name"])
	if !ok {
		return
	}

	n, err := strconv.Atoi(vars["n"])
	if err != nil || n < 0 {
		http.Error(w, "Invalid capacity "+vars["n"], http.StatusBadRequest)
		return
	}

	err = mc.cache.SetCapacity(n)
	switch {
	case errors.Is(err, cache.ErrCacheFull):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, cacheSummary{
			Name:     mc.cache.Name(),
			Len:      mc.cache.Len(),
			Capacity: mc.cache.Capacity(),
		})
	}
}

func (m *Monitor) findCacheOr404(
	w http.ResponseWriter,
	name string,
) (monitoredCache, bool) {
	m.cachesLock.Lock()
	defer m.cachesLock.Unlock()

	for _, mc := range m.caches {
		if mc.cache.Name() == name {
			return mc, true
		}
	}

	http.Error(w, "Cache not found", http.StatusNotFound)

	return monitoredCache{}, false
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]ProgressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
