package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

var (
	baseURL      = pflag.String("url", "http://127.0.0.1:8090", "wagerd base URL")
	numWorkers   = pflag.Int("workers", 50, "concurrent workers")
	testDuration = pflag.Duration("duration", 10*time.Second, "duration of each phase")
	numReaders   = pflag.Int("readers", 200, "distinct readers to simulate")
)

var timeframes = []string{"3 Days", "1 Week", "2 Weeks", "1 Month"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// fleet tracks the active commitments each simulated reader owns and how far
// each one has been read.
type fleet struct {
	mu       sync.Mutex
	readers  []string
	active   map[string][]string
	progress map[string]int
}

func newFleet(n int) *fleet {
	f := &fleet{
		active:   make(map[string][]string),
		progress: make(map[string]int),
	}
	for i := 0; i < n; i++ {
		f.readers = append(f.readers, "lt-"+uuid.NewString()[:8])
	}
	return f
}

func (f *fleet) reader(rng *rand.Rand) string {
	return f.readers[rng.Intn(len(f.readers))]
}

func (f *fleet) add(reader string, ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[reader] = append(f.active[reader], ids...)
}

// next picks an active commitment of reader and reserves the next page span.
func (f *fleet) next(reader string, rng *rand.Rand) (string, int, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.active[reader]
	if len(ids) == 0 {
		return "", 0, 0, false
	}
	id := ids[rng.Intn(len(ids))]
	start := f.progress[id] + 1
	end := start + rng.Intn(20)
	f.progress[id] = end
	return id, start, end, true
}

func (f *fleet) drop(reader, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.active[reader]
	for i, v := range ids {
		if v == id {
			f.active[reader] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func main() {
	pflag.Parse()
	f := newFleet(*numReaders)

	fmt.Println("=== wagerd Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Readers: %d\n\n", *numWorkers, *testDuration, *numReaders)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Drafting and confirming slips ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return doDraft(f.reader(rng), rng)
		case r < 0.80:
			return doConfirm(f, f.reader(rng))
		default:
			return doGet("/slip", f.reader(rng))
		}
	})

	fmt.Println("\n--- Phase 2: Reading sessions (70% sessions, 30% reads) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doSession(f, f.reader(rng), rng)
		case r < 0.85:
			return doGet("/commitments", f.reader(rng))
		case r < 0.95:
			return doGet("/settled", f.reader(rng))
		default:
			return doGet("/health", "")
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (10% sessions, 90% reads) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doSession(f, f.reader(rng), rng)
		case r < 0.50:
			return doGet("/commitments", f.reader(rng))
		case r < 0.75:
			return doGet("/slip", f.reader(rng))
		default:
			return doGet("/settled", f.reader(rng))
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

// post sends body as JSON and decodes the response into out when it is non-nil.
func post(endpoint, reader string, body, out any, ok func(int) bool) result {
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(*baseURL+endpoint+"?r="+reader, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	name := "POST " + endpoint
	if err != nil {
		return result{name, 0, lat, true}
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return result{name, resp.StatusCode, lat, !ok(resp.StatusCode)}
}

func doDraft(reader string, rng *rand.Rand) result {
	pages := 100 + rng.Intn(700)
	body := map[string]any{
		"book": map[string]any{
			"id":         fmt.Sprintf("book-%d", rng.Intn(1000)),
			"title":      "Load Test Volume",
			"totalPages": pages,
			"difficulty": []string{"easy", "medium", "hard"}[rng.Intn(3)],
		},
		"unit":      "pages",
		"timeframe": timeframes[rng.Intn(len(timeframes))],
		"wager":     fmt.Sprintf("%d.%02d", 1+rng.Intn(50), rng.Intn(100)),
	}
	return post("/slip", reader, body, nil, func(code int) bool { return code == http.StatusCreated })
}

func doConfirm(f *fleet, reader string) result {
	var receipt struct {
		Confirmed []string `json:"confirmed"`
	}
	// 409 means the slip was empty or a draft collided with an active one
	r := post("/confirm", reader, nil, &receipt, func(code int) bool {
		return code == http.StatusOK || code == http.StatusConflict
	})
	if r.status == http.StatusOK {
		f.add(reader, receipt.Confirmed)
	}
	return r
}

func doSession(f *fleet, reader string, rng *rand.Rand) result {
	id, start, end, ok := f.next(reader, rng)
	if !ok {
		return doGet("/commitments", reader)
	}
	var out struct {
		Settled json.RawMessage `json:"settled"`
	}
	body := map[string]any{"id": id, "startUnit": start, "endUnit": end}
	r := post("/session", reader, body, &out, func(code int) bool {
		return code == http.StatusOK || code == http.StatusConflict
	})
	if r.status == http.StatusConflict || len(out.Settled) > 0 {
		f.drop(reader, id)
	}
	return r
}

func doGet(endpoint, reader string) result {
	url := *baseURL + endpoint
	if reader != "" {
		url += "?r=" + reader
	}
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	name := "GET " + endpoint
	if err != nil {
		return result{name, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{name, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
