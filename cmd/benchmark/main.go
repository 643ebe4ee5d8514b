package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	codes       []string
)

// Metrics
var (
	totalRequests uint64
	success200    uint64
	fail500       uint64
	failOther     uint64
	failTransport uint64
)

func main() {
	var codeList string
	flag.StringVar(&targetURL, "url", "http://localhost:3000", "Ninja bank base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&codeList, "codes", "AKIRA-1001,HANA-1002,KENJI-1003", "Comma separated ninja codes to look up")
	flag.Parse()

	for _, c := range strings.Split(codeList, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		log.Fatal("at least one ninja code is required")
	}

	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s | Codes: %d", targetURL, concurrency, duration, len(codes))

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 15 * time.Second}

	for time.Since(start) < duration {
		form := url.Values{"ninjaCode": {codes[rand.Intn(len(codes))]}}

		resp, err := client.PostForm(targetURL+"/coins", form)
		if err != nil {
			atomic.AddUint64(&failTransport, 1)
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case http.StatusOK:
			atomic.AddUint64(&success200, 1)
		case http.StatusInternalServerError:
			atomic.AddUint64(&fail500, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s200 := atomic.LoadUint64(&success200)
	f500 := atomic.LoadUint64(&fail500)
	fOther := atomic.LoadUint64(&failOther)
	fTransport := atomic.LoadUint64(&failTransport)

	var errorRate float64
	if total > 0 {
		errorRate = float64(f500+fOther) / float64(total) * 100
	}

	results := map[string]any{
		"target":           targetURL,
		"duration_sec":     d.Seconds(),
		"total_requests":   total,
		"throughput_rps":   float64(total) / d.Seconds(),
		"ok":               s200,
		"server_errors":    f500,
		"other_status":     fOther,
		"transport_errors": fTransport,
		"error_rate_pct":   errorRate,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Printf("encode results: %v", err)
	}

	filename := fmt.Sprintf("results_%d_workers.json", concurrency)
	file, err := os.Create(filename)
	if err != nil {
		log.Printf("save results: %v", err)
		return
	}
	defer file.Close()
	_ = json.NewEncoder(file).Encode(results)
}
