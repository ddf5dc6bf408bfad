// Command graphbench drives a synthetic layered DAG through the graph
// engine and exposes optional pprof/Prometheus endpoints, the graph-engine
// counterpart of cmd/bench's raw cache Zipfian workload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samokhinv/connectome-go/backend"
	"github.com/samokhinv/connectome-go/cache"
	"github.com/samokhinv/connectome-go/edges"
	"github.com/samokhinv/connectome-go/graph"
	pmet "github.com/samokhinv/connectome-go/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		layers = flag.Int("layers", 6, "number of DAG layers beyond the inputs")
		width  = flag.Int("width", 8, "nodes per layer")
		fanin  = flag.Int("fanin", 3, "parents per node, drawn from the prior layer")
		cached = flag.Bool("cached", true, "wrap every interior node in a Cache edge")
		capcty = flag.Int("cap", 100_000, "RAM cache capacity (entries)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		inputKeys = flag.Int("input_keys", 64, "distinct values drawn per input, Zipf-skewed")
		zipfS     = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV     = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.NewGraphAdapter(nil, "connectome", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build the synthetic DAG ----
	store := backend.NewRam(cache.Options[string, any]{Capacity: *capcty})
	defer func() { _ = store.Close() }()

	g, inputNames := buildDAG(*layers, *width, *fanin, *cached, store, metrics)

	// ---- Load generation ----
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(*inputKeys - 1)
	seedBase := *seed
	zipfSVal, zipfVVal := *zipfS, *zipfV

	var calls, errs uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				values := make(map[string]any, len(inputNames))
				for _, name := range inputNames {
					values[name] = int(localZipf.Uint64())
				}

				atomic.AddUint64(&calls, 1)
				if _, err := g.CallNamed(values); err != nil {
					atomic.AddUint64(&errs, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	callsN := atomic.LoadUint64(&calls)
	errsN := atomic.LoadUint64(&errs)
	fmt.Printf("layers=%d width=%d fanin=%d cached=%v cap=%d workers=%d input_keys=%d dur=%v seed=%d\n",
		*layers, *width, *fanin, *cached, *capcty, workersN, *inputKeys, elapsed, seedBase)
	fmt.Printf("calls=%d (%.0f calls/s)  errors=%d  store.Len()=%d\n",
		callsN, float64(callsN)/elapsed.Seconds(), errsN, store.Len())
}

// buildDAG constructs width inputs and layers*width interior nodes, each
// summing fanin parents drawn round-robin from the previous layer, and
// returns the compiled graph plus the sorted names of its free inputs.
func buildDAG(layers, width, fanin int, cached bool, store backend.Store, metrics graph.Metrics) (*graph.Graph, []string) {
	inputNames := make([]string, width)
	prev := make([]*graph.TreeNode, width)
	leaves := make([]*graph.TreeNode, width)
	for i := 0; i < width; i++ {
		name := "in" + strconv.Itoa(i)
		inputNames[i] = name
		prev[i] = graph.NewInput(name)
		leaves[i] = prev[i]
	}

	sum := func(args []any) (any, error) {
		total := 0
		for _, a := range args {
			total += a.(int)
		}
		return total, nil
	}

	for l := 0; l < layers; l++ {
		next := make([]*graph.TreeNode, width)
		for i := 0; i < width; i++ {
			parents := make([]*graph.TreeNode, fanin)
			for j := 0; j < fanin; j++ {
				parents[j] = prev[(i+j)%width]
			}
			node := graph.NewTreeNode(fmt.Sprintf("l%d_n%d", l, i), edges.NewFunction(fanin, sum), parents...)
			if cached {
				node = graph.NewTreeNode(fmt.Sprintf("l%d_n%d_cache", l, i), edges.NewCache(store, metrics), node)
			}
			next[i] = node
		}
		prev = next
	}

	output := graph.NewTreeNode("reduce", edges.NewFunction(width, sum), prev...)
	g, err := graph.Compile(leaves, output)
	if err != nil {
		log.Fatal(err)
	}
	return g.WithMetrics(metrics), inputNames
}
