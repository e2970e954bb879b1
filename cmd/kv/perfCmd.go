package kv

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for rKV servers",
		Long:    "Runs each benchmark for a fixed duration with concurrent workers and reports throughput and latency percentiles.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfDuration         = 3 * time.Second
	perfSkip             = make([]string, 0)
)

// perfResult is the outcome of one benchmark
type perfResult struct {
	name    string
	skipped bool
	elapsed time.Duration
	timer   gometrics.Timer
	errors  gometrics.Counter
}

// perfTest is one benchmark. op performs a single request for the key
// selected by the worker.
type perfTest struct {
	name    string
	prepare func(keys []string) error
	op      func(key string) error
}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "duration"
	perfTestCmd.Flags().Duration(key, 3*time.Second, util.WrapString("How long each benchmark runs"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfDuration = viper.GetDuration("duration")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}

	fmt.Println("Performance testing tool for rKV servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d, Duration: %s per test\n", perfNumThreads, perfDuration)
	fmt.Println()

	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	for i := range largeValue {
		largeValue[i] = 'a' + byte(i%26)
	}

	setAll := func(keys []string) error {
		for _, k := range keys {
			if err := rpcClient.Set(k, []byte("test"), 0); err != nil {
				return err
			}
		}
		return nil
	}

	tests := []perfTest{
		{
			name: "ping",
			op:   func(string) error { return rpcClient.Ping() },
		},
		{
			name: "set",
			op:   func(k string) error { return rpcClient.Set(k, []byte("test"), 0) },
		},
		{
			name: "set-px",
			op:   func(k string) error { return rpcClient.Set(k, []byte("test"), time.Second) },
		},
		{
			name: "set-large",
			op:   func(k string) error { return rpcClient.Set(k, largeValue, 0) },
		},
		{
			name:    "get",
			prepare: setAll,
			op: func(k string) error {
				_, _, err := rpcClient.Get(k)
				return err
			},
		},
		{
			name: "get-not",
			op: func(k string) error {
				_, _, err := rpcClient.Get(k + "-missing")
				return err
			},
		},
		{
			name:    "mixed",
			prepare: setAll,
			op: func(k string) error {
				switch rand.Intn(4) {
				case 0:
					return rpcClient.Set(k, []byte("test"), 0)
				case 1:
					return rpcClient.Set(k, []byte("test"), 500*time.Millisecond)
				default:
					_, _, err := rpcClient.Get(k)
					return err
				}
			},
		},
	}

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	results := make([]perfResult, 0, len(tests))
	for _, test := range tests {
		result, err := runPerfTest(test, registry)
		if err != nil {
			return fmt.Errorf("test %s failed: %w", test.name, err)
		}
		results = append(results, result)
		printResult(result)
	}

	// Write results to csv if a path is set
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %w", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runPerfTest runs test with perfNumThreads workers for perfDuration. The test
// keys are expired afterwards.
func runPerfTest(test perfTest, registry gometrics.Registry) (perfResult, error) {
	result := perfResult{name: test.name}
	if shouldSkip(test.name) {
		result.skipped = true
		return result, nil
	}

	keys := getKeys(test.name)
	if test.prepare != nil {
		if err := test.prepare(keys); err != nil {
			return result, err
		}
	}

	result.timer = gometrics.GetOrRegisterTimer(test.name+".latency", registry)
	result.errors = gometrics.GetOrRegisterCounter(test.name+".errors", registry)

	deadline := time.Now().Add(perfDuration)
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; time.Now().Before(deadline); i++ {
				opStart := time.Now()
				if err := test.op(keys[i%len(keys)]); err != nil {
					result.errors.Inc(1)
					continue
				}
				result.timer.UpdateSince(opStart)
			}
		}(w)
	}
	wg.Wait()
	result.elapsed = time.Since(start)

	// let the test keys disappear
	for _, k := range keys {
		_ = rpcClient.Set(k, nil, time.Millisecond)
	}

	return result, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// getKeys creates the keys of a test
func getKeys(prefix string) []string {
	keys := make([]string, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return keys
}

// opsPerSec returns the throughput of a result
func (r perfResult) opsPerSec() float64 {
	if r.skipped || r.elapsed <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.elapsed.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r perfResult) {
	if r.skipped {
		fmt.Printf("%-12sskipped\n", r.name)
		return
	}

	snap := r.timer.Snapshot()
	ps := snap.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-12s%10.0f ops/sec\tmean %-10s p50 %-10s p99 %-10s max %-10s errors %d\n",
		r.name,
		r.opsPerSec(),
		time.Duration(snap.Mean()).Round(time.Microsecond),
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(snap.Max()).Round(time.Microsecond),
		r.errors.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "OpsPerSec", "MeanNs", "P50Ns", "P99Ns", "MaxNs", "Errors", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint", "Transport",
		"Threads", "DurationSec", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		var mean, p50, p99 float64
		var maxNs, errCount int64
		if !r.skipped {
			snap := r.timer.Snapshot()
			ps := snap.Percentiles([]float64{0.5, 0.99})
			mean, p50, p99, maxNs = snap.Mean(), ps[0], ps[1], snap.Max()
			errCount = r.errors.Count()
		}

		row := []string{
			r.name,
			fmt.Sprintf("%.0f", r.opsPerSec()),
			fmt.Sprintf("%.0f", mean),
			fmt.Sprintf("%.0f", p50),
			fmt.Sprintf("%.0f", p99),
			strconv.FormatInt(maxNs, 10),
			strconv.FormatInt(errCount, 10),
			strconv.FormatBool(r.skipped),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			string(config.Transport),
			strconv.Itoa(perfNumThreads),
			fmt.Sprintf("%.1f", perfDuration.Seconds()),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", r.name, err)
		}
	}

	return nil
}
