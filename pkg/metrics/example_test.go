package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Example_basicUsage demonstrates recording into the default instruments.
func Example_basicUsage() {
	// Create a separate registry so the example does not pollute the
	// process-wide default registerer.
	registry := NewRegistry(prometheus.NewRegistry())

	registry.ItemsScheduled.WithLabelValues("main", "timeout").Inc()
	registry.ItemsExecuted.WithLabelValues("main", "timeout").Inc()
	registry.PendingItems.WithLabelValues("main").Set(3)

	fmt.Println("Scheduler metrics updated")

	registry.GuardAcquired.WithLabelValues("nightly-sync").Inc()
	registry.GuardContended.WithLabelValues("nightly-sync").Add(2)

	fmt.Println("Guard metrics updated")

	// Output:
	// Scheduler metrics updated
	// Guard metrics updated
}

// Example_customRegistry demonstrates isolating gotick metrics from other
// instrumentation in the process.
func Example_customRegistry() {
	custom := prometheus.NewRegistry()
	registry := NewRegistry(custom)

	registry.ItemsScheduled.WithLabelValues("isolated", "interval").Inc()
	registry.TickDuration.WithLabelValues("isolated").Observe(0.00021)

	// Only instruments with recorded samples produce families.
	families, err := custom.Gather()
	if err != nil {
		fmt.Println("gather failed:", err)
		return
	}
	fmt.Printf("custom registry holds %d metric families\n", len(families))

	// Output:
	// custom registry holds 2 metric families
}
