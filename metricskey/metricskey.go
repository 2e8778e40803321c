package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfTrustOperation is perf metric
	PerfTrustOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_pgp_trust",
		Help:         "perf_pgp_trust provides the sample metrics of PGP trust operations",
		RequiredTags: []string{"engine", "action"},
	}

	// PerfKeyResolution is perf metric
	PerfKeyResolution = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_pgp_resolve",
		Help:         "perf_pgp_resolve provides the sample metrics of key resolution",
		RequiredTags: []string{"engine", "outcome"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfTrustOperation,
	&PerfKeyResolution,
}
