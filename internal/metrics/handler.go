package metrics

import (
	"fmt"
	"io"
	"net/http"
)

// Handler exposes s in the Prometheus text exposition format.
func Handler(s Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		WriteText(w, s.Snapshot())
	}
}

// WriteText writes snap in the Prometheus text exposition format.
func WriteText(w io.Writer, snap Snapshot) {
	outcome := func(name string, success, failed uint64) {
		writeMetric(w, "innofeed_%s_total{status=\"success\"} %d\n", name, success)
		writeMetric(w, "innofeed_%s_total{status=\"failed\"} %d\n", name, failed)
	}

	outcome("domains_loads", snap.DomainsLoadSuccess, snap.DomainsLoadFailed)
	outcome("feed_loads", snap.FeedLoadSuccess, snap.FeedLoadFailed)
	writeMetric(w, "innofeed_feed_stale_discarded_total %d\n", snap.FeedStaleDiscarded)
	outcome("preferences_saves", snap.PreferencesSaveSuccess, snap.PreferencesSaveFailed)
	writeMetric(w, "innofeed_backend_request_duration_seconds_count %d\n", snap.BackendDurationCount)
	writeMetric(w, "innofeed_backend_request_duration_seconds_sum %.6f\n", float64(snap.BackendDurationTotalNs)/1e9)
	outcome("logins", snap.LoginSuccess, snap.LoginFailed)
	outcome("registrations", snap.RegisterSuccess, snap.RegisterFailed)

	writeMetric(w, "innofeed_feeds_served_total %d\n", snap.FeedsServed)
	writeMetric(w, "innofeed_feed_items_served_total %d\n", snap.FeedItemsServed)
	writeMetric(w, "innofeed_domains_cache_hits_total %d\n", snap.DomainsCacheHits)
	writeMetric(w, "innofeed_domains_cache_misses_total %d\n", snap.DomainsCacheMisses)
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
