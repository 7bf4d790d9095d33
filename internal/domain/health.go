package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// DispatchMetrics is returned by GET /v1/metrics/dispatch.
type DispatchMetrics struct {
	Created            int64   `json:"created"`
	Updated            int64   `json:"updated"`
	Deleted            int64   `json:"deleted"`
	Failed             int64   `json:"failed"`
	ValidationRejected int64   `json:"validationRejected"`
	LoadFailures       int64   `json:"loadFailures"`
	FailureRate        float64 `json:"failureRate"`
	SessionHitRate     float64 `json:"sessionHitRate"`
	Period             string  `json:"period"`
}
