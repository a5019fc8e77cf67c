package models

import (
	"time"
)

// DashboardStats is a point-in-time snapshot of marketplace health metrics.
// A metric whose underlying query failed is reported as 0 and named in
// Degraded, so the dashboard can tell "failed to load" apart from
// "really zero".
type DashboardStats struct {
	TotalUsers       int64     `json:"total_users"`
	TotalListings    int64     `json:"total_listings"`
	TotalOrders      int64     `json:"total_orders"`
	MonthlyRevenue   float64   `json:"monthly_revenue"`
	PendingApprovals int64     `json:"pending_approvals"`
	ActiveMessages   int64     `json:"active_messages"`
	Degraded         []string  `json:"degraded,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}
