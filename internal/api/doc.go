// Package api provides the HTTP REST API for the Gray Logic 1-Wire Bridge.
//
// It exposes the discovered sensor inventory, scan control, and operational
// metrics to management tooling:
//
//	GET  /api/v1/health       - component health summary
//	GET  /api/v1/sensors      - discovered sensor inventory
//	GET  /api/v1/sensors/{id} - single sensor by bus address
//	POST /api/v1/scan         - trigger an immediate bus scan
//	GET  /api/v1/metrics      - scanner, poller and runtime statistics
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
