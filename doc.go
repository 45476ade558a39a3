// Package payload is a pool-backed payload lifecycle core for a data
// acquisition system. Hits, beacons and trigger requests are built by
// factories from recyclable instances, deep-copied through a master factory,
// and returned to their pools when disposed.
//
// # Architecture
//
// The core is layered bottom-up:
//
//   - pkg/pool: generic per-kind object pools with live and idle caps,
//     ownership leases, move-only handles and a stats registry.
//   - pkg/payload: the payload kinds (SimpleHit, BeaconHit, TriggerRequest)
//     and their recycle and dispose contracts.
//   - pkg/factory: base and composite factories, the master registry that
//     routes copies by kind, and DeepCopySequence with rollback.
//   - pkg/hitrec and pkg/domgeo: raw hit records and the DOM geometry used
//     to resolve beacon channels.
//
// The ambient stack is in pkg/config, pkg/logger, pkg/errors, pkg/metrics
// and pkg/observability. internal/pipeline drives the factories through a
// producer, trigger and consumer pipeline, and cmd/payloadsim runs it.
//
// # Quick Start
//
// Build a suite of factories, create two hits and wrap copies of them in a
// trigger request:
//
//	suite, err := factory.NewSuite(factory.SuiteOptions{}, logger)
//	if err != nil {
//		return err
//	}
//	defer suite.Close()
//
//	a, _ := suite.Hits.CreatePayload(t0, 1, 0, src, dom, 2)
//	b, _ := suite.Hits.CreatePayload(t0+10, 1, 0, src, dom, 2)
//	defer a.Dispose()
//	defer b.Dispose()
//
//	req, err := suite.Triggers.CreatePayload(factory.RequestHeader{UID: 1},
//		[]payload.Payload{a, b})
//	if err != nil {
//		return err
//	}
//	defer req.Dispose()
//
// A failed copy of any child leaves every pool exactly as it was before the
// call.
//
// # Running the simulator
//
//	payloadsim run --config payloadsim.yaml --metrics-addr :9090
//
// The run prints a JSON report with per-pool statistics.
package payload
