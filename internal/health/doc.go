// Package health decides whether a service is ready to serve traffic.
//
// A validation run first checks that the service's unit is active, then polls
// the health endpoint until the readiness signal appears or the retry budget
// is spent. Fetch failures during polling are expected while the service is
// starting and never end the run early. The run ends in exactly one of four
// outcomes: pass, service_not_active, health_check_timeout or cancelled.
//
// The validator never collects logs. Callers decide what to gather after a
// failed run.
package health
