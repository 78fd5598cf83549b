// Package testing provides a conformance suite for driver.Driver
// implementations: one exported entry point that every backend's own test
// file calls with a factory function, so new drivers get full coverage by
// construction.
package testing
