// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for Layer8 connections.
//
// Provides concurrent-safe primitives:
//   - MetricsRegistry, a frame observer aggregating traffic across streamers
//   - DebugProbes, named probe functions dumped on demand
//
// Both are safe to share between connection goroutines.
package control
