// Package gateway implements the request orchestration engine: it resolves
// correction overrides, consults the cache tiers, selects a provider and
// model per request, races the fast provider against a timeout budget with
// a deep-adapter fallback, post-processes output with domain terminology,
// and assembles chunked results for progressive playback.
package gateway
