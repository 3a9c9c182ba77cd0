// Package httpapi exposes the gateway over HTTP. The surface is a single
// JSON endpoint, POST /api, dispatching on an "action" field, plus a health
// probe. Speech audio is returned raw as audio/mpeg; everything else is
// JSON.
package httpapi
