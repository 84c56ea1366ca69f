// Package api exposes the assistant over HTTP: a blocking chat endpoint, an
// SSE streaming endpoint, conversation inspection, and a health probe, behind
// a composed middleware stack (recovery, request IDs, logging, CORS, per-IP
// rate limiting).
package api
