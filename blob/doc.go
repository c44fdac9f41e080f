// Package blob supplies concrete core.BlobStore implementations: a
// process-local in-memory store for tests, examples and prototypes, and a
// filesystem store for durable single-node deployments.
package blob
