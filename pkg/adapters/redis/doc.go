// Package redis provides Redis-backed adapters: a WorkflowStore for saved
// documents and a DistributedLocker that keeps one writer per editor session
// across replicas.
package redis
