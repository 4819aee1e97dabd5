/*
Package ports defines the driven ports (interfaces) of blockflow.

These interfaces decouple the editor sessions from external implementations, so
saved workflows can live in memory, on disk, in Redis or in SQLite without the
core knowing which.

# Key Interfaces

  - WorkflowStore: persists and loads saved workflow Documents.
  - DistributedLocker: serialises access to one editor session across replicas.

RunWorkflowStoreContract and RunLockerContract verify adapters against the
behaviour the session manager relies on.
*/
package ports
