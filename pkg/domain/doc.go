/*
Package domain contains the core data model of the Blockflow workflow editor.

It defines the entities that make up a canvas (Nodes, Edges, Form fields) and the
persisted Document written on save. This package is kept pure and free of external
dependencies like I/O or persistence; graph algorithms live in package graph and
mutation lives in package session.

# Key Entities

  - Node: A typed block on the canvas (Start, Form, Conditional, API, End).
  - Edge: A directed connection between two nodes.
  - Graph: A snapshot of the canvas handed to every query.
  - Document: The saved artifact (nodes, edges, metadata).
  - DeletableDiff: The diff-then-apply step for derived deletable flags.
*/
package domain
