/*
Package ports defines the driven ports (interfaces) of the arbor engine.

These interfaces decouple the rebuild and dispatch core from concrete
persistence and markup implementations.

# Key Interfaces

  - StateStore: persists and loads the State map of a session.
  - DistributedLocker: serializes access to one session across replicas.
  - Renderer: turns a rebuilt tree and its State into HTML.
  - Markdown: converts markdown text into sanitized HTML.
*/
package ports
