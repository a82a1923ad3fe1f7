/*
Package observability exposes Prometheus metrics for the dispatcher, the
persistence layer and the instance registry.

A nil *Metrics is valid and records nothing, so library types can accept one
optionally.
*/
package observability
