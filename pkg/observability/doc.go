/*
Package observability turns executor lifecycle events into logs and metrics.

Both are exposed as domain.LifecycleHooks, so they attach to any executor
through jar.WithLifecycleHooks and compose with caller hooks via Merge.
*/
package observability
