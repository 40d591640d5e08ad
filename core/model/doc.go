// Package model holds the projection summaries shared by the projector, the
// history store, the metrics sinks and the exporters.
package model
