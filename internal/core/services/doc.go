// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond the ports they only use small
// libraries: uuid for ids, x/time/rate for enrichment throttling and
// x/text/language for embedding model selection.
package services
