// Package services implements the driving port interfaces.
// Services contain the core business logic - the semantic index, the
// duplicate detector, and the ingestion state machine - and orchestrate
// calls to driven ports (adapters).
//
// All record mutations flow through one single-writer execution context:
// the CLI invokes one service operation at a time, and the processor batch
// is strictly sequential.
package services
