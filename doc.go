// Package brokerconf manages the runtime configuration of a message broker.
//
// The module is organized in two layers:
//
// Configuration layer (conf):
//   - A tolerant parser for the broker's block-structured configuration
//     format, with unit-aware size and duration values
//   - Structural validation of parsed documents and transition rules
//     between successive configurations
//   - Field-level diffing and flattening for delivery to an engine
//
// Lifecycle layer (lifecycle, version, natsengine):
//   - An orchestrator that validates, diffs, announces, delegates, and
//     versions every configuration change through a single serialized gate
//   - A versioned history store supporting queries and rollback
//   - An engine adapter that delivers configuration to a broker control
//     plane over NATS
//
// The parser never fails on malformed input: unknown keys are ignored and
// unparseable constructs are skipped, so a partially valid file still
// yields a usable document. Rejection of bad configuration is the
// validator's job, applied by the orchestrator before any change reaches
// the engine.
//
// The cmd/brokerconf binary ties the layers together: it parses a
// configuration file, applies it through the orchestrator, and can watch
// the file for changes and hot-reload.
package brokerconf
