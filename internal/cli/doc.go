// Package cli implements the prettysmi command-line interface.
//
// The root command runs one report pass:
//
//  1. Resolve settings (flags, PRETTYSMI_* environment, config file)
//  2. Collect the tool's output, or read a saved copy with --input
//  3. Parse it into per-device metrics
//  4. Classify every metric against the thresholds
//  5. Render to stdout in the selected format
//
// Any failure stops the pass before stdout is written. The error is printed
// to stderr as one line and mapped to the exit code:
//
//	0  report printed
//	1  tool missing, failed or timed out; update failed
//	2  no parsable device data
//	3  invalid flags or settings
//
// # Commands
//
//	prettysmi                 - Print the GPU report
//	prettysmi version         - Print build information
//	prettysmi update          - Install the latest release
//	prettysmi completion      - Generate shell completion scripts
//
// Commands are built per invocation by newRootCmd from an Env, so tests run
// the whole CLI against buffers and an in-memory filesystem.
package cli
