// Package agent drives one review turn against an external AI agent.
//
// A [Session] is a resumable conversation that streams tagged events
// (message text, structured error, turn completion with token usage) for a
// single turn. The concrete implementation shells out to the claude CLI in
// stream-json mode; the pipeline only sees the [Client] and [Session]
// interfaces.
//
// [Extract] is the structured response extractor: it consumes one turn's
// event stream under a timeout, strips markdown code fences, parses the
// response as JSON with a single bounded repair retry, and validates the
// result against a caller-supplied schema.
package agent
