// Package uci drives an external UCI chess engine.
//
// A Session owns one engine process. It turns requests such as "set this
// position" or "analyze to depth 20" into protocol commands and turns the
// engine's streamed output into a resolved position string and an ordered
// list of candidate moves. The session forwards and parses text only; it
// implements no chess rules.
//
// One request may be in flight per session. A request issued while another
// one is pending is rejected with a session_busy error.
package uci
