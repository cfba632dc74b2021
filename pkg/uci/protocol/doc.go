// Package protocol holds the UCI text protocol: the commands the adapter
// sends and the parsers for the engine output lines it consumes.
//
// Inbound line shapes:
//
//	Fen: <position>                      position report (reply to "d")
//	info depth N ... score cp S ... wdl W D L ... pv MOVE ...
//	bestmove MOVE [ponder MOVE]          end of analysis
//	readyok                              reply to "isready"
//
// Info lines are read through a LineSchema. SchemaKeyed locates fields by
// their keywords; SchemaFixed reads the positional layout Stockfish emits
// with MultiPV and UCI_ShowWDL enabled:
//
//	0    1     2 3        4 5       6 7     8  9 10  11 12 13 ... 24 25
//	info depth D seldepth n multipv k score cp S wdl W  D  L  ... pv MOVE
package protocol
