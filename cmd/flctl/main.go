// Command flctl drives a free-list pool from the command line: it replays
// allocation scripts, runs randomized stress with invariant checks and
// prints free-list dumps and statistics.
package main

func main() {
	execute()
}
