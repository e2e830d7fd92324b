// Command kauma evaluates a batch of cryptanalysis actions from a JSON file
// and prints one JSON reply per line.
//
// Usage:
//
//	kauma <batch.json>
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kauma/kauma/action"
	"github.com/kauma/kauma/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the testable entry point: given CLI arguments (without the program
// name), it returns the process exit code.
func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: kauma <batch.json>")
		return 1
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", args[0], err)
		return 1
	}

	batch, err := action.ParseBatch(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", args[0], err)
		return 1
	}

	ids := make([]string, 0, len(batch.Testcases))
	for id := range batch.Testcases {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	logger := log.Default().Module("cmd")
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, id := range ids {
		tc := batch.Testcases[id]
		start := time.Now()
		reply, err := action.Dispatch(tc.Action, tc.Arguments)
		elapsed := time.Since(start)
		if err != nil {
			logger.Warn("action failed", "id", id, "action", tc.Action, "elapsed", elapsed, "error", err)
			reply = map[string]any{"error": err.Error()}
		} else {
			logger.Info("action completed", "id", id, "action", tc.Action, "elapsed", elapsed)
		}

		line, err := json.Marshal(map[string]any{"id": id, "reply": reply})
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode reply for %s: %v\n", id, err)
			return 1
		}
		w.Write(line)
		w.WriteString("\n")
	}
	return 0
}
