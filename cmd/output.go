package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-service/internal/service"
)

// printResult writes an operation envelope as indented JSON. Failed
// envelopes exit non-zero after printing so scripts can branch on status.
func printResult(res service.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "encode result")
	}
	if !res.Success {
		os.Exit(1)
	}
	return nil
}
