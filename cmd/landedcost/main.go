package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/app"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/config"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

const usage = `usage:
  landedcost calc    -request file.json [-zero-shipping]
  landedcost compare -request file.json
  landedcost rates   -from USD -to SGD`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 || (args[0] != "calc" && args[0] != "compare" && args[0] != "rates") {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	requestFile := fs.String("request", "", "Path to the JSON request (- for stdin)")
	zeroShipping := fs.Bool("zero-shipping", false, "Treat shipping as zero instead of looking up a lane rate")
	from := fs.String("from", "", "Currency the rate converts from (rates)")
	to := fs.String("to", "", "Currency the rate converts to (rates)")
	timeout := fs.Duration("timeout", 30*time.Second, "Overall timeout")
	if err := fs.Parse(args[1:]); err != nil || (cmd != "rates" && *requestFile == "") {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	cfg := config.Load()
	// stdout carries the result
	logger.ConfigureWriter(cfg.Env, os.Stderr)
	log := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var raw []byte
	if cmd != "rates" {
		var err error
		if raw, err = readRequest(*requestFile); err != nil {
			return report(log, apperror.InvalidInput("request", err.Error()))
		}
	}

	engine, err := app.New(ctx, cfg, log)
	if err != nil {
		return report(log, err)
	}
	defer func() { _ = engine.Close() }()

	var out any
	switch cmd {
	case "calc":
		var req model.CalculationRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return report(log, apperror.InvalidInput("request", "malformed JSON: "+err.Error()))
		}
		if *zeroShipping {
			req.ZeroShipping = true
		}
		out, err = engine.Calculation.CalculateLane(ctx, req)
	case "compare":
		var req model.ComparisonRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return report(log, apperror.InvalidInput("request", "malformed JSON: "+err.Error()))
		}
		out, err = engine.Comparison.CompareLanes(ctx, req)
	case "rates":
		out, err = engine.ExchangeRate.AnalyzeRates(ctx, *from, *to)
	}
	if err != nil {
		return report(log, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return report(log, err)
	}
	return 0
}

func readRequest(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// report prints err as JSON on stderr and returns the exit code: 2 for
// request problems, 1 otherwise.
func report(log *slog.Logger, err error) int {
	body := errorBody{Kind: apperror.Kind(err), Message: apperror.GetMessage(err)}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body.Field = appErr.Field
	}

	data, _ := json.MarshalIndent(body, "", "  ")
	fmt.Fprintln(os.Stderr, string(data))

	if apperror.IsClientError(err) {
		return 2
	}
	log.Error("landed cost run failed", slog.String("error", err.Error()))
	return 1
}
