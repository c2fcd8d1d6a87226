package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edp1096/opspice/pkg/simulator"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer JSON queries line by line on stdin and stdout",
		Long: `Run as a tool endpoint. Each input line is a JSON request

  {"id": "1", "netlist": "...", "target": "R1 current"}

and each output line is the matching response

  {"id": "1", "value": 0.001, "unit": "A", "text": "The current through R1 is 0.0 A."}

or {"id": "1", "error": {"kind": "QueryError", "message": "..."}}.
Requests without an id get a generated one. Responses may be written out of
order; match them by id.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().Int("concurrency", 4, "Number of requests served at once")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, sim, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving requests", zap.Int("concurrency", cfg.Concurrency))
	return serve(ctx, sim, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Concurrency, logger)
}

// serve reads requests from in until EOF and writes one response line per
// request to out.
func serve(ctx context.Context, sim *simulator.Simulator, in io.Reader, out io.Writer, concurrency int, logger *zap.Logger) error {
	var mu sync.Mutex
	encoder := json.NewEncoder(out)
	respond := func(resp simulator.Response) error {
		mu.Lock()
		defer mu.Unlock()
		return encoder.Encode(resp)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req simulator.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			resp := simulator.ErrorFor(uuid.NewString(), spiceerr.New(spiceerr.KindRequest, 0, spiceerr.ErrBadRequest,
				"invalid request: %v", err))
			if err := respond(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			resp := sim.Query(ctx, req)
			if resp.Error != nil {
				logger.Debug("request failed",
					zap.String("id", req.ID),
					zap.String("kind", string(resp.Error.Kind)),
					zap.String("message", resp.Error.Message))
			}
			if err := respond(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}
