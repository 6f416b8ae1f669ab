package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marcoevans693-eng/adamos-v0/pkg/engineeringlog"
	"github.com/marcoevans693-eng/adamos-v0/pkg/memorywrite"
	"github.com/marcoevans693-eng/adamos-v0/pkg/observability"
	"github.com/marcoevans693-eng/adamos-v0/pkg/runledger"
	"github.com/marcoevans693-eng/adamos-v0/pkg/trust"
)

// ExecutionResult is what Dispatch returns to its caller: the tool's own
// result plus the run bookkeeping that happened around it.
type ExecutionResult struct {
	RunID           string
	ToolName        string
	Output          any
	Err             error
	TrustStatus     trust.Status
	TrustViolations []string
}

// Dispatch is the only entry point that may write to the run ledger. It
// mints or reuses a run id, opens the per-run ledger, mints a signed run
// assertion token, runs the tool with a pre/post trust snapshot around it,
// conditionally records a memory.write receipt, and always closes the run
// with a run.end event — regardless of whether the tool succeeded.
func Dispatch(ctx context.Context, env *Env, toolName string, input toolInput, runID string) (ExecutionResult, error) {
	if strings.TrimSpace(runID) == "" {
		runID = runledger.NewRunID()
	}

	tracer := env.Tracer
	if tracer == nil {
		tracer, _ = observability.New(ctx, &observability.Config{Enabled: false})
	}
	var (
		finishSpan func(error)
		output     any
		toolErr    error
	)
	ctx, finishSpan = tracer.TrackOperation(ctx, "dispatch.run", observability.RunAttributes(runID, toolName, "pending")...)
	defer func() { finishSpan(toolErr) }()

	ledger := runledger.New(env.RunDir, runID)
	if env.Clock != nil {
		ledger.WithClock(env.Clock)
	}

	runToken, tokenErr := mintRunToken(env, runID, toolName)
	_ = ledger.Start(map[string]any{"tool_name": toolName, "run_token": runToken, "run_token_error": errString(tokenErr)})

	pre := trust.Collect(env.RepoRoot, env.now)
	_ = ledger.Event("trust.pre_snapshot", pre)

	fn, lookupErr := lookup(toolName)
	switch {
	case lookupErr != nil:
		toolErr = lookupErr
	case env.Firewall != nil:
		if schemaErr := env.Firewall.Validate(toolName, input); schemaErr != nil {
			toolErr = schemaErr
		} else {
			output, toolErr = fn(ctx, env, input)
		}
	default:
		output, toolErr = fn(ctx, env, input)
	}

	_ = ledger.Event("tool.result", map[string]any{
		"tool_name": toolName,
		"ok":        toolErr == nil,
		"error":     errString(toolErr),
	})

	if toolName == "memory.write" && toolErr == nil {
		logMemoryWriteReceipt(ledger, output)
	}

	post := trust.Collect(env.RepoRoot, env.now)
	_ = ledger.Event("trust.post_snapshot", post)

	status, violations := trust.Evaluate(pre, post)
	_ = ledger.Event("trust.classification", map[string]any{"status": status, "violations": violations})

	status2 := "ok"
	if toolErr != nil {
		status2 = "error"
	}
	createdAtUTC := env.nowUTCString()
	engineeringlog.SafeLogToolExecution(env.EngineeringLogPath, createdAtUTC, toolName, status2, nil, nil, nil, map[string]any{"run_id": runID})

	_ = ledger.End(map[string]any{"tool_name": toolName, "status": status2})

	return ExecutionResult{
		RunID:           runID,
		ToolName:        toolName,
		Output:          output,
		Err:             toolErr,
		TrustStatus:     status,
		TrustViolations: violations,
	}, toolErr
}

// logMemoryWriteReceipt records the memory.write tool's non-content output
// fields into the run ledger, but only when they are well-formed and
// non-empty — matching the dispatcher's conditional memory.write ledger
// receipt rule. No raw memory text ever reaches the ledger.
func logMemoryWriteReceipt(ledger *runledger.Ledger, output any) {
	out, ok := output.(memorywrite.Output)
	if !ok {
		return
	}
	if out.MemoryID == "" || out.RecordHash == "" || out.StorePath == "" {
		return
	}
	_ = ledger.Event("memory.write_receipt", map[string]any{
		"memory_id":   out.MemoryID,
		"record_hash": out.RecordHash,
		"store_path":  out.StorePath,
	})
}

// mintRunToken builds a signed HS256 JWT asserting that this run id
// executed this tool, embedded in the run.start ledger event. It carries
// no authority beyond that assertion and is never consulted by any tool
// handler.
func mintRunToken(env *Env, runID, toolName string) (string, error) {
	if len(env.JWTSecret) == 0 {
		return "", fmt.Errorf("dispatch: no JWT secret configured")
	}
	claims := jwt.MapClaims{
		"run_id":    runID,
		"tool_name": toolName,
		"iat":       jwt.NewNumericDate(env.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(env.JWTSecret)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
