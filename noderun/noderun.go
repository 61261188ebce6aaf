// Package noderun turns a houdini.Node into the executable the host calls:
// the payload arrives on stdin, the result leaves on stdout, and logs and
// the failure report go to stderr.
package noderun

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	houdini "github.com/luxalpa/houdini-node"
	"github.com/luxalpa/houdini-node/internal/config"
)

// Options configures one invocation.
type Options struct {
	// Inputs declares the schema of each input slot.
	Inputs []*houdini.Schema
	// Config supplies codec limits; nil uses the defaults of config.Load.
	Config *config.Config
	// Logger receives structured logs; nil disables logging.
	Logger *zap.Logger
}

// NewLogger builds a JSON logger at level writing to w.
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// Serve runs one decode, apply, encode cycle. On failure nothing is written
// to out; errOut receives a single JSON object {"error": {...}} and the
// error is returned.
func Serve(ctx context.Context, node houdini.Node, in io.Reader, out, errOut io.Writer, opt Options) error {
	cfg := opt.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return Report(errOut, err)
		}
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("invocation", uuid.NewString()))

	start := time.Now()
	payload, err := io.ReadAll(in)
	if err != nil {
		log.Error("reading payload failed", zap.Error(err))
		return Report(errOut, fmt.Errorf("read payload: %w", err))
	}
	log.Debug("payload received", zap.Int("bytes", len(payload)), zap.Int("declared_inputs", len(opt.Inputs)))

	dopt := cfg.DecodeOpt(opt.Inputs...)
	dopt.OnWarning = func(iss houdini.Issue) {
		log.Warn("payload issue", zap.String("code", iss.Code), zap.String("path", iss.Path), zap.String("message", iss.Message))
	}
	result, err := houdini.Run(ctx, node, payload, houdini.RunOpt{Decode: dopt, Encode: cfg.EncodeOpt()})
	if err != nil {
		iss := issueOf(err)
		log.Error("invocation failed",
			zap.String("code", iss.Code),
			zap.Int("input", iss.Input),
			zap.String("path", iss.Path),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return Report(errOut, err)
	}
	if _, err := out.Write(result); err != nil {
		log.Error("writing result failed", zap.Error(err))
		return fmt.Errorf("write result: %w", err)
	}
	log.Info("invocation finished",
		zap.Int("bytes_in", len(payload)),
		zap.Int("bytes_out", len(result)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Main is the body of a node executable's main function. It exits with
// status 1 when the invocation fails.
func Main(node houdini.Node, inputs ...*houdini.Schema) {
	cfg, err := config.Load("")
	if err != nil {
		Exit(err)
	}
	logger, err := NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		Exit(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = Serve(ctx, node, os.Stdin, os.Stdout, os.Stderr, Options{Inputs: inputs, Config: cfg, Logger: logger})
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

type errorReport struct {
	Error houdini.Issue `json:"error"`
}

func issueOf(err error) houdini.Issue {
	if iss, ok := houdini.AsIssue(err); ok {
		return iss
	}
	return houdini.Issue{Input: -1, Code: houdini.CodeNodeFailed, Message: err.Error()}
}

// Exit reports err on stderr the way a failed invocation does and exits
// with status 1. Use it for failures before Main, such as a bad schema.
func Exit(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}

// Report writes err as one {"error": Issue} JSON line and returns it.
func Report(w io.Writer, err error) error {
	b, mErr := json.Marshal(errorReport{Error: issueOf(err)})
	if mErr != nil {
		fmt.Fprintf(w, "{\"error\":{\"code\":%q,\"message\":%q}}\n", houdini.CodeNodeFailed, err.Error())
		return err
	}
	fmt.Fprintf(w, "%s\n", b)
	return err
}
