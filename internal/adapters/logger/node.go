package logger

import (
	"context"
	"io"

	"github.com/grindlemire/graft"
	"go.trai.ch/fake/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

type outputKey struct{}

// ContextWithOutput makes the logger node write to w instead of stderr.
func ContextWithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	w, _ := ctx.Value(outputKey{}).(io.Writer)
	return w
}

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Logger, error) {
			l := &Logger{}
			l.SetOutput(outputFrom(ctx))
			return l, nil
		},
	})
}
