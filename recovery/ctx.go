package recovery

import "context"

// CtxDone adapts a context.Context to the Context interface Serve
// expects, so callers can pass the context they already have.
func CtxDone(ctx context.Context) Context {
	return ctxDone{ctx}
}

type ctxDone struct{ ctx context.Context }

func (c ctxDone) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}
