package api

import "context"

type contextKey string

const (
	ctxKeySubject       contextKey = "subject"
	ctxKeyRequestID     contextKey = "request_id"
	ctxKeySubjectHolder contextKey = "subject_holder"
)

// subjectHolder lets middleware that runs before authentication (audit)
// observe the subject resolved later in the chain.
type subjectHolder struct {
	subject string
}

func withSubjectHolder(ctx context.Context, h *subjectHolder) context.Context {
	return context.WithValue(ctx, ctxKeySubjectHolder, h)
}

func subjectHolderFromCtx(ctx context.Context) *subjectHolder {
	h, _ := ctx.Value(ctxKeySubjectHolder).(*subjectHolder)
	return h
}

func withSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

func subjectFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubject).(string)
	return s
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

func requestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
