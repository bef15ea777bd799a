package llm

import "context"

type tagsKey struct{}

// tags label an outbound request for the request log.
type tags struct {
	purpose string
	session string
}

func tagsFrom(ctx context.Context) tags {
	t, _ := ctx.Value(tagsKey{}).(tags)
	return t
}

// WithPurpose labels requests made with ctx, e.g. "advice" or "explanation".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	t := tagsFrom(ctx)
	t.purpose = purpose
	return context.WithValue(ctx, tagsKey{}, t)
}

// WithSession ties requests made with ctx to an assessment session.
func WithSession(ctx context.Context, sessionID string) context.Context {
	t := tagsFrom(ctx)
	t.session = sessionID
	return context.WithValue(ctx, tagsKey{}, t)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := tagsFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// SessionFrom returns the session the request belongs to, if any.
func SessionFrom(ctx context.Context) string {
	return tagsFrom(ctx).session
}
