package llm

import "context"

type callKey struct{}

// call labels one request for the event log.
type call struct {
	purpose string
	topic   string
}

func callFrom(ctx context.Context) call {
	c, _ := ctx.Value(callKey{}).(call)
	return c
}

// WithPurpose attaches a purpose label ("question-gen",
// "weak-topic-analysis") to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	c := callFrom(ctx)
	c.purpose = purpose
	return context.WithValue(ctx, callKey{}, c)
}

// WithTopic attaches the curriculum topic a request is about.
func WithTopic(ctx context.Context, topic string) context.Context {
	c := callFrom(ctx)
	c.topic = topic
	return context.WithValue(ctx, callKey{}, c)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if p := callFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// TopicFrom returns the topic attached with WithTopic, or "".
func TopicFrom(ctx context.Context) string {
	return callFrom(ctx).topic
}
