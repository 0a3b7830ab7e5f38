package tool

import "context"

type logThoughtArgs struct {
	Content string `json:"content" jsonschema:"required,description=A short reasoning note to record in the audit trace."`
}

func registerLoggingTools(r *Registry, deps Deps) {
	r.MustRegister(Definition{
		Name:        "log_thought",
		Description: "Record a reasoning note in the session's audit trace. Use sparingly, for decisions worth surfacing to a reviewer.",
		ArgsSample:  &logThoughtArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*logThoughtArgs)
			if err := deps.Thoughts.RecordThought(ctx, tc.SessionID, tc.AgentName, args.Content); err != nil {
				return nil, err
			}
			return map[string]any{"recorded": true}, nil
		},
	})
}
