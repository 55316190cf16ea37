// Package verdict provides policy-based authorization for Go.
//
// A host application registers policies, named rule tables bound to target
// types, and asks the engine whether the current authorization context
// permits a rule on a target. Denials carry a structured reason tree that
// explains exactly which policy rules failed, so a binding layer can render
// messages and details without re-deriving them.
//
//	reg := verdict.NewRegistry()
//	reg.Register(&Post{}, &verdict.Definition{
//	    Name: "post",
//	    Rules: map[string]verdict.Rule{
//	        "edit?": func(ctx context.Context, c *verdict.Check) (bool, error) {
//	            u, err := c.User(ctx)
//	            if err != nil {
//	                return false, err
//	            }
//	            return u.(*User).Role == "admin", nil
//	        },
//	    },
//	})
//	eng, err := verdict.NewEngine(verdict.WithRegistry(reg))
//	sess := eng.NewSession(verdict.WithContextValue("user", currentUser))
//	result, err := eng.Authorize(ctx, sess, post, "edit?")
package verdict

// DeniedMessage is the message carried by every denial result.
const DeniedMessage = "Not authorized"

// ContextKeyUser is the conventional authorization context key for the
// acting user.
const ContextKeyUser = "user"

// Result is the outcome of a single rule evaluation. It is immutable once
// produced; Reasons is nil exactly when Value is true.
type Result struct {
	Value      bool    `json:"value"`
	Rule       string  `json:"rule"`
	Policy     string  `json:"policy"`
	Namespace  string  `json:"namespace,omitempty"`
	Reasons    *Reason `json:"reasons,omitempty"`
	EvalTimeNs int64   `json:"eval_time_ns"`
}

// Message returns the human-readable denial message, or "" when the check
// passed.
func (r *Result) Message() string {
	if r.Value {
		return ""
	}
	return DeniedMessage
}

// Details maps each policy that contributed a failure to the rules that
// failed on it, in evaluation order. Returns nil when the check passed.
func (r *Result) Details() map[string][]string {
	if r.Reasons == nil {
		return nil
	}
	details := make(map[string][]string)
	r.Reasons.walk(func(policy, rule string) {
		details[policy] = append(details[policy], rule)
	})
	return details
}

// FullMessages renders one human-readable line per failed (policy, rule)
// pair, in evaluation order. Returns nil when the check passed.
func (r *Result) FullMessages() []string {
	if r.Reasons == nil {
		return nil
	}
	var messages []string
	r.Reasons.walk(func(policy, rule string) {
		messages = append(messages, failureMessage(policy, rule))
	})
	return messages
}
