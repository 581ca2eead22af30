package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

// Rule is a compiled boolean expression evaluated against individual posts,
// e.g. `score > 100 && !isSelfPost`.
type Rule struct {
	src     string
	program *vm.Program
}

// CompileRule compiles an expression into a reusable per-post predicate.
func CompileRule(src string) (*Rule, error) {
	program, err := expr.Compile(src, expr.Env(map[string]interface{}{}))
	if err != nil {
		return nil, fmt.Errorf("compile filter rule: %w", err)
	}
	return &Rule{src: src, program: program}, nil
}

// Source returns the expression the rule was compiled from.
func (r *Rule) Source() string {
	return r.src
}

// Match evaluates the rule for one post.
func (r *Rule) Match(post reddit.Post) (bool, error) {
	result, err := expr.Run(r.program, ruleEnv(post))
	if err != nil {
		return false, fmt.Errorf("evaluate filter rule: %w", err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter rule did not return bool")
	}
	return matched, nil
}

func ruleEnv(post reddit.Post) map[string]interface{} {
	return map[string]interface{}{
		"id":           post.ID,
		"title":        post.Title,
		"author":       post.Author,
		"source":       post.Source,
		"score":        post.Score,
		"commentCount": post.CommentCount,
		"url":          post.URL,
		"domain":       post.Domain,
		"isSelfPost":   post.IsSelfPost,
		"bodyText":     post.BodyText,
	}
}
