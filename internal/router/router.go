// Package router maps client paths to pages and applies the authentication guard.
package router

import (
	"net/url"
	"strings"
)

const (
	PathRoot   = "/"
	PathLogin  = "/login"
	PathSignup = "/signup"
	PathTasks  = "/tasks"
)

type Page int

const (
	PageNotFound Page = iota
	PageLogin
	PageSignup
	PageTasks
)

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageSignup:
		return "signup"
	case PageTasks:
		return "tasks"
	default:
		return "not-found"
	}
}

// Resolution is the outcome of routing one navigation.
type Resolution struct {
	Page Page
	// Path is where the user ends up (after any redirect).
	Path string
	// Requested is the normalized path that was asked for.
	Requested  string
	Redirected bool
}

// Resolve routes path. The root path always goes to login without looking at the
// session; the task list requires authentication; unknown paths are not-found
// regardless of session state.
func Resolve(path string, authenticated bool) Resolution {
	p := Normalize(path)
	res := Resolution{Requested: p, Path: p}
	switch p {
	case PathRoot:
		res.Page = PageLogin
		res.Path = PathLogin
		res.Redirected = true
	case PathLogin:
		res.Page = PageLogin
	case PathSignup:
		res.Page = PageSignup
	case PathTasks:
		if authenticated {
			res.Page = PageTasks
			return res
		}
		res.Page = PageLogin
		res.Path = PathLogin
		res.Redirected = true
	default:
		res.Page = PageNotFound
	}
	return res
}

// Normalize trims whitespace, query and fragment, forces a leading slash and drops a
// trailing one. Matching is case-sensitive.
func Normalize(path string) string {
	p := strings.TrimSpace(path)
	if u, err := url.Parse(p); err == nil && u.Scheme == "" && u.Host == "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
