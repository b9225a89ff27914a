package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a browser match pattern such as "*://*.proquest.com/*".
// A "*." host prefix also matches the bare domain.
type Pattern struct {
	raw      string
	scheme   glob.Glob
	host     glob.Glob
	bareHost string
	path     glob.Glob
}

// CompilePattern parses a "<scheme>://<host>/<path>" match pattern.
func CompilePattern(raw string) (*Pattern, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, fmt.Errorf("match pattern %q: missing scheme separator", raw)
	}
	host, path, _ := strings.Cut(rest, "/")
	path = "/" + path

	p := &Pattern{raw: raw}
	var err error
	if p.scheme, err = glob.Compile(scheme); err != nil {
		return nil, fmt.Errorf("match pattern %q scheme: %w", raw, err)
	}
	if p.host, err = glob.Compile(host); err != nil {
		return nil, fmt.Errorf("match pattern %q host: %w", raw, err)
	}
	if bare, found := strings.CutPrefix(host, "*."); found {
		p.bareHost = bare
	}
	if p.path, err = glob.Compile(path); err != nil {
		return nil, fmt.Errorf("match pattern %q path: %w", raw, err)
	}
	return p, nil
}

// MustCompilePattern is CompilePattern for static registry entries.
func MustCompilePattern(raw string) *Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether u falls inside the pattern. Path matching includes the
// query string, as browser request filters do.
func (p *Pattern) Match(u *url.URL) bool {
	if u == nil || !p.scheme.Match(u.Scheme) {
		return false
	}
	host := u.Hostname()
	if !p.host.Match(host) && (p.bareHost == "" || host != p.bareHost) {
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return p.path.Match(path)
}

func (p *Pattern) String() string {
	return p.raw
}
