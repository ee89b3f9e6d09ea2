package risk

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed disposable_domains.txt
var disposableList string

// DomainPolicy rejects disposable mailbox providers, including their
// subdomains.
type DomainPolicy struct {
	blocked map[string]struct{}
}

// NewDomainPolicy returns the built in denylist plus extra.
func NewDomainPolicy(extra ...string) *DomainPolicy {
	p := &DomainPolicy{blocked: make(map[string]struct{})}

	sc := bufio.NewScanner(strings.NewReader(disposableList))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p.blocked[strings.ToLower(line)] = struct{}{}
	}
	for _, d := range extra {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			p.blocked[d] = struct{}{}
		}
	}
	return p
}

// IsDisposable reports whether domain or any parent of it is blocked.
func (p *DomainPolicy) IsDisposable(domain string) bool {
	domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	for domain != "" {
		if _, ok := p.blocked[domain]; ok {
			return true
		}
		dot := strings.IndexByte(domain, '.')
		if dot < 0 {
			return false
		}
		domain = domain[dot+1:]
	}
	return false
}

// Len is the number of blocked domains.
func (p *DomainPolicy) Len() int { return len(p.blocked) }
