package updater

import (
	"context"
	"errors"
)

// CheckResult reports whether a newer version of a tool is published.
type CheckResult struct {
	Tool      string `json:"tool"`
	Local     string `json:"local_version"`
	Latest    string `json:"latest_version,omitempty"`
	URL       string `json:"url,omitempty"`
	Available bool   `json:"update_available"`
	Error     string `json:"error,omitempty"`
}

// Check resolves each named tool, or every catalog entry when names is empty,
// without downloading anything.
func (p *Pipeline) Check(ctx context.Context, names []string) []CheckResult {
	if len(names) == 0 {
		names = p.catalog.Names()
	}
	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		results = append(results, p.checkOne(ctx, name))
	}
	return results
}

func (p *Pipeline) checkOne(ctx context.Context, name string) CheckResult {
	res := CheckResult{Tool: name}
	spec, err := p.catalog.Lookup(name)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Local = spec.LocalVersion

	rel, err := p.resolver.Resolve(ctx, spec, false)
	switch {
	case errors.Is(err, ErrNoUpdateAvailable):
		res.Latest = spec.LocalVersion
	case err != nil:
		res.Error = err.Error()
		p.log.Warn("check failed", "tool", name, "err", err)
	default:
		res.Latest = rel.Version
		res.URL = rel.URL
		res.Available = true
	}
	return res
}
