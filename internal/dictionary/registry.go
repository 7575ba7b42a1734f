package dictionary

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
)

// Registry holds loaded dictionaries keyed by language. It is safe for
// concurrent use; Reload swaps dictionaries while readers keep using the
// corpus they already hold.
type Registry struct {
	mu       sync.RWMutex
	dicts    map[string]*Dictionary
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	logger   logging.Logger
}

// NewRegistry creates an empty registry. fallback is served when Match finds
// no acceptable language.
func NewRegistry(logger logging.Logger, fallback language.Tag) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		dicts:    make(map[string]*Dictionary),
		fallback: fallback,
		logger:   logger.WithComponent("dictionary"),
	}
}

// Register adds or replaces the dictionary for d's language.
func (r *Registry) Register(d *Dictionary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dicts[d.Language().String()] = d
	r.rebuild()
}

// LoadFile loads path and registers it.
func (r *Registry) LoadFile(ctx context.Context, path string, opts Options) (*Dictionary, error) {
	perf := logging.StartOperation(r.logger, "load_dictionary")
	d, err := FromFile(path, opts)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}
	if d.Warnings != nil {
		r.logger.Warn(ctx, d.Warnings, "Rejected dictionary entries",
			"path", path, "rejected", d.Stats.Rejected)
	}
	r.Register(d)
	perf.End(ctx,
		"language", d.Language().String(),
		"patterns", d.Stats.Patterns,
		"exceptions", d.Stats.Exceptions)
	return d, nil
}

// Get returns the dictionary registered for exactly tag.
func (r *Registry) Get(tag language.Tag) (*Dictionary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dicts[tag.String()]
	return d, ok
}

// Match picks the best dictionary for an Accept-Language style string such
// as "de-CH, en;q=0.8". An empty or unmatched request gets the fallback.
func (r *Registry) Match(accept string) (*Dictionary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tags) == 0 {
		return nil, errors.NewIOError(errors.CodeDictNotFound, "no dictionaries loaded", nil)
	}

	d, err := r.match(accept)
	if err != nil || d != nil {
		return d, err
	}

	if d, ok := r.dicts[r.fallback.String()]; ok {
		return d, nil
	}
	return nil, errors.NewIOError(errors.CodeDictNotFound, "no dictionary for language", nil).
		WithContext("language", accept)
}

// Lookup is Match without the fallback.
func (r *Registry) Lookup(accept string) (*Dictionary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tags) == 0 {
		return nil, false
	}
	d, err := r.match(accept)
	return d, err == nil && d != nil
}

// match returns nil without error when nothing acceptable is registered.
// Callers hold mu.
func (r *Registry) match(accept string) (*Dictionary, error) {
	if accept == "" {
		return nil, nil
	}
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.CodeLanguageInvalid,
			"invalid language").WithContext("language", accept)
	}
	if len(desired) == 0 {
		return nil, nil
	}
	_, index, confidence := r.matcher.Match(desired...)
	if confidence == language.No {
		return nil, nil
	}
	return r.dicts[r.tags[index].String()], nil
}

// List returns the registered dictionaries ordered by language.
func (r *Registry) List() []*Dictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Dictionary, 0, len(r.tags))
	for _, tag := range r.tags {
		out = append(out, r.dicts[tag.String()])
	}
	return out
}

// Sources returns the file paths backing registered dictionaries.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var paths []string
	for _, tag := range r.tags {
		if src := r.dicts[tag.String()].Source; src != "inline" && !isStoreSource(src) {
			paths = append(paths, src)
		}
	}
	return paths
}

// Reload reloads every dictionary loaded from path. On failure the previous
// dictionaries stay registered.
func (r *Registry) Reload(ctx context.Context, path string) ([]language.Tag, error) {
	r.mu.RLock()
	var targets []Options
	for _, tag := range r.tags {
		if d := r.dicts[tag.String()]; d.Source == path {
			targets = append(targets, d.Options)
		}
	}
	r.mu.RUnlock()

	reloaded := make([]language.Tag, 0, len(targets))
	for _, opts := range targets {
		d, err := r.LoadFile(ctx, path, opts)
		if err != nil {
			r.logger.Error(ctx, err, "Reload failed, keeping previous dictionary",
				"path", path, "language", opts.Language.String())
			return reloaded, err
		}
		reloaded = append(reloaded, d.Language())
	}
	return reloaded, nil
}

// rebuild refreshes the sorted tag list and matcher. Callers hold mu.
func (r *Registry) rebuild() {
	tags := make([]language.Tag, 0, len(r.dicts))
	for _, d := range r.dicts {
		tags = append(tags, d.Language())
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	r.tags = tags
	r.matcher = language.NewMatcher(tags)
}

func isStoreSource(src string) bool {
	return strings.HasPrefix(src, "store:")
}
