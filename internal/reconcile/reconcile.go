package reconcile

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
)

// EventKind classifies what reconciliation decided for one install
type EventKind int

const (
	EventCurrent         EventKind = iota // Up to date
	EventOutdated                         // Stale, planned for update
	EventUpstreamMissing                  // No catalog entry for the folder
	EventMultiOutdated                    // Colliding candidates, none current, unresolved
	EventDisambiguated                    // Colliding candidates, resolved by strategy, planned
	EventUnmanaged                        // Filtered out by the managed titles list
)

func (k EventKind) String() string {
	switch k {
	case EventCurrent:
		return "current"
	case EventOutdated:
		return "outdated"
	case EventUpstreamMissing:
		return "upstream-missing"
	case EventMultiOutdated:
		return "multi-outdated"
	case EventDisambiguated:
		return "disambiguated"
	case EventUnmanaged:
		return "unmanaged"
	default:
		return "unknown"
	}
}

// Event records the decision for one install
type Event struct {
	Kind       EventKind
	Install    *addons.InstalledAddon
	Candidates []catalog.Entry
	Tier       Tier // Set for EventCurrent
}

// PlanItem is one planned replacement
type PlanItem struct {
	Install *addons.InstalledAddon
	Entry   catalog.Entry
}

// Plan maps a normalized install path to its chosen replacement
type Plan map[string]PlanItem

// Paths returns the planned paths, sorted
func (p Plan) Paths() []string {
	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Report is the outcome of a reconciliation run
type Report struct {
	Events []Event
	Plan   Plan
}

// Count returns the number of events of a kind
func (r *Report) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the events of a kind
func (r *Report) Filter(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Options configures a Reconciler
type Options struct {
	// Disambiguator resolves path collisions; nil means NoDisambiguation
	Disambiguator Disambiguator
	// Managed limits planning to installs with these titles; empty means all
	Managed []string
}

// Reconciler matches installs to the catalog and decides which are outdated
type Reconciler struct {
	index         *catalog.Index
	disambiguator Disambiguator
	managed       map[string]bool
	log           *log.Logger
}

// New creates a Reconciler over an immutable catalog index
func New(index *catalog.Index, opts Options, logger *log.Logger) *Reconciler {
	r := &Reconciler{
		index:         index,
		disambiguator: opts.Disambiguator,
		log:           logger,
	}
	if r.disambiguator == nil {
		r.disambiguator = NoDisambiguation{}
	}
	if len(opts.Managed) > 0 {
		r.managed = make(map[string]bool, len(opts.Managed))
		for _, title := range opts.Managed {
			r.managed[strings.ToLower(addons.CleanTitle(title))] = true
		}
	}
	return r
}

// Reconcile evaluates every install. Installs are visited in path order.
func (r *Reconciler) Reconcile(installs map[string]*addons.InstalledAddon) *Report {
	report := &Report{Plan: make(Plan)}

	paths := make([]string, 0, len(installs))
	for p := range installs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		install := installs[path]
		report.Events = append(report.Events, r.reconcileOne(install, report.Plan))
	}

	r.log.Debug("Reconciliation finished",
		"installs", len(installs),
		"outdated", len(report.Plan),
		"missing", report.Count(EventUpstreamMissing),
		"ambiguous", report.Count(EventMultiOutdated),
	)

	return report
}

func (r *Reconciler) reconcileOne(install *addons.InstalledAddon, plan Plan) Event {
	if r.managed != nil && !r.managed[strings.ToLower(install.Title)] {
		return Event{Kind: EventUnmanaged, Install: install}
	}

	match := Identify(install, r.index)

	switch match.Kind {
	case Absent:
		r.log.Info("No longer exists upstream", "path", install.Path, "title", install.Title)
		return Event{Kind: EventUpstreamMissing, Install: install}

	case Unique:
		entry := match.Candidates[0]
		if tier := CompareTier(install, entry); tier != TierNone {
			return Event{Kind: EventCurrent, Install: install, Candidates: match.Candidates, Tier: tier}
		}
		r.log.Debug("Outdated",
			"path", install.Path,
			"local", LocalVersion(install),
			"remote", RemoteVersion(entry),
		)
		plan[install.Path] = PlanItem{Install: install, Entry: entry}
		return Event{Kind: EventOutdated, Install: install, Candidates: match.Candidates}

	default:
		for _, entry := range match.Candidates {
			if tier := CompareTier(install, entry); tier != TierNone {
				return Event{Kind: EventCurrent, Install: install, Candidates: match.Candidates, Tier: tier}
			}
		}
		if entry, ok := r.disambiguator.Disambiguate(install, match.Candidates); ok {
			r.log.Info("Resolved path collision", "path", install.Path, "id", entry.ID, "title", entry.Title)
			plan[install.Path] = PlanItem{Install: install, Entry: entry}
			return Event{Kind: EventDisambiguated, Install: install, Candidates: []catalog.Entry{entry}}
		}
		ids := make([]int, len(match.Candidates))
		for i, c := range match.Candidates {
			ids[i] = c.ID
		}
		r.log.Warn("Multiple catalog entries outdated for one folder, not updating",
			"path", install.Path, "ids", ids)
		return Event{Kind: EventMultiOutdated, Install: install, Candidates: match.Candidates}
	}
}

// LocalVersion returns the version an install is compared with, for display
func LocalVersion(a *addons.InstalledAddon) string {
	if a.Version != "" {
		return a.Version
	}
	return a.VersionName
}

// RemoteVersion returns the catalog version an entry is compared with, for display
func RemoteVersion(e catalog.Entry) string {
	if e.NestedVersion != "" {
		return e.NestedVersion
	}
	return e.Version.String()
}
