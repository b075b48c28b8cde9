package cronplan

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	gterrors "github.com/vnykmshr/gotick/pkg/common/errors"
	"github.com/vnykmshr/gotick/pkg/common/validation"
	"github.com/vnykmshr/gotick/pkg/sched"
)

// ErrNotFound reports a lookup for a job name the planner does not know.
var ErrNotFound = errors.New("job not found")

// Config holds construction parameters for a Planner.
type Config struct {
	// Scheduler receives the one-shot timeouts the planner derives from
	// cron expressions. Required.
	Scheduler *sched.Scheduler

	// Now supplies wall-clock time for expression evaluation. Defaults to
	// time.Now. Tests inject a controllable function.
	Now func() time.Time

	// Location is the default timezone for expression evaluation.
	// Defaults to time.Local.
	Location *time.Location

	// Logger receives planner diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// JobOptions adjusts a single scheduled job.
type JobOptions struct {
	// MaxRuns limits how many times the job fires; zero means unlimited.
	MaxRuns int

	// Location overrides the planner default timezone for this job.
	Location *time.Location
}

// JobInfo is a point-in-time snapshot of one planned job.
type JobInfo struct {
	Name       string
	Expression string
	NextRun    time.Time
	Runs       int
}

// job is the mutable state behind one planned name. The runs counter and
// next time move only on the pump goroutine; the planner lock guards map
// membership and snapshots.
type job struct {
	name     string
	expr     string
	schedule cron.Schedule
	owner    sched.Owner
	ident    sched.Ident
	fn       func()
	loc      *time.Location
	maxRuns  int
	runs     int
	next     time.Time
}

// Planner maps wall-clock cron expressions onto a pump-driven Scheduler.
// Each job is kept as a single outstanding one-shot timeout; when it fires,
// the planner runs the job and re-arms the timeout for the next activation
// of the expression. The planner never reads the wall clock between fires,
// so a paused or slow pump simply fires late and re-anchors to real time.
type Planner struct {
	sched  *sched.Scheduler
	parser cron.Parser
	now    func() time.Time
	loc    *time.Location
	logger zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a Planner over the given configuration.
func New(cfg Config) (*Planner, error) {
	if cfg.Scheduler == nil {
		return nil, gterrors.NewValidationError("cronplan", "scheduler", nil, "cannot be nil").
			WithHint("provide the sched.Scheduler that pumps the planned jobs")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Planner{
		sched: cfg.Scheduler,
		// Optional-seconds parser: accepts the classic five-field form,
		// the six-field form with a leading seconds column, and
		// descriptors such as @hourly.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour |
			cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		now:    now,
		loc:    loc,
		logger: logger,
		jobs:   make(map[string]*job),
	}, nil
}

// Schedule plans fn against a cron expression under the given name.
// Scheduling an existing name replaces the previous job.
func (p *Planner) Schedule(owner sched.Owner, name, expr string, fn func()) error {
	return p.ScheduleWithOptions(owner, name, expr, fn, JobOptions{})
}

// ScheduleWithOptions is Schedule with explicit options.
func (p *Planner) ScheduleWithOptions(owner sched.Owner, name, expr string, fn func(), opts JobOptions) error {
	if err := validation.ValidateNotEmpty("cronplan", "name", name); err != nil {
		return err
	}
	if fn == nil {
		return gterrors.NewValidationError("cronplan", "fn", nil, "cannot be nil").
			WithHint("provide a job callback")
	}
	schedule, err := p.parser.Parse(expr)
	if err != nil {
		return gterrors.NewValidationError("cronplan", "expression", expr, err.Error()).
			WithHint("see the robfig/cron v3 syntax, e.g. \"*/5 * * * *\" or \"@hourly\"")
	}

	loc := opts.Location
	if loc == nil {
		loc = p.loc
	}

	j := &job{
		name:     name,
		expr:     expr,
		schedule: schedule,
		owner:    owner,
		ident:    sched.HashedName("cronplan:" + name),
		fn:       fn,
		loc:      loc,
		maxRuns:  opts.MaxRuns,
	}

	p.mu.Lock()
	if old, ok := p.jobs[name]; ok {
		p.sched.CancelTimeout(old.owner, old.ident)
	}
	p.jobs[name] = j
	p.armLocked(j)
	p.mu.Unlock()

	p.logger.Debug().
		Str("job", name).
		Str("expression", expr).
		Time("next", j.next).
		Msg("planned cron job")
	return nil
}

// armLocked computes the next activation and schedules the one-shot for it.
func (p *Planner) armLocked(j *job) {
	n := p.now().In(j.loc)
	j.next = j.schedule.Next(n)
	p.sched.SetTimeout(j.owner, j.ident, j.next.Sub(n), func() { p.fire(j) })
}

// fire runs one activation on the pump goroutine and re-arms the job.
func (p *Planner) fire(j *job) {
	p.mu.Lock()
	if cur, ok := p.jobs[j.name]; !ok || cur != j {
		// Cancelled or replaced after the timeout came due.
		p.mu.Unlock()
		return
	}
	j.runs++
	done := j.maxRuns > 0 && j.runs >= j.maxRuns
	if done {
		delete(p.jobs, j.name)
	}
	p.mu.Unlock()

	j.fn()

	if done {
		p.logger.Debug().
			Str("job", j.name).
			Int("runs", j.runs).
			Msg("cron job completed its run limit")
		return
	}

	p.mu.Lock()
	if cur, ok := p.jobs[j.name]; ok && cur == j {
		p.armLocked(j)
	}
	p.mu.Unlock()
}

// Cancel removes a planned job. It reports whether the name was known.
func (p *Planner) Cancel(name string) bool {
	p.mu.Lock()
	j, ok := p.jobs[name]
	if ok {
		delete(p.jobs, name)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	p.sched.CancelTimeout(j.owner, j.ident)
	return true
}

// Next returns the next activation time of a planned job.
func (p *Planner) Next(name string) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j, ok := p.jobs[name]
	if !ok {
		return time.Time{}, gterrors.NewOperationError("cronplan", "Next", ErrNotFound).
			WithContext("job " + name)
	}
	return j.next, nil
}

// Jobs returns a snapshot of all planned jobs, sorted by name.
func (p *Planner) Jobs() []JobInfo {
	p.mu.Lock()
	infos := make([]JobInfo, 0, len(p.jobs))
	for _, j := range p.jobs {
		infos = append(infos, JobInfo{
			Name:       j.name,
			Expression: j.expr,
			NextRun:    j.next,
			Runs:       j.runs,
		})
	}
	p.mu.Unlock()

	sort.Slice(infos, func(i, k int) bool { return infos[i].Name < infos[k].Name })
	return infos
}

// Validate checks a cron expression without scheduling anything.
func (p *Planner) Validate(expr string) error {
	if _, err := p.parser.Parse(expr); err != nil {
		return gterrors.NewValidationError("cronplan", "expression", expr, err.Error())
	}
	return nil
}

// Preview returns the first n activations of an expression after from.
func (p *Planner) Preview(expr string, from time.Time, n int) ([]time.Time, error) {
	schedule, err := p.parser.Parse(expr)
	if err != nil {
		return nil, gterrors.NewValidationError("cronplan", "expression", expr, err.Error())
	}
	if n <= 0 {
		return nil, nil
	}

	runs := make([]time.Time, 0, n)
	cur := from
	for i := 0; i < n; i++ {
		cur = schedule.Next(cur)
		runs = append(runs, cur)
	}
	return runs, nil
}
