package isodata

import (
	"context"
	"slices"
	"time"

	"github.com/llegregam/isoplot/internal/logger"
	"github.com/llegregam/isoplot/internal/metrics"
)

// Stage is a step of the pipeline state machine.
type Stage int

const (
	StageEmpty Stage = iota
	StageDataLoaded
	StageTemplateLoaded
	StageMerged
	StageNormalized
	StageAggregated
	StageIdentified
	StageAssembled
)

var stageNames = map[Stage]string{
	StageEmpty:          "EMPTY",
	StageDataLoaded:     "DATA_LOADED",
	StageTemplateLoaded: "TEMPLATE_LOADED",
	StageMerged:         "MERGED",
	StageNormalized:     "NORMALIZED",
	StageAggregated:     "AGGREGATED",
	StageIdentified:     "IDENTIFIED",
	StageAssembled:      "ASSEMBLED",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Summary describes what happened during a computation.
type Summary struct {
	DataPath          string
	TemplatePath      string
	MeasurementRows   int
	TemplateRows      int
	MergedRows        int
	UnmatchedSamples  []string
	ExtraCollisions   []string
	NormalizationUsed bool
	Groups            int
	MixedOrder        []GroupKey
}

// Pipeline threads the tables of one computation through its stages. Each
// stage consumes the previous stage's output and stores a new table. A
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	log        logger.ILogger
	rec        metrics.Recorder
	sheetIndex int

	stage    Stage
	summary  Summary
	data     []Measurement
	meta     []Metadata
	joined   []Joined
	obs      []Observation
	groups   []GroupSummary
	assembly Assembly
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics sets the stage metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

// WithSheetIndex selects the 1-based template sheet.
func WithSheetIndex(i int) Option {
	return func(p *Pipeline) { p.sheetIndex = i }
}

// NewPipeline returns an EMPTY pipeline. A nil log discards messages.
func NewPipeline(log logger.ILogger, opts ...Option) *Pipeline {
	if log == nil {
		log = &logger.NullLogger{}
	}
	p := &Pipeline{log: log, rec: metrics.Nop{}, sheetIndex: 1}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Stage returns the current stage.
func (p *Pipeline) Stage() Stage { return p.stage }

// Summary returns counters and notes gathered so far.
func (p *Pipeline) Summary() Summary { return p.summary }

// enter checks that the pipeline sits exactly at one of from. Being short
// of from[0] is a MissingDataError; being past it is a StageError.
func (p *Pipeline) enter(op string, from ...Stage) error {
	for _, s := range from {
		if p.stage == s {
			return nil
		}
	}
	if p.stage < from[0] {
		return &MissingDataError{Op: op, Need: from[0], Current: p.stage}
	}
	return &StageError{Op: op, Current: p.stage}
}

func (p *Pipeline) track(ctx context.Context, op string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	p.rec.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		p.log.Errorf("%s failed: %v", op, err)
		return err
	}
	p.rec.AddRows(op, n)
	return nil
}

// LoadData reads the measurement file.
func (p *Pipeline) LoadData(path string) error {
	return p.track(context.Background(), "load_data", func() (int, error) {
		if err := p.enter("load data", StageEmpty); err != nil {
			return 0, err
		}
		p.log.Infof("Reading measurements from %s", path)
		rows, err := LoadData(path)
		if err != nil {
			return 0, err
		}
		p.summary.DataPath = path
		return len(rows), p.setData(rows)
	})
}

// UseData installs already parsed measurements.
func (p *Pipeline) UseData(rows []Measurement) error {
	if err := p.enter("load data", StageEmpty); err != nil {
		return err
	}
	return p.setData(rows)
}

func (p *Pipeline) setData(rows []Measurement) error {
	if len(rows) == 0 {
		return &SchemaError{Table: tableMeasurements, Empty: true}
	}
	p.data = slices.Clone(rows)
	p.summary.MeasurementRows = len(rows)
	p.stage = StageDataLoaded
	p.log.Debugf("Loaded %d measurement rows", len(rows))
	return nil
}

// LoadTemplate reads the metadata workbook.
func (p *Pipeline) LoadTemplate(path string) error {
	return p.track(context.Background(), "load_template", func() (int, error) {
		if err := p.enter("load template", StageDataLoaded); err != nil {
			return 0, err
		}
		p.log.Infof("Reading template from %s", path)
		rows, err := LoadTemplate(path, p.sheetIndex)
		if err != nil {
			return 0, err
		}
		p.summary.TemplatePath = path
		return len(rows), p.setTemplate(rows)
	})
}

// UseTemplate installs already parsed metadata.
func (p *Pipeline) UseTemplate(rows []Metadata) error {
	if err := p.enter("load template", StageDataLoaded); err != nil {
		return err
	}
	return p.setTemplate(rows)
}

func (p *Pipeline) setTemplate(rows []Metadata) error {
	if len(rows) == 0 {
		return &SchemaError{Table: tableMetadata, Empty: true}
	}
	p.meta = slices.Clone(rows)
	p.summary.TemplateRows = len(rows)
	p.stage = StageTemplateLoaded
	p.log.Debugf("Loaded %d template rows", len(rows))
	return nil
}

// GenerateTemplate returns placeholder metadata for every loaded sample.
func (p *Pipeline) GenerateTemplate() ([]Metadata, error) {
	if p.stage < StageDataLoaded {
		return nil, &MissingDataError{Op: "generate template", Need: StageDataLoaded, Current: p.stage}
	}
	p.log.Infof("Generating template...")
	return TemplateRows(p.data), nil
}

// Merge joins measurements with metadata.
func (p *Pipeline) Merge() error { return p.merge(context.Background()) }

func (p *Pipeline) merge(ctx context.Context) error {
	return p.track(ctx, "merge", func() (int, error) {
		if p.stage < StageTemplateLoaded {
			return 0, &MergeError{Reason: "measurements and template must both be loaded before merging"}
		}
		if err := p.enter("merge", StageTemplateLoaded); err != nil {
			return 0, err
		}
		res, err := Merge(p.data, p.meta)
		if err != nil {
			return 0, err
		}
		if len(res.Unmatched) > 0 {
			p.log.Infof("%d sample(s) have no template row and were dropped: %v", len(res.Unmatched), res.Unmatched)
		}
		for _, c := range res.Collisions {
			p.log.Infof("Column %q exists in both inputs, keeping the template value", c)
		}
		p.joined = res.Rows
		p.summary.MergedRows = len(res.Rows)
		p.summary.UnmatchedSamples = res.Unmatched
		p.summary.ExtraCollisions = res.Collisions
		p.stage = StageMerged
		p.log.Debugf("Data has been merged.")
		return len(res.Rows), nil
	})
}

// Normalize divides corrected_area by the normalization factor when any
// factor differs from 1. With all factors equal to 1 the table is kept as
// is and the stage still advances.
func (p *Pipeline) Normalize() error { return p.normalize(context.Background()) }

func (p *Pipeline) normalize(ctx context.Context) error {
	return p.track(ctx, "normalize", func() (int, error) {
		if err := p.enter("normalize", StageMerged); err != nil {
			return 0, err
		}
		if !NeedsNormalization(p.joined) {
			p.log.Debugf("All normalization factors are 1, skipping normalization")
			p.stage = StageNormalized
			return 0, nil
		}
		rows, err := Normalize(p.joined)
		if err != nil {
			return 0, err
		}
		p.joined = rows
		p.summary.NormalizationUsed = true
		p.stage = StageNormalized
		p.log.Debugf("The corrected_area column has been normalized")
		return len(rows), nil
	})
}

// Aggregate coerces group keys to integers and computes group statistics.
func (p *Pipeline) Aggregate() error { return p.aggregate(context.Background()) }

func (p *Pipeline) aggregate(ctx context.Context) error {
	return p.track(ctx, "aggregate", func() (int, error) {
		if err := p.enter("aggregate", StageMerged, StageNormalized); err != nil {
			return 0, err
		}
		obs, err := CoerceKeys(p.joined)
		if err != nil {
			return 0, err
		}
		p.obs = obs
		p.groups = Aggregate(obs)
		p.summary.Groups = len(p.groups)
		p.stage = StageAggregated
		p.log.Debugf("Computed %d groups", len(p.groups))
		return len(p.groups), nil
	})
}

// Identify assigns replicate and group IDs.
func (p *Pipeline) Identify() error { return p.identify(context.Background()) }

func (p *Pipeline) identify(ctx context.Context) error {
	return p.track(ctx, "identify", func() (int, error) {
		if err := p.enter("identify", StageAggregated); err != nil {
			return 0, err
		}
		obs, groups, err := Identify(p.obs, p.groups)
		if err != nil {
			return 0, err
		}
		p.obs, p.groups = obs, groups
		p.stage = StageIdentified
		p.log.Debugf("IDs have been generated")
		return len(obs), nil
	})
}

// Assemble builds the final table.
func (p *Pipeline) Assemble() error { return p.assemble(context.Background()) }

func (p *Pipeline) assemble(ctx context.Context) error {
	return p.track(ctx, "assemble", func() (int, error) {
		if err := p.enter("assemble", StageIdentified); err != nil {
			return 0, err
		}
		a := Assemble(p.obs, p.groups)
		for _, k := range a.MixedOrder {
			p.log.Infof("Replicates of %s/%s/T%d disagree on condition_order, using the lowest",
				k.Metabolite, k.Condition, k.Time)
		}
		p.assembly = a
		p.groups = a.Groups
		p.summary.MixedOrder = a.MixedOrder
		p.stage = StageAssembled
		return len(a.Final), nil
	})
}

// Compute runs every remaining stage from TEMPLATE_LOADED to ASSEMBLED.
func (p *Pipeline) Compute(ctx context.Context) error {
	p.log.Infof("Launching the computation of data...")
	steps := []func(context.Context) error{p.merge, p.normalize, p.aggregate, p.identify, p.assemble}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(ctx); err != nil {
			return err
		}
	}
	p.log.Infof("Data has been computed. Ready for export and/or plotting.")
	return nil
}

// Data returns a copy of the loaded measurements.
func (p *Pipeline) Data() []Measurement { return slices.Clone(p.data) }

// Template returns a copy of the loaded metadata.
func (p *Pipeline) Template() []Metadata { return slices.Clone(p.meta) }

// Observations returns the individual table with replicate IDs.
func (p *Pipeline) Observations() ([]Observation, error) {
	if p.stage < StageIdentified {
		return nil, &MissingDataError{Op: "observations", Need: StageIdentified, Current: p.stage}
	}
	return slices.Clone(p.obs), nil
}

// Groups returns the group summary table with group IDs.
func (p *Pipeline) Groups() ([]GroupSummary, error) {
	if p.stage < StageAssembled {
		return nil, &MissingDataError{Op: "groups", Need: StageAssembled, Current: p.stage}
	}
	return slices.Clone(p.groups), nil
}

// Final returns the export table.
func (p *Pipeline) Final() ([]FinalRow, error) {
	if p.stage < StageAssembled {
		return nil, &MissingDataError{Op: "final table", Need: StageAssembled, Current: p.stage}
	}
	return slices.Clone(p.assembly.Final), nil
}

// Dataset bundles the three output tables of an assembled pipeline.
func (p *Pipeline) Dataset() (*Dataset, error) {
	final, err := p.Final()
	if err != nil {
		return nil, err
	}
	obs, _ := p.Observations()
	groups, _ := p.Groups()
	return &Dataset{Observations: obs, Groups: groups, Final: final, Summary: p.summary}, nil
}
