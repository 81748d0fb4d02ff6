// Package orchestrator implements the load pipeline (C8): open a writer,
// drain a source into it, then optionally run the row intuiter, type
// intuiter and stats engine before finalizing.
//
// Grounded on pranavdb's main.go (a linear open -> populate -> close ->
// reopen demonstration script) generalized from a fixed demo sequence into
// a configurable, warning-recovering pipeline, with per-step progress
// logging via github.com/golang/glog matching the teacher's log.Println
// checkpoints.
package orchestrator

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowintuit"
	"github.com/ambrydata/mpr/rowstore"
	"github.com/ambrydata/mpr/source"
	"github.com/ambrydata/mpr/stats"
	"github.com/ambrydata/mpr/typeintuit"
)

// ProgressFunc is called after every progressInterval rows during the load
// step (SPEC_FULL.md §6 supplement, grounded on ambry_sources' MPRowsFile
// report_progress callback).
type ProgressFunc func(rowsLoaded int)

const progressInterval = 100000

// Options configures which optional steps a Load run performs.
type Options struct {
	IntuitRows bool
	IntuitType bool
	RunStats   bool

	HeadSample int
	TailSample int

	StatsOptions stats.Options
	Progress     ProgressFunc
}

// DefaultOptions runs every optional step with spec defaults.
func DefaultOptions() Options {
	return Options{
		IntuitRows: true,
		IntuitType: true,
		RunStats:   true,
		HeadSample: 40,
		TailSample: 40,
	}
}

// Load drives src into a brand-new MPR file at path, then runs the
// requested optional steps (spec.md §4.8):
//
//	1. open writer; append all rows from source; close writer
//	2. if IntuitRows: run C4 against reader; write row-spec back
//	3. if IntuitType: run C5 against reader; write type info back
//	4. if RunStats:  run C6 against reader; write stats back
//	5. finalize
//
// A failure appending rows deletes the partial file. A failure in any
// optional step is recorded as a meta.warnings entry and does not abort
// the run.
func Load(path string, src source.Source, opts Options) error {
	if err := load(path, src, opts); err != nil {
		return err
	}

	mw, err := rowstore.OpenForMeta(path)
	if err != nil {
		return err
	}

	if opts.IntuitRows {
		runRowIntuit(path, mw, opts)
	}
	if opts.IntuitType {
		runTypeIntuit(path, mw)
	}
	if opts.RunStats {
		runStats(path, mw, opts)
	}

	mw.Finalize()
	return mw.Close()
}

func load(path string, src source.Source, opts Options) error {
	w, err := rowstore.Create(path)
	if err != nil {
		return err
	}
	if hs, ok := src.(source.HeaderedSource); ok {
		w.SetHeaders(hs.Headers())
	}

	for {
		raw, ok, err := src.Next()
		if err != nil {
			_ = w.Abort()
			return fmt.Errorf("orchestrator: read source: %w", err)
		}
		if !ok {
			break
		}
		row, err := source.Row(raw)
		if err != nil {
			_ = w.Abort()
			return fmt.Errorf("orchestrator: coerce row: %w", err)
		}
		if err := w.Append(row); err != nil {
			_ = w.Abort()
			return fmt.Errorf("orchestrator: append row: %w", err)
		}
		if n := w.NRows(); opts.Progress != nil && n%progressInterval == 0 {
			opts.Progress(int(n))
		}
	}

	if err := w.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("orchestrator: close writer: %w", err)
	}
	glog.Infof("orchestrator: loaded %d rows into %s", w.NRows(), path)
	return nil
}

func runRowIntuit(path string, mw *rowstore.Writer, opts Options) {
	head, tail, total, err := sampleRows(path, opts.HeadSample, opts.TailSample)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("row intuition: %v", err))
		return
	}
	spec, err := rowintuit.Intuit(head, tail, total)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("row intuition: %v", err))
		return
	}
	end := spec.StartLine
	if spec.EndLine != nil {
		end = *spec.EndLine
	} else if total > 0 {
		end = total - 1
	}
	mw.SetRowSpec(spec.HeaderLines, spec.CommentLines, spec.StartLine, end, spec.DataPattern, spec.Headers)
}

func runTypeIntuit(path string, mw *rowstore.Writer) {
	r, err := rowstore.Open(path)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("type intuition: %v", err))
		return
	}
	defer r.Close()

	it, err := r.Iter(rowstore.ModeData)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("type intuition: %v", err))
		return
	}
	defer it.Close()

	profile := typeintuit.NewProfile()
	if err := profile.Run(rowOnly(it), int(r.Info().NRows)); err != nil {
		mw.AddWarning(fmt.Sprintf("type intuition: %v", err))
		return
	}
	mw.SetTypes(profile.Resolve())
}

func runStats(path string, mw *rowstore.Writer, opts Options) {
	r, err := rowstore.Open(path)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("stats: %v", err))
		return
	}
	defer r.Close()

	it, err := r.Iter(rowstore.ModeData)
	if err != nil {
		mw.AddWarning(fmt.Sprintf("stats: %v", err))
		return
	}
	defer it.Close()

	loms := make([]rowstore.LOM, len(mw.Schema().Columns))
	for i, c := range mw.Schema().Columns {
		if c.LOM == "" {
			loms[i] = rowstore.LOMNominal
		} else {
			loms[i] = c.LOM
		}
	}
	profile := stats.NewProfile(loms, opts.StatsOptions)
	if err := profile.Run(rowOnly(it), int(r.Info().NRows)); err != nil {
		mw.AddWarning(fmt.Sprintf("stats: %v", err))
		return
	}
	mw.SetStats(profile.Resolve())
}

// sampleRows reopens path and collects the first headN and last tailN rows
// (as string-rendered cells, for rowintuit's type-signature classifier)
// plus the total row count, all from a single ModeRaw pass.
func sampleRows(path string, headN, tailN int) (head, tail [][]string, total int, err error) {
	r, err := rowstore.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer r.Close()

	it, err := r.Iter(rowstore.ModeRaw)
	if err != nil {
		return nil, nil, 0, err
	}
	defer it.Close()

	for {
		res, ok, err := it.Next()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("orchestrator: sample rows: %w", err)
		}
		if !ok {
			break
		}
		rendered := renderRow(res.Row)
		if len(head) < headN {
			head = append(head, rendered)
		}
		tail = append(tail, rendered)
		if len(tail) > tailN {
			tail = tail[1:]
		}
		total++
	}
	if len(head) == 0 {
		return nil, nil, total, fmt.Errorf("orchestrator: no rows to sample: %w", errs.RowIntuitError)
	}
	return head, tail, total, nil
}

// rowOnly adapts an Iterator's (RowResult, bool, error) shape to the plain
// (object.Row, bool, error) shape typeintuit.Profile and stats.Profile scan.
func rowOnly(it *rowstore.Iterator) func() (object.Row, bool, error) {
	return func() (object.Row, bool, error) {
		res, ok, err := it.Next()
		return res.Row, ok, err
	}
}

func renderRow(row object.Row) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if _, isNull := v.(object.Null); isNull || v == nil {
			out[i] = ""
			continue
		}
		out[i] = v.String()
	}
	return out
}
