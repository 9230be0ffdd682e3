package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/series"
)

const seriesTimeLayout = "Mon 2006-01-02 15:04"

type seriesFlags struct {
	patient      int64
	treatment    int64
	prescription int64
	startDate    string
	startTime    string
	interval     int
	count        int
	practitioner int64
	room         int64
	duration     int
	notes        string
	local        bool
}

func seriesCmd() *cobra.Command {
	var f seriesFlags
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Create a recurring series of appointments",
		Example: "  scheduler series --patient 12 --treatment 3 --start-date 2024-03-04 \\\n" +
			"    --start-time 10:30 --count 10 --interval 7 --practitioner 7",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec()
			if err != nil {
				return err
			}
			return runSeries(cmd.Context(), spec, f.local, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.Int64Var(&f.patient, "patient", 0, "Patient id")
	fl.Int64Var(&f.treatment, "treatment", 0, "Treatment id")
	fl.Int64Var(&f.prescription, "prescription", 0, "Prescription id")
	fl.StringVar(&f.startDate, "start-date", "", "First date, YYYY-MM-DD")
	fl.StringVar(&f.startTime, "start-time", "", "Start time of every appointment, HH:MM")
	fl.IntVar(&f.interval, "interval", 7, "Days between appointments")
	fl.IntVar(&f.count, "count", 0, "Number of appointments")
	fl.Int64Var(&f.practitioner, "practitioner", 0, "Preferred practitioner id")
	fl.Int64Var(&f.room, "room", 0, "Preferred room id")
	fl.IntVar(&f.duration, "duration", 30, "Duration in minutes")
	fl.StringVar(&f.notes, "notes", "", "Notes copied to every appointment")
	fl.BoolVar(&f.local, "local", false, "Generate on this machine against the backend instead of asking the server")
	for _, name := range []string{"patient", "start-date", "start-time", "count"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (f seriesFlags) spec() (model.SeriesSpec, error) {
	date, err := model.ParseDate(f.startDate)
	if err != nil {
		return model.SeriesSpec{}, fmt.Errorf("--start-date: %w", err)
	}
	start, err := model.ParseTimeOfDay(f.startTime)
	if err != nil {
		return model.SeriesSpec{}, fmt.Errorf("--start-time: %w", err)
	}

	spec := model.SeriesSpec{
		PrescriptionID:  f.prescription,
		PatientID:       f.patient,
		TreatmentID:     f.treatment,
		StartDate:       date,
		StartTime:       start,
		IntervalDays:    f.interval,
		Count:           f.count,
		DurationMinutes: f.duration,
		Notes:           f.notes,
	}
	if f.practitioner != 0 {
		id := f.practitioner
		spec.PreferredPractitionerID = &id
	}
	if f.room != 0 {
		id := f.room
		spec.PreferredRoomID = &id
	}
	if err := series.Validate(spec); err != nil {
		return model.SeriesSpec{}, err
	}
	return spec, nil
}

func runSeries(ctx context.Context, spec model.SeriesSpec, local bool, out io.Writer) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	b, err := rt.backend(ctx)
	if err != nil {
		return err
	}

	var res model.SeriesResult
	if local {
		res, err = series.NewGenerator(b, rt.loc, rt.logger).Generate(ctx, spec)
	} else {
		res, err = b.CreateSeries(ctx, spec)
	}
	printSeries(out, res, rt.loc)
	return err
}

// printSeries writes a created-vs-requested summary and one line per slot
// in date order.
func printSeries(w io.Writer, res model.SeriesResult, loc *time.Location) {
	if res.Requested == 0 {
		return
	}
	fmt.Fprintf(w, "Series %s: created %d of %d appointments.\n", res.SeriesID, len(res.Created), res.Requested)

	type line struct {
		start time.Time
		text  string
	}
	lines := make([]line, 0, len(res.Created)+len(res.Skipped))
	for _, a := range res.Created {
		lines = append(lines, line{a.Start, fmt.Sprintf("  + %s  appointment %d, practitioner %d, room %d",
			a.Start.In(loc).Format(seriesTimeLayout), a.ID, a.PractitionerID, a.RoomID)})
	}
	for _, s := range res.Skipped {
		text := fmt.Sprintf("  - %s  #%d skipped: %s", s.Start.In(loc).Format(seriesTimeLayout), s.Number, s.Reason)
		if s.ConflictID != 0 {
			text += fmt.Sprintf(" (appointment %d)", s.ConflictID)
		}
		if s.Resource != nil {
			text += " on " + s.Resource.String()
		}
		lines = append(lines, line{s.Start, text})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].start.Before(lines[j].start) })
	for _, l := range lines {
		fmt.Fprintln(w, l.text)
	}
}
