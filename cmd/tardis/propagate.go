package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/akhenakh/tardis"
)

var (
	propTime     string
	propUntil    string
	propStep     time.Duration
	propSat      int
	propGeodetic bool
	propFrame    string
)

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Print positions for every satellite in a catalog",
	Long: `Propagate every satellite (or one, with --sat) to a time, or over a range
when --until is set. Positions are TEME km and km/s unless --frame or
--geodetic is given.

Example:
  tardis propagate -c stations.txt --time 2025-05-18T12:00:00Z --geodetic
  tardis propagate -c stations.txt --sat 25544 --until 2025-05-18T13:00:00Z --step 5m`,
	RunE: runPropagate,
}

func init() {
	propagateCmd.Flags().StringVar(&propTime, "time", "now", "propagation time (RFC 3339)")
	propagateCmd.Flags().StringVar(&propUntil, "until", "", "end of the range (RFC 3339)")
	propagateCmd.Flags().DurationVar(&propStep, "step", 0, "step over the range (default track.step)")
	propagateCmd.Flags().IntVar(&propSat, "sat", 0, "catalog number to propagate (default all)")
	propagateCmd.Flags().BoolVar(&propGeodetic, "geodetic", false, "print latitude, longitude and altitude")
	propagateCmd.Flags().StringVar(&propFrame, "frame", "teme", "output frame: teme, ecef or eci")
}

func runPropagate(cmd *cobra.Command, _ []string) error {
	start, err := parseTime(propTime)
	if err != nil {
		return err
	}
	stop := start
	if propUntil != "" {
		if stop, err = parseTime(propUntil); err != nil {
			return err
		}
	}
	step := propStep
	if step == 0 {
		step = cfg.Track.Step
	}
	if step <= 0 {
		return fmt.Errorf("step must be positive")
	}
	if stop.Before(start) {
		return fmt.Errorf("--until is before --time")
	}
	switch propFrame {
	case "teme", "ecef", "eci":
	default:
		return fmt.Errorf("unknown frame %q", propFrame)
	}

	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	var only *tardis.Entry
	if propSat != 0 {
		if only, err = lookup(c, propSat); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	writeHeader(w)
	for t := start; !t.After(stop); t = t.Add(step) {
		if only != nil {
			sv, err := only.Session.PropagateAt(t)
			writeRow(w, tardis.Result{Entry: only, State: sv, Err: err}, t)
			continue
		}
		results, err := c.PropagateAll(cmd.Context(), t)
		if err != nil {
			return err
		}
		for _, r := range results {
			writeRow(w, r, t)
		}
	}
	return w.Flush()
}

func writeHeader(w io.Writer) {
	switch {
	case propGeodetic:
		fmt.Fprintln(w, "NORAD\tNAME\tTIME\tLAT\tLON\tALT_KM")
	case propFrame == "ecef":
		fmt.Fprintln(w, "NORAD\tNAME\tTIME\tX_M\tY_M\tZ_M\tVX_MS\tVY_MS\tVZ_MS")
	default:
		fmt.Fprintln(w, "NORAD\tNAME\tTIME\tX_KM\tY_KM\tZ_KM\tVX_KMS\tVY_KMS\tVZ_KMS")
	}
}

func writeRow(w io.Writer, r tardis.Result, t time.Time) {
	el := r.Entry.Elements
	prefix := fmt.Sprintf("%05d\t%s\t%s", el.CatalogNumber, el.Name, t.Format(time.RFC3339))
	if r.Err != nil {
		fmt.Fprintf(w, "%s\terror: %v\n", prefix, r.Err)
		return
	}
	if propGeodetic {
		g := r.State.Geodetic()
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3f\n", prefix, g.Latitude, g.Longitude, g.Altitude)
		return
	}
	p, v := r.State.Position, r.State.Velocity
	switch propFrame {
	case "ecef":
		e := r.State.ECEF()
		p, v = e.Position, e.Velocity
	case "eci":
		e := r.State.ECI()
		p, v = e.Position, e.Velocity
	}
	fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.9f\t%.9f\t%.9f\n", prefix, p.X, p.Y, p.Z, v.X, v.Y, v.Z)
}
