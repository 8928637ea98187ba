package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akhenakh/tardis"
)

var (
	trackSat      int
	trackStart    string
	trackDuration time.Duration
	trackStep     time.Duration
	trackOut      string
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Render the ground track of one satellite as SVG",
	Long: `Sample the sub-satellite point of one satellite and draw it on an
equirectangular map.

Example:
  tardis track -c stations.txt --sat 25544 --duration 3h --out iss.svg`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackSat, "sat", 0, "catalog number")
	trackCmd.Flags().StringVar(&trackStart, "start", "now", "start time (RFC 3339)")
	trackCmd.Flags().DurationVar(&trackDuration, "duration", 90*time.Minute, "length of the track")
	trackCmd.Flags().DurationVar(&trackStep, "step", 0, "sampling step (default track.step)")
	trackCmd.Flags().StringVarP(&trackOut, "out", "o", "-", "output file, - for stdout")
	_ = trackCmd.MarkFlagRequired("sat")
}

func runTrack(cmd *cobra.Command, _ []string) error {
	start, err := parseTime(trackStart)
	if err != nil {
		return err
	}
	step := trackStep
	if step == 0 {
		step = cfg.Track.Step
	}

	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	e, err := lookup(c, trackSat)
	if err != nil {
		return err
	}

	points, err := tardis.GroundTrack(e.Session, start, start.Add(trackDuration), step)
	if err != nil {
		return err
	}
	failed := 0
	for _, p := range points {
		if p.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Warn("ground track has gaps",
			zap.Int("catalog_number", trackSat),
			zap.Int("failed", failed),
			zap.Int("samples", len(points)),
		)
	}

	title := fmt.Sprintf("%s (%05d) from %s", e.Elements.Name, trackSat, start.Format(time.RFC3339))
	svg := tardis.GroundTrackSVG(title, points)

	var w io.Writer = cmd.OutOrStdout()
	if trackOut != "-" {
		f, err := os.Create(trackOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, svg); err != nil {
		return err
	}
	if trackOut != "-" {
		log.Info("ground track written", zap.String("path", trackOut), zap.Int("samples", len(points)))
	}
	return nil
}
