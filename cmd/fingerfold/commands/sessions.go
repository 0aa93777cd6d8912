package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerfold/internal/store"
)

var errNoTraceDB = errors.New("no trace database: pass --trace or set FINGERFOLD_TRACE_DB")

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List recorded sessions, or the readings of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.TraceDB == "" {
				return errNoTraceDB
			}

			st, err := store.New(cfg.TraceDB)
			if err != nil {
				return fmt.Errorf("open trace store: %w", err)
			}
			defer st.Close()

			if len(args) == 1 {
				return printReadings(cmd.OutOrStdout(), st, args[0])
			}
			return printSessions(cmd.OutOrStdout(), st)
		},
	}
}

func printSessions(w io.Writer, st *store.Store) error {
	sessions, err := st.Sessions().List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-6s  %-19s  %-10s  %7s  %7s\n", "ID", "CAMERA", "STARTED", "DURATION", "FRAMES", "FOLDED")
	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%-36s  %-6d  %-19s  %-10s  %7d  %7d\n",
			s.ID, s.Camera, s.StartedAt.Local().Format(time.DateTime), duration, s.Frames, s.Folded)
	}
	return nil
}

func printReadings(w io.Writer, st *store.Store, id string) error {
	if _, err := st.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s: %w", id, err)
		}
		return err
	}

	readings, err := st.Readings().ListBySession(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%6s  %4s  %-10s  %-6s  %5s  %5s  %s\n", "FRAME", "HAND", "HANDEDNESS", "FINGER", "X", "Y", "STATE")
	for _, r := range readings {
		fmt.Fprintf(w, "%6d  %4d  %-10s  %-6s  %5d  %5d  %s\n",
			r.FrameSeq, r.HandIndex, r.Handedness, r.Finger, r.X, r.Y, r.State)
	}
	return nil
}
