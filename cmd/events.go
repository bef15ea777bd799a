package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// openStore opens the telemetry store for the read-only commands.
func openStore() (*telemetry.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openTelemetry(cfg)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the session event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")
		event, _ := cmd.Flags().GetString("event")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		opts := telemetry.QueryOpts{
			Limit:     limit,
			SessionID: sessionID,
			Event:     telemetry.EventType(event),
		}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.QueryEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-19s  %-20s  %-36s  %s\n", "Seq", "Timestamp", "Event", "Session", "Payload")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, e := range events {
			fmt.Fprintf(out, "%-6d  %-19s  %-20s  %-36s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Type,
				e.SessionID,
				e.Payload,
			)
		}
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect exported assessment results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently finished assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := s.ListResults(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results stored yet.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-19s  %4s  %6s  %s\n", "Session", "Finished", "Raw", "Scaled", "CEFR")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, r := range results {
			fmt.Fprintf(out, "%-36s  %-19s  %4d  %6d  %s\n",
				r.SessionID,
				r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
				r.RawCorrect,
				r.ScaledReading,
				r.CEFR,
			)
		}
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <sessionId>",
	Short: "Print the stored result document for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.GetResult(cmd.Context(), args[0])
		if errors.Is(err, telemetry.ErrNotFound) {
			return fmt.Errorf("no stored result for session %s", args[0])
		}
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, r.Payload, "", "  "); err != nil {
			return fmt.Errorf("stored result is not valid JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 50, "Number of events to show")
	eventsListCmd.Flags().StringP("session", "s", "", "Only events of this session")
	eventsListCmd.Flags().StringP("event", "e", "", "Only this event type (e.g. assessment_finished)")
	eventsListCmd.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")
	eventsCmd.AddCommand(eventsListCmd)

	resultsListCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}
