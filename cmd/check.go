package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batteryform/config"
	"github.com/kilianp07/batteryform/core/form"
	"github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/infra/logger"
	_ "github.com/kilianp07/batteryform/infra/sink"
)

// ErrRejected is returned by the check command when validation fails.
var ErrRejected = errors.New("form rejected")

var checkFlags struct {
	virtual     bool
	physical    bool
	solarPanels string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fill the form from flags, submit it once and print the result",
	Example: `  batteryform check --virtual --solar-panels "12 panneaux 400W"
  batteryform check --physical`,
	RunE: check,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFlags.virtual, "virtual", false, "select the virtual battery")
	checkCmd.Flags().BoolVar(&checkFlags.physical, "physical", false, "select the physical battery")
	checkCmd.Flags().StringVar(&checkFlags.solarPanels, "solar-panels", "", "solar panel description")
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out, err := sink.New(cfg.Sinks)
	if err != nil {
		return fmt.Errorf("sinks: %w", err)
	}
	defer func() { _ = out.Close() }()

	ctrl := form.NewController(out, logger.New("check"))
	var events []form.Event
	if cmd.Flags().Changed("virtual") {
		events = append(events, form.ToggleBattery{Kind: form.Virtual, Checked: checkFlags.virtual})
	}
	if cmd.Flags().Changed("physical") {
		events = append(events, form.ToggleBattery{Kind: form.Physical, Checked: checkFlags.physical})
	}
	if cmd.Flags().Changed("solar-panels") {
		events = append(events, form.EditSolarPanels{Text: checkFlags.solarPanels})
	}
	snap := runEvents(cmd, ctrl, events)
	if err := printSnapshot(cmd.OutOrStdout(), snap); err != nil {
		return err
	}
	if !snap.Success() {
		return ErrRejected
	}
	return nil
}

func runEvents(cmd *cobra.Command, ctrl *form.Controller, events []form.Event) form.Snapshot {
	for _, ev := range events {
		ctrl.Dispatch(cmd.Context(), ev)
	}
	return ctrl.Submit(cmd.Context())
}

func printSnapshot(w io.Writer, snap form.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
