package main

import (
	"errors"
	"fmt"
	"strings"

	"cryptopusher/config"
	"cryptopusher/internal/alert"
	"cryptopusher/internal/pusher"
	"cryptopusher/pkg/format"

	"github.com/spf13/cobra"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Inspect or change the stored alert thresholds",
}

var showThresholdsCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the thresholds of every tracked symbol",
	Args:  cobra.NoArgs,
	RunE:  runShowThresholdsE,
}

var setThresholdsCmd = &cobra.Command{
	Use:   "set <symbol>",
	Short: "Update the LOW and/or HIGH level of one symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetThresholdsE,
}

func init() {
	setThresholdsCmd.Flags().Float64("low", 0, "LOW level in BRL")
	setThresholdsCmd.Flags().Float64("high", 0, "HIGH level in BRL")
	thresholdsCmd.AddCommand(showThresholdsCmd, setThresholdsCmd)
}

func runShowThresholdsE(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	source, closeSource, err := pusher.OpenThresholdSource(cmd.Context(), cfg, config.NewParameterStore(), log)
	if err != nil {
		return err
	}
	defer closeSource()

	set, err := source.Load(cmd.Context())
	if err != nil && !errors.Is(err, alert.ErrNoThresholds) {
		return err
	}

	out := cmd.OutOrStdout()
	for _, s := range cfg.Symbols {
		th := set[s.Symbol]
		fmt.Fprintf(out, "%-6s L=%-14s H=%s\n", strings.ToUpper(s.Symbol), format.PricePtr(th.Low), format.PricePtr(th.High))
	}
	return nil
}

func runSetThresholdsE(cmd *cobra.Command, args []string) error {
	symbol := strings.ToLower(args[0])

	var patch alert.Thresholds
	if cmd.Flags().Changed("low") {
		v, _ := cmd.Flags().GetFloat64("low")
		patch.Low = &v
	}
	if cmd.Flags().Changed("high") {
		v, _ := cmd.Flags().GetFloat64("high")
		patch.High = &v
	}
	if patch.IsEmpty() {
		return errors.New("at least one of --low or --high is required")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	book := alert.NewThresholdBook(cfg.SymbolIDs())
	if !book.Tracks(symbol) {
		return fmt.Errorf("%q: %w", symbol, alert.ErrUnknownSymbol)
	}

	source, closeSource, err := pusher.OpenThresholdSource(cmd.Context(), cfg, config.NewParameterStore(), log)
	if err != nil {
		return err
	}
	defer closeSource()

	set, err := source.Load(cmd.Context())
	if err != nil && !errors.Is(err, alert.ErrNoThresholds) {
		return err
	}
	book.Replace(set)

	merged, err := book.Apply(symbol, patch, func(th alert.Thresholds) error {
		return source.Save(cmd.Context(), alert.ThresholdSet{symbol: th})
	})
	if err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s L=%s H=%s\n", strings.ToUpper(symbol), format.PricePtr(merged.Low), format.PricePtr(merged.High))
	return nil
}
