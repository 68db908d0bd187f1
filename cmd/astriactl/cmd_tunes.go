package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"astria/internal/astria"
)

var tunesCmd = &cobra.Command{
	Use:   "tunes",
	Short: "Manage fine-tunes",
}

var tunesListFlags struct {
	offset int
}

var tunesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your fine-tunes",
	RunE:  runTunesList,
}

var tunesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one fine-tune",
	Args:  cobra.ExactArgs(1),
	RunE:  runTunesGet,
}

var tunesCreateFlags struct {
	title     string
	name      string
	preset    string
	branch    string
	callback  string
	imageURLs []string
}

var tunesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new fine-tune",
	Long: `Submit a new fine-tune from training image URLs.

The optional callback URL is invoked by the service when training finishes;
see the listen command for a ready-made receiver.`,
	RunE: runTunesCreate,
}

func init() {
	tunesListCmd.Flags().IntVar(&tunesListFlags.offset, "offset", 0, "list offset")

	flags := tunesCreateCmd.Flags()
	flags.StringVar(&tunesCreateFlags.title, "title", "", "tune title (required)")
	flags.StringVar(&tunesCreateFlags.name, "name", "", "subject class name, e.g. man, woman, cat (required)")
	flags.StringVar(&tunesCreateFlags.preset, "preset", "", "training preset")
	flags.StringVar(&tunesCreateFlags.branch, "branch", astria.BranchFlux, "model family branch")
	flags.StringVar(&tunesCreateFlags.callback, "callback", "", "URL to notify when training finishes")
	flags.StringArrayVar(&tunesCreateFlags.imageURLs, "image-url", nil, "training image URL, repeatable")
	_ = tunesCreateCmd.MarkFlagRequired("title")
	_ = tunesCreateCmd.MarkFlagRequired("name")

	tunesCmd.AddCommand(tunesListCmd, tunesGetCmd, tunesCreateCmd)
	rootCmd.AddCommand(tunesCmd)
}

func runTunesList(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tunes, err := a.client.ListTunes(ctx, tunesListFlags.offset)
	if err != nil {
		return astria.Classify(err)
	}
	for i := range tunes {
		printTune(cmd, &tunes[i])
	}
	return nil
}

func runTunesGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tune id %q", args[0])
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tune, err := a.client.RetrieveTune(ctx, id)
	if err != nil {
		return astria.Classify(err)
	}
	printTune(cmd, tune)
	return nil
}

func runTunesCreate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tune, err := a.client.CreateTune(ctx, astria.CreateTuneParams{
		Title:       tunesCreateFlags.title,
		Name:        tunesCreateFlags.name,
		Preset:      tunesCreateFlags.preset,
		Branch:      tunesCreateFlags.branch,
		CallbackURL: tunesCreateFlags.callback,
		ImageURLs:   tunesCreateFlags.imageURLs,
	})
	if err != nil {
		return astria.Classify(err)
	}
	a.logger.Info().Int64("tune_id", tune.ID).Msg("fine-tune submitted")
	printTune(cmd, tune)
	return nil
}

func printTune(cmd *cobra.Command, tune *astria.Tune) {
	status := "training"
	if tune.Trained() {
		status = "trained"
	}
	modelType := "-"
	if tune.ModelType != nil {
		modelType = *tune.ModelType
	}
	line := fmt.Sprintf("%d\t%s (%s)\t%s\t%s", tune.ID, tune.Title, tune.Name, modelType, status)
	if token := tune.TriggerToken(); token != "" {
		line += "\ttoken: " + token
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}
