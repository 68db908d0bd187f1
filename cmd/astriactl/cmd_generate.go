package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"astria/internal/generate"
)

var generateFlags struct {
	prompt          string
	negativePrompt  string
	model           string
	loras           []string
	count           int
	width           int
	height          int
	seed            int64
	cfgScale        float64
	superResolution bool
	inpaintFaces    bool
}

// generateCmd composes a prompt with lora references, submits the job and
// polls it to a terminal state.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images from a prompt",
	Long: `Generate images from a prompt, optionally blending trained lora adapters.

Lora references take the form id:weight (weight defaults to 1.0), e.g.

  astriactl generate --prompt "a cat" --lora 123:0.8 --lora 456`,
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateFlags.prompt, "prompt", "p", "", "prompt text (required)")
	flags.StringVar(&generateFlags.negativePrompt, "negative", "", "negative prompt")
	flags.StringVarP(&generateFlags.model, "model", "m", "flux", "model to generate with ("+strings.Join(generate.ModelNames(), ", ")+")")
	flags.StringArrayVar(&generateFlags.loras, "lora", nil, "lora reference as id:weight, repeatable")
	flags.IntVar(&generateFlags.count, "count", 1, "number of images")
	flags.IntVar(&generateFlags.width, "width", 0, "image width")
	flags.IntVar(&generateFlags.height, "height", 0, "image height")
	flags.Int64Var(&generateFlags.seed, "seed", 0, "generation seed")
	flags.Float64Var(&generateFlags.cfgScale, "cfg-scale", 0, "guidance scale")
	flags.BoolVar(&generateFlags.superResolution, "super-resolution", false, "request super resolution")
	flags.BoolVar(&generateFlags.inpaintFaces, "inpaint-faces", false, "request face inpainting")
	_ = generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	loras, err := parseLoraFlags(generateFlags.loras)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := generate.GenerateRequest{
		Prompt:          generateFlags.prompt,
		NegativePrompt:  generateFlags.negativePrompt,
		Model:           generateFlags.model,
		Loras:           loras,
		NumImages:       generateFlags.count,
		Width:           generateFlags.width,
		Height:          generateFlags.height,
		CFGScale:        generateFlags.cfgScale,
		SuperResolution: generateFlags.superResolution,
		InpaintFaces:    generateFlags.inpaintFaces,
	}
	if cmd.Flags().Changed("seed") {
		seed := generateFlags.seed
		req.Seed = &seed
	}

	result, err := a.engine.Generate(ctx, req)
	if err != nil {
		return err
	}

	a.logger.Info().
		Int64("job_id", result.Job.ID).
		Int("images", len(result.Job.Images)).
		Msg("generation completed")

	for _, image := range result.Job.Images {
		fmt.Fprintln(cmd.OutOrStdout(), image)
	}
	if summary := generate.AdapterSummary(result.Refs, result.Tunes); summary != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAdapters used:")
		fmt.Fprintln(cmd.OutOrStdout(), summary)
	}
	return nil
}

// parseLoraFlags turns repeated id:weight flag values into references.
func parseLoraFlags(values []string) ([]generate.LoraReference, error) {
	var refs []generate.LoraReference
	for _, value := range values {
		idText, weightText, hasWeight := strings.Cut(strings.TrimSpace(value), ":")
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lora reference %q: tune id must be an integer", value)
		}
		ref := generate.LoraReference{TuneID: id, Weight: generate.DefaultLoraWeight}
		if hasWeight {
			weight, err := strconv.ParseFloat(weightText, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid lora reference %q: weight must be a number", value)
			}
			ref.Weight = weight
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
