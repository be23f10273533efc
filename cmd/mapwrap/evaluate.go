package main

import (
	"fmt"
	"path/filepath"

	"mapped-wrap/internal/batch"
	"mapped-wrap/internal/preview"

	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [deformer...]",
		Short: "Evaluate deformers and write the results as OBJ files",
		Long: `Evaluates the named deformers, or all of them, in parallel. Each result is written
to <output>/<deformer>.obj next to a manifest.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			names := args
			if len(names) == 0 {
				for _, s := range a.rig.Deformers() {
					names = append(names, s.Name)
				}
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No deformers to evaluate.")
				return nil
			}

			format, _ := cmd.Flags().GetString("preview")
			opt := preview.DefaultOptions()
			opt.Size = a.cfg.RenderSize
			opt.Supersample = a.cfg.Supersample

			results := batch.Run(cmd.Context(), batch.Config{
				OutputDir:      a.cfg.OutputDir,
				Workers:        a.cfg.Workers,
				Preview:        format,
				PreviewOptions: opt,
				Logger:         a.log,
			}, a.rig, names)

			failed := 0
			for _, r := range results {
				if r.Success {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d vertices written -> %s\n", r.Deformer, r.Written, r.Vertices, r.File)
				} else {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED %s\n", r.Deformer, r.Error)
				}
			}

			if err := batch.WriteManifest(filepath.Join(a.cfg.OutputDir, "manifest.json"), results); err != nil {
				return fmt.Errorf("manifest: %w", err)
			}
			if dump, _ := cmd.Flags().GetBool("metrics"); dump {
				if err := a.metrics.WriteText(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deformers failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().String("output", "", "Output directory (default out)")
	cmd.Flags().Int("workers", 0, "Worker goroutines (default NumCPU)")
	cmd.Flags().String("preview", "", "Also render a preview: webp, tga or png")
	cmd.Flags().Bool("metrics", false, "Print prometheus metrics after evaluating")
	return cmd
}
