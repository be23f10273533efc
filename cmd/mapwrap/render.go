package main

import (
	"fmt"

	"mapped-wrap/internal/preview"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <deformer|base> <image>",
		Short: "Render the deformed base shape to a WebP, TGA or PNG image",
		Long: `Evaluates one deformer and draws its base shape. Faces the deformer moved are
tinted. The image format follows the file extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			base, err := a.rig.Base(args[0])
			if err != nil {
				return err
			}
			points, st, err := a.rig.Evaluate(args[0])
			if err != nil {
				return err
			}

			opt := preview.DefaultOptions()
			opt.Size = a.cfg.RenderSize
			opt.Supersample = a.cfg.Supersample
			opt.Rest = base.Points
			if size, _ := cmd.Flags().GetInt("size"); size > 0 {
				opt.Size = size
			}
			if cmd.Flags().Changed("yaw") {
				opt.Yaw, _ = cmd.Flags().GetFloat64("yaw")
			}
			if cmd.Flags().Changed("pitch") {
				opt.Pitch, _ = cmd.Flags().GetFloat64("pitch")
			}

			if err := preview.Save(args[1], preview.Render(base, points, opt)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d vertices moved -> %s\n", base.Name, st.Written, args[1])
			return nil
		},
	}
	cmd.Flags().Int("size", 0, "Image edge in pixels (default from config)")
	cmd.Flags().Float64("yaw", 0, "Camera yaw in degrees")
	cmd.Flags().Float64("pitch", 0, "Camera pitch in degrees")
	return cmd
}
