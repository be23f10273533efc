package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <base>",
		Short: "Create a deformer on a base shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			name, _ := cmd.Flags().GetString("name")
			s, err := a.rig.CreateDeformer(name, args[0])
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), s.Name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Deformer name (default <base>Wrap)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <deformer|base>",
		Short: "Delete a deformer and its bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			s, err := a.rig.DeleteDeformer(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Delete(cmd.Context(), s.Name); err != nil {
				return fmt.Errorf("delete %s: %w", s.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Name)
			return nil
		},
	}
}

func newAddTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-target <deformer|base> <target>",
		Short: "Bind a target shape to a deformer",
		Long: `Matches every target vertex to the base vertex it coincides with in world space
and binds the target. Unmatched vertices and overlaps with existing targets are
reported as warnings.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			_, msgs, err := a.rig.AddTarget(args[0], args[1], *a.cfg.Tolerance)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return a.save(cmd.Context(), args[0])
		},
	}
	cmd.Flags().Float64("tolerance", 0, "Match distance (default 0.001)")
	return cmd
}

func newRemoveTargetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-target <deformer|base> <target>",
		Short: "Unbind a target shape",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.rig.RemoveTarget(args[0], args[1]); err != nil {
				return err
			}
			return a.save(cmd.Context(), args[0])
		},
	}
}

func newSetEnvelopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-envelope <deformer|base> <value>",
		Short: "Set the deformer envelope, or one target's with --target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("envelope %q: %w", args[1], err)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if target, _ := cmd.Flags().GetString("target"); target != "" {
				err = a.rig.SetTargetEnvelope(args[0], target, v)
			} else {
				err = a.rig.SetEnvelope(args[0], v)
			}
			if err != nil {
				return err
			}
			return a.save(cmd.Context(), args[0])
		},
	}
	cmd.Flags().String("target", "", "Set this target's envelope instead")
	return cmd
}
