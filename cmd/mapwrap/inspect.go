package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mapped-wrap/internal/bmd"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/objfile"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [model-file...]",
		Short: "Describe model files, or the scene and its deformers",
		Long: `With arguments, prints the contents of .bmd or .obj model files. Without, prints
every shape of the scene and every stored deformer with its targets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, path := range args {
					if err := inspectFile(out, path); err != nil {
						return err
					}
				}
				return nil
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(out, "Scene %s\n", a.cfg.Scene)
			for _, name := range a.scene.Names() {
				s, _ := a.scene.Shape(name)
				printShape(out, s)
			}
			for _, d := range a.rig.Deformers() {
				fmt.Fprintf(out, "Deformer %s on %s envelope=%g\n", d.Name, d.Base, d.Envelope)
				for _, b := range d.Targets {
					status := ""
					if _, ok := a.scene.Shape(b.Target); !ok {
						status = " (missing)"
					}
					fmt.Fprintf(out, "  [%d] %s envelope=%g vertices=%d unmatched=%d%s\n",
						b.Index, b.Target, b.Envelope, len(b.Mapping), b.Mapping.Unmatched(), status)
				}
			}
			return nil
		},
	}
}

func inspectFile(out io.Writer, path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmd":
		m, err := bmd.Parse(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: BMD v%d %q meshes=%d bones=%d\n", path, m.Version, m.Name, len(m.Meshes), len(m.Bones))
		for i, sub := range m.Meshes {
			fmt.Fprintf(out, "  Mesh[%d] verts=%d tris=%d tex=%s\n", i, len(sub.Verts), len(sub.Tris), sub.TexPath)
		}
		printShape(out, bmd.ToShape(name, m, false))
		printShape(out, bmd.ToShape(name+" (posed)", m, true))
	case ".obj":
		s, err := objfile.Read(path, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: OBJ\n", path)
		printShape(out, s)
	default:
		return fmt.Errorf("inspect %s: unsupported model format", path)
	}
	return nil
}

func printShape(out io.Writer, s *mesh.Shape) {
	lo, hi := s.WorldPoints().Bounds()
	fmt.Fprintf(out, "  Shape %s vertices=%d tris=%d bounds=[%.3g %.3g %.3g]..[%.3g %.3g %.3g]\n",
		s.Name, s.Len(), len(s.Tris), lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}
