package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

func routesCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the compiled route table",
		Long: `Compile the route manifest and print the resulting table in match
priority order: static segments beat dynamic ones, dynamic beat
catch-alls, and deeper exact matches win over shallower ones.

Examples:
  wayfind routes --manifest dist/manifest.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(manifestPath)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "manifest.json", "Route manifest file")

	return cmd
}

func runRoutes(manifestPath string) error {
	manifest, err := router.ReadManifestFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	tree, err := router.Compile(routesFromManifest(manifest))
	if err != nil {
		return fmt.Errorf("compile routes: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tPARAMS\tTAGS\tSCORE\tCHUNK")
	tree.Walk(func(cr *router.CompiledRoute) bool {
		var params []string
		for _, cap := range cr.Captures {
			params = append(params, cap.Name)
		}
		chunk := ""
		if me := manifest.ForPattern(cr.FullPath); me != nil {
			chunk = me.Chunk
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			cr.FullPath,
			strings.Join(params, ","),
			strings.Join(cr.Route.Tags, ","),
			cr.Route.Score,
			chunk,
		)
		return true
	})
	return w.Flush()
}

// routesFromManifest lifts manifest entries into a flat authored route
// table. Each pattern is root-absolute, so nesting is irrelevant for
// compilation order.
func routesFromManifest(m *router.Manifest) []*router.Route {
	entries := m.Entries()
	routes := make([]*router.Route, 0, len(entries))
	for _, e := range entries {
		routes = append(routes, &router.Route{
			Path:  e.Pattern,
			View:  func(rc router.RenderContext) router.View { return nil },
			Tags:  e.Tags,
			Score: e.Score,
		})
	}
	return routes
}
