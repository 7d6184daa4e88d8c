package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planeseg/pkg/httputil"
	"github.com/matzehuels/planeseg/pkg/observability"
	"github.com/matzehuels/planeseg/pkg/pipeline"
)

// segmentOpts holds the command-line flags for the segment command.
// Zero values defer to the config file, then to the pipeline defaults.
type segmentOpts struct {
	output         string  // output file (single format) or base path
	formats        string  // comma-separated output formats
	distance       float64 // plane distance threshold
	angle          float64 // normal deviation threshold in degrees
	minSize        int     // smallest region kept
	radius         float64 // point set neighbourhood radius
	sortSeeds      bool    // seed from the flattest neighbourhoods first
	vertexDistance bool    // test every face vertex against the plane
	detailed       bool    // detailed diagram labels
	noCache        bool
	refresh        bool
	explicit       []string  // boolean options set on the command line
	status         io.Writer // spinner output, normally stderr
}

// segmentCommand creates the segment command, the main entry point: load a
// geometry file, grow planar regions and write the requested formats.
func (c *CLI) segmentCommand() *cobra.Command {
	var opts segmentOpts

	cmd := &cobra.Command{
		Use:   "segment <file|url>",
		Short: "Detect planar regions in a mesh (.off, .obj) or point set (.xyz)",
		Example: `  planeseg segment bunny.off
  planeseg segment bunny.off -f json,svg,pdf --angle 15
  planeseg segment scan.xyz --radius 0.05 -o scan.json
  planeseg segment https://example.org/models/bunny.obj -f pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.explicit = explicitOptions(cmd)
			opts.status = cmd.ErrOrStderr()
			return c.runSegment(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: "+formatList())
	f.Float64VarP(&opts.distance, "distance", "d", 0, fmt.Sprintf("max distance to the region plane (default %g)", pipeline.DefaultDistance))
	f.Float64VarP(&opts.angle, "angle", "a", 0, fmt.Sprintf("max normal deviation in degrees (default %g)", pipeline.DefaultAngle))
	f.IntVarP(&opts.minSize, "min-size", "m", 0, fmt.Sprintf("smallest region kept (default %d)", pipeline.DefaultMinRegionSize))
	f.Float64Var(&opts.radius, "radius", 0, fmt.Sprintf("neighbourhood radius for point sets (default %g)", pipeline.DefaultRadius))
	f.BoolVar(&opts.sortSeeds, "sort-seeds", false, "grow from the flattest neighbourhoods first")
	f.BoolVar(&opts.vertexDistance, "vertex-distance", false, "require every face vertex within the distance threshold")
	f.BoolVar(&opts.detailed, "detailed", false, "show areas and normals in diagrams")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// showProgress reports the pipeline stages of a segment run. Below debug
// level a spinner shows the current stage and the runner only logs
// warnings; at debug level the log hooks report every stage instead.
// The returned func stops the spinner and restores the pipeline hooks.
func (c *CLI) showProgress(ctx context.Context, opts segmentOpts, popts *pipeline.Options) func() {
	if c.Logger.GetLevel() <= log.DebugLevel || opts.output == stdoutPath || opts.status == nil {
		return func() {}
	}
	popts.Logger = quietLogger(c.Logger)

	prev := observability.Pipeline()
	spinner := newSpinner(ctx, opts.status, prev)
	observability.SetPipelineHooks(spinner)
	spinner.Start()
	return func() {
		spinner.Stop()
		observability.SetPipelineHooks(prev)
	}
}

func (c *CLI) runSegment(ctx context.Context, input string, opts segmentOpts) error {
	popts := pipeline.Options{
		Input:          input,
		Formats:        parseFormats(opts.formats),
		Distance:       opts.distance,
		Angle:          opts.angle,
		MinRegionSize:  opts.minSize,
		Radius:         opts.radius,
		SortSeeds:      opts.sortSeeds,
		VertexDistance: opts.vertexDistance,
		Detailed:       opts.detailed,
		Refresh:        opts.refresh,
	}
	c.Config.Apply(&popts, opts.explicit...)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	stop := c.showProgress(ctx, opts, &popts)
	result, err := runner.Execute(ctx, popts)
	stop()
	if err != nil {
		return err
	}

	// Remote inputs write next to the working directory.
	local := input
	if httputil.IsURL(input) {
		local = popts.SourceName()
	}
	paths, err := outputPaths(opts.output, local, c.Config.Output.Dir, popts.Formats)
	if err != nil {
		return err
	}
	written, err := writeArtifacts(result.Artifacts, popts.Formats, paths)
	if err != nil {
		return err
	}
	if opts.output == stdoutPath {
		return nil
	}

	seg := result.Segmentation
	printSuccess("Segmented %s in %s", popts.SourceName(), (result.Stats.LoadTime + result.Stats.SegmentTime + result.Stats.RenderTime).Round(time.Millisecond))
	printStats(seg, result.CacheInfo.SegmentHit)
	if len(seg.Regions) > 0 {
		fmt.Println(regionTable(seg, tableRows))
		if n := len(seg.Regions) - tableRows; n > 0 {
			printDetail("%d smaller regions not shown", n)
		}
	}
	for _, path := range written {
		printFile(path)
	}
	if jsonPath, ok := paths[pipeline.FormatJSON]; ok {
		printNextStep("Browse regions", appName+" inspect "+jsonPath)
	}
	return nil
}
