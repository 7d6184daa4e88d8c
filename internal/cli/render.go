package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/pipeline"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// stdoutPath as --output writes a single artifact to standard output.
const stdoutPath = "-"

// outputSuffix marks derived output names so a rendered OFF never
// overwrites its input.
const outputSuffix = "-regions"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path
	formats  string // comma-separated output formats
	mesh     string // source mesh for the off and dxf formats
	detailed bool   // detailed diagram labels
	explicit []string
}

// renderCommand creates the render command, which re-renders a saved
// segmentation without segmenting again.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <segmentation.json>",
		Short: "Render a saved segmentation to other formats",
		Example: `  planeseg render bunny-regions.json -f svg,pdf
  planeseg render bunny-regions.json -f off --mesh bunny.off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.explicit = explicitOptions(cmd)
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: "+formatList())
	cmd.Flags().StringVar(&opts.mesh, "mesh", "", "source mesh, required for off and dxf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show areas and normals in diagrams")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	timer := startStage(logger)

	seg, err := segmentation.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	logger.Debug("loaded segmentation", "regions", len(seg.Regions), "items", seg.ItemCount)

	popts := pipeline.Options{
		Formats:  parseFormats(opts.formats),
		Detailed: opts.detailed,
		Logger:   logger,
	}
	c.Config.Apply(&popts, opts.explicit...)
	if err := popts.ValidateForRender(); err != nil {
		return err
	}

	var ds planeio.Dataset
	if opts.mesh != "" {
		ds, err = planeio.Import(opts.mesh)
		if err != nil {
			return err
		}
		if ds.Len() != seg.ItemCount {
			return fmt.Errorf("%s has %d items, the segmentation %d", opts.mesh, ds.Len(), seg.ItemCount)
		}
	} else if slices.ContainsFunc(popts.Formats, pipeline.NeedsMesh) {
		return fmt.Errorf("formats off and dxf need --mesh")
	}

	artifacts, err := pipeline.Render(ctx, ds, seg, popts)
	if err != nil {
		return err
	}

	paths, err := outputPaths(opts.output, input, c.Config.Output.Dir, popts.Formats)
	if err != nil {
		return err
	}
	written, err := writeArtifacts(artifacts, popts.Formats, paths)
	if err != nil {
		return err
	}
	if opts.output != stdoutPath {
		timer.done("Rendered", "input", filepath.Base(input), "formats", strings.Join(popts.Formats, ","))
		for _, path := range written {
			printFile(path)
		}
	}
	return nil
}

// formatList joins the supported formats for flag help.
func formatList() string {
	return strings.Join(pipeline.Formats, ", ")
}

// basePath derives the base output path. Without an output the input's
// extension is replaced by [outputSuffix], once; an output ending in a
// format extension loses that extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		if strings.HasSuffix(base, outputSuffix) {
			return base
		}
		return base + outputSuffix
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format with an
// explicit output uses that output as is; dir, when set, holds derived names.
func outputPaths(output, input, dir string, formats []string) (map[string]string, error) {
	if output == stdoutPath {
		if len(formats) != 1 {
			return nil, fmt.Errorf("output to stdout needs exactly one format, got %d", len(formats))
		}
		return map[string]string{formats[0]: stdoutPath}, nil
	}
	if output != "" && len(formats) == 1 {
		return map[string]string{formats[0]: output}, nil
	}

	base := basePath(output, input)
	if output == "" && dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}

// writeArtifacts writes each format to its path in format order and
// returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, paths map[string]string) ([]string, error) {
	var written []string
	for _, f := range formats {
		path := paths[f]
		if slices.Contains(written, path) {
			continue
		}
		if err := writeOutput(path, artifacts[f]); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// openOutput opens path for writing, creating parent directories.
// "-" is standard output.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
