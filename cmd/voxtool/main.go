package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"vox"
	"vox/internal/scenecfg"
)

var tags = []string{
	vox.TagPack, vox.TagSize, vox.TagXYZI, vox.TagRGBA,
	vox.TagTransform, vox.TagGroup, vox.TagShape, vox.TagLayer, vox.TagMaterial,
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s dump [-format xml|yaml] [-o out] <file.vox>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s build -c <scene.toml> -o <file.vox>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s chunks <file.vox>\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = dump(os.Args[2:])
	case "build":
		err = build(os.Args[2:])
	case "chunks":
		err = chunks(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(os.Args[1]+" failed", "err", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var format = fs.String("format", "xml", "Output format: xml or yaml")
	var outputFile = fs.String("o", "", "Output file path (optional, defaults to stdout)")
	var verbose = fs.Bool("v", false, "Log debug output")
	fs.Parse(args)
	setupLogging(*verbose)

	if fs.NArg() != 1 {
		usage()
		return fmt.Errorf("input file path is required")
	}

	file, err := vox.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	switch *format {
	case "xml":
		if *outputFile != "" {
			return vox.WriteXMLFile(*outputFile, file)
		}
		return vox.WriteXML(os.Stdout, file)
	case "yaml":
		if *outputFile != "" {
			return vox.WriteYAMLFile(*outputFile, file)
		}
		return vox.WriteYAML(os.Stdout, file)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func build(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var configFile = fs.String("c", "", "Scene description (TOML)")
	var outputFile = fs.String("o", "", "Output .vox file path")
	var verbose = fs.Bool("v", false, "Log debug output")
	fs.Parse(args)
	setupLogging(*verbose)

	if *configFile == "" || *outputFile == "" {
		usage()
		return fmt.Errorf("both -c and -o are required")
	}

	cfg, err := scenecfg.Load(*configFile)
	if err != nil {
		return err
	}
	file, err := cfg.Build()
	if err != nil {
		return err
	}
	if err := file.WriteFile(*outputFile); err != nil {
		return err
	}

	voxels := 0
	for _, m := range file.Models {
		voxels += m.NumVoxels()
	}
	slog.Info("wrote vox file", "path", *outputFile, "models", len(file.Models), "voxels", voxels)
	return nil
}

func chunks(args []string) error {
	fs := flag.NewFlagSet("chunks", flag.ExitOnError)
	var verbose = fs.Bool("v", false, "Log debug output")
	fs.Parse(args)
	setupLogging(*verbose)

	if fs.NArg() != 1 {
		usage()
		return fmt.Errorf("input file path is required")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	for _, tag := range tags {
		n, err := vox.CountChunks(data, tag)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		first, err := vox.FindChunk(data, tag, 1)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d\tfirst at %d\n", tag, n, first)
	}
	return nil
}
