package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/foamcase/foamdict"
)

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "header",
			Usage:     "print the FoamFile header of a file",
			ArgsUsage: "FILE",
			Action:    a.header,
		},
		{
			Name:      "check",
			Usage:     "parse files and report errors and warnings",
			ArgsUsage: "FILE...",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "re-check whenever a file changes"},
			},
			Action: a.check,
		},
		{
			Name:      "get",
			Usage:     "print the value at a key path, or the top-level keys",
			ArgsUsage: "FILE [PATH]",
			Action:    a.get,
		},
		{
			Name:      "set",
			Usage:     "replace the value at a key path and rewrite the file",
			ArgsUsage: "FILE PATH VALUE",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "backup", Usage: "keep the previous file as FILE.bak"},
				&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "print the result instead of writing it"},
			},
			Action: a.set,
		},
		{
			Name:      "fmt",
			Usage:     "print a file in canonical layout",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "rewrite the file in place"},
				&cli.BoolFlag{Name: "sort-boundary", Usage: "order boundary patches by startFace"},
			},
			Action: a.format,
		},
	}
}

func (a *app) header(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: foamdict header FILE", 2)
	}
	h, err := foamdict.ReadHeader(c.Args().First())
	if err != nil {
		return err
	}
	info, err := h.Info()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "version: %s\nformat:  %s\nclass:   %s\nobject:  %s\n",
		info.Version, info.Format, info.Class, info.Object)
	if info.Location != "" {
		fmt.Fprintf(a.out, "location: %s\n", info.Location)
	}
	return nil
}

func (a *app) check(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: foamdict check FILE...", 2)
	}
	_, opts, err := a.settings(c)
	if err != nil {
		return err
	}
	files := c.Args().Slice()

	failed := a.checkFiles(files, opts)
	if c.Bool("watch") {
		return a.watch(c.Context, files, func(path string) {
			a.checkFiles([]string{path}, opts)
		})
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, len(files)), 1)
	}
	return nil
}

// checkFiles reports each file and returns how many failed to parse.
func (a *app) checkFiles(files []string, opts foamdict.Options) int {
	failed := 0
	for _, path := range files {
		doc, err := a.load(path, opts)
		if err != nil {
			failed++
			fmt.Fprintf(a.out, "%s: FAIL %v\n", path, err)
			continue
		}
		fmt.Fprintf(a.out, "%s: ok (%d entries, %d warnings)\n", path, doc.Len(), len(doc.Warnings))
		for _, w := range doc.Warnings {
			fmt.Fprintf(a.out, "  warning: %s\n", w)
		}
	}
	return failed
}

func (a *app) get(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return cli.Exit("usage: foamdict get FILE [PATH]", 2)
	}
	_, opts, err := a.settings(c)
	if err != nil {
		return err
	}
	doc, err := a.load(c.Args().Get(0), opts)
	if err != nil {
		return err
	}

	if c.NArg() == 1 {
		if doc.Shape == foamdict.ShapeBoundary {
			patches, err := foamdict.Patches(doc.Body)
			if err != nil {
				return err
			}
			for _, p := range patches {
				fmt.Fprintln(a.out, p.Name)
			}
			return nil
		}
		for _, key := range doc.Keys() {
			fmt.Fprintln(a.out, key)
		}
		return nil
	}

	v, err := doc.Lookup(c.Args().Get(1))
	if err != nil {
		if errors.Is(err, foamdict.ErrPathNotFound) {
			return cli.Exit(err.Error(), 1)
		}
		return err
	}
	if s, ok := v.Text(); ok && v.Kind != foamdict.KindString {
		fmt.Fprintln(a.out, s)
	} else {
		fmt.Fprintln(a.out, v.String())
	}
	return nil
}

func (a *app) set(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: foamdict set FILE PATH VALUE", 2)
	}
	cfg, opts, err := a.settings(c)
	if err != nil {
		return err
	}
	path, key, text := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	doc, err := a.load(path, opts)
	if err != nil {
		return err
	}
	v, err := foamdict.ParseValue(text, opts)
	if err != nil {
		return fmt.Errorf("value %q: %w", text, err)
	}
	if err := doc.Assign(key, v); err != nil {
		return err
	}

	wopts := cfg.WriteOptions()
	if c.IsSet("backup") {
		wopts.Backup = c.Bool("backup")
	}
	if c.Bool("dry-run") {
		fmt.Fprint(a.out, foamdict.RenderWithOptions(doc, wopts.Generator))
		return nil
	}
	written, err := foamdict.WriteFile(path, doc, wopts)
	if err != nil {
		return err
	}
	a.logger.Info("updated dictionary",
		zap.String("path", path),
		zap.String("key", key),
		zap.Bool("written", written))
	return nil
}

func (a *app) format(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: foamdict fmt FILE", 2)
	}
	cfg, opts, err := a.settings(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	doc, err := a.load(path, opts)
	if err != nil {
		return err
	}

	wopts := cfg.WriteOptions()
	if c.IsSet("sort-boundary") {
		wopts.Generator.SortBoundary = c.Bool("sort-boundary")
	}
	if !c.Bool("write") {
		fmt.Fprint(a.out, foamdict.RenderWithOptions(doc, wopts.Generator))
		return nil
	}
	written, err := foamdict.WriteFile(path, doc, wopts)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(a.out, "%s: rewritten\n", path)
	} else {
		fmt.Fprintf(a.out, "%s: unchanged\n", path)
	}
	return nil
}
