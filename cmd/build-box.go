package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	bbox "github.com/infra-whizz/build-box"
	bbox_arch "github.com/infra-whizz/build-box/arch"
	wzlib_logger "github.com/infra-whizz/wzlib/logger"
	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"
	"github.com/urfave/cli/v2"
)

var app *bbox.BuildBox

func init() {
	// setup logger
	if funk.Contains(os.Args, "--verbose") || funk.Contains(os.Args, "-v") {
		wzlib_logger.GetCurrentLogger().SetLevel(logrus.TraceLevel)
	} else {
		wzlib_logger.GetCurrentLogger().SetLevel(logrus.ErrorLevel)
	}

	conf, err := bbox.LoadConfig()
	if err != nil {
		wzlib_logger.GetCurrentLogger().Errorf("Error: %s", err.Error())
		os.Exit(1)
	}
	app = bbox.NewBuildBox(conf, os.Stdout)
}

// Apply command line overrides on top of the configuration file
func configure(ctx *cli.Context) error {
	conf := app.Config()
	for flag, value := range map[string]*string{
		"targets":   &conf.Targets,
		"release":   &conf.Release,
		"arch":      &conf.Arch,
		"libc":      &conf.Libc,
		"repo-base": &conf.RepoBase,
	} {
		if ctx.IsSet(flag) {
			*value = strings.TrimSpace(ctx.String(flag))
		}
	}
	if ctx.Bool("no-verify") {
		conf.Verify = false
	}
	return nil
}

// Exactly count positional arguments, or at least one with count < 0
func checkArgs(ctx *cli.Context, count int) error {
	if (count < 0 && ctx.NArg() == 0) || (count >= 0 && ctx.NArg() != count) {
		cli.ShowSubcommandHelp(ctx)
		return fmt.Errorf("wrong number of arguments")
	}
	return nil
}

func runCreate(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		cli.ShowSubcommandHelp(ctx)
		return fmt.Errorf("a target name and at least one package spec are required")
	}
	return app.Create(ctx.Context, ctx.Args().First(), ctx.Args().Tail(), ctx.Bool("force"))
}

func runList(ctx *cli.Context) error {
	if err := checkArgs(ctx, 0); err != nil {
		return err
	}
	return app.List()
}

func runInfo(ctx *cli.Context) error {
	if err := checkArgs(ctx, 1); err != nil {
		return err
	}
	format := bbox.FormatText
	if ctx.Bool("json") {
		format = bbox.FormatJSON
	} else if ctx.Bool("yaml") {
		format = bbox.FormatYAML
	}
	return app.Info(ctx.Args().First(), format, strings.TrimSpace(ctx.String("key")))
}

func runDelete(ctx *cli.Context) error {
	if err := checkArgs(ctx, -1); err != nil {
		return err
	}
	return app.Delete(ctx.Context, ctx.Args().Slice()...)
}

func main() {
	// Handled in init(), accepted anywhere on the command line
	verboseFlag := &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Show debugging log",
	}
	targetsFlag := &cli.StringFlag{
		Name:    "targets",
		Aliases: []string{"t"},
		Usage:   "Use the given target prefix instead of the per-user default",
	}

	cliApp := &cli.App{
		Version: "0.1 Alpha",
		Name:    "build-box",
		Usage:   "Build target manager",
		Flags:   []cli.Flag{verboseFlag},
	}

	cliApp.Commands = []*cli.Command{
		{
			Name:      "create",
			Usage:     "Create a new target from package spec files",
			ArgsUsage: "<name> <spec> [spec...]",
			Before:    configure,
			Action:    runCreate,
			Flags: []cli.Flag{
				targetsFlag,
				verboseFlag,
				&cli.StringFlag{
					Name:    "release",
					Aliases: []string{"r"},
					Usage:   "The name of the release to bootstrap",
				},
				&cli.StringFlag{
					Name:    "arch",
					Aliases: []string{"a"},
					Usage:   fmt.Sprintf("The architecture to bootstrap (defaults to host arch). Choices: %s.", strings.Join(bbox_arch.Machines(), ", ")),
				},
				&cli.StringFlag{
					Name:    "libc",
					Aliases: []string{"l"},
					Usage:   "The C library of the target (musl or glibc)",
				},
				&cli.StringFlag{
					Name:  "repo-base",
					Usage: "Repository base URL up to and including the \"dists\" folder",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Overwrite an existing target with the same name",
				},
				&cli.BoolFlag{
					Name:  "no-verify",
					Usage: "Do not verify package list signatures",
				},
			},
		},
		{
			Name:   "list",
			Usage:  "List targets",
			Before: configure,
			Action: runList,
			Flags:  []cli.Flag{targetsFlag, verboseFlag},
		},
		{
			Name:      "info",
			Usage:     "Show target information",
			ArgsUsage: "<name>",
			Before:    configure,
			Action:    runInfo,
			Flags: []cli.Flag{
				targetsFlag,
				verboseFlag,
				&cli.BoolFlag{
					Name:  "json",
					Usage: "Output result as JSON object",
				},
				&cli.BoolFlag{
					Name:  "yaml",
					Usage: "Output result as YAML document",
				},
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Print value for given key only",
				},
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete targets",
			ArgsUsage: "<name> [name...]",
			Before:    configure,
			Action:    runDelete,
			Flags:     []cli.Flag{targetsFlag, verboseFlag},
		},
	}

	// An interrupt cancels create and delete; cleanup windows hold it themselves.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cliApp.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		wzlib_logger.GetCurrentLogger().Errorf("Error: %s", err.Error())
		os.Exit(1)
	}
}
