package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bodgit/sxm"
	"github.com/urfave/cli/v2"
)

const defaultDB = "sxm.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func printImage(img *sxm.Image, shapes bool) error {
	if err := sxm.WriteHeaderKeys(os.Stdout, img.Header, 4); err != nil {
		return err
	}
	fmt.Println()
	if err := sxm.WriteChannels(os.Stdout, img.Metadata.Channels); err != nil {
		return err
	}
	if !shapes {
		return nil
	}
	fmt.Println()
	return sxm.WriteShapes(os.Stdout, img)
}

func main() {
	app := cli.NewApp()

	app.Name = "sxm"
	app.Usage = "Nanonis SXM image management utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SXM_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Decode an image and print its header, channels and grid shapes",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				img, err := sxm.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := printImage(img, true); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "header",
			Usage:       "Decode only the header of an image and print it",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				img, err := sxm.OpenHeader(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := printImage(img, false); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and record image metadata in the catalog",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := sxm.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List catalogued images",
			Description: "",
			Action: func(c *cli.Context) error {
				m, err := sxm.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				entries, err := m.Images()
				if err != nil {
					return cli.Exit(err, 1)
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(tw, "PATH\tRECORDED\tBIAS\tDIRECTION\tPIXELS\tCHANNELS")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%dx%d\t%d\n",
						e.Path, e.Recorded.Format("2006-01-02 15:04:05"), e.Bias, e.Direction, e.XPixels, e.YPixels, e.Channels)
				}
				if err := tw.Flush(); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
