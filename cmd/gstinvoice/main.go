// Command gstinvoice renders and exports invoices saved as YAML or JSON files
// without starting the web server.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/diewo77/gst-invoices/internal/config"
	"github.com/diewo77/gst-invoices/internal/export"
	"github.com/diewo77/gst-invoices/internal/invoicefile"
	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/diewo77/gst-invoices/internal/words"
	"github.com/diewo77/gst-invoices/view"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(config.Load()).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "gstinvoice",
		Usage: "render and export GST tax invoices",
		Commands: []*cli.Command{
			exportCommand(cfg),
			previewCommand(),
			wordsCommand(),
		},
	}
}

var inputFlag = &cli.StringFlag{
	Name:     "input",
	Aliases:  []string{"i"},
	Usage:    "invoice file (YAML or JSON)",
	Required: true,
}

func exportCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write PDF copies of an invoice",
		Flags: []cli.Flag{
			inputFlag,
			&cli.StringFlag{Name: "copy", Aliases: []string{"c"}, Value: "both", Usage: "original, duplicate or both"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: cfg.Export.OutputDir, Usage: "output directory"},
		},
		Action: func(c *cli.Context) error {
			variants, err := models.ParseCopySelection(c.String("copy"))
			if err != nil {
				return cli.Exit(err, 2)
			}
			f, err := loadInvoice(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			ws := f.Workspace()
			sink := &export.DirSink{Dir: c.String("out")}
			names, err := ws.Export(c.Context, cfg.Export.NewExporter(), variants, sink)
			for _, name := range names {
				fmt.Fprintln(c.App.Writer, name)
			}
			if err != nil {
				if hint := export.Hint(err); hint != "" {
					fmt.Fprintln(c.App.ErrWriter, hint)
				}
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "print one copy as a standalone HTML page",
		Flags: []cli.Flag{
			inputFlag,
			&cli.StringFlag{Name: "copy", Aliases: []string{"c"}, Value: string(models.CopyOriginal), Usage: "original or duplicate"},
		},
		Action: func(c *cli.Context) error {
			v, ok := models.ParseCopyVariant(c.String("copy"))
			if !ok {
				return cli.Exit(fmt.Sprintf("unknown copy %q (want original or duplicate)", c.String("copy")), 2)
			}
			f, err := loadInvoice(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			return view.RenderDocument(c.App.Writer, f.Workspace().Render(v))
		},
	}
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "words",
		Usage:     "spell a rupee amount in words",
		ArgsUsage: "<amount>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("words takes exactly one amount", 2)
			}
			amount, err := money.ParseStrict(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid amount %q: %v", c.Args().First(), err), 2)
			}
			return printLine(c.App.Writer, words.Amount(amount))
		},
	}
}

// loadInvoice reads the --input file and reports advisory problems on
// stderr.
func loadInvoice(c *cli.Context) (*invoicefile.File, error) {
	f, err := invoicefile.Load(c.String("input"))
	if err != nil {
		return nil, err
	}
	for _, line := range f.Check().Strings() {
		fmt.Fprintln(c.App.ErrWriter, "warning:", line)
	}
	return f, nil
}

func printLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
