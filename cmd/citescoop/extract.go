package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/WikiOpenCite/citescoop"
)

var (
	flagPagesOut           string
	flagRevisionsOut       string
	flagBz2                bool
	flagConfig             string
	flagTemplates          []string
	flagIgnoreInvalidIdent bool
	flagLanguage           string
)

var extractCmd = &cobra.Command{
	Use:   "extract <dump.xml[.bz2]>",
	Short: "Extract annotated citations from a dump",
	Long: `Extract walks the given dump and writes two framed message streams:
one of pages with their annotated citations, one of the revisions those
annotations reference.  Each output file starts with a file header.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&flagPagesOut, "pages", "pages.pbf",
		"output file for page messages")
	extractCmd.Flags().StringVar(&flagRevisionsOut, "revisions", "revisions.pbf",
		"output file for revision messages")
	extractCmd.Flags().BoolVar(&flagBz2, "bz2", false,
		"treat the dump as bzip2-compressed regardless of its name")
	extractCmd.Flags().StringVar(&flagConfig, "config", "",
		"YAML config file")
	extractCmd.Flags().StringSliceVar(&flagTemplates, "template", nil,
		"citation template name to keep (repeatable; default all)")
	extractCmd.Flags().BoolVar(&flagIgnoreInvalidIdent, "ignore-invalid-ident", false,
		"drop unparseable numeric identifiers instead of aborting")
	extractCmd.Flags().StringVar(&flagLanguage, "language", "",
		"language tag recorded in the output headers")

	rootCmd.AddCommand(extractCmd)
}

// mergeFlags lets command line flags override whatever the config file
// said.
func mergeFlags(cmd *cobra.Command, cfg *config) {
	if cmd.Flags().Changed("template") {
		cfg.Templates = flagTemplates
	}
	if cmd.Flags().Changed("ignore-invalid-ident") {
		cfg.IgnoreInvalidIdent = flagIgnoreInvalidIdent
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = flagLanguage
	}
}

func extractor(parser *citescoop.Parser, dumpfn string) citescoop.Extractor {
	if flagBz2 || strings.HasSuffix(dumpfn, ".bz2") {
		return citescoop.NewBz2Extractor(parser)
	}
	return citescoop.NewTextExtractor(parser)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	mergeFlags(cmd, cfg)

	dump, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "opening dump")
	}
	defer dump.Close()

	pagesOut, err := os.Create(flagPagesOut)
	if err != nil {
		return errors.Wrap(err, "creating pages output")
	}
	defer pagesOut.Close()

	revisionsOut, err := os.Create(flagRevisionsOut)
	if err != nil {
		return errors.Wrap(err, "creating revisions output")
	}
	defer revisionsOut.Close()

	pageWriter := citescoop.NewMessageWriter(pagesOut)
	revisionWriter := citescoop.NewMessageWriter(revisionsOut)

	header := citescoop.FileHeader{Language: cfg.Language}
	if _, err := pageWriter.WriteMessage(&header); err != nil {
		return errors.Wrap(err, "writing pages header")
	}
	if _, err := revisionWriter.WriteMessage(&header); err != nil {
		return errors.Wrap(err, "writing revisions header")
	}

	var pages, revisions int64
	start := time.Now()
	prev := start
	reportfreq := int64(1000)

	store := func(page *citescoop.Page, refs map[uint64]citescoop.Revision) error {
		if _, err := pageWriter.WriteMessage(page); err != nil {
			return err
		}
		pages++
		for _, rev := range refs {
			rev := rev
			if _, err := revisionWriter.WriteMessage(&rev); err != nil {
				return err
			}
			revisions++
		}

		if pages%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Processed %s pages total (%.2f/s)",
				humanize.Comma(pages), float64(reportfreq)/d.Seconds())
			prev = now
		}
		return nil
	}

	if err := extractor(cfg.parser(), args[0]).ExtractEach(dump, store); err != nil {
		return errors.Wrap(err, "extracting")
	}

	log.Printf("Done after %v: %s pages, %s revisions",
		time.Since(start), humanize.Comma(pages), humanize.Comma(revisions))
	fmt.Printf("%d pages, %d revisions\n", pages, revisions)
	return nil
}
