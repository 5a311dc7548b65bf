package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"cellar/internal/config"
	"cellar/internal/domain"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/internal/sheet"
)

// app is the state shared by every subcommand.
type app struct {
	dsn string
	db  *sqlx.DB
	cfg config.Config
	out io.Writer
}

func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	db, err := repos.OpenDB(a.dsn)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}
	root := &cobra.Command{
		Use:          "cellarctl",
		Short:        "Import, export and count the wine cellar inventory",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.open()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.dsn, "db", a.cfg.DBDSN, "sqlite database file")
	root.AddCommand(newImportCmd(a), newExportCmd(a), newCountCmd(a))
	return root
}

func newImportCmd(a *app) *cobra.Command {
	var mode, category string
	var yes bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Reconcile a CSV or XLSX stock sheet into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseImportMode(mode)
			if err != nil {
				return err
			}
			target, ok := domain.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			if m == domain.ModeOverwrite && !yes {
				return fmt.Errorf("overwrite deletes every %s item first; pass --yes to confirm", target)
			}
			format, err := sheet.DetectFormat(args[0])
			if err != nil {
				return err
			}
			svc := services.NewImportService(repos.NewWineRepo(a.db), repos.NewLocationRepo(a.db), repos.NewInventoryRepo(a.db), a.cfg.UploadDir)
			res, err := svc.ImportFile(args[0], format, m, target)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeUpdate), "overwrite | append | update")
	cmd.Flags().StringVar(&category, "category", string(domain.CategoryWine), "wine | other-goods")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm an overwrite")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format, category, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current stock to a CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := sheet.ParseFormat(format)
			if err != nil {
				return err
			}
			cat := ""
			if category != "" {
				c, ok := domain.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				cat = string(c)
			}
			if out == "" {
				out = services.Filename(f, time.Now())
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			svc := services.NewExportService(repos.NewInventoryRepo(a.db))
			if err := svc.Write(file, f, cat); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv | xlsx")
	cmd.Flags().StringVar(&category, "category", "", "wine | other-goods (empty exports everything)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default lager-<timestamp>.<ext>)")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "count INVENTORY_ID QUANTITY",
		Short: "Record a counted quantity for one inventory row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid inventory id %q", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			svc := services.NewCountService(repos.NewInventoryRepo(a.db), repos.NewCountRepo(a.db))
			entry, err := svc.SetQuantity(id, qty, by)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %d -> %d (%+d)\n", entry.VinID, entry.PreviousQuantity, entry.NewQuantity, entry.Delta)
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "cellarctl", "name recorded in the count log")
	return cmd
}
