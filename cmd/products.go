package cmd

import (
	"fmt"
	"os"

	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"
)

func NewProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Bulk catalog import and export",
	}
	cmd.AddCommand(newProductsExportCommand(opts))
	cmd.AddCommand(newProductsImportCommand(opts))
	return cmd
}

func newProductsExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write every product to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := productcontroller.WriteProductsSheet(cmd.Context(), db, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func newProductsImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create or update products from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}

			file, err := xlsx.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			stats, err := productcontroller.ImportProducts(cmd.Context(), db, file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created=%d updated=%d skipped=%d\n",
				stats.Created, stats.Updated, stats.Skipped)
			return err
		},
	}
}
