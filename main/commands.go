package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"parquet_schema/footer"
	"parquet_schema/levels"
	"parquet_schema/schema"
)

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the resolved field tree with definition and repetition levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer sf.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %s, row groups: %d, columns: %d\n",
				humanize.Comma(sf.meta.NumRows), len(sf.meta.RowGroups), sf.desc.NumColumns())
			fmt.Fprintln(out, sf.desc)
			return nil
		},
	}
}

func (a *app) columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "Print the physical columns in on-disk order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer sf.Close()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{
				"Col", "Path", "Physical", "Type", "Nullable", "MaxDef", "MaxRep", "Compressed", "Uncompressed",
			})
			for i, leaf := range sf.desc.PhysicalColumns() {
				compressed := lo.SumBy(sf.meta.RowGroups, func(rg footer.RowGroup) int64 {
					return chunkMeta(rg, i).TotalCompressedSize
				})
				uncompressed := lo.SumBy(sf.meta.RowGroups, func(rg footer.RowGroup) int64 {
					return chunkMeta(rg, i).TotalUncompressedSize
				})
				table.Append([]string{
					strconv.Itoa(leaf.PhysicalColumnIndex),
					strings.Join(leaf.Path, "."),
					leaf.PhysicalType.String(),
					leaf.Type.String(),
					strconv.FormatBool(leaf.IsNullable),
					strconv.Itoa(int(leaf.MaxDefLevel())),
					strconv.Itoa(int(leaf.MaxRepLevel())),
					humanize.Bytes(uint64(compressed)),
					humanize.Bytes(uint64(uncompressed)),
				})
			}
			table.Render()
			return nil
		},
	}
}

// chunkMeta returns the metadata of column i in rg, or an empty one when the
// chunk lives in another file.
func chunkMeta(rg footer.RowGroup, i int) *footer.ColumnMetaData {
	if md := rg.Columns[i].MetaData; md != nil {
		return md
	}
	return &footer.ColumnMetaData{}
}

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <file> <name>...",
		Short: "Resolve column names or dotted paths against the schema",
		Long: `lookup resolves each name against the top-level fields of the schema. Names
containing dots are resolved as paths through nested fields, with list elements
and map keys and values addressed by their own names.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer sf.Close()

			out := cmd.OutOrStdout()
			var missing []string
			for _, name := range args[1:] {
				field, pos := lookup(sf.desc, name)
				if field == nil {
					missing = append(missing, name)
					fmt.Fprintf(out, "%s: not found\n", name)
					continue
				}
				columns := lo.Map(field.ColumnIndices(), func(idx int, _ int) string {
					return strconv.Itoa(idx)
				})
				fmt.Fprintf(out, "%s: position=%s type=%s nullable=%t max_def=%d max_rep=%d columns=[%s]\n",
					name, pos, field.Type, field.IsNullable, field.MaxDefLevel(), field.MaxRepLevel(),
					strings.Join(columns, ","))
			}
			if len(missing) > 0 {
				return errors.Errorf("%d of %d names not found: %s", len(missing), len(args)-1, strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

// lookup resolves name and returns the field with its top-level position,
// "-" for nested fields.
func lookup(d *schema.Descriptor, name string) (*schema.Field, string) {
	if !strings.Contains(name, ".") {
		idx, ok := d.ColumnIndex(name)
		if !ok {
			return nil, ""
		}
		return d.ResolveByName(name), strconv.Itoa(idx)
	}
	return d.ResolvePath(strings.Split(name, ".")...), "-"
}

func (a *app) levelsCmd() *cobra.Command {
	var rowGroup int
	cmd := &cobra.Command{
		Use:   "levels <file>",
		Short: "Decode the levels of the first data page of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer sf.Close()

			if rowGroup < 0 || rowGroup >= len(sf.meta.RowGroups) {
				return errors.Errorf("row group %d out of range, file has %d", rowGroup, len(sf.meta.RowGroups))
			}
			rg := sf.meta.RowGroups[rowGroup]

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Col", "Path", "Page", "Entries", "Records", "Values", "Nulls", "Empty"})
			for i, leaf := range sf.desc.PhysicalColumns() {
				page, err := levels.ReadFirstPage(sf.f, rg.Columns[i].MetaData, leaf)
				if err != nil {
					return errors.WithMessagef(err, "column %d", i)
				}
				s := page.Summarize(leaf.Levels)
				table.Append([]string{
					strconv.Itoa(i),
					strings.Join(leaf.Path, "."),
					page.Type.String(),
					strconv.Itoa(page.NumValues),
					strconv.Itoa(s.Records),
					strconv.Itoa(s.Values),
					strconv.Itoa(s.Nulls),
					strconv.Itoa(s.Empty),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&rowGroup, "row-group", 0, "row group to read")
	return cmd
}
