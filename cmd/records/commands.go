package records

import (
	"fmt"
	"github.com/ValentinKolb/japi/cmd/util"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strings"
)

var (
	allCmd = &cobra.Command{
		Use:   "all [type]",
		Short: "Fetches all records of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ds.Registry().Resolve(args[0])
			if err != nil {
				return err
			}
			_, recs, err := ds.FindAll(cmd.Context(), m, fetchOptions())
			if err != nil {
				return err
			}
			return RenderRecords(os.Stdout, recs)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [type] [id]",
		Short: "Fetches a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ds.Registry().Resolve(args[0])
			if err != nil {
				return err
			}
			rec, err := ds.FindRecord(cmd.Context(), m, args[1], fetchOptions())
			if err != nil {
				return err
			}
			return RenderRecord(os.Stdout, rec)
		},
	}
	relatedCmd = &cobra.Command{
		Use:   "related [type] [id] [relationship]",
		Short: "Fetches the related records of a relationship",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ds.Registry().Resolve(args[0])
			if err != nil {
				return err
			}
			rec, err := ds.FindRecord(cmd.Context(), m, args[1], nil)
			if err != nil {
				return err
			}
			if _, err := ds.FindRelated(cmd.Context(), rec, args[2]); err != nil {
				return err
			}
			if target, ok := rec.BelongsTo(args[2]); ok {
				if target == nil {
					fmt.Println("null")
					return nil
				}
				return RenderRecord(os.Stdout, target)
			}
			targets, _ := rec.HasMany(args[2])
			return RenderRecords(os.Stdout, targets)
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [type] [name=value]...",
		Short: "Creates a record locally (no network request) and prints it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ds.Registry().Resolve(args[0])
			if err != nil {
				return err
			}
			props, err := util.ParsePairs(args[1:])
			if err != nil {
				return err
			}
			attrs := make(map[string]any, len(props))
			for name, value := range props {
				attrs[name] = value
			}
			rec, err := ds.CreateRecord(m, attrs)
			if err != nil {
				return err
			}
			return RenderRecord(os.Stdout, rec)
		},
	}
	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "Lists the configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RenderModels(os.Stdout, ds.Registry().Models())
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{allCmd, getCmd} {
		key := "include"
		cmd.Flags().StringSlice(key, nil, util.WrapString("Relationship paths to include (e.g. author,comments.author)"))
		key = "sort"
		cmd.Flags().StringSlice(key, nil, util.WrapString("Sort fields, prefix with '-' for descending order"))
		key = "fields"
		cmd.Flags().StringSlice(key, nil, util.WrapString("Sparse fieldsets in the format 'type=field' (can be repeated)"))
	}
	key := "filter"
	allCmd.Flags().StringSlice(key, nil, util.WrapString("Filters in the format 'name=value' (can be repeated)"))
}

// fetchOptions builds the fetch options from the flags of the current command
func fetchOptions() *common.FetchOptions {
	opts := &common.FetchOptions{
		Include: viper.GetStringSlice("include"),
		Sort:    viper.GetStringSlice("sort"),
	}
	for _, pair := range viper.GetStringSlice("fields") {
		if typeName, field, ok := strings.Cut(pair, "="); ok {
			if opts.Fields == nil {
				opts.Fields = map[string][]string{}
			}
			opts.Fields[typeName] = append(opts.Fields[typeName], field)
		}
	}
	for _, pair := range viper.GetStringSlice("filter") {
		if name, value, ok := strings.Cut(pair, "="); ok {
			if opts.Filter == nil {
				opts.Filter = map[string]string{}
			}
			opts.Filter[name] = value
		}
	}
	return opts
}
